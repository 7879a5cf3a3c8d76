package motorerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"motorconf-go/errcode"
	"motorconf-go/services/motor/config"
)

func TestCodesAreStable(t *testing.T) {
	m := Motor{Index: 2, Pin: config.Tag('B', 1)}
	cases := []struct {
		err  error
		code errcode.Code
		msg  string
	}{
		{Conflict(Motor{Index: 1, Pin: config.Tag('B', 0)}, m, "TIM3 CH3"), errcode.TimerConflict,
			"timer_conflict: motor 1 (B00) and motor 2 (B01) both need TIM3 CH3"},
		{TimerForPin(m, 8), errcode.UnsupportedTimerForPin, "unsupported_timer_for_pin: TIM8 cannot drive motor 2 (B01)"},
		{TimerForPin(m, 0), errcode.UnsupportedTimerForPin, "unsupported_timer_for_pin: no bitbang timer can drive motor 2 (B01)"},
		{NoTimerChannel(m), errcode.UnsupportedTimerForPin, "unsupported_timer_for_pin: no timer channel can drive motor 2 (B01)"},
		{BitbangUnsupported(config.ProtocolPWM), errcode.BitbangUnsupported, "bitbang_unsupported: PWM"},
		{DMAUnsupported(config.ProtocolBrushed, nil), errcode.DMAUnsupported, "dma_unsupported: BRUSHED"},
		{DMAUnsupported(config.ProtocolDshot600, &m), errcode.DMAUnsupported, "dma_unsupported: motor 2 (B01) has no DMA-capable timer channel"},
		{InvalidRemap(2, 1, 4), errcode.InvalidRemap, "invalid_remap(2): output 1 repeated"},
		{InvalidRemap(0, 9, 4), errcode.InvalidRemap, "invalid_remap(0): output 9 out of range [0,4)"},
		{RemapLength(3, 4), errcode.InvalidRemap, "invalid_remap(3): 3 entries for 4 motors"},
		{ExceedsMotorLimit(9, 8), errcode.ExceedsMotorLimit, "exceeds_motor_limit: 9 active motors, max 8"},
		{UnknownPin(m), errcode.UnknownPin, "unknown_pin: motor 2 (B01)"},
		{InvalidParam("dma", 7), errcode.InvalidParams, "invalid_params: dma=7"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, errcode.Of(tc.err))
		assert.Equal(t, tc.msg, tc.err.Error())
		wrapped := fmt.Errorf("load: %w", tc.err)
		assert.True(t, errors.Is(wrapped, tc.code), "errors.Is(%v, %s)", tc.err, tc.code)
	}
}

func TestErrorsAs(t *testing.T) {
	var err error = Conflict(Motor{Index: 2}, Motor{Index: 3}, "TIM8 CH1")
	var ce *ConflictError
	if assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &ce)) {
		assert.Equal(t, 2, ce.First.Index)
		assert.Equal(t, 3, ce.Second.Index)
	}
}
