package motor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorconf-go/bus"
	"motorconf-go/errcode"
	"motorconf-go/services/motor/config"
	"motorconf-go/services/motor/platform"
	"motorconf-go/types"
)

func next(t *testing.T, sub *bus.Subscription) *bus.Message {
	t.Helper()
	select {
	case m := <-sub.Channel():
		return m
	case <-time.After(time.Second):
		t.Fatalf("timeout on %v", sub.Topic())
		return nil
	}
}

func quiet(t *testing.T, sub *bus.Subscription) {
	t.Helper()
	select {
	case m := <-sub.Channel():
		t.Fatalf("unexpected message on %v: %#v", sub.Topic(), m.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func startService(t *testing.T) (*bus.Bus, *bus.Connection) {
	t.Helper()
	b := bus.NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := NewService(&platform.F405Ref, log.New(io.Discard))
	require.NoError(t, svc.Start(ctx, b.NewConnection("motor")))
	return b, b.NewConnection("test")
}

func TestServiceAppliesAndKeepsLastGood(t *testing.T) {
	b, c := startService(t)
	stSub := c.Subscribe(TopicStatus)
	resSub := c.Subscribe(TopicResolved)

	good := quad(config.ProtocolDshot600)
	want, err := Resolve(good, &platform.F405Ref)
	require.NoError(t, err)

	c.Publish(c.NewMessage(TopicConfig, good, true))
	st := next(t, stSub).Payload.(types.MotorStatus)
	assert.Equal(t, types.MotorOK, st.State)
	assert.Equal(t, uint32(1), st.Generation)
	assert.Equal(t, want, next(t, resSub).Payload)

	bad := good
	bad.Remap = remapOf(t, 0, 1, 1, 3)
	c.Publish(c.NewMessage(TopicConfig, bad, true))
	st = next(t, stSub).Payload.(types.MotorStatus)
	assert.Equal(t, types.MotorRejected, st.State)
	assert.Equal(t, errcode.InvalidRemap, st.Code)
	assert.Contains(t, st.Error, "invalid_remap(2)")
	assert.Equal(t, uint32(1), st.Generation)
	quiet(t, resSub)

	// Late subscribers still see the last good descriptor.
	late := b.NewConnection("driver").Subscribe(TopicResolved)
	assert.Equal(t, want, next(t, late).Payload)

	// Re-sending an equivalent config does not republish the descriptor.
	c.Publish(c.NewMessage(TopicConfig, config.FromConfig(good), true))
	st = next(t, stSub).Payload.(types.MotorStatus)
	assert.Equal(t, types.MotorOK, st.State)
	assert.Equal(t, uint32(1), st.Generation)
	quiet(t, resSub)
}

func TestServiceCheckDoesNotApply(t *testing.T) {
	_, c := startService(t)
	stSub := c.Subscribe(TopicStatus)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rep, err := c.RequestWait(ctx, c.NewMessage(TopicCheck,
		`{"protocol":"PWM","dma":"ON","outputs":[{"pin":"PB0"},{"pin":"PB1"}]}`, false))
	require.NoError(t, err)

	st := rep.Payload.(types.MotorStatus)
	assert.Equal(t, types.MotorRejected, st.State)
	assert.Equal(t, errcode.DMAUnsupported, st.Code)

	rep, err = c.RequestWait(ctx, c.NewMessage(TopicCheck,
		`{"protocol":"PWM","update_rate_hz":1000,"outputs":[{"pin":"PB0"}]}`, false))
	require.NoError(t, err)
	st = rep.Payload.(types.MotorStatus)
	assert.Equal(t, types.MotorOK, st.State)
	assert.Contains(t, st.Adjustments, "update_rate_hz: 1000 -> 498")

	quiet(t, stSub)
}

func TestServiceRejectsUndecodablePayload(t *testing.T) {
	_, c := startService(t)
	stSub := c.Subscribe(TopicStatus)

	c.Publish(c.NewMessage(TopicConfig, `{"protocol":"DSHOT9000"}`, true))
	st := next(t, stSub).Payload.(types.MotorStatus)
	assert.Equal(t, types.MotorRejected, st.State)
	assert.Equal(t, errcode.InvalidParams, st.Code)
	assert.Zero(t, st.Generation)
}
