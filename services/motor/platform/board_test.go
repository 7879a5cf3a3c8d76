package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorconf-go/services/motor/config"
)

func TestBuiltinBoardsRegistered(t *testing.T) {
	assert.Equal(t, []string{"f405_ref", "h743_ref"}, Names())
	b, ok := Lookup("f405_ref")
	require.True(t, ok)
	assert.Equal(t, 8, b.MaxMotors())
	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() { Register(&F405Ref) })
}

func TestBoardQueries(t *testing.T) {
	b := &F405Ref
	opts, ok := b.TimerOptions(config.Tag('B', 0))
	require.True(t, ok)
	assert.Equal(t, "TIM3 CH3", opts[0].String())
	assert.Equal(t, config.Stream(1, 7), opts[0].DMA)

	_, ok = b.TimerOptions(config.Tag('E', 1))
	assert.False(t, ok)

	s, ok := b.BurstDMA(8)
	assert.True(t, ok)
	assert.Equal(t, config.Stream(2, 1), s)
	_, ok = b.BurstDMA(9)
	assert.False(t, ok, "TIM9 has no update DMA")

	assert.Equal(t, []config.TimerID{1, 8}, b.BitbangTimers())
	assert.True(t, b.CanBitbang(1, config.Tag('C', 6)))
	assert.False(t, b.CanBitbang(1, config.Tag('D', 2)), "pin not on board")
	assert.False(t, b.CanBitbang(3, config.Tag('B', 0)), "TIM3 is not a pacer")
}

func TestMaxMotorsCapped(t *testing.T) {
	assert.Equal(t, config.MaxMotors, (&Board{Motors: 99}).MaxMotors())
	assert.Equal(t, config.MaxMotors, (&Board{}).MaxMotors())
	assert.Equal(t, 4, (&Board{Motors: 4}).MaxMotors())
}

const boardYAML = `
name: whoop_f411
max_motors: 4
timers:
  - id: TIM1
    burst_dma: DMA2_ST5
  - id: TIM2
pins:
  - pin: PA8
    timers:
      - {timer: TIM1, channel: 1, dma: DMA2_ST1}
  - pin: PA9
    timers:
      - {timer: TIM1, channel: 2, dma: DMA2_ST2}
  - pin: PB10
    timers:
      - {timer: TIM2, channel: 3}
bitbang:
  - timer: TIM1
    ports: AB
`

func TestLoadBoard(t *testing.T) {
	b, err := LoadBoard(strings.NewReader(boardYAML))
	require.NoError(t, err)
	assert.Equal(t, "whoop_f411", b.Name)
	assert.Equal(t, 4, b.MaxMotors())
	opts, ok := b.TimerOptions(config.Tag('B', 10))
	require.True(t, ok)
	assert.True(t, opts[0].DMA.IsZero())
	assert.True(t, b.CanBitbang(1, config.Tag('B', 10)))
}

func TestLoadBoardRejectsInconsistent(t *testing.T) {
	cases := map[string]string{
		"undeclared timer": "name: x\ntimers: [{id: TIM1}]\npins: [{pin: PA0, timers: [{timer: TIM2, channel: 1}]}]\n",
		"bad channel":      "name: x\ntimers: [{id: TIM1}]\npins: [{pin: PA0, timers: [{timer: TIM1, channel: 7}]}]\n",
		"duplicate pin":    "name: x\ntimers: [{id: TIM1}]\npins: [{pin: PA0}, {pin: A00}]\n",
		"bad port":         "name: x\ntimers: [{id: TIM1}]\nbitbang: [{timer: TIM1, ports: A9}]\n",
		"missing name":     "timers: [{id: TIM1}]\n",
		"unknown field":    "name: x\nclock_hz: 168000000\n",
	}
	for name, doc := range cases {
		_, err := LoadBoard(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}
