package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorconf-go/errcode"
)

func TestParseIOTag(t *testing.T) {
	cases := map[string]IOTag{
		"A08":  Tag('A', 8),
		"PA8":  Tag('A', 8),
		"pb01": Tag('B', 1),
		"C15":  Tag('C', 15),
		"NONE": IOTagNone,
		"":     IOTagNone,
	}
	for in, want := range cases {
		got, err := ParseIOTag(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"A16", "Z1", "P", "A", "AX"} {
		_, err := ParseIOTag(bad)
		assert.Error(t, err, bad)
	}
}

func TestIOTagString(t *testing.T) {
	assert.Equal(t, "B00", Tag('B', 0).String())
	assert.Equal(t, "NONE", IOTagNone.String())
	assert.Equal(t, byte('C'), Tag('C', 9).Port())
	assert.Equal(t, uint8(9), Tag('C', 9).Pin())
}

func TestEnumText(t *testing.T) {
	var p Protocol
	require.NoError(t, p.UnmarshalText([]byte("dshot300")))
	assert.Equal(t, ProtocolDshot300, p)
	assert.Error(t, p.UnmarshalText([]byte("dshot1200")))
	assert.Equal(t, ProtocolDshot300, p, "failed parse must not clobber")

	var c TimerChoice
	require.NoError(t, c.UnmarshalText([]byte("TIM8")))
	assert.Equal(t, SpecificTimer(8), c)
	require.NoError(t, c.UnmarshalText([]byte("auto")))
	assert.True(t, c.IsAuto())

	var e EDTMode
	require.NoError(t, e.UnmarshalText([]byte("FORCE")))
	assert.Equal(t, EDTForced, e)

	_, err := Protocol(200).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Protocol(200)", Protocol(200).String())
}

func TestCategory(t *testing.T) {
	assert.Equal(t, CategoryAnalog, ProtocolOneshot125.Category())
	assert.Equal(t, CategoryBrushed, ProtocolBrushed.Category())
	assert.Equal(t, CategoryDigital, ProtocolProshot1000.Category())
	assert.True(t, ProtocolDshot150.IsDshot())
	assert.False(t, ProtocolProshot1000.IsDshot())
	assert.Len(t, Protocols(), int(protocolCount))
}

func TestDMAStreamText(t *testing.T) {
	var d DMAStream
	require.NoError(t, d.UnmarshalText([]byte("dma2_st6")))
	assert.Equal(t, Stream(2, 6), d)
	assert.Equal(t, "DMA2_ST6", d.String())
	assert.Error(t, d.UnmarshalText([]byte("DMA0_ST1")))
}

func TestBoundedContainers(t *testing.T) {
	_, err := PinsOf(make([]IOTag, MaxMotors+1)...)
	assert.Equal(t, errcode.ExceedsMotorLimit, errcode.Of(err))

	r, err := RemapOf(3, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{3, 2, 1, 0}, r.Slice())
	assert.Equal(t, []uint8{0, 1, 2}, IdentityRemap(3).Slice())
	assert.Equal(t, MaxMotors, IdentityRemap(99).Len())
}

func TestActivePinsSkipsDisabled(t *testing.T) {
	c := DefaultMotorOutputConfig()
	c.Outputs[0] = Output{Pin: Tag('B', 0), Enabled: true}
	c.Outputs[1] = Output{Pin: Tag('B', 1)}
	c.Outputs[2] = Output{Pin: Tag('A', 3), Enabled: true}
	assert.Equal(t, []IOTag{Tag('B', 0), Tag('A', 3)}, c.ActivePins().Slice())
}

const sampleYAML = `
protocol: DSHOT300
update_rate_hz: 8000
telemetry:
  enabled: true
  edt: "ON"
bitbang: "OFF"
dma: AUTO
outputs:
  - pin: PB0
  - pin: PB1
  - pin: PA3
    enabled: false
remap: [1, 0]
`

func TestDecodeYAML(t *testing.T) {
	c, err := DecodeYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, ProtocolDshot300, c.Protocol)
	assert.Equal(t, uint16(8000), c.UpdateRateHz)
	assert.Equal(t, Telemetry{Enabled: true, EDT: EDTOn}, c.Telemetry)
	assert.Equal(t, ModeOff, c.BitbangMode)
	assert.Equal(t, TimerAuto, c.BitbangTimer, "omitted fields keep defaults")
	assert.Equal(t, Output{Pin: Tag('B', 0), Enabled: true}, c.Outputs[0])
	assert.Equal(t, Output{Pin: Tag('A', 3)}, c.Outputs[2])
	assert.Equal(t, []uint8{1, 0}, c.Remap.Slice())
}

func TestDecodeYAMLRejectsUnknownField(t *testing.T) {
	_, err := DecodeYAML(strings.NewReader("protocol: PWM\nmotor_poles: 14\n"))
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
}

func TestDecodeRejectsTooManyOutputs(t *testing.T) {
	var b strings.Builder
	b.WriteString("outputs:\n")
	for range MaxMotors + 1 {
		b.WriteString("  - pin: PB0\n")
	}
	_, err := DecodeYAML(strings.NewReader(b.String()))
	assert.Equal(t, errcode.ExceedsMotorLimit, errcode.Of(err))
}

func TestDecodeCarriesBadRemapEntries(t *testing.T) {
	c, err := DecodeJSON([]byte(`{"remap": [0, -1, 300]}`))
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, RemapInvalid, RemapInvalid}, c.Remap.Slice())

	c, err = DecodeJSON([]byte(`{"remap": [0, 1, 2, 3, 4, 5, 6, 7, 8, 9]}`))
	require.NoError(t, err)
	assert.Equal(t, 10, c.Remap.Len())
	assert.Len(t, c.Remap.Slice(), MaxMotors)
}

func TestDecodeBusPayloads(t *testing.T) {
	base, err := DecodeYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	raw, err := json.Marshal(FromConfig(base))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))

	for name, payload := range map[string]any{
		"config":   base,
		"document": FromConfig(base),
		"bytes":    raw,
		"string":   string(raw),
		"map":      generic,
	} {
		got, err := Decode(payload)
		require.NoError(t, err, name)
		assert.Equal(t, base, got, name)
	}

	_, err = Decode(nil)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
}

func TestResolvedJSONListsActiveMotors(t *testing.T) {
	r := ResolvedMotorConfig{Protocol: ProtocolDshot600, Count: 2}
	r.Motors[0] = ResolvedMotor{Output: 1, Pin: Tag('B', 1), Timer: 3, Channel: 4, DMA: Stream(1, 2)}
	r.Motors[1] = ResolvedMotor{Output: 0, Pin: Tag('B', 0), Timer: 3, Channel: 3, DMA: Stream(1, 7)}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var out struct {
		Protocol string           `json:"protocol"`
		Motors   []map[string]any `json:"motors"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "DSHOT600", out.Protocol)
	require.Len(t, out.Motors, 2)
	assert.Equal(t, "B01", out.Motors[0]["pin"])
	assert.Equal(t, "TIM3", out.Motors[0]["timer"])
	assert.Equal(t, "DMA1_ST2", out.Motors[0]["dma"])
}
