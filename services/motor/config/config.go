package config

import (
	"fmt"

	"motorconf-go/errcode"
)

// MaxMotors is the hardware upper bound on motor outputs.
const MaxMotors = 8

// Default update rates.
const (
	BrushedPWMRateHz   uint16 = 16000
	BrushlessPWMRateHz uint16 = 480
)

// Output is one physical motor output slot.
type Output struct {
	Pin     IOTag `json:"pin" yaml:"pin"`
	Enabled bool  `json:"enabled" yaml:"enabled"`
}

// Telemetry holds the DShot telemetry request.
type Telemetry struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	EDT     EDTMode `json:"edt" yaml:"edt"`
}

// MotorOutputConfig is the raw, persisted motor output configuration.
// It is produced by the configuration store and never mutated by resolution.
type MotorOutputConfig struct {
	Outputs          [MaxMotors]Output
	UpdateRateHz     uint16
	Protocol         Protocol
	Inverted         bool
	ContinuousUpdate bool
	Burst            bool
	Telemetry        Telemetry
	BitbangMode      BitbangMode
	BitbangTimer     TimerChoice
	DMA              DMAMode
	Remap            Remap
}

// DefaultMotorOutputConfig returns the firmware defaults with no outputs enabled.
func DefaultMotorOutputConfig() MotorOutputConfig {
	return MotorOutputConfig{
		UpdateRateHz: BrushlessPWMRateHz,
		Protocol:     ProtocolDshot600,
		BitbangMode:  ModeAuto,
		BitbangTimer: TimerAuto,
		DMA:          ModeAuto,
	}
}

// ActivePins returns the pins of enabled outputs in slot order.
func (c *MotorOutputConfig) ActivePins() Pins {
	var p Pins
	for _, o := range c.Outputs {
		if o.Enabled {
			p.tags[p.n] = o.Pin
			p.n++
		}
	}
	return p
}

// ---- bounded containers ----

// Pins is a bounded, ordered set of motor pins (one per active motor).
type Pins struct {
	n    int
	tags [MaxMotors]IOTag
}

// PinsOf builds a Pins value, failing when more than MaxMotors tags are given.
func PinsOf(tags ...IOTag) (Pins, error) {
	var p Pins
	if len(tags) > MaxMotors {
		return p, &errcode.E{C: errcode.ExceedsMotorLimit, Op: "pins", Msg: fmt.Sprintf("%d pins, max %d", len(tags), MaxMotors)}
	}
	p.n = copy(p.tags[:], tags)
	return p, nil
}

func (p Pins) Len() int       { return p.n }
func (p Pins) At(i int) IOTag { return p.tags[i] }
func (p Pins) Slice() []IOTag { return p.tags[:p.n:p.n] }

// Remap is the user output-reordering sequence: entry i is the physical
// output driven by logical motor i. An empty Remap means identity.
type Remap struct {
	n   int
	idx [MaxMotors]uint8
}

// RemapOf builds a Remap, failing when more than MaxMotors entries are given.
func RemapOf(idx ...uint8) (Remap, error) {
	var r Remap
	if len(idx) > MaxMotors {
		return r, &errcode.E{C: errcode.ExceedsMotorLimit, Op: "remap", Msg: fmt.Sprintf("%d entries, max %d", len(idx), MaxMotors)}
	}
	r.n = copy(r.idx[:], idx)
	return r, nil
}

// IdentityRemap returns [0, 1, ..., n-1].
func IdentityRemap(n int) Remap {
	var r Remap
	r.n = min(max(n, 0), MaxMotors)
	for i := range r.n {
		r.idx[i] = uint8(i)
	}
	return r
}

// RemapInvalid stands in for a decoded remap entry outside 0..255. It is never
// a valid output index.
const RemapInvalid uint8 = 0xff

// remapFrom keeps the full length of a decoded remap so validation sees every
// surplus slot; only the first MaxMotors entries are stored.
func remapFrom(vals []int) Remap {
	r := Remap{n: len(vals)}
	for i, v := range vals[:min(len(vals), MaxMotors)] {
		if v < 0 || v > 0xff {
			v = int(RemapInvalid)
		}
		r.idx[i] = uint8(v)
	}
	return r
}

// Len is the number of entries given, which may exceed MaxMotors for a
// decoded remap.
func (r Remap) Len() int       { return r.n }
func (r Remap) At(i int) uint8 { return r.idx[i] }
func (r Remap) Slice() []uint8 { n := min(r.n, MaxMotors); return r.idx[:n:n] }
