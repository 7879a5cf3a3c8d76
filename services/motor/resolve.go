// Package motor turns a raw motor output configuration into the fully decided
// descriptor the output driver runs from.
package motor

import (
	"motorconf-go/services/motor/config"
	"motorconf-go/services/motor/internal/protocol"
	"motorconf-go/services/motor/internal/remap"
	"motorconf-go/services/motor/internal/timermap"
	"motorconf-go/services/motor/internal/transport"
	"motorconf-go/services/motor/motorerr"
	"motorconf-go/services/motor/platform"
	"motorconf-go/x/mathx"
)

// Capabilities is the per-protocol capability record.
type Capabilities = protocol.Capabilities

// ProtocolTable is a complete set of capability records.
type ProtocolTable = protocol.Table

// DefaultTable returns a copy of the stock capability table.
func DefaultTable() ProtocolTable { return protocol.Default }

// ---- options ----

type options struct {
	table    *protocol.Table
	tieBreak config.TieBreak
}

type Option func(*options)

// WithTable replaces the stock capability table, e.g. for a target that can
// only bit-bang.
func WithTable(t ProtocolTable) Option {
	return func(o *options) { o.table = &t }
}

// WithTieBreak sets the bit-bang pacer preference used when the timer is Auto.
func WithTieBreak(tb config.TieBreak) Option {
	return func(o *options) { o.tieBreak = tb }
}

func newOptions(opts []Option) options {
	o := options{table: &protocol.Default, tieBreak: config.PreferShared}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// ---- resolution ----

// Resolve derives the operating descriptor for cfg on topo. It is a pure
// function of its inputs: the same config and topology always give an equal
// descriptor. On error the zero descriptor is returned.
func Resolve(cfg config.MotorOutputConfig, topo platform.Topology, opts ...Option) (config.ResolvedMotorConfig, error) {
	o := newOptions(opts)
	if err := checkParams(&cfg, o); err != nil {
		return config.ResolvedMotorConfig{}, err
	}

	pins := cfg.ActivePins()
	if n, limit := pins.Len(), topo.MaxMotors(); n > limit {
		return config.ResolvedMotorConfig{}, motorerr.ExceedsMotorLimit(n, limit)
	}

	caps := o.table.Lookup(cfg.Protocol)
	d, err := transport.Resolve(transport.Request{
		Protocol:     cfg.Protocol,
		Pins:         pins,
		Bitbang:      cfg.BitbangMode,
		BitbangTimer: cfg.BitbangTimer,
		DMA:          cfg.DMA,
		Burst:        cfg.Burst,
		TieBreak:     o.tieBreak,
	}, caps, timermap.New(topo))
	if err != nil {
		return config.ResolvedMotorConfig{}, err
	}

	perm, err := remap.Apply(cfg.Remap, pins.Len())
	if err != nil {
		return config.ResolvedMotorConfig{}, err
	}

	out := config.ResolvedMotorConfig{
		Protocol:         cfg.Protocol,
		Transport:        d.Transport,
		DMA:              d.DMA,
		Burst:            d.Burst,
		BitbangTimer:     d.BitbangTimer,
		Count:            pins.Len(),
		Inverted:         cfg.Inverted,
		ContinuousUpdate: cfg.ContinuousUpdate,
	}
	for i := range perm.Len() {
		a := d.Mapping.Assign[perm.At(i)]
		out.Motors[i] = config.ResolvedMotor{
			Output:  uint8(perm.At(i)),
			Pin:     a.Pin,
			Timer:   a.Timer,
			Channel: a.Channel,
			DMA:     a.DMA,
		}
	}
	out.Telemetry, out.EDT = telemetry(cfg.Telemetry, caps, d)
	out.UpdateRateHz = mathx.Clamp(cfg.UpdateRateHz, caps.MinRateHz, caps.MaxRateHz)
	return out, nil
}

func checkParams(cfg *config.MotorOutputConfig, o options) error {
	switch {
	case !cfg.Protocol.Valid():
		return motorerr.InvalidParam("protocol", uint8(cfg.Protocol))
	case !cfg.BitbangMode.Valid():
		return motorerr.InvalidParam("bitbang", uint8(cfg.BitbangMode))
	case !cfg.DMA.Valid():
		return motorerr.InvalidParam("dma", uint8(cfg.DMA))
	case !cfg.Telemetry.EDT.Valid():
		return motorerr.InvalidParam("edt", uint8(cfg.Telemetry.EDT))
	case !o.tieBreak.Valid():
		return motorerr.InvalidParam("tie_break", uint8(o.tieBreak))
	}
	return nil
}

// telemetry keeps the request only where the protocol and transport can carry
// it. Timer-driven telemetry reads back through DMA input capture.
func telemetry(req config.Telemetry, caps Capabilities, d transport.Decision) (bool, config.EDTMode) {
	on := req.Enabled && caps.SupportsTelemetry &&
		(d.Transport == config.TransportBitbang || d.DMA)
	if !on || !caps.SupportsEDT {
		return on, config.EDTOff
	}
	return on, req.EDT
}
