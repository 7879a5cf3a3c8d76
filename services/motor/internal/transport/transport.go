// Package transport decides how a protocol reaches the motor pins: hardware
// timer or bit-bang, with or without DMA, and with which timers.
package transport

import (
	"errors"

	"motorconf-go/services/motor/config"
	"motorconf-go/services/motor/internal/protocol"
	"motorconf-go/services/motor/internal/timermap"
	"motorconf-go/services/motor/motorerr"
)

// Request carries the transport-related fields of a raw config.
type Request struct {
	Protocol     config.Protocol
	Pins         config.Pins
	Bitbang      config.BitbangMode
	BitbangTimer config.TimerChoice
	DMA          config.DMAMode
	Burst        bool
	TieBreak     config.TieBreak
}

// Decision is a fully resolved transport. No Auto value survives in it.
type Decision struct {
	Transport    config.Transport
	DMA          bool
	Burst        bool
	BitbangTimer config.TimerID // zero for hardware timer transport
	Mapping      timermap.Mapping
}

// Resolve picks the transport for req. Bit-bang is forced when the protocol
// requires it or the user asks for it; Auto tries timers first and falls back
// to bit-bang on a timer conflict only.
func Resolve(req Request, caps protocol.Capabilities, m *timermap.Mapper) (Decision, error) {
	if caps.RequiresBitbang {
		return bitbang(req, m)
	}
	switch req.Bitbang {
	case config.ModeOn:
		if !caps.SupportsBitbang {
			return Decision{}, motorerr.BitbangUnsupported(req.Protocol)
		}
		return bitbang(req, m)

	case config.ModeAuto:
		d, err := hardware(req, caps, m)
		if err == nil {
			return d, nil
		}
		var ce *motorerr.ConflictError
		if !errors.As(err, &ce) || !caps.SupportsBitbang {
			return Decision{}, err
		}
		if bd, berr := bitbang(req, m); berr == nil {
			return bd, nil
		}
		// Neither fits; the timer conflict is the more useful report.
		return Decision{}, err
	}
	return hardware(req, caps, m)
}

func hardware(req Request, caps protocol.Capabilities, m *timermap.Mapper) (Decision, error) {
	dma := req.DMA
	if !caps.SupportsDMA {
		if dma == config.ModeOn {
			return Decision{}, motorerr.DMAUnsupported(req.Protocol, nil)
		}
		dma = config.ModeOff
	}
	mp, err := m.Assign(timermap.Request{
		Pins:      req.Pins,
		Transport: config.TransportHardwareTimer,
		DMA:       dma,
		Burst:     req.Burst && dma != config.ModeOff,
	})
	if err != nil {
		var ue *motorerr.UnsupportedError
		if errors.As(err, &ue) {
			ue.Protocol = req.Protocol
		}
		return Decision{}, err
	}
	return Decision{
		Transport: config.TransportHardwareTimer,
		DMA:       mp.DMA,
		Burst:     mp.Burst,
		Mapping:   mp,
	}, nil
}

// bitbang never uses DMA; a DMA request is dropped, not rejected.
func bitbang(req Request, m *timermap.Mapper) (Decision, error) {
	mp, err := m.Assign(timermap.Request{
		Pins:      req.Pins,
		Transport: config.TransportBitbang,
		Bitbang:   req.BitbangTimer,
		TieBreak:  req.TieBreak,
	})
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Transport:    config.TransportBitbang,
		BitbangTimer: mp.Bitbang,
		Mapping:      mp,
	}, nil
}
