// Package timermap assigns each active motor pin the timer channel and DMA
// stream it will use, and reports the contention that leaves no valid
// assignment.
package timermap

import (
	"slices"

	"motorconf-go/services/motor/config"
	"motorconf-go/services/motor/motorerr"
	"motorconf-go/services/motor/platform"
)

// Request is one assignment problem.
type Request struct {
	Pins      config.Pins
	Transport config.Transport
	DMA       config.DMAMode
	Burst     bool
	Bitbang   config.TimerChoice
	TieBreak  config.TieBreak
}

// Assignment is the resource set of one motor pin.
type Assignment struct {
	Pin     config.IOTag
	Timer   config.TimerID
	Channel uint8            // 0 under bit-bang
	DMA     config.DMAStream // zero without DMA
}

// Mapping is the result for all active pins, in pin order.
type Mapping struct {
	Count   int
	Assign  [config.MaxMotors]Assignment
	DMA     bool           // every assignment carries a stream
	Burst   bool           // streams are per-timer update streams
	Bitbang config.TimerID // pacer timer; zero for hardware transport
}

func (m *Mapping) Active() []Assignment { return m.Assign[:m.Count:m.Count] }

// Mapper resolves requests against one platform topology. It holds no state
// between calls.
type Mapper struct {
	topo platform.Topology
}

func New(topo platform.Topology) *Mapper { return &Mapper{topo: topo} }

// Assign maps every pin of req, or explains why no mapping exists.
func (m *Mapper) Assign(req Request) (Mapping, error) {
	if err := m.checkPins(req.Pins); err != nil {
		return Mapping{}, err
	}
	if req.Transport == config.TransportBitbang {
		return m.bitbang(req)
	}
	return m.hardware(req)
}

func motor(pins config.Pins, i int) motorerr.Motor {
	return motorerr.Motor{Index: i, Pin: pins.At(i)}
}

func (m *Mapper) checkPins(pins config.Pins) error {
	seen := make(map[config.IOTag]int, pins.Len())
	for i := range pins.Len() {
		p := pins.At(i)
		if p.IsNone() {
			return motorerr.UnknownPin(motor(pins, i))
		}
		if _, ok := m.topo.TimerOptions(p); !ok {
			return motorerr.UnknownPin(motor(pins, i))
		}
		if j, dup := seen[p]; dup {
			return motorerr.Conflict(motor(pins, j), motor(pins, i), "pin "+p.String())
		}
		seen[p] = i
	}
	return nil
}

// ---- hardware timers ----

type slot struct {
	timer   config.TimerID
	channel uint8
}

// hardware tries the DMA variants the request allows, richest first, and
// returns the error of the last one when none fits.
func (m *Mapper) hardware(req Request) (Mapping, error) {
	type attempt struct{ dma, burst bool }
	var plan []attempt
	if req.DMA != config.ModeOff {
		if req.Burst {
			plan = append(plan, attempt{true, true})
		}
		plan = append(plan, attempt{true, false})
	}
	if req.DMA != config.ModeOn {
		plan = append(plan, attempt{false, false})
	}

	var err error
	for _, a := range plan {
		var mp Mapping
		if mp, err = m.timers(req.Pins, a.dma, a.burst); err == nil {
			return mp, nil
		}
	}
	return Mapping{}, err
}

// timers searches for an assignment giving every pin its own timer channel. A
// DMA stream is exclusive per channel, or per timer in burst mode. Options are
// tried in platform order with backtracking, so a pin keeps its preferred
// channel unless a later pin needs it. When no assignment exists the error
// names the contention met at the deepest pin the search could not place.
func (m *Mapper) timers(pins config.Pins, withDMA, burst bool) (Mapping, error) {
	s := search{
		pins:     pins,
		burst:    burst,
		chOwner:  make(map[slot]int, pins.Len()),
		dmaOwner: make(map[config.DMAStream]streamUse, pins.Len()),
		deepest:  -1,
	}
	for i := range pins.Len() {
		opts, _ := m.topo.TimerOptions(pins.At(i))
		for _, o := range opts {
			c := candidate{opt: o}
			if withDMA {
				if c.dma = m.stream(o, burst); c.dma.IsZero() {
					continue
				}
			}
			s.cands[i] = append(s.cands[i], c)
		}
		if len(s.cands[i]) == 0 {
			if withDMA && len(opts) > 0 {
				mi := motor(pins, i)
				return Mapping{}, motorerr.DMAUnsupported(0, &mi)
			}
			return Mapping{}, motorerr.NoTimerChannel(motor(pins, i))
		}
	}
	if !s.place(0) {
		return Mapping{}, s.blocked
	}

	mp := Mapping{Count: pins.Len(), DMA: withDMA && pins.Len() > 0, Burst: withDMA && burst && pins.Len() > 0}
	for i := range pins.Len() {
		c := s.chosen[i]
		mp.Assign[i] = Assignment{Pin: pins.At(i), Timer: c.opt.Timer, Channel: c.opt.Channel, DMA: c.dma}
	}
	return mp, nil
}

type candidate struct {
	opt platform.TimerOption
	dma config.DMAStream // zero without DMA
}

// streamUse records who holds a DMA stream; burst streams are shared by the
// pins of one timer.
type streamUse struct {
	pin   int
	timer config.TimerID
	users int
}

type search struct {
	pins     config.Pins
	burst    bool
	cands    [config.MaxMotors][]candidate
	chosen   [config.MaxMotors]candidate
	chOwner  map[slot]int
	dmaOwner map[config.DMAStream]streamUse

	deepest int
	blocked error
}

func (s *search) place(i int) bool {
	if i == s.pins.Len() {
		return true
	}
	for _, c := range s.cands[i] {
		if err := s.take(i, c); err != nil {
			if i > s.deepest {
				s.deepest, s.blocked = i, err
			}
			continue
		}
		if s.place(i + 1) {
			return true
		}
		s.release(c)
	}
	return false
}

func (s *search) take(i int, c candidate) error {
	k := slot{c.opt.Timer, c.opt.Channel}
	if j, taken := s.chOwner[k]; taken {
		return motorerr.Conflict(motor(s.pins, j), motor(s.pins, i), c.opt.String())
	}
	if !c.dma.IsZero() {
		u, taken := s.dmaOwner[c.dma]
		if taken && !(s.burst && u.timer == c.opt.Timer) {
			return motorerr.Conflict(motor(s.pins, u.pin), motor(s.pins, i), c.dma.String())
		}
		if !taken {
			u = streamUse{pin: i, timer: c.opt.Timer}
		}
		u.users++
		s.dmaOwner[c.dma] = u
	}
	s.chOwner[k] = i
	s.chosen[i] = c
	return nil
}

func (s *search) release(c candidate) {
	delete(s.chOwner, slot{c.opt.Timer, c.opt.Channel})
	if c.dma.IsZero() {
		return
	}
	u := s.dmaOwner[c.dma]
	if u.users--; u.users == 0 {
		delete(s.dmaOwner, c.dma)
		return
	}
	s.dmaOwner[c.dma] = u
}

func (m *Mapper) stream(o platform.TimerOption, burst bool) config.DMAStream {
	if !burst {
		return o.DMA
	}
	s, _ := m.topo.BurstDMA(o.Timer)
	return s
}

// ---- bit-bang ----

func (m *Mapper) bitbang(req Request) (Mapping, error) {
	pins := req.Pins
	var pacer config.TimerID
	if req.Bitbang.IsAuto() {
		var err error
		if pacer, err = m.pickPacer(req); err != nil {
			return Mapping{}, err
		}
	} else {
		pacer = req.Bitbang.Timer()
		if !slices.Contains(m.topo.BitbangTimers(), pacer) {
			return Mapping{}, motorerr.TimerForPin(motor(pins, 0), pacer)
		}
		if i := m.firstUndriven(pacer, pins); i >= 0 {
			return Mapping{}, motorerr.TimerForPin(motor(pins, i), pacer)
		}
	}

	mp := Mapping{Count: pins.Len(), Bitbang: pacer}
	for i := range pins.Len() {
		mp.Assign[i] = Assignment{Pin: pins.At(i), Timer: pacer}
	}
	return mp, nil
}

// firstUndriven returns the first pin the pacer cannot drive, or -1.
func (m *Mapper) firstUndriven(pacer config.TimerID, pins config.Pins) int {
	for i := range pins.Len() {
		if !m.topo.CanBitbang(pacer, pins.At(i)) {
			return i
		}
	}
	return -1
}

// pickPacer chooses among the pacer timers able to drive every pin, ordered
// by the tie-break; equal scores keep platform order.
func (m *Mapper) pickPacer(req Request) (config.TimerID, error) {
	var (
		best      config.TimerID
		bestScore int
		found     bool
		firstBad  = -1
	)
	for _, id := range m.topo.BitbangTimers() {
		if i := m.firstUndriven(id, req.Pins); i >= 0 {
			if firstBad < 0 {
				firstBad = i
			}
			continue
		}
		score := 0
		switch req.TieBreak {
		case config.PreferShared:
			score = m.wiredTo(id, req.Pins)
		case config.PreferFree:
			score = -m.wiredTo(id, req.Pins)
		}
		if !found || score > bestScore {
			best, bestScore, found = id, score, true
		}
	}
	if !found {
		return 0, motorerr.TimerForPin(motor(req.Pins, max(firstBad, 0)), 0)
	}
	return best, nil
}

// wiredTo counts pins whose timer options include timer id.
func (m *Mapper) wiredTo(id config.TimerID, pins config.Pins) int {
	n := 0
	for i := range pins.Len() {
		opts, _ := m.topo.TimerOptions(pins.At(i))
		for _, o := range opts {
			if o.Timer == id {
				n++
				break
			}
		}
	}
	return n
}
