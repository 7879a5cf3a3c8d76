// Package platform describes what a flight controller's MCU and PCB can do
// for motor outputs: which timer channels and DMA streams each pin can use and
// which timers can pace bit-banged DShot. It carries no user choices.
package platform

import (
	"fmt"
	"strings"

	"motorconf-go/services/motor/config"
	"motorconf-go/x/mathx"
)

// Topology is the read-only platform description queried during resolution.
type Topology interface {
	// MaxMotors is the motor output limit of the target (<= config.MaxMotors).
	MaxMotors() int
	// TimerOptions lists the timer channels a pin can be driven from, preferred first.
	TimerOptions(pin config.IOTag) ([]TimerOption, bool)
	// BurstDMA returns the timer's update-event stream used for burst DShot.
	BurstDMA(t config.TimerID) (config.DMAStream, bool)
	// BitbangTimers lists the timers that can pace bit-banged DShot, in platform order.
	BitbangTimers() []config.TimerID
	// CanBitbang reports whether the pacer timer can drive the pin.
	CanBitbang(t config.TimerID, pin config.IOTag) bool
}

// TimerOption is one timer channel a pin is wired to.
type TimerOption struct {
	Timer   config.TimerID   `yaml:"timer"`
	Channel uint8            `yaml:"channel"`
	DMA     config.DMAStream `yaml:"dma,omitempty"`
}

func (o TimerOption) String() string { return fmt.Sprintf("%s CH%d", o.Timer, o.Channel) }

// Timer is a hardware timer present on the MCU.
type Timer struct {
	ID       config.TimerID   `yaml:"id"`
	BurstDMA config.DMAStream `yaml:"burst_dma,omitempty"`
}

// BitbangTimer is a pacer timer and the GPIO ports it can toggle.
type BitbangTimer struct {
	Timer config.TimerID `yaml:"timer"`
	Ports string         `yaml:"ports"` // e.g. "ABC"
}

// PinDef lists the timer wiring of one pin.
type PinDef struct {
	Pin    config.IOTag  `yaml:"pin"`
	Timers []TimerOption `yaml:"timers"`
}

// Board is a static Topology.
type Board struct {
	Name    string         `yaml:"name"`
	Motors  int            `yaml:"max_motors"`
	Timers  []Timer        `yaml:"timers"`
	Pins    []PinDef       `yaml:"pins"`
	Bitbang []BitbangTimer `yaml:"bitbang"`
}

var _ Topology = (*Board)(nil)

func (b *Board) MaxMotors() int {
	if b.Motors <= 0 || b.Motors > config.MaxMotors {
		return config.MaxMotors
	}
	return b.Motors
}

func (b *Board) TimerOptions(pin config.IOTag) ([]TimerOption, bool) {
	for i := range b.Pins {
		if b.Pins[i].Pin == pin {
			return b.Pins[i].Timers, true
		}
	}
	return nil, false
}

func (b *Board) BurstDMA(t config.TimerID) (config.DMAStream, bool) {
	for _, tm := range b.Timers {
		if tm.ID == t {
			return tm.BurstDMA, !tm.BurstDMA.IsZero()
		}
	}
	return config.DMAStream{}, false
}

func (b *Board) BitbangTimers() []config.TimerID {
	out := make([]config.TimerID, 0, len(b.Bitbang))
	for _, bb := range b.Bitbang {
		out = append(out, bb.Timer)
	}
	return out
}

func (b *Board) CanBitbang(t config.TimerID, pin config.IOTag) bool {
	if _, ok := b.TimerOptions(pin); !ok {
		return false
	}
	for _, bb := range b.Bitbang {
		if bb.Timer == t {
			return strings.IndexByte(strings.ToUpper(bb.Ports), pin.Port()) >= 0
		}
	}
	return false
}

// Validate checks internal consistency: unique pins, known timers, sane ports.
func (b *Board) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("board: missing name")
	}
	timers := make(map[config.TimerID]bool, len(b.Timers))
	for _, t := range b.Timers {
		if t.ID == 0 {
			return fmt.Errorf("board %s: timer with id 0", b.Name)
		}
		if timers[t.ID] {
			return fmt.Errorf("board %s: duplicate timer %s", b.Name, t.ID)
		}
		timers[t.ID] = true
	}
	pins := make(map[config.IOTag]bool, len(b.Pins))
	for _, p := range b.Pins {
		if p.Pin.IsNone() {
			return fmt.Errorf("board %s: pin without tag", b.Name)
		}
		if pins[p.Pin] {
			return fmt.Errorf("board %s: duplicate pin %s", b.Name, p.Pin)
		}
		pins[p.Pin] = true
		for _, o := range p.Timers {
			if !timers[o.Timer] {
				return fmt.Errorf("board %s: pin %s uses undeclared %s", b.Name, p.Pin, o.Timer)
			}
			if !mathx.Between(o.Channel, 1, 4) {
				return fmt.Errorf("board %s: pin %s: %s has no channel %d", b.Name, p.Pin, o.Timer, o.Channel)
			}
		}
	}
	for _, bb := range b.Bitbang {
		if !timers[bb.Timer] {
			return fmt.Errorf("board %s: bitbang uses undeclared %s", b.Name, bb.Timer)
		}
		for _, c := range strings.ToUpper(bb.Ports) {
			if c < 'A' || c > 'O' {
				return fmt.Errorf("board %s: bitbang %s: bad port %q", b.Name, bb.Timer, c)
			}
		}
	}
	return nil
}
