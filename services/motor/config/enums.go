package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ---- Protocol ----

// Protocol is the motor signalling protocol selected by the user.
type Protocol uint8

const (
	ProtocolPWM Protocol = iota
	ProtocolOneshot125
	ProtocolOneshot42
	ProtocolMultishot
	ProtocolBrushed
	ProtocolDshot150
	ProtocolDshot300
	ProtocolDshot600
	ProtocolProshot1000

	protocolCount
)

var protocolNames = [...]string{
	ProtocolPWM:         "PWM",
	ProtocolOneshot125:  "ONESHOT125",
	ProtocolOneshot42:   "ONESHOT42",
	ProtocolMultishot:   "MULTISHOT",
	ProtocolBrushed:     "BRUSHED",
	ProtocolDshot150:    "DSHOT150",
	ProtocolDshot300:    "DSHOT300",
	ProtocolDshot600:    "DSHOT600",
	ProtocolProshot1000: "PROSHOT1000",
}

// NumProtocols is the size of the Protocol enumeration.
const NumProtocols = int(protocolCount)

// Protocols lists every protocol in declaration order.
func Protocols() []Protocol {
	out := make([]Protocol, 0, protocolCount)
	for p := Protocol(0); p < protocolCount; p++ {
		out = append(out, p)
	}
	return out
}

func (p Protocol) Valid() bool { return p < protocolCount }

func (p Protocol) String() string { return enumName(protocolNames[:], uint8(p), "Protocol") }

func (p Protocol) MarshalText() ([]byte, error) {
	return enumMarshal(protocolNames[:], uint8(p), "protocol")
}

func (p *Protocol) UnmarshalText(b []byte) error {
	v, err := enumParse(protocolNames[:], string(b), "protocol")
	if err != nil {
		return err
	}
	*p = Protocol(v)
	return nil
}

// Category groups protocols by how they are generated on the wire.
type Category uint8

const (
	CategoryAnalog  Category = iota // PWM, Oneshot, Multishot
	CategoryBrushed                 // duty-cycle brushed
	CategoryDigital                 // DShot family, Proshot
)

func (c Category) String() string {
	switch c {
	case CategoryAnalog:
		return "analog"
	case CategoryBrushed:
		return "brushed"
	case CategoryDigital:
		return "digital"
	}
	return "Category(" + strconv.Itoa(int(c)) + ")"
}

// Category reports the protocol family.
func (p Protocol) Category() Category {
	switch p {
	case ProtocolBrushed:
		return CategoryBrushed
	case ProtocolDshot150, ProtocolDshot300, ProtocolDshot600, ProtocolProshot1000:
		return CategoryDigital
	}
	return CategoryAnalog
}

// IsDshot reports membership of the DShot family proper (Proshot excluded).
func (p Protocol) IsDshot() bool {
	return p == ProtocolDshot150 || p == ProtocolDshot300 || p == ProtocolDshot600
}

// ---- Transport ----

// Transport is how the waveform reaches the pin. It is derived, never user-set.
type Transport uint8

const (
	TransportHardwareTimer Transport = iota
	TransportBitbang
)

var transportNames = [...]string{
	TransportHardwareTimer: "TIMER",
	TransportBitbang:       "BITBANG",
}

func (t Transport) String() string { return enumName(transportNames[:], uint8(t), "Transport") }

func (t Transport) MarshalText() ([]byte, error) {
	return enumMarshal(transportNames[:], uint8(t), "transport")
}

func (t *Transport) UnmarshalText(b []byte) error {
	v, err := enumParse(transportNames[:], string(b), "transport")
	if err != nil {
		return err
	}
	*t = Transport(v)
	return nil
}

// ---- Tri-state modes ----

// Mode is the OFF/ON/AUTO tri-state used by user-facing switches.
type Mode uint8

const (
	ModeOff Mode = iota
	ModeOn
	ModeAuto
)

var modeNames = [...]string{ModeOff: "OFF", ModeOn: "ON", ModeAuto: "AUTO"}

func (m Mode) Valid() bool { return int(m) < len(modeNames) }

func (m Mode) String() string { return enumName(modeNames[:], uint8(m), "Mode") }

func (m Mode) MarshalText() ([]byte, error) { return enumMarshal(modeNames[:], uint8(m), "mode") }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := enumParse(modeNames[:], string(b), "mode")
	if err != nil {
		return err
	}
	*m = Mode(v)
	return nil
}

// BitbangMode selects DShot bit-banging (dshot_bitbang).
type BitbangMode = Mode

// DMAMode selects DMA for timer-driven DShot (dshot_dmar).
type DMAMode = Mode

// ---- Extended DShot telemetry ----

type EDTMode uint8

const (
	EDTOff EDTMode = iota
	EDTOn
	EDTForced // ignore the ESC's capability report
)

var edtNames = [...]string{EDTOff: "OFF", EDTOn: "ON", EDTForced: "FORCE"}

func (e EDTMode) Valid() bool { return int(e) < len(edtNames) }

func (e EDTMode) String() string { return enumName(edtNames[:], uint8(e), "EDTMode") }

func (e EDTMode) MarshalText() ([]byte, error) { return enumMarshal(edtNames[:], uint8(e), "edt") }

func (e *EDTMode) UnmarshalText(b []byte) error {
	v, err := enumParse(edtNames[:], string(b), "edt")
	if err != nil {
		return err
	}
	*e = EDTMode(v)
	return nil
}

// ---- Timers ----

// TimerID names a hardware timer by number (TIM1 = 1). Zero means none.
type TimerID uint8

func (t TimerID) String() string {
	if t == 0 {
		return "NONE"
	}
	return "TIM" + strconv.Itoa(int(t))
}

func (t TimerID) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimerID) UnmarshalText(b []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	if s == "NONE" || s == "" {
		*t = 0
		return nil
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "TIM"), 10, 8)
	if err != nil || n == 0 {
		return fmt.Errorf("invalid timer %q", string(b))
	}
	*t = TimerID(n)
	return nil
}

// TimerChoice is the user's bit-bang timer selection: Auto or a specific timer.
type TimerChoice uint8

// TimerAuto defers the bit-bang timer choice to the resolver.
const TimerAuto TimerChoice = 0

// SpecificTimer pins the bit-bang pacer to one timer.
func SpecificTimer(id TimerID) TimerChoice { return TimerChoice(id) }

func (c TimerChoice) IsAuto() bool { return c == TimerAuto }

// Timer returns the pinned timer, or 0 for Auto.
func (c TimerChoice) Timer() TimerID { return TimerID(c) }

func (c TimerChoice) String() string {
	if c.IsAuto() {
		return "AUTO"
	}
	return c.Timer().String()
}

func (c TimerChoice) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *TimerChoice) UnmarshalText(b []byte) error {
	if strings.EqualFold(strings.TrimSpace(string(b)), "AUTO") {
		*c = TimerAuto
		return nil
	}
	var id TimerID
	if err := id.UnmarshalText(b); err != nil {
		return err
	}
	*c = SpecificTimer(id)
	return nil
}

// ---- helpers ----

func enumName(names []string, v uint8, typ string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return typ + "(" + strconv.Itoa(int(v)) + ")"
}

func enumMarshal(names []string, v uint8, what string) ([]byte, error) {
	if int(v) >= len(names) {
		return nil, fmt.Errorf("invalid %s %d", what, v)
	}
	return []byte(names[v]), nil
}

func enumParse(names []string, s, what string) (uint8, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}

// ---- Bit-bang timer tie-break ----

// TieBreak orders feasible bit-bang pacer timers when the choice is Auto.
type TieBreak uint8

const (
	PreferShared TieBreak = iota // most active pins already wired to the timer
	PreferFree                   // fewest active pins wired to the timer
	PreferFirst                  // platform order
)

var tieBreakNames = [...]string{PreferShared: "shared", PreferFree: "free", PreferFirst: "first"}

func (t TieBreak) Valid() bool { return int(t) < len(tieBreakNames) }

func (t TieBreak) String() string { return enumName(tieBreakNames[:], uint8(t), "TieBreak") }

func (t TieBreak) MarshalText() ([]byte, error) {
	return enumMarshal(tieBreakNames[:], uint8(t), "tie-break")
}

func (t *TieBreak) UnmarshalText(b []byte) error {
	v, err := enumParse(upper(tieBreakNames[:]), string(b), "tie-break")
	if err != nil {
		return err
	}
	*t = TieBreak(v)
	return nil
}

func upper(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToUpper(n)
	}
	return out
}
