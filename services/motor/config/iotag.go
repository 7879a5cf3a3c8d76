package config

import (
	"fmt"
	"strconv"
	"strings"
)

// IOTag is an opaque pin identifier packed as (port+1)<<4 | pin.
// Port A is 0; the zero tag means "no pin".
type IOTag uint8

const IOTagNone IOTag = 0

// Tag builds an IOTag from a port letter ('A'..'O') and pin number (0..15).
func Tag(port byte, pin uint8) IOTag {
	return IOTag((port-'A'+1)<<4 | pin&0x0f)
}

func (t IOTag) IsNone() bool { return t == IOTagNone }

// Port returns the GPIO port letter, or 0 for none.
func (t IOTag) Port() byte {
	if t.IsNone() {
		return 0
	}
	return 'A' + byte(t>>4) - 1
}

// Pin returns the pin number within its port.
func (t IOTag) Pin() uint8 { return uint8(t) & 0x0f }

// String renders the firmware form, e.g. "A08".
func (t IOTag) String() string {
	if t.IsNone() {
		return "NONE"
	}
	return fmt.Sprintf("%c%02d", t.Port(), t.Pin())
}

func (t IOTag) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText accepts "A08", "PA8", "pa08" and "NONE".
func (t *IOTag) UnmarshalText(b []byte) error {
	v, err := ParseIOTag(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseIOTag parses the textual pin forms accepted in configuration files.
func ParseIOTag(s string) (IOTag, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "NONE" {
		return IOTagNone, nil
	}
	if len(s) > 2 && s[0] == 'P' && s[1] >= 'A' && s[1] <= 'O' {
		s = s[1:]
	}
	if len(s) < 2 || s[0] < 'A' || s[0] > 'O' {
		return IOTagNone, fmt.Errorf("invalid pin %q", s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil || n > 15 {
		return IOTagNone, fmt.Errorf("invalid pin %q", s)
	}
	return Tag(s[0], uint8(n)), nil
}
