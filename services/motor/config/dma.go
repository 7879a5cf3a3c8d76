package config

import (
	"fmt"
	"strings"
)

// DMAStream identifies one DMA controller stream; the zero value means none.
type DMAStream struct {
	Controller uint8 // 1-based
	Stream     uint8
}

// Stream builds a DMAStream for DMA<controller> stream <stream>.
func Stream(controller, stream uint8) DMAStream {
	return DMAStream{Controller: controller, Stream: stream}
}

func (d DMAStream) IsZero() bool { return d.Controller == 0 }

func (d DMAStream) String() string {
	if d.IsZero() {
		return "NONE"
	}
	return fmt.Sprintf("DMA%d_ST%d", d.Controller, d.Stream)
}

func (d DMAStream) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText accepts "DMA2_ST6", "dma1_st0" and "NONE".
func (d *DMAStream) UnmarshalText(b []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	if s == "" || s == "NONE" {
		*d = DMAStream{}
		return nil
	}
	var c, st uint8
	if _, err := fmt.Sscanf(s, "DMA%d_ST%d", &c, &st); err != nil || c == 0 {
		return fmt.Errorf("invalid dma stream %q", string(b))
	}
	*d = Stream(c, st)
	return nil
}
