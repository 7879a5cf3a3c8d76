// Package protocol holds the static capability record of every motor protocol.
package protocol

import (
	"fmt"

	"motorconf-go/services/motor/config"
)

// Capabilities is what a protocol allows, independent of the board.
type Capabilities struct {
	Category          config.Category
	MinRateHz         uint16
	MaxRateHz         uint16
	SupportsBitbang   bool
	RequiresBitbang   bool
	SupportsDMA       bool
	SupportsTelemetry bool
	SupportsEDT       bool
}

// Table maps every protocol to its capabilities. Lookup is total for valid protocols.
type Table [config.NumProtocols]Capabilities

func dshot(maxRate uint16) Capabilities {
	return Capabilities{
		Category:          config.CategoryDigital,
		MinRateHz:         50,
		MaxRateHz:         maxRate,
		SupportsBitbang:   true,
		SupportsDMA:       true,
		SupportsTelemetry: true,
		SupportsEDT:       true,
	}
}

// Default is the stock capability table.
var Default = Table{
	config.ProtocolPWM:        {Category: config.CategoryAnalog, MinRateHz: 50, MaxRateHz: 498},
	config.ProtocolOneshot125: {Category: config.CategoryAnalog, MinRateHz: 50, MaxRateHz: 3900},
	config.ProtocolOneshot42:  {Category: config.CategoryAnalog, MinRateHz: 50, MaxRateHz: 11700},
	config.ProtocolMultishot:  {Category: config.CategoryAnalog, MinRateHz: 50, MaxRateHz: 32000},
	config.ProtocolBrushed:    {Category: config.CategoryBrushed, MinRateHz: 500, MaxRateHz: 32000},
	config.ProtocolDshot150:   dshot(4000),
	config.ProtocolDshot300:   dshot(8000),
	config.ProtocolDshot600:   dshot(16000),
	config.ProtocolProshot1000: {
		Category:    config.CategoryDigital,
		MinRateHz:   50,
		MaxRateHz:   32000,
		SupportsDMA: true,
	},
}

// Lookup returns the capability record of p. Invalid protocols get the zero
// record, which supports nothing.
func (t *Table) Lookup(p config.Protocol) Capabilities {
	if !p.Valid() {
		return Capabilities{}
	}
	return t[p]
}

// Validate checks every record once at initialisation.
func (t *Table) Validate() error {
	for _, p := range config.Protocols() {
		c := t[p]
		switch {
		case c.MaxRateHz == 0 || c.MinRateHz > c.MaxRateHz:
			return fmt.Errorf("protocol %s: rate bounds [%d,%d]", p, c.MinRateHz, c.MaxRateHz)
		case c.Category != p.Category():
			return fmt.Errorf("protocol %s: category %s, want %s", p, c.Category, p.Category())
		case c.RequiresBitbang && !c.SupportsBitbang:
			return fmt.Errorf("protocol %s: requires bitbang it does not support", p)
		case c.SupportsEDT && !c.SupportsTelemetry:
			return fmt.Errorf("protocol %s: EDT without telemetry", p)
		case c.SupportsBitbang && c.Category != config.CategoryDigital:
			return fmt.Errorf("protocol %s: only digital protocols can be bit-banged", p)
		}
	}
	return nil
}

func init() {
	if err := Default.Validate(); err != nil {
		panic(err)
	}
}
