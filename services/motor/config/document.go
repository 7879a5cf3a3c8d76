package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"motorconf-go/errcode"
)

// Document is the file and bus form of MotorOutputConfig. Lists replace the
// fixed arrays; Build enforces the MaxMotors bound.
type Document struct {
	Protocol         Protocol    `json:"protocol" yaml:"protocol"`
	UpdateRateHz     uint16      `json:"update_rate_hz" yaml:"update_rate_hz"`
	Inverted         bool        `json:"inverted" yaml:"inverted"`
	ContinuousUpdate bool        `json:"continuous_update" yaml:"continuous_update"`
	Burst            bool        `json:"burst" yaml:"burst"`
	Telemetry        Telemetry   `json:"telemetry" yaml:"telemetry"`
	Bitbang          BitbangMode `json:"bitbang" yaml:"bitbang"`
	BitbangTimer     TimerChoice `json:"bitbang_timer" yaml:"bitbang_timer"`
	DMA              DMAMode     `json:"dma" yaml:"dma"`
	Outputs          []DocOutput `json:"outputs" yaml:"outputs"`
	Remap            []int       `json:"remap,omitempty" yaml:"remap,omitempty,flow"`
}

// DocOutput is one output entry; Enabled defaults to true when omitted.
type DocOutput struct {
	Pin     IOTag `json:"pin" yaml:"pin"`
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// NewDocument returns a document carrying the firmware defaults.
func NewDocument() Document {
	return FromConfig(DefaultMotorOutputConfig())
}

// FromConfig renders a raw config as a document. Trailing empty slots are dropped.
func FromConfig(c MotorOutputConfig) Document {
	d := Document{
		Protocol:         c.Protocol,
		UpdateRateHz:     c.UpdateRateHz,
		Inverted:         c.Inverted,
		ContinuousUpdate: c.ContinuousUpdate,
		Burst:            c.Burst,
		Telemetry:        c.Telemetry,
		Bitbang:          c.BitbangMode,
		BitbangTimer:     c.BitbangTimer,
		DMA:              c.DMA,
	}
	for _, v := range c.Remap.Slice() {
		d.Remap = append(d.Remap, int(v))
	}
	last := -1
	for i, o := range c.Outputs {
		if o.Enabled || !o.Pin.IsNone() {
			last = i
		}
	}
	for _, o := range c.Outputs[:last+1] {
		en := o.Enabled
		d.Outputs = append(d.Outputs, DocOutput{Pin: o.Pin, Enabled: &en})
	}
	return d
}

// Build converts the document to the bounded raw form. Remap entries are
// carried through unchecked; Resolve names the first bad slot.
func (d Document) Build() (MotorOutputConfig, error) {
	if len(d.Outputs) > MaxMotors {
		return MotorOutputConfig{}, &errcode.E{
			C: errcode.ExceedsMotorLimit, Op: "outputs",
			Msg: fmt.Sprintf("%d outputs, max %d", len(d.Outputs), MaxMotors),
		}
	}
	c := MotorOutputConfig{
		UpdateRateHz:     d.UpdateRateHz,
		Protocol:         d.Protocol,
		Inverted:         d.Inverted,
		ContinuousUpdate: d.ContinuousUpdate,
		Burst:            d.Burst,
		Telemetry:        d.Telemetry,
		BitbangMode:      d.Bitbang,
		BitbangTimer:     d.BitbangTimer,
		DMA:              d.DMA,
		Remap:            remapFrom(d.Remap),
	}
	for i, o := range d.Outputs {
		c.Outputs[i] = Output{Pin: o.Pin, Enabled: o.Enabled == nil || *o.Enabled}
	}
	return c, nil
}

// ---- decoding ----

// DecodeYAML reads a YAML document; omitted fields keep the firmware defaults.
func DecodeYAML(r io.Reader) (MotorOutputConfig, error) {
	d := NewDocument()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && err != io.EOF {
		return MotorOutputConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "decode yaml", Err: err}
	}
	return d.Build()
}

// DecodeJSON reads a JSON document; omitted fields keep the firmware defaults.
func DecodeJSON(b []byte) (MotorOutputConfig, error) {
	d := NewDocument()
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return MotorOutputConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "decode json", Err: err}
	}
	return d.Build()
}

// Decode accepts the payload shapes seen on the bus: a raw config, a
// document, JSON bytes/strings, or a generic map from a JSON decoder.
func Decode(payload any) (MotorOutputConfig, error) {
	switch v := payload.(type) {
	case MotorOutputConfig:
		return v, nil
	case *MotorOutputConfig:
		if v == nil {
			break
		}
		return *v, nil
	case Document:
		return v.Build()
	case *Document:
		if v == nil {
			break
		}
		return v.Build()
	case []byte:
		return DecodeJSON(v)
	case string:
		return DecodeJSON([]byte(v))
	case nil:
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return MotorOutputConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "decode", Err: err}
		}
		return DecodeJSON(b)
	}
	return MotorOutputConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "decode", Msg: "empty payload"}
}
