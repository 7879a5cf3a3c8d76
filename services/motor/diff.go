package motor

import (
	"fmt"

	"motorconf-go/services/motor/config"
)

// Adjustment is one place where resolution changed or decided a raw value.
type Adjustment struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

func (a Adjustment) String() string { return fmt.Sprintf("%s: %s -> %s", a.Field, a.From, a.To) }

// Diff lists the decisions and downgrades between raw and its resolution.
func Diff(raw config.MotorOutputConfig, res config.ResolvedMotorConfig) []Adjustment {
	var out []Adjustment
	add := func(field string, from, to any) {
		out = append(out, Adjustment{field, fmt.Sprint(from), fmt.Sprint(to)})
	}

	if raw.UpdateRateHz != res.UpdateRateHz {
		add("update_rate_hz", raw.UpdateRateHz, res.UpdateRateHz)
	}
	if raw.BitbangMode == config.ModeAuto {
		add("bitbang", raw.BitbangMode, res.Transport)
	}
	if res.Transport == config.TransportBitbang && raw.BitbangTimer.IsAuto() {
		add("bitbang_timer", raw.BitbangTimer, res.BitbangTimer)
	}
	if dma := onOff(res.DMA); raw.DMA.String() != dma {
		add("dma", raw.DMA, dma)
	}
	if raw.Burst && !res.Burst {
		add("burst", onOff(true), onOff(false))
	}
	if raw.Telemetry.Enabled != res.Telemetry {
		add("telemetry", onOff(raw.Telemetry.Enabled), onOff(res.Telemetry))
	}
	if raw.Telemetry.EDT != res.EDT {
		add("edt", raw.Telemetry.EDT, res.EDT)
	}
	return out
}

func onOff(b bool) string {
	if b {
		return config.ModeOn.String()
	}
	return config.ModeOff.String()
}
