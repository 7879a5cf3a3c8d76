package config

import "encoding/json"

// ResolvedMotor is the final assignment for one logical motor.
type ResolvedMotor struct {
	Output  uint8     `json:"output"`  // physical output index
	Pin     IOTag     `json:"pin"`     // pin of that output
	Timer   TimerID   `json:"timer"`   // driving timer (pacer timer under bit-bang)
	Channel uint8     `json:"channel"` // timer channel; 0 under bit-bang
	DMA     DMAStream `json:"dma"`     // zero when DMA is off
}

// ResolvedMotorConfig is the fully decided operating descriptor handed to the
// output driver. It holds only fixed-size fields so that equal resolutions
// compare equal with ==.
type ResolvedMotorConfig struct {
	Protocol         Protocol                 `json:"protocol"`
	Transport        Transport                `json:"transport"`
	DMA              bool                     `json:"dma"`
	Burst            bool                     `json:"burst"`
	BitbangTimer     TimerID                  `json:"bitbang_timer"`
	Count            int                      `json:"count"`
	Motors           [MaxMotors]ResolvedMotor `json:"-"`
	UpdateRateHz     uint16                   `json:"update_rate_hz"`
	Inverted         bool                     `json:"inverted"`
	ContinuousUpdate bool                     `json:"continuous_update"`
	Telemetry        bool                     `json:"telemetry"`
	EDT              EDTMode                  `json:"edt"`
}

// Active returns the assignments of the active motors in logical order.
func (r *ResolvedMotorConfig) Active() []ResolvedMotor {
	return r.Motors[:r.Count:r.Count]
}

// MarshalJSON emits only the active motors.
func (r ResolvedMotorConfig) MarshalJSON() ([]byte, error) {
	type plain ResolvedMotorConfig
	return json.Marshal(struct {
		plain
		Motors []ResolvedMotor `json:"motors"`
	}{plain(r), r.Active()})
}
