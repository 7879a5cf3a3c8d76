package types

import "motorconf-go/errcode"

// ---- Motor output (retained) ----

type MotorState string

const (
	MotorOK       MotorState = "ok"
	MotorRejected MotorState = "rejected"
)

// MotorStatus reports the outcome of the latest motor configuration load.
// A rejected load leaves the previously resolved descriptor in force.
type MotorStatus struct {
	State       MotorState   `json:"state"`
	Code        errcode.Code `json:"code,omitempty"`
	Error       string       `json:"error,omitempty"`
	Adjustments []string     `json:"adjustments,omitempty"` // "field: from -> to"
	Generation  uint32       `json:"generation"`            // count of applied descriptors
	TS          int64        `json:"ts_ms"`
}
