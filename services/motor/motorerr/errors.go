// Package motorerr holds the motor output resolution error taxonomy.
// Every error carries a stable errcode.Code and matches it with errors.Is.
package motorerr

import (
	"fmt"

	"motorconf-go/errcode"
	"motorconf-go/services/motor/config"
)

// Motor identifies an active motor by its position in the active pin list.
type Motor struct {
	Index int
	Pin   config.IOTag
}

func (m Motor) String() string { return fmt.Sprintf("motor %d (%s)", m.Index, m.Pin) }

type coded struct{ c errcode.Code }

func (e coded) Code() errcode.Code { return e.c }

func (e coded) Is(target error) bool {
	c, ok := target.(errcode.Code)
	return ok && c == e.c
}

// ConflictError reports two motors contending for one exclusive resource.
type ConflictError struct {
	coded
	First, Second Motor
	Resource      string // e.g. "TIM3 CH4", "DMA1_ST1", "pin B00"
}

func Conflict(first, second Motor, resource string) *ConflictError {
	return &ConflictError{coded{errcode.TimerConflict}, first, second, resource}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s and %s both need %s", e.c, e.First, e.Second, e.Resource)
}

// TimerPinError reports a timer that cannot drive a motor pin. Timer is zero
// when no candidate could; Hardware marks the timer-channel (not bit-bang) case.
type TimerPinError struct {
	coded
	Motor    Motor
	Timer    config.TimerID
	Hardware bool
}

func TimerForPin(m Motor, timer config.TimerID) *TimerPinError {
	return &TimerPinError{coded{errcode.UnsupportedTimerForPin}, m, timer, false}
}

// NoTimerChannel reports a pin with no timer channel wired to it.
func NoTimerChannel(m Motor) *TimerPinError {
	return &TimerPinError{coded{errcode.UnsupportedTimerForPin}, m, 0, true}
}

func (e *TimerPinError) Error() string {
	if e.Hardware {
		return fmt.Sprintf("%s: no timer channel can drive %s", e.c, e.Motor)
	}
	if e.Timer == 0 {
		return fmt.Sprintf("%s: no bitbang timer can drive %s", e.c, e.Motor)
	}
	return fmt.Sprintf("%s: %s cannot drive %s", e.c, e.Timer, e.Motor)
}

// UnsupportedError reports a requested mode the protocol (or, when Motor is
// set, a pin's wiring) cannot provide.
type UnsupportedError struct {
	coded
	Protocol config.Protocol
	Motor    *Motor
}

func BitbangUnsupported(p config.Protocol) *UnsupportedError {
	return &UnsupportedError{coded: coded{errcode.BitbangUnsupported}, Protocol: p}
}

func DMAUnsupported(p config.Protocol, m *Motor) *UnsupportedError {
	return &UnsupportedError{coded: coded{errcode.DMAUnsupported}, Protocol: p, Motor: m}
}

func (e *UnsupportedError) Error() string {
	if e.Motor != nil {
		return fmt.Sprintf("%s: %s has no DMA-capable timer channel", e.c, *e.Motor)
	}
	return fmt.Sprintf("%s: %s", e.c, e.Protocol)
}

// RemapError names the first slot of an output remap that breaks the permutation.
type RemapError struct {
	coded
	Index int   // offending slot
	Value uint8 // output index found there
	Count int   // active motor count
	Len   int   // remap length
}

func InvalidRemap(index int, value uint8, count int) *RemapError {
	return &RemapError{coded{errcode.InvalidRemap}, index, value, count, count}
}

// RemapLength reports a remap whose length differs from the motor count; the
// first missing or surplus slot is the offending one.
func RemapLength(got, want int) *RemapError {
	return &RemapError{coded{errcode.InvalidRemap}, min(got, want), 0, want, got}
}

func (e *RemapError) Error() string {
	switch {
	case e.Len != e.Count:
		return fmt.Sprintf("%s(%d): %d entries for %d motors", e.c, e.Index, e.Len, e.Count)
	case int(e.Value) >= e.Count:
		return fmt.Sprintf("%s(%d): output %d out of range [0,%d)", e.c, e.Index, e.Value, e.Count)
	}
	return fmt.Sprintf("%s(%d): output %d repeated", e.c, e.Index, e.Value)
}

// LimitError reports more active motors than the hardware supports.
type LimitError struct {
	coded
	Count, Max int
}

func ExceedsMotorLimit(count, max int) *LimitError {
	return &LimitError{coded{errcode.ExceedsMotorLimit}, count, max}
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %d active motors, max %d", e.c, e.Count, e.Max)
}

// PinError reports an active motor whose pin is missing or absent from the platform.
type PinError struct {
	coded
	Motor Motor
}

func UnknownPin(m Motor) *PinError { return &PinError{coded{errcode.UnknownPin}, m} }

func (e *PinError) Error() string { return fmt.Sprintf("%s: %s", e.c, e.Motor) }

// ParamError reports an out-of-range enumerated field in a raw config.
type ParamError struct {
	coded
	Field string
	Value uint8
}

func InvalidParam(field string, v uint8) *ParamError {
	return &ParamError{coded{errcode.InvalidParams}, field, v}
}

func (e *ParamError) Error() string { return fmt.Sprintf("%s: %s=%d", e.c, e.Field, e.Value) }
