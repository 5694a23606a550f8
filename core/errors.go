package core

import (
	"errors"

	"statusboard/protocol"
)

// Fault taxonomy. Every one of these is fatal; see Guard.
var (
	ErrHardwareTimeout = errors.New("hardware timeout")
	ErrInvalidConfig   = errors.New("invalid clock configuration")
	ErrAllocation      = errors.New("allocation failure")
	ErrUnrecoverable   = errors.New("unrecoverable fault")
)

// FaultKind classifies a fatal condition for the halt report.
type FaultKind uint8

const (
	FaultUnrecoverable FaultKind = iota
	FaultHardwareTimeout
	FaultInvalidConfig
	FaultAllocation
)

func (k FaultKind) String() string {
	switch k {
	case FaultHardwareTimeout:
		return "hardware timeout"
	case FaultInvalidConfig:
		return "invalid config"
	case FaultAllocation:
		return "allocation failure"
	default:
		return "unrecoverable fault"
	}
}

// ClassifyFault maps an error onto the fault taxonomy.
func ClassifyFault(err error) FaultKind {
	switch {
	case errors.Is(err, ErrHardwareTimeout):
		return FaultHardwareTimeout
	case errors.Is(err, ErrInvalidConfig):
		return FaultInvalidConfig
	case errors.Is(err, ErrAllocation):
		return FaultAllocation
	default:
		return FaultUnrecoverable
	}
}

// TimeoutError reports a ready or lock signal that never asserted.
type TimeoutError struct {
	Stage protocol.Stage
	Polls uint32
}

func (e *TimeoutError) Error() string {
	return e.Stage.String() + ": no ready signal after " + utoa(e.Polls) + " polls"
}

func (e *TimeoutError) Unwrap() error { return ErrHardwareTimeout }

// ConfigError reports a value outside the range the hardware supports.
type ConfigError struct {
	Stage  protocol.Stage
	Field  string
	Value  uint32
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Stage.String() + ": " + e.Field + "=" + utoa(e.Value) + ": " + e.Reason
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// FaultError wraps a recovered panic or an error that carries no fault kind.
type FaultError struct {
	Kind FaultKind
	Msg  string
}

func (e *FaultError) Error() string { return e.Kind.String() + ": " + e.Msg }

func (e *FaultError) Unwrap() error {
	switch e.Kind {
	case FaultHardwareTimeout:
		return ErrHardwareTimeout
	case FaultInvalidConfig:
		return ErrInvalidConfig
	case FaultAllocation:
		return ErrAllocation
	default:
		return ErrUnrecoverable
	}
}

// DeviceError reports a failed transaction with an external device.
type DeviceError struct {
	Stage protocol.Stage
	Op    string
	Err   error
}

func (e *DeviceError) Error() string {
	return e.Stage.String() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *DeviceError) Unwrap() error { return e.Err }
