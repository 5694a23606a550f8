package core

import (
	"errors"
	"strings"

	"statusboard/protocol"
)

// Parker puts the processor into its lowest-power wait. It is called in a
// loop by Halt and is not expected to return.
type Parker func()

var parker Parker = func() { select {} }

// SetParker installs the platform wait (WFI on the target).
func SetParker(p Parker) {
	if p != nil {
		parker = p
	}
}

// Halt reports err and parks the processor forever.
func Halt(err error) {
	kind := ClassifyFault(err)
	stage := protocol.StageHalt
	var te *TimeoutError
	var ce *ConfigError
	var de *DeviceError
	switch {
	case errors.As(err, &te):
		stage = te.Stage
	case errors.As(err, &ce):
		stage = ce.Stage
	case errors.As(err, &de):
		stage = de.Stage
	}

	traceFault(stage, kind, err.Error())
	for {
		parker()
	}
}

// Guard runs fn as the firmware's single fatal boundary. Any returned error
// or panic is reported and the processor is parked. Guard returns only if
// fn returns nil.
func Guard(fn func() error) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = panicFault(r)
			}
		}()
		return fn()
	}()
	if err != nil {
		Halt(err)
	}
}

// panicFault converts a recovered panic value into a fault.
func panicFault(r interface{}) error {
	var msg string
	switch v := r.(type) {
	case error:
		if ClassifyFault(v) != FaultUnrecoverable {
			return v
		}
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = "panic"
	}

	kind := FaultUnrecoverable
	if strings.Contains(msg, "out of memory") {
		kind = FaultAllocation
	}
	return &FaultError{Kind: kind, Msg: msg}
}
