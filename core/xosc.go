package core

import "statusboard/protocol"

// Crystal oscillator limits.
const (
	XOSCMinHz = 1 * MHz
	XOSCMaxHz = 15 * MHz

	// xoscStartupMultiplier stretches the startup delay for slow crystals.
	xoscStartupMultiplier = 64

	// DefaultPollBudget bounds every ready/lock wait during boot.
	DefaultPollBudget = 1_000_000
)

// OscillatorDriver is the register-level view of the crystal oscillator.
type OscillatorDriver interface {
	// Configure selects the 1-15 MHz range and programs the startup delay
	// in units of 256 reference cycles.
	Configure(startupDelay uint32)

	// Enable starts the oscillator circuit.
	Enable()

	// Stable reports the hardware stable flag.
	Stable() bool
}

// ReferenceClock is the running external reference.
type ReferenceClock struct {
	Hz     uint32
	Stable bool
}

// XOSCStartupDelay returns the startup delay register value for a crystal
// of the given frequency.
func XOSCStartupDelay(hz uint32) uint32 {
	return ((hz / KHz) + 128) / 256 * xoscStartupMultiplier
}

// StartReference brings up the crystal oscillator and blocks until it
// reports stable or budget polls have elapsed.
func StartReference(drv OscillatorDriver, hz uint32, budget uint32) (ReferenceClock, error) {
	if hz < XOSCMinHz || hz > XOSCMaxHz {
		return ReferenceClock{}, &ConfigError{
			Stage:  protocol.StageXOSC,
			Field:  "xtal_hz",
			Value:  hz,
			Reason: "crystal must be 1-15 MHz",
		}
	}

	drv.Configure(XOSCStartupDelay(hz))
	drv.Enable()

	polls, ok := pollUntil(drv.Stable, budget)
	if !ok {
		return ReferenceClock{}, &TimeoutError{Stage: protocol.StageXOSC, Polls: polls}
	}

	TraceValue(protocol.StageXOSC, "stable", hz)
	return ReferenceClock{Hz: hz, Stable: true}, nil
}
