package core

import "statusboard/protocol"

// Board bundles the hardware the boot sequence drives.
type Board struct {
	XOSC   OscillatorDriver
	PLLSys PLLDriver
	PLLUSB PLLDriver
	Clocks ClockDriver
}

// BootConfig is the fixed clock configuration applied at every boot.
type BootConfig struct {
	XtalHz     uint32
	SysPLL     SynthesizerConfig
	USBPLL     SynthesizerConfig
	PollBudget uint32
}

// Boot runs the clock bring-up in its only valid order: crystal, both
// PLLs, then distribution. The first failure stops the sequence; nothing
// after it is touched.
func Boot(b Board, cfg BootConfig) (*ClockTree, error) {
	budget := cfg.PollBudget
	if budget == 0 {
		budget = DefaultPollBudget
	}

	Trace(protocol.StageBoot, "clock bring-up "+protocol.Version)

	ref, err := StartReference(b.XOSC, cfg.XtalHz, budget)
	if err != nil {
		return nil, err
	}

	// Run sys and ref from the crystal while the PLLs are reprogrammed
	b.Clocks.Park()

	sys, err := StartPLL(b.PLLSys, protocol.StagePLLSys, ref, cfg.SysPLL, budget)
	if err != nil {
		return nil, err
	}
	usb, err := StartPLL(b.PLLUSB, protocol.StagePLLUSB, ref, cfg.USBPLL, budget)
	if err != nil {
		return nil, err
	}

	return Distribute(b.Clocks, ref, sys, usb)
}

// Timebase selects the counter behind the monotonic timekeeper. Both count
// the reference tick generator, so delays depend only on the crystal and
// never on how the PLL outputs are reported.
type Timebase uint8

const (
	// TimebaseSysTick is the 24-bit core timer on its external reference,
	// which is the 1 us tick.
	TimebaseSysTick Timebase = iota
	// TimebaseTimer is the low word of the 1 us TIMER peripheral.
	TimebaseTimer
)

// Counter widths.
const (
	SysTickModulus = 1 << 24
	TimerModulus   = 1 << 32
)

// StartTimebase initializes the process timekeeper on c at the rate of the
// reference tick generator.
func StartTimebase(tb Timebase, c Counter, tree *ClockTree) (*Uptime, error) {
	if tree == nil {
		return nil, &ConfigError{Stage: protocol.StageUptime, Field: "clocks", Reason: "clock regime not distributed"}
	}

	modulus := uint64(SysTickModulus)
	if tb == TimebaseTimer {
		modulus = TimerModulus
	}
	rate := tree.TickHz()

	u, err := InitUptime(c, modulus, rate)
	if err != nil {
		return nil, err
	}
	TraceValue(protocol.StageUptime, "rate", rate)
	return u, nil
}
