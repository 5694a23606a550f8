package core

import "statusboard/protocol"

// ClockID names one output of the clock generator block.
type ClockID uint8

const (
	ClkRef ClockID = iota
	ClkSys
	ClkPeri
	ClkUSB
	ClkADC
	ClkRTC
	NumClocks
)

var clockNames = [NumClocks]string{"clk_ref", "clk_sys", "clk_peri", "clk_usb", "clk_adc", "clk_rtc"}

func (id ClockID) String() string {
	if id < NumClocks {
		return clockNames[id]
	}
	return "clk?"
}

// ClockSource is an input to a clock multiplexer.
type ClockSource uint8

const (
	SrcXOSC ClockSource = iota
	SrcPLLSys
	SrcPLLUSB
	SrcClkSys
)

// rtcFromUSBDiv divides the 48 MHz USB PLL down to the 46,875 Hz RTC clock.
const rtcFromUSBDiv = 1024

// ClockDriver is the register-level view of the clock generators and the
// reference tick generator.
type ClockDriver interface {
	// Park switches clk_ref to the crystal and clk_sys to clk_ref so the
	// PLLs can be reprogrammed underneath them.
	Park()

	// Configure routes src to clk with the given 24.8 fixed point divisor
	// and blocks until the multiplexer reports the new selection.
	Configure(clk ClockID, src ClockSource, div uint32)

	// StartTick enables the reference tick generator with the given
	// number of reference cycles per tick.
	StartTick(cycles uint8)
}

// DerivedClock is one resolved clock of the current regime.
type DerivedClock struct {
	Role ClockID
	Hz   uint32
}

// ClockTree is the complete clock regime after distribution.
type ClockTree struct {
	freq   [NumClocks]uint32
	Ticks  uint8 // reference tick divisor
	RefHz  uint32
	SysPLL PLLPlan
	USBPLL PLLPlan
}

// Freq returns the frequency of one clock.
func (t *ClockTree) Freq(id ClockID) uint32 {
	if t == nil || id >= NumClocks {
		return 0
	}
	return t.freq[id]
}

// Clock returns the derived clock for id.
func (t *ClockTree) Clock(id ClockID) DerivedClock {
	return DerivedClock{Role: id, Hz: t.Freq(id)}
}

// Clocks returns every derived clock in ClockID order.
func (t *ClockTree) Clocks() []DerivedClock {
	out := make([]DerivedClock, 0, NumClocks)
	for id := ClockID(0); id < NumClocks; id++ {
		out = append(out, t.Clock(id))
	}
	return out
}

// TickHz is the rate of the reference tick generator, 1 MHz for any
// crystal that is a whole number of MHz. It depends only on the crystal.
func (t *ClockTree) TickHz() uint32 {
	if t == nil || t.Ticks == 0 {
		return 0
	}
	return t.RefHz / uint32(t.Ticks)
}

// BusSourceHz is the frequency clk_peri really runs at: clk_sys undivided,
// from what the system PLL registers produce rather than the reported
// figure.
func (t *ClockTree) BusSourceHz() uint32 {
	if t == nil {
		return 0
	}
	return t.SysPLL.DeliveredHz()
}

// The published regime. Written once by Distribute.
var currentClocks *ClockTree

// CurrentClocks returns the published clock regime, nil before distribution.
func CurrentClocks() *ClockTree {
	return currentClocks
}

// ClockFreq returns the current frequency of id, 0 before distribution.
func ClockFreq(id ClockID) uint32 {
	return currentClocks.Freq(id)
}

// TickDivisor returns the tick generator divisor that yields one tick per
// microsecond from a reference of refHz.
func TickDivisor(refHz uint32) uint8 {
	return uint8(refHz / MHz)
}

// ClockDiv returns the 24.8 fixed point divisor taking srcHz to hz.
func ClockDiv(srcHz, hz uint32) uint32 {
	return uint32((uint64(srcHz) << 8) / uint64(hz))
}

type clockRoute struct {
	clk   ClockID
	src   ClockSource
	srcHz uint32
	hz    uint32
}

// planRoutes lays out the default regime: ref from the crystal, sys from
// PLL_SYS, usb/adc/rtc from PLL_USB, peri from sys.
func planRoutes(refHz, sysHz, usbHz uint32) []clockRoute {
	return []clockRoute{
		{ClkRef, SrcXOSC, refHz, refHz},
		{ClkSys, SrcPLLSys, sysHz, sysHz},
		{ClkUSB, SrcPLLUSB, usbHz, usbHz},
		{ClkADC, SrcPLLUSB, usbHz, usbHz},
		{ClkRTC, SrcPLLUSB, usbHz, usbHz / rtcFromUSBDiv},
		{ClkPeri, SrcClkSys, sysHz, sysHz},
	}
}

// PlanClockTree computes the regime Distribute would publish without
// touching hardware.
func PlanClockTree(refHz uint32, sys, usb PLLPlan) (*ClockTree, error) {
	ticks := TickDivisor(refHz)
	if ticks == 0 {
		return nil, &ConfigError{Stage: protocol.StageClocks, Field: "xtal_hz", Value: refHz, Reason: "reference too slow for a 1 us tick"}
	}

	tree := &ClockTree{Ticks: ticks, RefHz: refHz, SysPLL: sys, USBPLL: usb}
	for _, r := range planRoutes(refHz, sys.OutputHz, usb.OutputHz) {
		if r.hz == 0 || r.hz > r.srcHz {
			return nil, &ConfigError{Stage: protocol.StageClocks, Field: r.clk.String(), Value: r.hz, Reason: "clock faster than its source"}
		}
		tree.freq[r.clk] = r.hz
	}
	return tree, nil
}

// Distribute starts the tick generator against the real reference, routes
// every clock off the PLLs and publishes the resulting regime.
func Distribute(drv ClockDriver, ref ReferenceClock, sys, usb SynthOutput) (*ClockTree, error) {
	tree, err := PlanClockTree(ref.Hz, sys.Plan, usb.Plan)
	if err != nil {
		return nil, err
	}

	drv.StartTick(tree.Ticks)
	for _, r := range planRoutes(ref.Hz, sys.Hz(), usb.Hz()) {
		drv.Configure(r.clk, r.src, ClockDiv(r.srcHz, r.hz))
	}

	currentClocks = tree
	TraceValue(protocol.StageClocks, "clk_sys", tree.Freq(ClkSys))
	TraceValue(protocol.StageClocks, "clk_peri", tree.Freq(ClkPeri))
	return tree, nil
}

// ScaleBusFrequency converts a desired bus rate into the rate to request
// from a peripheral driver that assumes its input clock runs at assumedHz
// when it really runs at actualHz.
func ScaleBusFrequency(wantHz, assumedHz, actualHz uint32) uint32 {
	if actualHz == 0 {
		return wantHz
	}
	return uint32(uint64(wantHz) * uint64(assumedHz) / uint64(actualHz))
}
