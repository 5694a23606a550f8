//go:build rp2040

package main

import (
	"device/arm"
	"runtime/volatile"
	"unsafe"

	"statusboard/core"
)

// RP2040 clock generators and the watchdog tick generator
const (
	clocksBase = 0x40008000

	watchdogBase = 0x40058000
	watchdogTICK = watchdogBase + 0x2C

	watchdogTickEnable = 1 << 9
	watchdogTickCycles = 0x1FF

	// Hardware slot of each clock; gpout0..3 come first.
	slotRef  = 4
	slotSys  = 5
	slotPeri = 6
	slotUSB  = 7
	slotADC  = 8
	slotRTC  = 9
	numSlots = 10

	clkCtrlSrcMask    = 0x3
	clkCtrlAuxSrcPos  = 5
	clkCtrlAuxSrcMask = 0x7 << clkCtrlAuxSrcPos
	clkCtrlEnable     = 1 << 11

	// Glitchless sources
	refSrcXOSC   = 2
	sysSrcClkRef = 0
	sysSrcAux    = 1

	// Aux sources. pll_sys on clk_sys, pll_usb on usb/adc/rtc and
	// clk_sys on clk_peri all sit at index 0.
	auxPrimary = 0

	// Three target clock cycles at the slowest clock (rtc) when clk_sys is
	// still parked on the crystal.
	muxSettleLoops = 1024
)

type clockSlot struct {
	ctrl     volatile.Register32
	div      volatile.Register32
	selected volatile.Register32
}

type clocksRegs struct {
	clk [numSlots]clockSlot
}

var (
	clockBlock = (*clocksRegs)(unsafe.Pointer(uintptr(clocksBase)))
	wdTick     = (*volatile.Register32)(unsafe.Pointer(uintptr(watchdogTICK)))
)

var clockSlots = [core.NumClocks]uint8{
	core.ClkRef:  slotRef,
	core.ClkSys:  slotSys,
	core.ClkPeri: slotPeri,
	core.ClkUSB:  slotUSB,
	core.ClkADC:  slotADC,
	core.ClkRTC:  slotRTC,
}

// clockDriver implements core.ClockDriver.
type clockDriver struct{}

func (clockDriver) Park() {
	sys := &clockBlock.clk[slotSys]
	sys.ctrl.ReplaceBits(sysSrcClkRef, clkCtrlSrcMask, 0)
	for !sys.selected.HasBits(1 << sysSrcClkRef) {
	}

	ref := &clockBlock.clk[slotRef]
	ref.ctrl.ReplaceBits(refSrcXOSC, clkCtrlSrcMask, 0)
	for !ref.selected.HasBits(1 << refSrcXOSC) {
	}
}

// Configure follows the generator's switching rules: raise the divisor
// before the source, move glitchless slices off aux before touching the
// aux mux, and stop the other slices while their aux mux changes.
func (clockDriver) Configure(id core.ClockID, src core.ClockSource, div uint32) {
	glitchless, srcSel, aux := route(id, src)
	c := &clockBlock.clk[clockSlots[id]]

	if div > c.div.Get() {
		c.div.Set(div)
	}

	if glitchless {
		if srcSel == sysSrcAux {
			c.ctrl.ClearBits(clkCtrlSrcMask)
			for !c.selected.HasBits(1) {
			}
		}
	} else {
		c.ctrl.ClearBits(clkCtrlEnable)
		for i := 0; i < muxSettleLoops; i++ {
			arm.Asm("nop")
		}
	}

	c.ctrl.ReplaceBits(aux<<clkCtrlAuxSrcPos, clkCtrlAuxSrcMask, 0)
	if glitchless {
		c.ctrl.ReplaceBits(srcSel, clkCtrlSrcMask, 0)
		for !c.selected.HasBits(1 << srcSel) {
		}
	}

	c.ctrl.SetBits(clkCtrlEnable)
	c.div.Set(div)
}

func (clockDriver) StartTick(cycles uint8) {
	wdTick.Set(uint32(cycles)&watchdogTickCycles | watchdogTickEnable)
}

// route maps a logical source onto the multiplexer settings of one clock.
func route(id core.ClockID, src core.ClockSource) (glitchless bool, srcSel, aux uint32) {
	switch {
	case id == core.ClkRef && src == core.SrcXOSC:
		return true, refSrcXOSC, 0
	case id == core.ClkSys && src == core.SrcPLLSys:
		return true, sysSrcAux, auxPrimary
	case id == core.ClkPeri && src == core.SrcClkSys:
		return false, 0, auxPrimary
	case (id == core.ClkUSB || id == core.ClkADC || id == core.ClkRTC) && src == core.SrcPLLUSB:
		return false, 0, auxPrimary
	}
	panic("unsupported clock route " + id.String())
}
