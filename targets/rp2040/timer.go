//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"statusboard/core"
)

// RP2040 TIMER peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x24 // Raw timer high word, no latching
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word, no latching
)

// Cortex-M0+ SysTick
const (
	sysTickBase = 0xE000E010
	sysTickCSR  = sysTickBase + 0x0 // control and status
	sysTickRVR  = sysTickBase + 0x4 // reload value
	sysTickCVR  = sysTickBase + 0x8 // current value

	sysTickEnable = 1 << 0
	// CLKSOURCE (bit 2) stays clear: count the external reference, which
	// on the RP2040 is the 1 us watchdog tick.
	sysTickMax = core.SysTickModulus - 1
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

	sysTickCtrl   = (*volatile.Register32)(unsafe.Pointer(uintptr(sysTickCSR)))
	sysTickReload = (*volatile.Register32)(unsafe.Pointer(uintptr(sysTickRVR)))
	sysTickValue  = (*volatile.Register32)(unsafe.Pointer(uintptr(sysTickCVR)))
)

// timerCounter reads the low word of the 1 us TIMER.
type timerCounter struct{}

func (timerCounter) Read() uint32 {
	return timerRAWL.Get()
}

// timerUptime reads the full 64-bit TIMER
func timerUptime() uint64 {
	// Must read high first, then low, then high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// sysTickCounter presents the down-counting SysTick as an up-counter.
type sysTickCounter struct{}

// startSysTick free-runs SysTick over its full 24-bit range on the 1 us
// tick. The tick generator must already be running.
func startSysTick() sysTickCounter {
	sysTickCtrl.Set(0)
	sysTickReload.Set(sysTickMax)
	sysTickValue.Set(0) // any write clears the counter
	sysTickCtrl.Set(sysTickEnable)
	return sysTickCounter{}
}

func (sysTickCounter) Read() uint32 {
	return sysTickMax - (sysTickValue.Get() & sysTickMax)
}

// newCounter starts the hardware behind the selected timebase.
func newCounter(tb core.Timebase) core.Counter {
	if tb == core.TimebaseTimer {
		return timerCounter{}
	}
	return startSysTick()
}
