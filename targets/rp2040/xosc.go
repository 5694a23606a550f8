//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 crystal oscillator
const (
	xoscBase    = 0x40024000
	xoscCTRL    = xoscBase + 0x00
	xoscSTATUS  = xoscBase + 0x04
	xoscSTARTUP = xoscBase + 0x0C

	xoscFreqRange1To15MHz = 0xAA0
	xoscEnableMagic       = 0xFAB << 12
	xoscStatusStable      = 1 << 31
	xoscStartupDelayMask  = 0x3FFF
)

var (
	xoscCtrl    = (*volatile.Register32)(unsafe.Pointer(uintptr(xoscCTRL)))
	xoscStatus  = (*volatile.Register32)(unsafe.Pointer(uintptr(xoscSTATUS)))
	xoscStartup = (*volatile.Register32)(unsafe.Pointer(uintptr(xoscSTARTUP)))
)

// xoscDriver implements core.OscillatorDriver.
type xoscDriver struct{}

func (xoscDriver) Configure(startupDelay uint32) {
	xoscCtrl.Set(xoscFreqRange1To15MHz)
	xoscStartup.Set(startupDelay & xoscStartupDelayMask)
}

func (xoscDriver) Enable() {
	xoscCtrl.SetBits(xoscEnableMagic)
}

func (xoscDriver) Stable() bool {
	return xoscStatus.HasBits(xoscStatusStable)
}
