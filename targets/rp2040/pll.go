//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 PLL blocks and the reset controller that owns them
const (
	pllSysBase = 0x40028000
	pllUSBBase = 0x4002C000

	resetsBase      = 0x4000C000
	resetsRESET     = resetsBase + 0x0
	resetsRESETDONE = resetsBase + 0x8

	resetPLLSys = 1 << 12
	resetPLLUSB = 1 << 13

	pllCSLock        = 1 << 31
	pllCSRefDivMask  = 0x3F
	pllPwrPD         = 1 << 0
	pllPwrPostDivPD  = 1 << 3
	pllPwrVCOPD      = 1 << 5
	pllFBDivMask     = 0xFFF
	pllPostDiv1Shift = 16
	pllPostDiv2Shift = 12
)

var (
	resetsReset = (*volatile.Register32)(unsafe.Pointer(uintptr(resetsRESET)))
	resetsDone  = (*volatile.Register32)(unsafe.Pointer(uintptr(resetsRESETDONE)))
)

type pllRegs struct {
	cs    volatile.Register32
	pwr   volatile.Register32
	fbdiv volatile.Register32
	prim  volatile.Register32
}

// pllDriver implements core.PLLDriver for one of the two PLLs.
type pllDriver struct {
	regs     *pllRegs
	resetBit uint32
}

func newPLL(base uintptr, resetBit uint32) *pllDriver {
	return &pllDriver{
		regs:     (*pllRegs)(unsafe.Pointer(base)),
		resetBit: resetBit,
	}
}

// Reset pulses the block reset so the PLL starts powered down.
func (p *pllDriver) Reset() {
	resetsReset.SetBits(p.resetBit)
	resetsReset.ClearBits(p.resetBit)
	for !resetsDone.HasBits(p.resetBit) {
	}
}

func (p *pllDriver) Program(refDiv uint8, fbDiv uint16) {
	p.regs.cs.Set(uint32(refDiv) & pllCSRefDivMask)
	p.regs.fbdiv.Set(uint32(fbDiv) & pllFBDivMask)
}

func (p *pllDriver) PowerUp() {
	p.regs.pwr.ClearBits(pllPwrPD | pllPwrVCOPD)
}

func (p *pllDriver) Locked() bool {
	return p.regs.cs.HasBits(pllCSLock)
}

func (p *pllDriver) SetPostDividers(postDiv1, postDiv2 uint8) {
	p.regs.prim.Set(uint32(postDiv1)<<pllPostDiv1Shift | uint32(postDiv2)<<pllPostDiv2Shift)
}

func (p *pllDriver) EnablePostDividers() {
	p.regs.pwr.ClearBits(pllPwrPostDivPD)
}
