package core

import (
	"errors"
	"image/color"
	"testing"

	"statusboard/protocol"
)

// callLog records hardware calls across all mocks in order.
type callLog []string

func (l *callLog) add(s string) { *l = append(*l, s) }

func (l callLog) index(s string) int {
	for i, c := range l {
		if c == s {
			return i
		}
	}
	return -1
}

type mockXOSC struct {
	log          *callLog
	startupDelay uint32
	stableAfter  int // polls before stable; <0 never
	polls        int
}

func (m *mockXOSC) Configure(startupDelay uint32) {
	m.startupDelay = startupDelay
	m.log.add("xosc.configure")
}

func (m *mockXOSC) Enable() { m.log.add("xosc.enable") }

func (m *mockXOSC) Stable() bool {
	m.polls++
	return m.stableAfter >= 0 && m.polls > m.stableAfter
}

type mockPLL struct {
	name        string
	log         *callLog
	lockAfter   int // polls before lock; <0 never
	polls       int
	refDiv      uint8
	fbDiv       uint16
	postDiv1    uint8
	postDiv2    uint8
	postEnabled bool
}

func (m *mockPLL) Reset() { m.log.add(m.name + ".reset") }

func (m *mockPLL) Program(refDiv uint8, fbDiv uint16) {
	m.refDiv, m.fbDiv = refDiv, fbDiv
	m.log.add(m.name + ".program")
}

func (m *mockPLL) PowerUp() { m.log.add(m.name + ".powerup") }

func (m *mockPLL) Locked() bool {
	m.polls++
	return m.lockAfter >= 0 && m.polls > m.lockAfter
}

func (m *mockPLL) SetPostDividers(postDiv1, postDiv2 uint8) {
	m.postDiv1, m.postDiv2 = postDiv1, postDiv2
	m.log.add(m.name + ".postdiv")
}

func (m *mockPLL) EnablePostDividers() {
	m.postEnabled = true
	m.log.add(m.name + ".postdiv_on")
}

type muxCall struct {
	clk ClockID
	src ClockSource
	div uint32
}

type mockClocks struct {
	log   *callLog
	muxes []muxCall
	tick  uint8
}

func (m *mockClocks) Park() { m.log.add("clocks.park") }

func (m *mockClocks) Configure(clk ClockID, src ClockSource, div uint32) {
	m.muxes = append(m.muxes, muxCall{clk, src, div})
	m.log.add("clocks.configure." + clk.String())
}

func (m *mockClocks) StartTick(cycles uint8) {
	m.tick = cycles
	m.log.add("clocks.tick")
}

// stepCounter advances by step on every read, wrapping at modulus.
type stepCounter struct {
	value   uint64
	step    uint64
	modulus uint64
	reads   int
}

func (c *stepCounter) Read() uint32 {
	v := c.value
	c.value = (c.value + c.step) % c.modulus
	c.reads++
	return uint32(v)
}

// seqCounter returns scripted values, then repeats the last one.
type seqCounter struct {
	values []uint32
	pos    int
}

func (c *seqCounter) Read() uint32 {
	v := c.values[c.pos]
	if c.pos < len(c.values)-1 {
		c.pos++
	}
	return v
}

type fakeDisplay struct {
	w, h     int16
	pixels   map[[2]int16]bool
	clears   int
	flushes  int
	clearErr error
	flushErr error
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{w: 128, h: 64, pixels: map[[2]int16]bool{}}
}

func (d *fakeDisplay) Size() (int16, int16) { return d.w, d.h }

func (d *fakeDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.w || y >= d.h {
		return
	}
	d.pixels[[2]int16{x, y}] = c.R != 0 || c.G != 0 || c.B != 0
}

func (d *fakeDisplay) Display() error {
	d.flushes++
	return d.flushErr
}

func (d *fakeDisplay) Clear() error {
	d.clears++
	d.pixels = map[[2]int16]bool{}
	return d.clearErr
}

func (d *fakeDisplay) lit() int {
	n := 0
	for _, on := range d.pixels {
		if on {
			n++
		}
	}
	return n
}

var errHalted = errors.New("halted")

// resetGlobals clears the process-wide state between tests and captures
// every trace record.
func resetGlobals(t *testing.T) *[]protocol.TraceRecord {
	t.Helper()
	var recs []protocol.TraceRecord
	currentClocks = nil
	uptime = nil
	debugEnabled = true
	debugPrintln = func(string) {}
	SetTraceSink(func(r protocol.TraceRecord) { recs = append(recs, r) })
	parker = func() { panic(errHalted) }
	t.Cleanup(func() {
		currentClocks = nil
		uptime = nil
		traceSink = nil
		parker = func() { select {} }
	})
	return &recs
}

// expectHalt runs fn and reports whether it ended in the park loop.
func expectHalt(fn func()) (halted bool) {
	defer func() {
		if r := recover(); r != nil {
			if r != errHalted {
				panic(r)
			}
			halted = true
		}
	}()
	fn()
	return false
}

func newBoard(log *callLog) (Board, *mockXOSC, *mockPLL, *mockPLL, *mockClocks) {
	x := &mockXOSC{log: log, stableAfter: 3}
	sys := &mockPLL{name: "pll_sys", log: log, lockAfter: 5}
	usb := &mockPLL{name: "pll_usb", log: log, lockAfter: 2}
	clk := &mockClocks{log: log}
	return Board{XOSC: x, PLLSys: sys, PLLUSB: usb, Clocks: clk}, x, sys, usb, clk
}

// boardConfig is the documented Pico configuration.
var boardConfig = BootConfig{
	XtalHz:     12 * MHz,
	SysPLL:     SynthesizerConfig{VCOHz: 510 * MHz, RefDiv: 2, PostDiv1: 6, PostDiv2: 6},
	USBPLL:     PLLUSB48MHz,
	PollBudget: 100,
}
