//go:build rp2040

package main

import (
	"device/arm"
	"machine"

	"statusboard/config"
	"statusboard/core"
	"statusboard/protocol"
)

var (
	link  *protocol.TraceLink
	board = core.Board{
		XOSC:   xoscDriver{},
		PLLSys: newPLL(pllSysBase, resetPLLSys),
		PLLUSB: newPLL(pllUSBBase, resetPLLUSB),
		Clocks: clockDriver{},
	}
)

func main() {
	// Disable watchdog on boot to clear any previous state
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	link = newTraceLink()
	core.SetTraceSink(link.Sink)
	core.SetParker(func() { arm.Asm("wfi") })

	core.Guard(run)
}

// run is the whole firmware: bring-up, then the render loop, which only
// returns on a display fault.
func run() error {
	cfg := config.Default()
	if _, err := cfg.Validate(); err != nil {
		return err
	}

	tree, err := core.Boot(board, cfg.BootConfig())
	if err != nil {
		return err
	}
	openTraceLink(link)

	if cfg.DebugUART {
		if err := startDebugUART(tree); err != nil {
			return err
		}
	}
	core.SetDebugEnabled(cfg.DebugUART)

	tb, err := cfg.TimebaseKind()
	if err != nil {
		return err
	}
	uptime, err := core.StartTimebase(tb, newCounter(tb), tree)
	if err != nil {
		return err
	}
	core.TraceValue(protocol.StageUptime, "timer us", uint32(timerUptime()))

	bus, err := configureBus(cfg.I2C, tree)
	if err != nil {
		return err
	}
	display, err := newDisplay(bus, cfg.Display)
	if err != nil {
		return err
	}

	loop := &core.RenderLoop{
		Display:  display,
		Delay:    uptime,
		Screen:   core.NewInfoScreen(cfg.Screen),
		PeriodMs: cfg.Display.FramePeriodMs,
	}
	core.Trace(protocol.StageRender, cfg.Name)
	return loop.Run()
}
