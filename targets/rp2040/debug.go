//go:build rp2040

package main

import (
	"machine"

	"statusboard/core"
	"statusboard/protocol"
)

const debugBaud = 115200

var debugUART *machine.UART

// startDebugUART mirrors trace lines as text on UART0 (TX=GP0, RX=GP1).
// Like the I2C bus, the baud rate is rescaled to the real clk_peri.
func startDebugUART(tree *core.ClockTree) error {
	debugUART = machine.UART0
	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: core.ScaleBusFrequency(debugBaud, machine.CPUFrequency(), tree.BusSourceHz()),
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		debugUART = nil
		return &core.DeviceError{Stage: protocol.StageBoot, Op: "debug uart", Err: err}
	}
	core.SetDebugWriter(debugPrintln)
	return nil
}

// debugPrintln writes a string to the debug UART with newline
func debugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
