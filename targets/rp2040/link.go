//go:build rp2040

package main

import (
	"machine"

	"statusboard/core"
	"statusboard/protocol"
)

// traceBacklog holds frames emitted while clk_usb is being rebuilt.
const traceBacklog = 512

// newTraceLink frames traces onto USB CDC. machine.Serial is USB CDC on
// the Pico; the runtime owns the descriptors.
func newTraceLink() *protocol.TraceLink {
	_ = machine.Serial.Configure(machine.UARTConfig{})
	return protocol.NewTraceLink(machine.Serial, traceBacklog)
}

// openTraceLink is called once clk_usb is back on PLL_USB.
func openTraceLink(link *protocol.TraceLink) {
	link.Ready()
	if n := link.Dropped(); n > 0 {
		core.TraceValue(protocol.StageBoot, "trace frames dropped", n)
	}
}
