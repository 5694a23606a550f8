//go:build rp2040

package main

import (
	"machine"

	"statusboard/config"
	"statusboard/core"
	"statusboard/protocol"
)

// configureBus brings up the I2C controller that reaches the display.
//
// machine.I2C derives its timing from CPUFrequency(), which is fixed at
// the stock 125 MHz, while the controller actually runs from clk_peri.
// The requested rate is rescaled against what the PLL registers really
// produce so the wire sees cfg.FrequencyHz.
func configureBus(cfg config.BusConfig, tree *core.ClockTree) (*machine.I2C, error) {
	var bus *machine.I2C
	switch cfg.Bus {
	case 0:
		bus = machine.I2C0
	case 1:
		bus = machine.I2C1
	default:
		return nil, &core.ConfigError{Stage: protocol.StageBus, Field: "bus", Value: uint32(cfg.Bus), Reason: "no such controller"}
	}

	request := core.ScaleBusFrequency(cfg.FrequencyHz, machine.CPUFrequency(), tree.BusSourceHz())

	err := bus.Configure(machine.I2CConfig{
		Frequency: request,
		SDA:       machine.Pin(cfg.SDA),
		SCL:       machine.Pin(cfg.SCL),
	})
	if err != nil {
		return nil, &core.DeviceError{Stage: protocol.StageBus, Op: "configure", Err: err}
	}

	core.TraceValue(protocol.StageBus, "i2c"+string(rune('0'+cfg.Bus)), cfg.FrequencyHz)
	return bus, nil
}
