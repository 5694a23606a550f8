//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/sh1106"

	"statusboard/config"
	"statusboard/core"
	"statusboard/protocol"
)

// SH1106 command stream: control byte 0x00, then the contrast command.
const (
	oledControlCommand = 0x00
	oledSetContrast    = 0x81
)

// oledDisplay adapts the SH1106 driver to core.FrameDisplay.
type oledDisplay struct {
	dev  sh1106.Device
	bus  *machine.I2C
	addr uint16
}

// newDisplay configures the panel, blanks it and applies the contrast.
func newDisplay(bus *machine.I2C, cfg config.DisplayConfig) (*oledDisplay, error) {
	d := &oledDisplay{
		dev:  sh1106.NewI2C(bus),
		bus:  bus,
		addr: cfg.Address,
	}
	d.dev.Configure(sh1106.Config{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Address:  cfg.Address,
		VccState: sh1106.SWITCHCAPVCC,
	})

	d.dev.ClearBuffer()
	if err := d.dev.Display(); err != nil {
		return nil, &core.DeviceError{Stage: protocol.StageDisplay, Op: "init", Err: err}
	}
	if err := d.setContrast(cfg.Contrast); err != nil {
		return nil, &core.DeviceError{Stage: protocol.StageDisplay, Op: "contrast", Err: err}
	}

	core.TraceValue(protocol.StageDisplay, "sh1106 ready", uint32(cfg.Address))
	return d, nil
}

func (d *oledDisplay) Size() (int16, int16) {
	return d.dev.Size()
}

func (d *oledDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.dev.SetPixel(x, y, c)
}

func (d *oledDisplay) Display() error {
	return d.dev.Display()
}

func (d *oledDisplay) Clear() error {
	d.dev.ClearBuffer()
	return nil
}

func (d *oledDisplay) setContrast(level uint8) error {
	return d.bus.Tx(d.addr, []byte{oledControlCommand, oledSetContrast, level}, nil)
}
