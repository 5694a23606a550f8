// Package config holds the board configuration applied at every boot.
package config

import (
	"statusboard/core"
	"statusboard/protocol"
)

// boardError is a configuration error that halts as an invalid config.
type boardError string

func (e boardError) Error() string { return string(e) }

func (e boardError) Unwrap() error { return core.ErrInvalidConfig }

var (
	ErrUnknownTimebase error = boardError("unknown timebase")
	ErrBadDisplay      error = boardError("display geometry out of range")
	ErrBadBus          error = boardError("i2c bus settings out of range")
)

// Timebase names accepted in BoardConfig.Timebase.
const (
	TimebaseSysTick = "systick"
	TimebaseTimer   = "timer"
)

// BusConfig selects the I2C controller and pins used to reach the display.
type BusConfig struct {
	Bus         uint8  `json:"bus"`
	SDA         uint8  `json:"sda"`
	SCL         uint8  `json:"scl"`
	FrequencyHz uint32 `json:"frequency_hz"`
}

// DisplayConfig describes the OLED panel and the redraw cadence.
type DisplayConfig struct {
	Address       uint16 `json:"address"`
	Width         int16  `json:"width"`
	Height        int16  `json:"height"`
	Contrast      uint8  `json:"contrast"`
	FramePeriodMs uint32 `json:"frame_period_ms"`
}

// BoardConfig is the complete board description.
type BoardConfig struct {
	Name       string                 `json:"name"`
	XtalHz     uint32                 `json:"xtal_hz"`
	SysPLL     core.SynthesizerConfig `json:"pll_sys"`
	USBPLL     core.SynthesizerConfig `json:"pll_usb"`
	PollBudget uint32                 `json:"poll_budget"`
	Timebase   string                 `json:"timebase"`
	DebugUART  bool                   `json:"debug_uart"`
	I2C        BusConfig              `json:"i2c"`
	Display    DisplayConfig          `json:"display"`
	Screen     core.ScreenText        `json:"screen"`
}

// Default returns the Pico + SH1106 board. The system PLL runs the
// non-standard 510 MHz / 2 / 6 / 6 point on purpose. Reported clk_sys
// follows the board notes, which divide by refdiv again:
//
//	8.3 MHz      600, 2, 6, 6
//	7 083 333 Hz 510, 2, 6, 6
//
// The silicon runs at VCO / (6*6), 14,166,666 Hz for the default. Delays
// and bus timing never use the reported figure; see core.StartTimebase and
// core.ClockTree.BusSourceHz.
func Default() *BoardConfig {
	return &BoardConfig{
		Name:   "pico-sh1106",
		XtalHz: 12 * core.MHz,
		SysPLL: core.SynthesizerConfig{
			VCOHz:    510 * core.MHz,
			RefDiv:   2,
			PostDiv1: 6,
			PostDiv2: 6,
		},
		USBPLL:     core.PLLUSB48MHz,
		PollBudget: core.DefaultPollBudget,
		Timebase:   TimebaseSysTick,
		DebugUART:  true,
		I2C: BusConfig{
			Bus:         0,
			SDA:         8,
			SCL:         9,
			FrequencyHz: 400 * core.KHz,
		},
		Display: DisplayConfig{
			Address:       0x3C,
			Width:         128,
			Height:        64,
			Contrast:      64,
			FramePeriodMs: core.DefaultFramePeriodMs,
		},
		Screen: core.ScreenText{
			Title:    "status",
			Subtitle: "board",
			Contact:  "rp2040 + sh1106",
			Messages: []string{"Made with Go", "TinyGo", "7.08 MHz", "no RTOS"},
		},
	}
}

// applyDefaults fills in missing values from Default.
func applyDefaults(cfg *BoardConfig) {
	def := Default()

	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.XtalHz == 0 {
		cfg.XtalHz = def.XtalHz
	}
	if cfg.SysPLL == (core.SynthesizerConfig{}) {
		cfg.SysPLL = def.SysPLL
	}
	if cfg.USBPLL == (core.SynthesizerConfig{}) {
		cfg.USBPLL = def.USBPLL
	}
	if cfg.PollBudget == 0 {
		cfg.PollBudget = def.PollBudget
	}
	if cfg.Timebase == "" {
		cfg.Timebase = def.Timebase
	}
	if cfg.I2C == (BusConfig{}) {
		cfg.I2C = def.I2C
	}
	if cfg.I2C.FrequencyHz == 0 {
		cfg.I2C.FrequencyHz = def.I2C.FrequencyHz
	}
	if cfg.Display.Address == 0 {
		cfg.Display.Address = def.Display.Address
	}
	if cfg.Display.Width == 0 {
		cfg.Display.Width = def.Display.Width
	}
	if cfg.Display.Height == 0 {
		cfg.Display.Height = def.Display.Height
	}
	if cfg.Display.Contrast == 0 {
		cfg.Display.Contrast = def.Display.Contrast
	}
	if cfg.Display.FramePeriodMs == 0 {
		cfg.Display.FramePeriodMs = def.Display.FramePeriodMs
	}
	if cfg.Screen.Title == "" && len(cfg.Screen.Messages) == 0 {
		cfg.Screen = def.Screen
	}
}

// BootConfig returns the clock bring-up part of the configuration.
func (c *BoardConfig) BootConfig() core.BootConfig {
	return core.BootConfig{
		XtalHz:     c.XtalHz,
		SysPLL:     c.SysPLL,
		USBPLL:     c.USBPLL,
		PollBudget: c.PollBudget,
	}
}

// TimebaseKind maps the Timebase name onto the timekeeper counter.
func (c *BoardConfig) TimebaseKind() (core.Timebase, error) {
	switch c.Timebase {
	case TimebaseSysTick:
		return core.TimebaseSysTick, nil
	case TimebaseTimer:
		return core.TimebaseTimer, nil
	default:
		return 0, ErrUnknownTimebase
	}
}

// Validate checks the whole configuration and returns the clock regime
// it would produce, without touching hardware.
func (c *BoardConfig) Validate() (*core.ClockTree, error) {
	if c.XtalHz < core.XOSCMinHz || c.XtalHz > core.XOSCMaxHz {
		return nil, &core.ConfigError{Stage: protocol.StageXOSC, Field: "xtal_hz", Value: c.XtalHz, Reason: "crystal must be 1-15 MHz"}
	}
	sys, err := c.SysPLL.Plan(protocol.StagePLLSys, c.XtalHz)
	if err != nil {
		return nil, err
	}
	usb, err := c.USBPLL.Plan(protocol.StagePLLUSB, c.XtalHz)
	if err != nil {
		return nil, err
	}
	tree, err := core.PlanClockTree(c.XtalHz, sys, usb)
	if err != nil {
		return nil, err
	}

	if _, err := c.TimebaseKind(); err != nil {
		return nil, err
	}
	if c.I2C.Bus > 1 || c.I2C.SDA > 29 || c.I2C.SCL > 29 || c.I2C.FrequencyHz == 0 || c.I2C.FrequencyHz > 1*core.MHz {
		return nil, ErrBadBus
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 || c.Display.Width > 132 || c.Display.Height > 64 {
		return nil, ErrBadDisplay
	}
	return tree, nil
}
