package core

import "statusboard/protocol"

// DefaultFramePeriodMs is the redraw cadence.
const DefaultFramePeriodMs = 900

// RenderLoop redraws the info screen at a fixed cadence.
type RenderLoop struct {
	Display  FrameDisplay
	Delay    Delayer
	Screen   *InfoScreen
	PeriodMs uint32

	frames uint32
}

// Frames returns the number of frames pushed so far.
func (r *RenderLoop) Frames() uint32 { return r.frames }

// Frame clears, draws and flushes one frame.
func (r *RenderLoop) Frame() error {
	if err := r.Display.Clear(); err != nil {
		return &DeviceError{Stage: protocol.StageDisplay, Op: "clear", Err: err}
	}
	r.Screen.Draw(r.Display)
	if err := r.Display.Display(); err != nil {
		return &DeviceError{Stage: protocol.StageDisplay, Op: "flush", Err: err}
	}
	r.frames++
	return nil
}

// Run pushes frames forever. It only returns when the display fails.
func (r *RenderLoop) Run() error {
	period := r.PeriodMs
	if period == 0 {
		period = DefaultFramePeriodMs
	}
	Trace(protocol.StageRender, "loop started")
	for {
		if err := r.Frame(); err != nil {
			return err
		}
		r.Delay.DelayMs(period)
	}
}
