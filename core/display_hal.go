package core

import "tinygo.org/x/drivers"

// FrameDisplay is the display collaborator. Pixels are drawn into a frame
// buffer through drivers.Displayer; Display flushes it to the device.
type FrameDisplay interface {
	drivers.Displayer

	// Clear blanks the frame buffer.
	Clear() error
}
