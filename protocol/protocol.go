// Package protocol implements the framed diagnostic link between the
// statusboard firmware and host tools.
//
// A frame mirrors the Klipper block layout: length byte, sequence byte,
// payload, big-endian CRC16 and a trailing sync byte. Trace frames use the
// 0x20 destination nibble so they are never mistaken for command traffic.
package protocol

// Version is the trace link version reported in the boot banner.
const Version = "0.1.0"

// Frame layout constants
const (
	MessageMax         = 128 // Scratch buffer size, always holds one frame
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 96
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	// Sequence byte: high nibble is the destination, low nibble the counter
	MessageSeqMask = 0x0F
	TraceDest      = 0x20
)
