package protocol

import "errors"

var (
	ErrUnknownLevel = errors.New("unknown trace level")
	ErrTrailingData = errors.New("trailing bytes after trace record")
)

// Level marks the severity of a trace record.
type Level uint8

const (
	LevelInfo  Level = 1
	LevelFault Level = 2
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelFault:
		return "FAULT"
	default:
		return "?"
	}
}

// Stage identifies the part of the firmware a record came from.
type Stage uint8

const (
	StageBoot Stage = iota
	StageXOSC
	StagePLLSys
	StagePLLUSB
	StageClocks
	StageUptime
	StageBus
	StageDisplay
	StageRender
	StageHalt
)

var stageNames = [...]string{
	StageBoot:    "boot",
	StageXOSC:    "xosc",
	StagePLLSys:  "pll_sys",
	StagePLLUSB:  "pll_usb",
	StageClocks:  "clocks",
	StageUptime:  "uptime",
	StageBus:     "i2c",
	StageDisplay: "display",
	StageRender:  "render",
	StageHalt:    "halt",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "stage?"
}

// MaxTraceText is the longest text a single frame carries; longer text is cut.
const MaxTraceText = 64

// TraceRecord is one diagnostic line.
type TraceRecord struct {
	Level  Level
	Stage  Stage
	Millis uint32 // Uptime when emitted, 0 before the timekeeper runs
	Value  uint32
	Text   string
}

// EncodeTrace writes rec as a complete frame with sequence counter seq.
func EncodeTrace(output OutputBuffer, seq uint8, rec TraceRecord) {
	cursor := output.CurPosition()
	output.Output([]byte{0, TraceDest | (seq & MessageSeqMask)})

	text := rec.Text
	if len(text) > MaxTraceText {
		text = text[:MaxTraceText]
	}
	EncodeVLQUint(output, uint32(rec.Level))
	EncodeVLQUint(output, uint32(rec.Stage))
	EncodeVLQUint(output, rec.Millis)
	EncodeVLQUint(output, rec.Value)
	EncodeVLQString(output, text)

	n := len(output.DataSince(cursor))
	output.Update(cursor+MessagePositionLen, uint8(n+MessageTrailerSize))

	crc := CRC16(output.DataSince(cursor))
	output.Output([]byte{
		uint8(crc >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
}

// DecodeTracePayload parses the payload between frame header and trailer.
func DecodeTracePayload(payload []byte) (TraceRecord, error) {
	var rec TraceRecord

	level, err := DecodeVLQUint(&payload)
	if err != nil {
		return rec, err
	}
	if Level(level) != LevelInfo && Level(level) != LevelFault {
		return rec, ErrUnknownLevel
	}
	stage, err := DecodeVLQUint(&payload)
	if err != nil {
		return rec, err
	}
	millis, err := DecodeVLQUint(&payload)
	if err != nil {
		return rec, err
	}
	value, err := DecodeVLQUint(&payload)
	if err != nil {
		return rec, err
	}
	text, err := DecodeVLQString(&payload)
	if err != nil {
		return rec, err
	}
	if len(payload) != 0 {
		return rec, ErrTrailingData
	}

	rec.Level = Level(level)
	rec.Stage = Stage(stage)
	rec.Millis = millis
	rec.Value = value
	rec.Text = text
	return rec, nil
}

// TraceDecoder reassembles trace frames from an arbitrary byte stream,
// resynchronising on the sync byte after corruption.
type TraceDecoder struct {
	fifo         *FifoBuffer
	synchronized bool

	// Dropped counts frames discarded for bad length, CRC or payload.
	Dropped uint32
}

// NewTraceDecoder returns a decoder that starts out synchronized.
func NewTraceDecoder() *TraceDecoder {
	return &TraceDecoder{
		fifo:         NewFifoBuffer(4 * MessageMax),
		synchronized: true,
	}
}

// Feed consumes data and returns every complete record found so far.
// Partial frames are kept for the next call.
func (d *TraceDecoder) Feed(data []byte) []TraceRecord {
	var out []TraceRecord
	for len(data) > 0 {
		n := d.fifo.Write(data)
		data = data[n:]
		out = d.process(out)
		if n == 0 && len(data) > 0 {
			// Buffer full of undecodable bytes, start over
			d.fifo.Reset()
			d.synchronized = false
		}
	}
	return out
}

func (d *TraceDecoder) process(out []TraceRecord) []TraceRecord {
	data := d.fifo.Data()
	total := len(data)

	for len(data) > 0 {
		if !d.synchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax ||
			data[MessagePositionSeq]&^MessageSeqMask != TraceDest {
			d.desync()
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		rec, err := DecodeTracePayload(data[MessageHeaderSize : msgLen-MessageTrailerSize])
		data = data[msgLen:]
		if err != nil {
			d.Dropped++
			continue
		}
		out = append(out, rec)
	}

	d.fifo.Pop(total - len(data))
	return out
}

func (d *TraceDecoder) desync() {
	d.synchronized = false
	d.Dropped++
}

// TraceEncoder numbers and frames records for a byte sink.
type TraceEncoder struct {
	seq     uint8
	scratch ScratchOutput
}

// Encode frames rec and returns the bytes. The slice is reused by the
// next call.
func (e *TraceEncoder) Encode(rec TraceRecord) []byte {
	e.scratch.Reset()
	EncodeTrace(&e.scratch, e.seq, rec)
	e.seq = (e.seq + 1) & MessageSeqMask
	return e.scratch.Result()
}
