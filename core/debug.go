package core

import "statusboard/protocol"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceSink receives structured trace records. It must not block.
type TraceSink func(protocol.TraceRecord)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// traceSink receives every trace record as structured data
	traceSink TraceSink

	// debugEnabled mirrors traces to the text writer as well
	debugEnabled = true
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetTraceSink routes boot-stage traces to sink.
func SetTraceSink(sink TraceSink) {
	traceSink = sink
}

// SetDebugEnabled enables or disables text debug output. With a trace sink
// installed, text output is a mirror of the traces.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}

// Trace records a boot or runtime milestone.
func Trace(stage protocol.Stage, msg string) {
	emit(protocol.TraceRecord{Level: protocol.LevelInfo, Stage: stage, Text: msg})
}

// TraceValue records a milestone with a numeric value (usually a frequency).
func TraceValue(stage protocol.Stage, msg string, v uint32) {
	emit(protocol.TraceRecord{Level: protocol.LevelInfo, Stage: stage, Value: v, Text: msg})
}

// traceFault records a fatal condition right before the halt.
func traceFault(stage protocol.Stage, kind FaultKind, msg string) {
	emit(protocol.TraceRecord{Level: protocol.LevelFault, Stage: stage, Value: uint32(kind), Text: msg})
}

func emit(rec protocol.TraceRecord) {
	if uptime != nil {
		rec.Millis = uint32(uptime.Millis())
	}
	if traceSink != nil {
		traceSink(rec)
	}
	if debugEnabled {
		debugPrintln(FormatTrace(rec))
	}
}

// FormatTrace renders a record as a single log line.
func FormatTrace(rec protocol.TraceRecord) string {
	line := "[" + utoa(rec.Millis) + "] " + rec.Level.String() + " " + rec.Stage.String() + ": " + rec.Text
	if rec.Value != 0 {
		line += " " + utoa(rec.Value)
	}
	return line
}
