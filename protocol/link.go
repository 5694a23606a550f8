package protocol

import "io"

// TraceLink frames trace records onto a byte stream that may not be usable
// yet, such as USB while its clock is being rebuilt. Until Ready is called
// frames are held in a backlog. A fault record flushes the backlog and goes
// out immediately, since nothing runs after a fault to flush it later.
type TraceLink struct {
	w       io.Writer
	enc     TraceEncoder
	pending *FifoBuffer
	ready   bool
	dropped uint32
}

// NewTraceLink creates a link writing to w with a backlog of backlog bytes.
func NewTraceLink(w io.Writer, backlog int) *TraceLink {
	return &TraceLink{w: w, pending: NewFifoBuffer(backlog + 1)}
}

// Sink takes one record; it is shaped to be installed as a trace sink.
func (l *TraceLink) Sink(rec TraceRecord) {
	frame := l.enc.Encode(rec)
	switch {
	case l.ready:
		l.write(frame)
	case rec.Level == LevelFault:
		l.Ready()
		l.write(frame)
	case l.pending.Free() < len(frame):
		l.dropped++
	default:
		l.pending.Write(frame)
	}
}

// Ready flushes the backlog and switches to direct writes.
func (l *TraceLink) Ready() {
	l.ready = true
	if l.pending.Available() > 0 {
		l.write(l.pending.Data())
		l.pending.Reset()
	}
}

// IsReady reports whether frames are written directly.
func (l *TraceLink) IsReady() bool { return l.ready }

// Dropped returns and clears the number of frames the backlog had no room for.
func (l *TraceLink) Dropped() uint32 {
	n := l.dropped
	l.dropped = 0
	return n
}

// write is best effort; a host that is not listening loses the frame.
func (l *TraceLink) write(data []byte) {
	for len(data) > 0 {
		n, err := l.w.Write(data)
		if err != nil || n == 0 {
			return
		}
		data = data[n:]
	}
}
