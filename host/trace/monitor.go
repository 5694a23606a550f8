// Package trace follows the board's USB trace stream and prints each
// record as a log line.
package trace

import (
	"context"
	"errors"
	"fmt"
	"io"

	"statusboard/core"
	"statusboard/protocol"
)

// Monitor decodes trace frames from a byte stream.
type Monitor struct {
	// Follow keeps reading after io.EOF. Serial ports with a read timeout
	// report an idle line as EOF.
	Follow bool

	r   io.Reader
	out io.Writer
	dec *protocol.TraceDecoder

	records uint64
	faults  uint64
}

// NewMonitor creates a monitor reading r and writing lines to out.
func NewMonitor(r io.Reader, out io.Writer) *Monitor {
	return &Monitor{
		r:   r,
		out: out,
		dec: protocol.NewTraceDecoder(),
	}
}

// Records returns the number of records printed so far.
func (m *Monitor) Records() uint64 { return m.records }

// Faults returns the number of fault records seen so far.
func (m *Monitor) Faults() uint64 { return m.faults }

// Dropped returns the number of corrupt frames skipped.
func (m *Monitor) Dropped() uint32 { return m.dec.Dropped }

// Run reads until ctx is done, the reader fails, or the stream ends when
// not following.
func (m *Monitor) Run(ctx context.Context) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := m.r.Read(buf)
		if n > 0 {
			if werr := m.handle(buf[:n]); werr != nil {
				return werr
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if !m.Follow {
				return nil
			}
		default:
			return fmt.Errorf("read trace stream: %w", err)
		}
	}
}

func (m *Monitor) handle(data []byte) error {
	for _, rec := range m.dec.Feed(data) {
		m.records++
		if _, err := fmt.Fprintln(m.out, FormatRecord(rec)); err != nil {
			return err
		}
		if rec.Level == protocol.LevelFault {
			m.faults++
		}
	}
	return nil
}

// FormatRecord renders rec the way the firmware's text writer does, naming
// the fault kind on fault records.
func FormatRecord(rec protocol.TraceRecord) string {
	if rec.Level == protocol.LevelFault {
		kind := core.FaultKind(rec.Value)
		rec.Value = 0
		return core.FormatTrace(rec) + " (" + kind.String() + ")"
	}
	return core.FormatTrace(rec)
}
