package core

import (
	"strings"
	"testing"

	"statusboard/protocol"
)

func TestTraceFallsBackToDebugWriter(t *testing.T) {
	resetGlobals(t)
	SetTraceSink(nil)
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	t.Cleanup(func() { SetDebugWriter(nil) })

	TraceValue(protocol.StageClocks, "clk_sys", 7_083_333)

	if len(lines) != 1 {
		t.Fatalf("expected one line, got %v", lines)
	}
	if lines[0] != "[0] info clocks: clk_sys 7083333" {
		t.Errorf("line = %q", lines[0])
	}
}

func TestTraceStampsUptime(t *testing.T) {
	recs := resetGlobals(t)
	c := &seqCounter{values: []uint32{0, 2500}}
	if _, err := InitUptime(c, 1<<24, 1000); err != nil {
		t.Fatalf("InitUptime failed: %v", err)
	}

	Trace(protocol.StageRender, "loop started")
	if got := (*recs)[0].Millis; got != 2500 {
		t.Errorf("Millis = %d, want 2500", got)
	}
}

func TestTraceMirrorsToDebugWriter(t *testing.T) {
	recs := resetGlobals(t)
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	t.Cleanup(func() { SetDebugWriter(nil) })

	Trace(protocol.StageBus, "i2c0")
	if len(*recs) != 1 || len(lines) != 1 {
		t.Fatalf("sink got %d records, writer got %v", len(*recs), lines)
	}
	if lines[0] != "[0] info i2c: i2c0" {
		t.Errorf("line = %q", lines[0])
	}
}

func TestDebugDisabled(t *testing.T) {
	recs := resetGlobals(t)
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	SetDebugEnabled(false)
	t.Cleanup(func() {
		SetDebugEnabled(true)
		SetDebugWriter(nil)
	})

	DebugPrintln("hidden")
	Trace(protocol.StageBoot, "still traced")
	if len(lines) != 0 {
		t.Errorf("disabled debug still wrote %v", lines)
	}
	if len(*recs) != 1 {
		t.Errorf("trace sink must not depend on text output, got %d records", len(*recs))
	}
}

func TestFormatTraceFault(t *testing.T) {
	line := FormatTrace(protocol.TraceRecord{Level: protocol.LevelFault, Stage: protocol.StagePLLSys, Millis: 12, Text: "no lock"})
	if !strings.HasPrefix(line, "[12] FAULT pll_sys: no lock") {
		t.Errorf("line = %q", line)
	}
}

func TestNumberFormatting(t *testing.T) {
	if utoa(0) != "0" || utoa(7083333) != "7083333" || utoa64(1<<40) != "1099511627776" {
		t.Error("utoa mismatch")
	}
}
