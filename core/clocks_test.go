package core

import (
	"errors"
	"testing"

	"statusboard/protocol"
)

func TestTickDivisor(t *testing.T) {
	testCases := []struct {
		refHz uint32
		want  uint8
	}{
		{12_000_000, 12},
		{8_300_000, 8},
		{1_000_000, 1},
		{999_999, 0},
		{15_000_000, 15},
		{300_000_000, 44}, // truncated to 8 bits
	}
	for _, tc := range testCases {
		if got := TickDivisor(tc.refHz); got != tc.want {
			t.Errorf("TickDivisor(%d) = %d, want %d", tc.refHz, got, tc.want)
		}
	}
}

func TestClockDiv(t *testing.T) {
	if got := ClockDiv(48*MHz, 48*MHz); got != 1<<8 {
		t.Errorf("ClockDiv(48M, 48M) = %#x, want 0x100", got)
	}
	if got := ClockDiv(48*MHz, 46_875); got != 1024<<8 {
		t.Errorf("ClockDiv(48M, 46875) = %#x, want %#x", got, 1024<<8)
	}
}

func TestDistributeRoutesAndPublishes(t *testing.T) {
	resetGlobals(t)
	var log callLog
	clk := &mockClocks{log: &log}
	ref := ReferenceClock{Hz: 12 * MHz, Stable: true}

	sysPlan, _ := boardConfig.SysPLL.Plan(protocol.StagePLLSys, ref.Hz)
	usbPlan, _ := boardConfig.USBPLL.Plan(protocol.StagePLLUSB, ref.Hz)

	if ClockFreq(ClkSys) != 0 {
		t.Fatalf("clock regime visible before distribution")
	}

	tree, err := Distribute(clk, ref,
		SynthOutput{Stage: protocol.StagePLLSys, Plan: sysPlan},
		SynthOutput{Stage: protocol.StagePLLUSB, Plan: usbPlan})
	if err != nil {
		t.Fatalf("Distribute failed: %v", err)
	}

	if clk.tick != 12 {
		t.Errorf("tick divisor = %d, want 12", clk.tick)
	}
	if log[0] != "clocks.tick" {
		t.Errorf("tick generator not programmed first: %v", log)
	}

	want := map[ClockID]uint32{
		ClkRef:  12 * MHz,
		ClkSys:  7_083_333,
		ClkPeri: 7_083_333,
		ClkUSB:  48 * MHz,
		ClkADC:  48 * MHz,
		ClkRTC:  46_875,
	}
	for id, hz := range want {
		if tree.Freq(id) != hz {
			t.Errorf("%s = %d, want %d", id, tree.Freq(id), hz)
		}
		if ClockFreq(id) != hz {
			t.Errorf("published %s = %d, want %d", id, ClockFreq(id), hz)
		}
	}

	if len(clk.muxes) != int(NumClocks) {
		t.Fatalf("configured %d clocks, want %d", len(clk.muxes), NumClocks)
	}
	if m := clk.muxes[1]; m.clk != ClkSys || m.src != SrcPLLSys || m.div != 1<<8 {
		t.Errorf("clk_sys routed as %+v", m)
	}
	if m := clk.muxes[len(clk.muxes)-1]; m.clk != ClkPeri || m.src != SrcClkSys {
		t.Errorf("clk_peri must be routed last from clk_sys, got %+v", m)
	}
	if tree.Clock(ClkSys).Hz != 7_083_333 || tree.Clock(ClkPeri).Role != ClkPeri {
		t.Errorf("accessors disagree with the table")
	}
}

func TestPlanClockTreeRejectsSlowReference(t *testing.T) {
	_, err := PlanClockTree(900_000, PLLPlan{OutputHz: 7 * MHz}, PLLPlan{OutputHz: 48 * MHz})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestNilClockTree(t *testing.T) {
	var tree *ClockTree
	if tree.Freq(ClkSys) != 0 {
		t.Errorf("nil tree should report 0 Hz")
	}
	if ClockID(99).String() != "clk?" {
		t.Errorf("unexpected name for unknown clock")
	}
}

func TestScaleBusFrequency(t *testing.T) {
	testCases := []struct {
		want, assumed, actual, expect uint32
	}{
		{400 * KHz, 125 * MHz, 125 * MHz, 400 * KHz},
		{400 * KHz, 125 * MHz, 14_166_666, 3_529_411},
		{100 * KHz, 125 * MHz, 0, 100 * KHz},
	}
	for _, tc := range testCases {
		if got := ScaleBusFrequency(tc.want, tc.assumed, tc.actual); got != tc.expect {
			t.Errorf("ScaleBusFrequency(%d, %d, %d) = %d, want %d", tc.want, tc.assumed, tc.actual, got, tc.expect)
		}
	}
}
