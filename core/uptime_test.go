package core

import "testing"

func TestUptimeSingleWrap(t *testing.T) {
	const modulus = 1 << 24
	c := &seqCounter{values: []uint32{0, modulus - 10, 5}}
	u, err := newUptime(c, modulus, 1*MHz)
	if err != nil {
		t.Fatalf("newUptime failed: %v", err)
	}

	first := u.Ticks()
	second := u.Ticks()
	if second <= first {
		t.Fatalf("ticks not increasing across wrap: %d then %d", first, second)
	}
	if second-first != 15 {
		t.Errorf("wrapped delta = %d, want 15", second-first)
	}
}

func TestUptimeMonotonicOverManyWraps(t *testing.T) {
	c := &stepCounter{step: 999, modulus: 1 << 12}
	u, _ := newUptime(c, 1<<12, 1000)

	prev := u.Ticks()
	for i := 0; i < 10_000; i++ {
		now := u.Ticks()
		if now < prev {
			t.Fatalf("ticks went backwards at read %d: %d < %d", i, now, prev)
		}
		if now-prev != 999 {
			t.Fatalf("read %d: delta %d, want 999", i, now-prev)
		}
		prev = now
	}
}

func TestUptimeStartsAtZero(t *testing.T) {
	c := &seqCounter{values: []uint32{1000, 1000, 1500}}
	u, _ := newUptime(c, 1<<24, 1000)

	if got := u.Ticks(); got != 0 {
		t.Errorf("first reading = %d, want 0", got)
	}
	if got := u.Now(); got.Ticks != 500 || got.Millis() != 500 {
		t.Errorf("Now() = %+v, want 500 ticks / 500 ms", got)
	}
}

func TestUptimeMasksCounter(t *testing.T) {
	// Upper bits of a 24-bit counter register read as garbage
	c := &seqCounter{values: []uint32{0xAB000000, 0xCD000010}}
	u, _ := newUptime(c, 1<<24, 1000)
	if got := u.Ticks(); got != 0x10 {
		t.Errorf("Ticks() = %d, want 16", got)
	}
}

func TestDelayMsZeroReturnsImmediately(t *testing.T) {
	c := &stepCounter{step: 1, modulus: 1 << 24}
	u, _ := newUptime(c, 1<<24, 7_083_333)

	reads := c.reads
	u.DelayMs(0)
	if c.reads != reads {
		t.Errorf("DelayMs(0) read the counter %d times", c.reads-reads)
	}
}

func TestDelayMsAtLeastRequested(t *testing.T) {
	testCases := []struct {
		name    string
		rate    uint32
		modulus uint64
		step    uint64
		ms      uint32
	}{
		{"single tick", 7_083_333, 1 << 24, 1013, 1},
		{"spans many wraps", 1_000_000, 1 << 16, 4093, 900},
		{"just under one wrap", 1_000_000, 1 << 24, 777, 16_777},
		{"odd rate rounding", 7_083_333, 1 << 24, 7, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &stepCounter{step: tc.step, modulus: tc.modulus}
			u, err := newUptime(c, tc.modulus, tc.rate)
			if err != nil {
				t.Fatalf("newUptime failed: %v", err)
			}

			start := u.Now()
			u.DelayMs(tc.ms)
			end := u.Now()

			elapsedUs := end.Micros() - start.Micros()
			if elapsedUs < uint64(tc.ms)*1000 {
				t.Errorf("DelayMs(%d) returned after %d us", tc.ms, elapsedUs)
			}
			// Overshoot bounded by two polls plus rounding
			maxTicks := uint64(tc.ms)*uint64(tc.rate)/1000 + 3*tc.step + 1
			if d := end.Ticks - start.Ticks; d > maxTicks {
				t.Errorf("DelayMs(%d) overshot: %d ticks, bound %d", tc.ms, d, maxTicks)
			}
		})
	}
}

func TestDelayUs(t *testing.T) {
	c := &stepCounter{step: 3, modulus: 1 << 24}
	u, _ := newUptime(c, 1<<24, 1_000_000)

	start := u.Ticks()
	u.DelayUs(100)
	if d := u.Ticks() - start; d < 100 {
		t.Errorf("DelayUs(100) waited %d ticks", d)
	}
}

func TestInitUptimeOnce(t *testing.T) {
	resetGlobals(t)
	c := &stepCounter{step: 1, modulus: 1 << 24}

	u, err := InitUptime(c, 1<<24, 1000)
	if err != nil {
		t.Fatalf("InitUptime failed: %v", err)
	}
	if SystemUptime() != u {
		t.Errorf("SystemUptime does not return the initialized timekeeper")
	}
	if _, err := InitUptime(c, 1<<24, 1000); err != ErrUptimeInitialized {
		t.Errorf("second InitUptime: got %v, want ErrUptimeInitialized", err)
	}
}

func TestNewUptimeValidation(t *testing.T) {
	c := &stepCounter{step: 1, modulus: 1 << 24}
	for _, m := range []uint64{0, 1, 3, 1000, 1<<32 + 1, 1 << 33} {
		if _, err := newUptime(c, m, 1000); err != ErrBadModulus {
			t.Errorf("modulus %d: got %v, want ErrBadModulus", m, err)
		}
	}
	if _, err := newUptime(c, 1<<32, 0); err != ErrBadRate {
		t.Errorf("zero rate: got %v, want ErrBadRate", err)
	}
}

func TestElapsedTimeConversions(t *testing.T) {
	e := ElapsedTime{Ticks: 7_083_333 * 3, RateHz: 7_083_333}
	if e.Millis() != 3000 {
		t.Errorf("Millis() = %d, want 3000", e.Millis())
	}
	if e.Micros() != 3_000_000 {
		t.Errorf("Micros() = %d, want 3000000", e.Micros())
	}
}

func TestElapsedTimeZeroRate(t *testing.T) {
	var e ElapsedTime
	if e.Millis() != 0 || e.Micros() != 0 {
		t.Errorf("zero value converts to %d ms / %d us", e.Millis(), e.Micros())
	}
	e = ElapsedTime{Ticks: 500}
	if e.Millis() != 0 || e.Micros() != 0 {
		t.Errorf("zero rate converts to %d ms / %d us", e.Millis(), e.Micros())
	}
}
