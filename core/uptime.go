package core

import "errors"

var (
	ErrUptimeInitialized = errors.New("uptime already initialized")
	ErrBadModulus        = errors.New("counter modulus must be a power of two")
	ErrBadRate           = errors.New("counter rate must be non-zero")
)

// Counter is a free-running hardware counter that counts up and wraps at
// a fixed modulus. Down-counting hardware is adapted by the target.
type Counter interface {
	Read() uint32
}

// Delayer blocks for a number of milliseconds.
type Delayer interface {
	DelayMs(ms uint32)
}

// ElapsedTime is a tick count since the timekeeper started.
type ElapsedTime struct {
	Ticks  uint64
	RateHz uint32
}

// Millis returns the elapsed time in whole milliseconds.
func (e ElapsedTime) Millis() uint64 {
	if e.RateHz == 0 {
		return 0
	}
	return mulDiv(e.Ticks, 1000, uint64(e.RateHz))
}

// Micros returns the elapsed time in whole microseconds.
func (e ElapsedTime) Micros() uint64 {
	if e.RateHz == 0 {
		return 0
	}
	return mulDiv(e.Ticks, 1_000_000, uint64(e.RateHz))
}

// Uptime extends a wrapping counter into a monotonic 64-bit tick count.
//
// A reading smaller than the previous one counts as exactly one wrap, so
// callers must read at least once per wrap period (modulus / rate seconds;
// about 16.7 s for a 24-bit counter on the 1 us tick). Longer gaps lose whole
// wrap periods.
type Uptime struct {
	counter Counter
	modulus uint64
	mask    uint32
	rateHz  uint32

	origin uint64
	last   uint32
	wraps  uint64
}

// The single process-wide timekeeper.
var uptime *Uptime

// InitUptime creates the process timekeeper over c. modulus is the
// counter's wrap point and rateHz its count rate. It can only succeed once.
func InitUptime(c Counter, modulus uint64, rateHz uint32) (*Uptime, error) {
	if uptime != nil {
		return nil, ErrUptimeInitialized
	}
	u, err := newUptime(c, modulus, rateHz)
	if err != nil {
		return nil, err
	}
	uptime = u
	return u, nil
}

// SystemUptime returns the process timekeeper, nil before InitUptime.
func SystemUptime() *Uptime {
	return uptime
}

func newUptime(c Counter, modulus uint64, rateHz uint32) (*Uptime, error) {
	if modulus < 2 || modulus > 1<<32 || modulus&(modulus-1) != 0 {
		return nil, ErrBadModulus
	}
	if rateHz == 0 {
		return nil, ErrBadRate
	}
	u := &Uptime{
		counter: c,
		modulus: modulus,
		mask:    uint32(modulus - 1),
		rateHz:  rateHz,
	}
	u.last = c.Read() & u.mask
	u.origin = uint64(u.last)
	return u, nil
}

// RateHz returns the counter rate.
func (u *Uptime) RateHz() uint32 { return u.rateHz }

// Ticks returns the monotonic tick count since initialization.
func (u *Uptime) Ticks() uint64 {
	// The wrap bookkeeping must not interleave with a read from an
	// interrupt handler.
	state := disableInterrupts()
	defer restoreInterrupts(state)

	cur := u.counter.Read() & u.mask
	if cur < u.last {
		u.wraps++
	}
	u.last = cur
	return u.wraps*u.modulus + uint64(cur) - u.origin
}

// Now returns the elapsed time since initialization.
func (u *Uptime) Now() ElapsedTime {
	return ElapsedTime{Ticks: u.Ticks(), RateHz: u.rateHz}
}

// Millis returns the elapsed milliseconds since initialization.
func (u *Uptime) Millis() uint64 {
	return u.Now().Millis()
}

// DelayMs busy-waits for at least ms milliseconds.
func (u *Uptime) DelayMs(ms uint32) {
	u.delayTicks(ceilMulDiv(uint64(ms), uint64(u.rateHz), 1000))
}

// DelayUs busy-waits for at least us microseconds.
func (u *Uptime) DelayUs(us uint32) {
	u.delayTicks(ceilMulDiv(uint64(us), uint64(u.rateHz), 1_000_000))
}

func (u *Uptime) delayTicks(n uint64) {
	if n == 0 {
		return
	}
	start := u.Ticks()
	for u.Ticks()-start < n {
	}
}

// mulDiv returns a*b/c without overflowing for tick counts below 2^63/b.
func mulDiv(a, b, c uint64) uint64 {
	return (a/c)*b + (a%c)*b/c
}

// ceilMulDiv returns ceil(a*b/c) for the small operands used in delays.
func ceilMulDiv(a, b, c uint64) uint64 {
	return (a*b + c - 1) / c
}
