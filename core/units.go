package core

// Frequency units, in Hz.
const (
	KHz = 1000
	MHz = 1000 * KHz
)

// pollUntil calls ready up to budget times and reports whether it ever
// returned true, along with the number of polls spent.
func pollUntil(ready func() bool, budget uint32) (uint32, bool) {
	for n := uint32(1); n <= budget; n++ {
		if ready() {
			return n, true
		}
	}
	return budget, false
}
