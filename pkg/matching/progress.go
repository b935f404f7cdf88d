package matching

import "sync"

// ProgressFunc receives coarse progress updates during a run. The fraction is
// in [0, 1] and never decreases within a run. The message names the phase
// currently executing.
type ProgressFunc func(fraction float64, message string)

// reporter serializes progress callbacks and clamps fractions so that
// concurrent workers cannot move progress backwards.
type reporter struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last float64
}

func newReporter(fn ProgressFunc) *reporter {
	return &reporter{fn: fn}
}

func (r *reporter) report(fraction float64, message string) {
	if r == nil || r.fn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if fraction > 1 {
		fraction = 1
	}
	if fraction < r.last {
		fraction = r.last
	}
	r.last = fraction
	r.fn(fraction, message)
}

// window maps a stage-local done/total count onto the [lo, hi] slice of the
// overall run.
func (r *reporter) window(lo, hi float64, message string) func(done, total int) {
	return func(done, total int) {
		if total <= 0 {
			return
		}
		r.report(lo+(hi-lo)*float64(done)/float64(total), message)
	}
}
