package ingest

// ProgressReporter receives coarse progress milestones from the
// orchestrator. The task substrate persists them for the polling UI.
type ProgressReporter interface {
	Update(percent int)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(percent int)

// Update implements ProgressReporter.
func (f ProgressFunc) Update(percent int) { f(percent) }

// NopProgress discards progress updates.
var NopProgress ProgressReporter = ProgressFunc(func(int) {})

// monotonicProgress enforces per-attempt monotonicity: a late milestone
// from an earlier stage never rolls the reported percent backwards.
type monotonicProgress struct {
	inner ProgressReporter
	last  int
}

func newMonotonicProgress(inner ProgressReporter) *monotonicProgress {
	if inner == nil {
		inner = NopProgress
	}
	return &monotonicProgress{inner: inner, last: -1}
}

func (m *monotonicProgress) Update(percent int) {
	if percent <= m.last {
		return
	}
	m.last = percent
	m.inner.Update(percent)
}
