// internal/stats/tracker.go
// Package stats measures keying quality from straight-key press timings.
package stats

import (
	"sync"

	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
)

// DefaultWindow is the number of recent presses the accuracy window covers.
const DefaultWindow = 50

// Score rates one classified press against its ideal duration: 1 is a
// perfect element, 0 means the press missed its nominal length by 100%
// or more. Presses with no nominal duration score 0.
func Score(timing keyer.ElementTiming) float64 {
	if timing.Nominal <= 0 {
		return 0
	}
	deviation := timing.Held - timing.Nominal
	if deviation < 0 {
		deviation = -deviation
	}
	score := 1.0 - float64(deviation)/float64(timing.Nominal)
	if score < 0 {
		return 0
	}
	return score
}

// Tracker keeps a sliding window of press scores and reports their mean.
// Safe for concurrent use: the engine records from its loop goroutine while
// the monitor reads.
type Tracker struct {
	mu     sync.Mutex
	window int
	scores []float64
	total  int
}

// NewTracker creates a tracker over the given window size. A window of zero
// or less selects DefaultWindow.
func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window: window,
		scores: make([]float64, 0, window),
	}
}

// Record scores a classified press and adds it to the window.
func (t *Tracker) Record(timing keyer.ElementTiming) {
	score := Score(timing)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.scores = append(t.scores, score)
	t.total++

	// Trim the window to size
	if len(t.scores) > t.window {
		t.scores = t.scores[len(t.scores)-t.window:]
	}
}

// Accuracy returns the mean score over the window, in [0,1]. It returns 0
// until the first press has been recorded.
func (t *Tracker) Accuracy() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range t.scores {
		sum += s
	}
	return sum / float64(len(t.scores))
}

// Count returns how many presses have been recorded since the last Reset,
// including those that have since left the window.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Reset clears the window and the running count.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.scores = t.scores[:0]
	t.total = 0
}
