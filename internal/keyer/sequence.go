// internal/keyer/sequence.go
package keyer

import "time"

// Sequence accumulates the element markers of the character being keyed and
// tracks the silence clock, the timestamp of the most recent transition to
// the not-keying state. Both input modes append into the one shared
// Sequence; the decoder drains it.
type Sequence struct {
	marks       []byte
	lastRelease time.Time
}

// NewSequence returns an empty sequence.
func NewSequence() *Sequence {
	return &Sequence{marks: make([]byte, 0, MaxPattern)}
}

// Append records one emitted element marker. Elements beyond MaxPattern are
// ignored; the retained pattern is already past the longest table entry, so
// the decode outcome is unchanged.
func (s *Sequence) Append(e Element) {
	if len(s.marks) < MaxPattern {
		s.marks = append(s.marks, e.Mark())
	}
}

// MarkRelease records a transition to the not-keying state.
func (s *Sequence) MarkRelease(now time.Time) {
	s.lastRelease = now
}

// LastRelease returns the silence clock reading.
func (s *Sequence) LastRelease() time.Time {
	return s.lastRelease
}

// Pattern returns the accumulated markers as a '.'/'-' string.
func (s *Sequence) Pattern() string {
	return string(s.marks)
}

// Len returns the number of accumulated markers.
func (s *Sequence) Len() int {
	return len(s.marks)
}

// Clear drops the accumulated markers. The silence clock is left alone so a
// word gap can still be measured after the character decodes.
func (s *Sequence) Clear() {
	s.marks = s.marks[:0]
}
