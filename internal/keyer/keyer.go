// internal/keyer/keyer.go
// Package keyer implements the CW keying and decoding engine for an iambic
// paddle or a straight key. All timing is non-blocking: components compare
// the injected clock against absolute deadlines once per tick, so a single
// control loop can drive the sidetone and re-sample inputs without missing
// timing windows.
package keyer

import (
	"errors"
	"time"
)

var (
	// ErrInvalidWPM indicates the initial WPM is outside [MinWPM, MaxWPM]
	ErrInvalidWPM = errors.New("initial WPM outside supported range")
	// ErrInvalidMode indicates an unrecognized keyer mode name or value
	ErrInvalidMode = errors.New("unknown keyer mode")
	// ErrInvalidTick indicates a negative tick interval
	ErrInvalidTick = errors.New("tick interval must not be negative")
	// ErrAlreadyRunning indicates Run was called while the engine loop is active
	ErrAlreadyRunning = errors.New("engine already running")
)

// Element is a single keyed Morse element.
type Element int

const (
	// Dot is the short element (one dot unit)
	Dot Element = iota
	// Dash is the long element (three dot units)
	Dash
)

// Mark returns the element's sequence marker, '.' or '-'.
func (e Element) Mark() byte {
	if e == Dash {
		return '-'
	}
	return '.'
}

// Opposite returns the other element kind.
func (e Element) Opposite() Element {
	if e == Dash {
		return Dot
	}
	return Dash
}

func (e Element) String() string {
	if e == Dash {
		return "dash"
	}
	return "dot"
}

// Mode selects which input device drives the engine.
type Mode int

const (
	// ModeNone disables keying input. The loop still runs but produces no
	// symbols; Run reports a notice once at startup.
	ModeNone Mode = iota
	// ModeIambicA is the iambic keyer without squeeze completion memory
	ModeIambicA
	// ModeIambicB is the iambic keyer with squeeze completion memory
	ModeIambicB
	// ModeStraight is the single-contact straight key
	ModeStraight
)

// ParseMode converts a config mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "none", "off":
		return ModeNone, nil
	case "iambic-a", "iambic_a", "a":
		return ModeIambicA, nil
	case "iambic-b", "iambic_b", "b":
		return ModeIambicB, nil
	case "straight", "straight-key":
		return ModeStraight, nil
	}
	return ModeNone, ErrInvalidMode
}

func (m Mode) String() string {
	switch m {
	case ModeIambicA:
		return "iambic-a"
	case ModeIambicB:
		return "iambic-b"
	case ModeStraight:
		return "straight"
	}
	return "none"
}

// KeyState is one sample of every input contact. Unused contacts read false:
// a paddle reports Dot/Dash, a straight key reports Straight.
type KeyState struct {
	// Dot is true while the dot paddle lever is closed
	Dot bool
	// Dash is true while the dash paddle lever is closed
	Dash bool
	// Straight is true while the straight key contact is closed
	Straight bool
}

// KeySampler supplies the current contact state on demand.
// Sample is called once per engine tick and must not block.
type KeySampler interface {
	Sample() KeyState
}

// SpeedSource supplies the operator's speed setting in words per minute.
// Readings must already be clamped to [MinWPM, MaxWPM]; the engine performs
// no further validation. WPM is called once per engine tick and must not
// block.
type SpeedSource interface {
	WPM() int
}

// Actuator drives the combined audible and visual keying signal. The engine
// issues exactly one Activate per element or press start and exactly one
// Deactivate per stop or release. Both must be non-blocking and fast.
type Actuator interface {
	Activate()
	Deactivate()
}

// Clock returns the current time. Injected so tests can drive a fake clock.
type Clock func() time.Time

// Output is one decoded character or one word boundary.
type Output struct {
	// Character is the decoded character, Unknown for an unmatched
	// sequence, or ' ' for a word space
	Character rune
	// IsWordSpace is true if this represents a word boundary
	IsWordSpace bool
	// Timestamp is when this was decoded
	Timestamp time.Time
	// WPM is the speed setting at time of decode
	WPM int
}

// OutputCallback is called for each decoded character or word boundary.
// Must be non-blocking and fast.
type OutputCallback func(output Output)

// SpeedCallback is called when the speed setting changes, including once for
// the initial setting. Must be non-blocking and fast.
type SpeedCallback func(profile SpeedProfile)

// ElementTiming reports how one accepted straight-key press compared to the
// nominal element duration at the moment of release.
type ElementTiming struct {
	// Kind is the element the press classified as
	Kind Element
	// Held is the measured press duration
	Held time.Duration
	// Nominal is the ideal duration for Kind at the speed in effect
	Nominal time.Duration
	// Timestamp is when the key was released
	Timestamp time.Time
}

// TimingCallback is called for each classified straight-key press.
// Must be non-blocking and fast.
type TimingCallback func(timing ElementTiming)

// NoticeCallback receives one-shot operator notices, such as the warning
// that no input mode is active. Must be non-blocking and fast.
type NoticeCallback func(notice string)
