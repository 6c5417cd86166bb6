// internal/replay/text.go
package replay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
)

var (
	ErrInvalidWPM      = errors.New("speed outside supported WPM range")
	ErrUnsupportedChar = errors.New("character cannot be keyed")
	ErrEmptyText       = errors.New("text has no keyable characters")
)

// Gap padding in dot units. The decoder's silence thresholds are strict
// comparisons, so a gap of exactly three (seven) dots would end with the
// next press arriving before any tick observes silence above the
// threshold. One extra dot per gap keeps the rendition decodable with a
// comfortable margin at every supported speed.
const (
	textCharGapDots = keyer.CharGapRatio + 1
	textWordGapDots = keyer.WordGapRatio + 1
)

// TextEvents expands a text into the straight-key contact timeline that
// keys it at the given speed: one press per element, one dot of silence
// between elements, four dots between characters, eight between words.
// Runs of whitespace collapse to a single word gap.
func TextEvents(text string, wpm int) ([]Event, error) {
	if wpm < keyer.MinWPM || wpm > keyer.MaxWPM {
		return nil, ErrInvalidWPM
	}
	profile := keyer.ProfileForWPM(wpm)

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, ErrEmptyText
	}

	var events []Event
	var at time.Duration

	for wi, word := range words {
		if wi > 0 {
			at += time.Duration(textWordGapDots) * profile.Dot
		}
		for ci, c := range word {
			if ci > 0 {
				at += time.Duration(textCharGapDots) * profile.Dot
			}
			pattern, ok := keyer.PatternFor(c)
			if !ok {
				return nil, fmt.Errorf("%q: %w", c, ErrUnsupportedChar)
			}
			for ei := 0; ei < len(pattern); ei++ {
				if ei > 0 {
					at += profile.ElementGap
				}
				held := profile.Dot
				if pattern[ei] == '-' {
					held = profile.Dash
				}
				events = append(events, Event{At: at, State: keyer.KeyState{Straight: true}})
				at += held
				events = append(events, Event{At: at, State: keyer.KeyState{}})
			}
		}
	}

	return events, nil
}

// NewText builds a script that keys the text on the straight key contact.
// A nil clock means wall time.
func NewText(text string, wpm int, clock keyer.Clock) (*Script, error) {
	events, err := TextEvents(text, wpm)
	if err != nil {
		return nil, err
	}
	return NewScript(events, clock)
}
