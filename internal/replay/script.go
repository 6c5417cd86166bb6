// internal/replay/script.go
// Package replay supplies deterministic key input: recorded contact
// timelines played back against the clock, and timelines synthesized from
// text. Both serve the engine through the same sampler interface as a live
// key.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
)

var (
	ErrBadRecord   = errors.New("malformed script record")
	ErrBadOffset   = errors.New("script offsets must not decrease")
	ErrEmptyScript = errors.New("script has no events")
)

// Event is one scheduled contact-state change.
type Event struct {
	// At is the offset from script start
	At time.Duration
	// State is the contact state in effect from At onward
	State keyer.KeyState
}

// Script replays a contact timeline as a key sampler. Call Start once
// before the engine begins sampling; Sample then serves the state scheduled
// at or before the elapsed time. The cursor only moves forward, so each
// Sample call costs at most the events that fell due since the last one.
type Script struct {
	events  []Event
	clock   keyer.Clock
	started time.Time
	cursor  int
	current keyer.KeyState
}

// NewScript wraps a parsed event timeline. A nil clock means wall time.
func NewScript(events []Event, clock keyer.Clock) (*Script, error) {
	if len(events) == 0 {
		return nil, ErrEmptyScript
	}
	if clock == nil {
		clock = time.Now
	}
	return &Script{events: events, clock: clock}, nil
}

// Load reads a script file from disk.
func Load(path string, clock keyer.Clock) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	events, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return NewScript(events, clock)
}

// Parse reads a script, one record per line:
//
//	<offset-ms> <dot> <dash> <straight>
//
// with 0/1 contact fields. Blank lines and lines starting with # are
// skipped. Offsets must not decrease.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	lineNo := 0
	last := time.Duration(-1)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: want 4 fields, got %d: %w", lineNo, len(fields), ErrBadRecord)
		}

		offsetMs, err := strconv.Atoi(fields[0])
		if err != nil || offsetMs < 0 {
			return nil, fmt.Errorf("line %d: bad offset %q: %w", lineNo, fields[0], ErrBadRecord)
		}

		var contacts [3]bool
		for i, field := range fields[1:] {
			switch field {
			case "0":
			case "1":
				contacts[i] = true
			default:
				return nil, fmt.Errorf("line %d: contact fields must be 0 or 1, got %q: %w", lineNo, field, ErrBadRecord)
			}
		}

		at := time.Duration(offsetMs) * time.Millisecond
		if at < last {
			return nil, fmt.Errorf("line %d: offset %dms: %w", lineNo, offsetMs, ErrBadOffset)
		}
		last = at

		events = append(events, Event{
			At: at,
			State: keyer.KeyState{
				Dot:      contacts[0],
				Dash:     contacts[1],
				Straight: contacts[2],
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrEmptyScript
	}
	return events, nil
}

// Start marks the current instant as script time zero.
func (s *Script) Start() {
	s.started = s.clock()
}

// Sample returns the contact state scheduled at or before the elapsed time.
// Before Start it reports all contacts open. Non-blocking and fast.
func (s *Script) Sample() keyer.KeyState {
	if s.started.IsZero() {
		return keyer.KeyState{}
	}

	elapsed := s.clock().Sub(s.started)
	for s.cursor < len(s.events) && s.events[s.cursor].At <= elapsed {
		s.current = s.events[s.cursor].State
		s.cursor++
	}
	return s.current
}

// Duration returns the offset of the final event.
func (s *Script) Duration() time.Duration {
	return s.events[len(s.events)-1].At
}

// Done reports whether the full timeline has played out.
func (s *Script) Done() bool {
	if s.started.IsZero() {
		return false
	}
	return s.clock().Sub(s.started) >= s.Duration()
}
