// internal/replay/text_test.go
package replay

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
)

// Timings below assume 15 WPM: dot 80ms, dash 240ms, element gap 80ms,
// synthesized character gap 320ms, synthesized word gap 640ms.

func TestTextEvents_SingleDot(t *testing.T) {
	events, err := TextEvents("E", 15)
	if err != nil {
		t.Fatalf("TextEvents() error = %v", err)
	}
	want := []Event{
		{0, keyer.KeyState{Straight: true}},
		{80 * time.Millisecond, keyer.KeyState{}},
	}
	assertEvents(t, events, want)
}

func TestTextEvents_SingleDash(t *testing.T) {
	events, err := TextEvents("T", 15)
	if err != nil {
		t.Fatalf("TextEvents() error = %v", err)
	}
	want := []Event{
		{0, keyer.KeyState{Straight: true}},
		{240 * time.Millisecond, keyer.KeyState{}},
	}
	assertEvents(t, events, want)
}

func TestTextEvents_ElementGap(t *testing.T) {
	events, err := TextEvents("A", 15)
	if err != nil {
		t.Fatalf("TextEvents() error = %v", err)
	}
	want := []Event{
		{0, keyer.KeyState{Straight: true}},
		{80 * time.Millisecond, keyer.KeyState{}},
		{160 * time.Millisecond, keyer.KeyState{Straight: true}},
		{400 * time.Millisecond, keyer.KeyState{}},
	}
	assertEvents(t, events, want)
}

func TestTextEvents_CharacterGap(t *testing.T) {
	events, err := TextEvents("EE", 15)
	if err != nil {
		t.Fatalf("TextEvents() error = %v", err)
	}
	want := []Event{
		{0, keyer.KeyState{Straight: true}},
		{80 * time.Millisecond, keyer.KeyState{}},
		{400 * time.Millisecond, keyer.KeyState{Straight: true}},
		{480 * time.Millisecond, keyer.KeyState{}},
	}
	assertEvents(t, events, want)
}

func TestTextEvents_WordGap(t *testing.T) {
	events, err := TextEvents("E E", 15)
	if err != nil {
		t.Fatalf("TextEvents() error = %v", err)
	}
	want := []Event{
		{0, keyer.KeyState{Straight: true}},
		{80 * time.Millisecond, keyer.KeyState{}},
		{720 * time.Millisecond, keyer.KeyState{Straight: true}},
		{800 * time.Millisecond, keyer.KeyState{}},
	}
	assertEvents(t, events, want)
}

func TestTextEvents_CollapsesWhitespace(t *testing.T) {
	ragged, err := TextEvents("E \t\n  E", 15)
	if err != nil {
		t.Fatalf("TextEvents(ragged) error = %v", err)
	}
	clean, err := TextEvents("E E", 15)
	if err != nil {
		t.Fatalf("TextEvents(clean) error = %v", err)
	}
	assertEvents(t, ragged, clean)
}

func TestTextEvents_FoldsLowercase(t *testing.T) {
	lower, err := TextEvents("cq", 15)
	if err != nil {
		t.Fatalf("TextEvents(lower) error = %v", err)
	}
	upper, err := TextEvents("CQ", 15)
	if err != nil {
		t.Fatalf("TextEvents(upper) error = %v", err)
	}
	assertEvents(t, lower, upper)
}

func TestTextEvents_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wpm     int
		wantErr error
	}{
		{"unsupported punctuation", "CQ@", 15, ErrUnsupportedChar},
		{"empty text", "", 15, ErrEmptyText},
		{"whitespace only", "   ", 15, ErrEmptyText},
		{"wpm below range", "E", 4, ErrInvalidWPM},
		{"wpm above range", "E", 41, ErrInvalidWPM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TextEvents(tt.text, tt.wpm)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("TextEvents(%q, %d) error = %v, want %v", tt.text, tt.wpm, err, tt.wantErr)
			}
		})
	}
}

func TestNewText_BuildsScript(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	s, err := NewText("E", 15, clk.Now)
	if err != nil {
		t.Fatalf("NewText() error = %v", err)
	}
	if got := s.Duration(); got != 80*time.Millisecond {
		t.Errorf("Duration() = %v, want 80ms", got)
	}
}

func TestNewText_PropagatesErrors(t *testing.T) {
	if _, err := NewText("#", 15, nil); !errors.Is(err, ErrUnsupportedChar) {
		t.Errorf("NewText(#) error = %v, want ErrUnsupportedChar", err)
	}
}

// TestNewText_DecodesThroughEngine closes the loop: a synthesized timeline
// sampled by the straight-key engine must decode back to the source text,
// including the word boundary.
func TestNewText_DecodesThroughEngine(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	script, err := NewText("AB C", 15, clk.Now)
	if err != nil {
		t.Fatalf("NewText() error = %v", err)
	}

	cfg := keyer.DefaultConfig()
	cfg.Mode = keyer.ModeStraight
	cfg.WPM = 15
	cfg.Clock = clk.Now
	cfg.Keys = script

	engine, err := keyer.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	var decoded strings.Builder
	engine.SetOutputCallback(func(out keyer.Output) {
		decoded.WriteRune(out.Character)
	})

	script.Start()
	end := script.Duration() + 2*time.Second
	for elapsed := time.Duration(0); elapsed < end; elapsed += time.Millisecond {
		clk.now = clk.now.Add(time.Millisecond)
		engine.Tick(clk.now)
	}

	if !script.Done() {
		t.Error("script should be exhausted after playback")
	}
	if got := decoded.String(); got != "AB C " {
		t.Errorf("decoded %q, want %q", got, "AB C ")
	}
}
