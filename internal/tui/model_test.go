package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
)

func sizedModel(t *testing.T, mode keyer.Mode) *Model {
	t.Helper()
	m := NewModel(mode)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})
	sized, ok := updated.(*Model)
	if !ok {
		t.Fatalf("Update() returned %T, want *Model", updated)
	}
	return sized
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := NewModel(keyer.ModeIambicA)
	if out := m.View(); out != "" {
		t.Errorf("View() before sizing = %q, want empty", out)
	}
}

func TestModel_TranscriptAccumulates(t *testing.T) {
	m := sizedModel(t, keyer.ModeStraight)

	for _, ch := range "CQ " {
		updated, _ := m.Update(OutputMsg(keyer.Output{Character: ch, IsWordSpace: ch == ' '}))
		m = updated.(*Model)
	}

	out := m.View()
	if !strings.Contains(out, "CQ") {
		t.Errorf("View() missing transcript, got:\n%s", out)
	}
}

func TestModel_StatusLine(t *testing.T) {
	m := sizedModel(t, keyer.ModeIambicB)

	updated, _ := m.Update(SpeedMsg(keyer.ProfileForWPM(15)))
	m = updated.(*Model)
	updated, _ = m.Update(AccuracyMsg(0.9))
	m = updated.(*Model)

	status := m.statusLine()
	for _, want := range []string{"iambic-b", "15 WPM", "dot 80ms", "acc 90%"} {
		if !strings.Contains(status, want) {
			t.Errorf("statusLine() missing %q, got %q", want, status)
		}
	}
}

func TestModel_LampTogglesStatus(t *testing.T) {
	m := sizedModel(t, keyer.ModeIambicA)

	dark := m.statusLine()
	updated, _ := m.Update(LampMsg(true))
	m = updated.(*Model)
	lit := m.statusLine()
	if dark == lit {
		t.Error("statusLine() unchanged after LampMsg(true)")
	}
}

func TestModel_NoticeReplacesHelp(t *testing.T) {
	m := sizedModel(t, keyer.ModeIambicA)

	if footer := m.footerLine(); !strings.Contains(footer, "quit") {
		t.Errorf("footerLine() = %q, want help text", footer)
	}
	updated, _ := m.Update(NoticeMsg("no input mode is active"))
	m = updated.(*Model)
	if footer := m.footerLine(); !strings.Contains(footer, "no input mode") {
		t.Errorf("footerLine() = %q, want the notice", footer)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m := sizedModel(t, keyer.ModeIambicA)
			msg := tea.KeyMsg{Type: tea.KeyCtrlC}
			if key == "q" {
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
			}
			_, cmd := m.Update(msg)
			if cmd == nil {
				t.Fatalf("Update(%q) returned no command, want tea.Quit", key)
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("Update(%q) command = %T, want tea.QuitMsg", key, cmd())
			}
		})
	}
}

func TestModel_DoneQuits(t *testing.T) {
	m := sizedModel(t, keyer.ModeStraight)
	_, cmd := m.Update(DoneMsg{})
	if cmd == nil {
		t.Fatal("Update(DoneMsg) returned no command, want tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Update(DoneMsg) command = %T, want tea.QuitMsg", cmd())
	}
}

func TestLamp_SendsEdges(t *testing.T) {
	// Lamp needs a live program; the edge handling itself is covered by
	// TestModel_LampTogglesStatus, so only exercise the constructor here.
	if NewLamp(nil) == nil {
		t.Fatal("NewLamp() = nil")
	}
}
