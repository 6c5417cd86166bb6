// internal/tui/model.go
// Package tui renders the live keying monitor: decoded text in a scrollback
// view, the current speed, a keying lamp, and the straight-key accuracy.
// The engine goroutine delivers events through Program.Send; the monitor
// never touches engine state directly.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
)

// Engine events. All are safe to Send from any goroutine.
type (
	// OutputMsg carries one decoded character or word space.
	OutputMsg keyer.Output
	// SpeedMsg carries the profile published on a speed change.
	SpeedMsg keyer.SpeedProfile
	// LampMsg reports the keying state: true while the actuator is on.
	LampMsg bool
	// AccuracyMsg carries the windowed straight-key accuracy in [0,1].
	AccuracyMsg float64
	// NoticeMsg carries a one-shot operator notice shown in the footer.
	NoticeMsg string
	// DoneMsg reports that the input source finished; the monitor quits.
	DoneMsg struct{}
)

// chromeHeight is the status line plus the footer line.
const chromeHeight = 2

var (
	transcriptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	unknownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	lampOnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	lampOffStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea keying monitor.
type Model struct {
	mode keyer.Mode

	vp    viewport.Model
	ready bool

	transcript []rune
	profile    keyer.SpeedProfile
	hasProfile bool
	lamp       bool
	accuracy   float64
	hasAcc     bool
	notice     string

	width  int
	height int
}

// NewModel constructs a monitor for the given input mode.
func NewModel(mode keyer.Mode) *Model {
	return &Model{mode: mode}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := msg.Height - chromeHeight
		if bodyHeight < 1 {
			bodyHeight = 1
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = bodyHeight
		}
		m.refreshTranscript()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	case OutputMsg:
		m.transcript = append(m.transcript, msg.Character)
		m.refreshTranscript()
		return m, nil
	case SpeedMsg:
		m.profile = keyer.SpeedProfile(msg)
		m.hasProfile = true
		return m, nil
	case LampMsg:
		m.lamp = bool(msg)
		return m, nil
	case AccuracyMsg:
		m.accuracy = float64(msg)
		m.hasAcc = true
		return m, nil
	case NoticeMsg:
		m.notice = string(msg)
		return m, nil
	case DoneMsg:
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return ""
	}
	return m.vp.View() + "\n" + m.statusLine() + "\n" + m.footerLine()
}

// refreshTranscript re-wraps the decoded text for the current width and
// keeps the view pinned to the newest characters.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	text := m.renderTranscript()
	if m.vp.Width > 0 {
		text = lipgloss.NewStyle().Width(m.vp.Width).Render(text)
	}
	m.vp.SetContent(text)
	m.vp.GotoBottom()
}

func (m *Model) renderTranscript() string {
	var b strings.Builder
	for _, ch := range m.transcript {
		if ch == keyer.Unknown {
			b.WriteString(unknownStyle.Render(string(ch)))
		} else {
			b.WriteString(transcriptStyle.Render(string(ch)))
		}
	}
	return b.String()
}

func (m *Model) statusLine() string {
	lamp := lampOffStyle.Render("○")
	if m.lamp {
		lamp = lampOnStyle.Render("●")
	}
	segments := []string{fmt.Sprintf("Mode %s", m.mode)}
	if m.hasProfile {
		segments = append(segments,
			fmt.Sprintf("%d WPM", m.profile.WPM),
			fmt.Sprintf("dot %dms", m.profile.Dot.Milliseconds()))
	}
	if m.hasAcc {
		segments = append(segments, fmt.Sprintf("acc %.0f%%", m.accuracy*100))
	}
	return lamp + " " + statusStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) footerLine() string {
	if m.notice != "" {
		return noticeStyle.Render(m.notice)
	}
	return helpStyle.Render("q quit  ↑/↓ scroll")
}

// Lamp adapts a running monitor program into a keyer.Actuator driving the
// keying indicator. Send hands the edge to the program's event loop, which
// services it between frames.
type Lamp struct {
	p *tea.Program
}

// NewLamp returns the keying-lamp actuator for a monitor program.
func NewLamp(p *tea.Program) *Lamp {
	return &Lamp{p: p}
}

// Activate lights the lamp.
func (l *Lamp) Activate() {
	l.p.Send(LampMsg(true))
}

// Deactivate darkens the lamp.
func (l *Lamp) Deactivate() {
	l.p.Send(LampMsg(false))
}
