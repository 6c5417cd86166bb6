package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ColonelBlimp/cwkeyer/internal/store"
)

func TestStatsCmd_Properties(t *testing.T) {
	if statsCmd.Use != "stats" {
		t.Errorf("statsCmd.Use = %q, want %q", statsCmd.Use, "stats")
	}
	if statsCmd.Flags().Lookup("last") == nil {
		t.Error("flag \"last\" not found")
	}
}

func TestWriteSessionTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeSessionTable(&buf, nil)
	if !strings.Contains(buf.String(), "No sessions recorded yet.") {
		t.Errorf("output = %q, want empty-store message", buf.String())
	}
}

func TestWriteSessionTable_Rows(t *testing.T) {
	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	sessions := []store.Session{
		{
			StartedAt:     started,
			EndedAt:       started.Add(95 * time.Second),
			Mode:          "straight",
			WPM:           15,
			Characters:    42,
			Words:         9,
			Unknown:       2,
			Accuracy:      0.87,
			TimedElements: 120,
		},
		{
			StartedAt:  started.Add(-time.Hour),
			EndedAt:    started.Add(-time.Hour + 30*time.Second),
			Mode:       "iambic-b",
			WPM:        20,
			Characters: 10,
		},
	}

	var buf bytes.Buffer
	writeSessionTable(&buf, sessions)
	output := buf.String()

	for _, want := range []string{"STARTED", "MODE", "ACCURACY", "straight", "iambic-b", "87%", "1m35s"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	// Paddle sessions have no timed presses, so no accuracy figure
	if strings.Count(output, "%") < 1 {
		t.Errorf("expected one accuracy percentage, got:\n%s", output)
	}
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("len(lines) = %d, want header plus two rows", len(lines))
	}
}

func TestFormatStatsRow(t *testing.T) {
	row := formatStatsRow([]string{"a", "bb"}, []int{3, 4})
	if row != "a    bb" {
		t.Errorf("formatStatsRow() = %q, want %q", row, "a    bb")
	}
}
