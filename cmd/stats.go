// cmd/stats.go
package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwkeyer/internal/config"
	"github.com/ColonelBlimp/cwkeyer/internal/store"
)

var statsLast int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "List recorded keying sessions",
	Long: `Lists past keying sessions with their mode, speed, decoded counts,
and straight-key accuracy. Only aggregates are ever stored.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsLast, "last", 20, "number of recent sessions to show (0 for all)")
	rootCmd.AddCommand(statsCmd)
}

var (
	statsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B0B0B0"))
	statsRowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

func runStats(cmd *cobra.Command, _ []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	path, err := s.StatsDBPath()
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer db.Close()

	sessions, err := db.ListSessions(cmd.Context(), statsLast)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	writeSessionTable(cmd.OutOrStdout(), sessions)
	return nil
}

// writeSessionTable renders one line per session, newest first, with the
// header and rows padded to a common column width.
func writeSessionTable(w io.Writer, sessions []store.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded yet.")
		return
	}

	headers := []string{"STARTED", "DURATION", "MODE", "WPM", "CHARS", "WORDS", "UNKNOWN", "ACCURACY"}
	rows := make([][]string, 0, len(sessions))
	for _, sess := range sessions {
		accuracy := "-"
		if sess.TimedElements > 0 {
			accuracy = fmt.Sprintf("%.0f%%", sess.Accuracy*100)
		}
		rows = append(rows, []string{
			sess.StartedAt.Local().Format("2006-01-02 15:04"),
			sess.EndedAt.Sub(sess.StartedAt).Round(time.Second).String(),
			sess.Mode,
			strconv.Itoa(sess.WPM),
			strconv.Itoa(sess.Characters),
			strconv.Itoa(sess.Words),
			strconv.Itoa(sess.Unknown),
			accuracy,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	fmt.Fprintln(w, statsHeaderStyle.Render(formatStatsRow(headers, widths)))
	for _, row := range rows {
		fmt.Fprintln(w, statsRowStyle.Render(formatStatsRow(row, widths)))
	}
}

func formatStatsRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
