// cmd/send.go
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwkeyer/internal/config"
	"github.com/ColonelBlimp/cwkeyer/internal/replay"
)

var sendCmd = &cobra.Command{
	Use:   "send <text>...",
	Short: "Key the given text as perfect straight-key Morse",
	Long: `Synthesizes ideal straight-key presses for the given text at the
configured speed, plays them through the sidetone, and decodes them back —
a self-checking demonstration of the timing engine.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	// Text synthesis drives a straight key regardless of the configured
	// paddle mode, and always at the fixed configured speed.
	s.Mode = "straight"

	script, err := replay.NewText(strings.Join(args, " "), s.WPM, time.Now)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	return runSession(cmd.Context(), s, sessionOptions{
		keys:   script,
		script: script,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	})
}
