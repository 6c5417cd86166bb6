// cmd/replay.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwkeyer/internal/config"
	"github.com/ColonelBlimp/cwkeyer/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Play back a recorded key-event script",
	Long: `Runs the keyer from a timed key-event script instead of a physical
key. Each script line is "<offset-ms> <dot> <dash> <straight>" with 0/1
contact fields; '#' starts a comment. The configured mode decides how the
contacts are interpreted.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	script, err := replay.Load(args[0], time.Now)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	return runSession(cmd.Context(), s, sessionOptions{
		keys:   script,
		script: script,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	})
}
