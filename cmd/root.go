// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwkeyer/internal/config"
	"github.com/ColonelBlimp/cwkeyer/internal/serialkey"
)

var rootCmd = &cobra.Command{
	Use:   "cwkeyer",
	Short: "CW (Morse code) keyer and trainer",
	Long: `A dual-mode CW keyer that decodes iambic paddle or straight key input
into text, with sidetone audio and session statistics.`,
	RunE: runKeyer,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().StringP("mode", "m", "iambic-a", "input mode: iambic-a, iambic-b, straight, or none")
	rootCmd.PersistentFlags().IntP("wpm", "w", 15, "speed setting in words per minute (5-40)")
	rootCmd.PersistentFlags().StringP("device", "d", "", "serial key adapter port (empty for none)")
	rootCmd.PersistentFlags().Int("baud", 115200, "serial adapter baud rate")
	rootCmd.PersistentFlags().Float64P("frequency", "f", 650, "sidetone pitch in Hz")
	rootCmd.PersistentFlags().Bool("sidetone", true, "enable the audio sidetone")
	rootCmd.PersistentFlags().BoolP("tui", "t", false, "show the live terminal monitor")
	rootCmd.PersistentFlags().Bool("store", true, "record per-session statistics")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")

	// Bind flags to viper
	viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode"))
	viper.BindPFlag("wpm", rootCmd.PersistentFlags().Lookup("wpm"))
	viper.BindPFlag("serial_port", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("serial_baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("frequency", rootCmd.PersistentFlags().Lookup("frequency"))
	viper.BindPFlag("sidetone", rootCmd.PersistentFlags().Lookup("sidetone"))
	viper.BindPFlag("tui", rootCmd.PersistentFlags().Lookup("tui"))
	viper.BindPFlag("stats_enabled", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

// runKeyer runs the interactive keyer. A serial adapter supplies the paddle
// or key contacts (and the speed pot) when one is configured; without one
// the loop still runs so the sidetone and monitor can be checked, but no
// symbols are produced.
func runKeyer(cmd *cobra.Command, _ []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	opts := sessionOptions{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}

	if s.SerialPort != "" {
		bridge := serialkey.New(serialkey.Config{
			Port:       s.SerialPort,
			Baud:       s.SerialBaud,
			InitialWPM: s.WPM,
		})
		if err := bridge.Open(); err != nil {
			return fmt.Errorf("serial adapter: %w", err)
		}
		defer bridge.Close()
		opts.keys = bridge
		opts.speed = bridge
	} else {
		fmt.Fprintln(opts.errOut, "no serial adapter configured; keying input is unavailable (set serial_port or --device)")
	}

	return runSession(cmd.Context(), s, opts)
}
