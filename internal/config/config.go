// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
)

const (
	AppName       = "cwkeyer"
	ConfigType    = "yaml"
	StatsDBName   = "sessions.db"
	DefaultConfig = `# CW Keyer Configuration

# Keying
mode: "iambic-a"        # Input mode: iambic-a, iambic-b, straight, or none
wpm: 15                 # Speed setting in words per minute (5-40)
                        # Overridden live by the speed pot when a serial
                        # adapter reports one

# Serial key adapter
serial_port: ""         # Adapter port (e.g. /dev/ttyUSB0), empty = no adapter
serial_baud: 115200     # Adapter baud rate

# Sidetone
sidetone: true          # Enable the audio sidetone
frequency: 650          # Sidetone pitch in Hz
volume: 0.4             # Sidetone amplitude (0.0-1.0)
sample_rate: 48000      # Playback sample rate in Hz
channels: 1             # Playback channels (1=mono)

# Session statistics
stats_enabled: true     # Record per-session aggregates
stats_db: ""            # SQLite path, empty = sessions.db next to this file

# Output
tui: false              # Show the live terminal monitor
debug: false            # Enable debug output
`
)

// Settings holds all application configuration
type Settings struct {
	// Keying
	Mode string `mapstructure:"mode"`
	WPM  int    `mapstructure:"wpm"`

	// Serial key adapter
	SerialPort string `mapstructure:"serial_port"`
	SerialBaud int    `mapstructure:"serial_baud"`

	// Sidetone
	Sidetone   bool    `mapstructure:"sidetone"`
	Frequency  float64 `mapstructure:"frequency"`
	Volume     float64 `mapstructure:"volume"`
	SampleRate float64 `mapstructure:"sample_rate"`
	Channels   int     `mapstructure:"channels"`

	// Session statistics
	StatsEnabled bool   `mapstructure:"stats_enabled"`
	StatsDB      string `mapstructure:"stats_db"`

	// Output
	TUI   bool `mapstructure:"tui"`
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/cwkeyer/
func Init() error {
	viper.SetDefault("mode", "iambic-a")
	viper.SetDefault("wpm", keyer.DefaultWPM)
	viper.SetDefault("serial_port", "")
	viper.SetDefault("serial_baud", 115200)
	viper.SetDefault("sidetone", true)
	viper.SetDefault("frequency", 650)
	viper.SetDefault("volume", 0.4)
	viper.SetDefault("sample_rate", 48000)
	viper.SetDefault("channels", 1)
	viper.SetDefault("stats_enabled", true)
	viper.SetDefault("stats_db", "")
	viper.SetDefault("tui", false)
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// If no config file exists anywhere, create the default in the XDG dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// StatsDBPath resolves the SQLite location, defaulting to sessions.db in
// the application's XDG config directory.
func (s *Settings) StatsDBPath() (string, error) {
	if s.StatsDB != "" {
		return s.StatsDB, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	dir := filepath.Join(configDir, AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return filepath.Join(dir, StatsDBName), nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Keying
	if _, err := keyer.ParseMode(s.Mode); err != nil {
		errs = append(errs, fmt.Errorf("mode must be iambic-a, iambic-b, straight, or none, got %q", s.Mode))
	}
	if s.WPM < keyer.MinWPM || s.WPM > keyer.MaxWPM {
		errs = append(errs, fmt.Errorf("wpm must be between %d and %d, got %d", keyer.MinWPM, keyer.MaxWPM, s.WPM))
	}

	// Serial key adapter
	if s.SerialBaud <= 0 {
		errs = append(errs, fmt.Errorf("serial_baud must be positive, got %d", s.SerialBaud))
	}

	// Sidetone
	if s.Frequency < 100 || s.Frequency > 3000 {
		errs = append(errs, fmt.Errorf("frequency must be between 100 and 3000 Hz, got %v", s.Frequency))
	}
	if s.Volume < 0.0 || s.Volume > 1.0 {
		errs = append(errs, fmt.Errorf("volume must be between 0.0 and 1.0, got %v", s.Volume))
	}
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %v", s.SampleRate))
	}
	if s.Channels < 1 || s.Channels > 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", s.Channels))
	}

	// Nyquist check: sidetone pitch must be less than half the sample rate
	if s.Frequency >= s.SampleRate/2 {
		errs = append(errs, fmt.Errorf("frequency (%v Hz) must be less than Nyquist frequency (%v Hz)", s.Frequency, s.SampleRate/2))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
