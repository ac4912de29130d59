package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const settingsFile = "settings.toml"

// LogLevel specifies the logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat specifies the log output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// TrainingSettings holds default hyperparameters for the train commands.
// Command-line flags override these.
type TrainingSettings struct {
	Epochs       int     `toml:"epochs"`
	LearningRate float64 `toml:"learning_rate"`
	BatchSize    int     `toml:"batch_size"`
	Precision    string  `toml:"precision"`
}

// DiscoverySettings holds extra toolkit search locations.
type DiscoverySettings struct {
	// ExtraRoots are searched after the built-in candidate roots.
	ExtraRoots []string `toml:"extra_roots"`
}

// LoggingSettings holds logging configuration.
type LoggingSettings struct {
	Level  LogLevel  `toml:"level"`
	Format LogFormat `toml:"format"`
}

// Settings is the optional user settings file, settings.toml in the
// config directory. Everything has a default; the file may be absent.
type Settings struct {
	Training  TrainingSettings  `toml:"training"`
	Discovery DiscoverySettings `toml:"discovery"`
	Logging   LoggingSettings   `toml:"logging"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Training: TrainingSettings{
			Epochs:       3,
			LearningRate: 1e-4,
			BatchSize:    4,
			Precision:    "bf16",
		},
		Logging: LoggingSettings{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// LoadSettings loads settings.toml from the config directory, merged over
// defaults. A missing file yields defaults.
func LoadSettings() (*Settings, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFrom(filepath.Join(dir, settingsFile))
}

// LoadSettingsFrom loads settings from an explicit path, merged over
// defaults.
func LoadSettingsFrom(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	if _, err := toml.Decode(string(data), s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return s, nil
}

// Validate checks that the settings are usable as flag defaults.
func (s *Settings) Validate() error {
	if s.Training.Epochs < 1 || s.Training.Epochs > 100 {
		return fmt.Errorf("training.epochs must be between 1 and 100")
	}
	if s.Training.LearningRate <= 0 || s.Training.LearningRate > 1 {
		return fmt.Errorf("training.learning_rate must be between 0 and 1")
	}
	if s.Training.BatchSize < 1 || s.Training.BatchSize > 128 {
		return fmt.Errorf("training.batch_size must be between 1 and 128")
	}
	switch s.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}
	switch s.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	return nil
}
