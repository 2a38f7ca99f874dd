package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	settingsFileName = "config"
	settingsFileType = "yaml"
	settingsFileExt  = "config.yaml"

	// Settings keys.
	KeyBackend   = "backend"
	KeyDataDir   = "data_dir"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"

	DefaultBackend   = "sqlite"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "console"
)

// defaultSettingsYAML is written to config.yaml on first run.
const defaultSettingsYAML = `# relink CLI configuration

# Backend selection
backend: sqlite

# Data directory holding relink.db (optional; overridable by --data-dir)
# data_dir:

# Log level: debug, info, warn, error
log_level: warn

# Log format: console or json
log_format: console
`

// LoadSettings reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. A missing config.yaml is
// not an error.
func LoadSettings(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultSettingsFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyBackend, DefaultBackend)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetConfigName(settingsFileName)
	v.SetConfigType(settingsFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultSettingsFile creates a default config.yaml if none exists.
func ensureDefaultSettingsFile(configDir string) error {
	path := filepath.Join(configDir, settingsFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultSettingsYAML), 0o644)
}
