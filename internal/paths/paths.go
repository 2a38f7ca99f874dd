// Package paths resolves the relink configuration and data directories.
//
// Both follow the same precedence: explicit flag, then environment
// variable, then the platform default. The data directory additionally
// honours data_dir from config.yaml, between the flag and the environment.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the directory name used under the platform config and data
// roots.
const AppDirName = "relink"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "RELINK_CONFIG_DIR"
	EnvDataDir   = "RELINK_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/relink (fallback ~/.config/relink)
// macOS:   ~/Library/Application Support/relink
// Windows: %APPDATA%/relink
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/relink (fallback ~/.local/share/relink)
// macOS:   ~/Library/Application Support/relink
// Windows: %APPDATA%/relink
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// xdgDir resolves an XDG base directory on Linux and os.UserConfigDir
// elsewhere, then appends AppDirName.
func xdgDir(envVar, homeFallback string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppDirName), nil
	}
	if xdg := os.Getenv(envVar); xdg != "" {
		return filepath.Join(xdg, AppDirName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeFallback, AppDirName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > RELINK_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	return resolve(flag, EnvConfigDir, DefaultConfigDir)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > RELINK_DATA_DIR > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag == "" {
		flag = configYAMLValue
	}
	return resolve(flag, EnvDataDir, DefaultDataDir)
}

func resolve(explicit, envVar string, fallback func() (string, error)) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}
	if env := os.Getenv(envVar); env != "" {
		return filepath.Abs(env)
	}
	return fallback()
}
