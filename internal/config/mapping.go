// Package config loads and stores the relink side files: the directory
// mapping used for default substitutions, and the CLI settings file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/relink/pkg/types"
)

// MappingFileName is the directory mapping file inside the config directory.
const MappingFileName = "mapping.yaml"

// Mapping file keys.
const (
	KeyOldDirectory    = "old_directory"
	KeyNewDirectory    = "new_directory"
	KeyLastPattern     = "last_pattern"
	KeyLastReplacement = "last_replacement"
)

// MappingPath returns the mapping file path inside configDir.
func MappingPath(configDir string) string {
	return filepath.Join(configDir, MappingFileName)
}

// LoadMapping reads the directory mapping from path. Loading never fails: a
// missing or malformed file yields an empty mapping and a logged warning.
func LoadMapping(path string, logger *zap.Logger) types.DirectoryMapping {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("mapping file does not exist, using defaults", zap.String("path", path))
		} else {
			logger.Warn("cannot stat mapping file, using defaults", zap.String("path", path), zap.Error(err))
		}
		return types.DirectoryMapping{}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("failed to load mapping file, using defaults", zap.String("path", path), zap.Error(err))
		return types.DirectoryMapping{}
	}

	var m types.DirectoryMapping
	if err := v.Unmarshal(&m); err != nil {
		logger.Warn("invalid mapping file, using defaults", zap.String("path", path), zap.Error(err))
		return types.DirectoryMapping{}
	}

	if !v.IsSet(KeyOldDirectory) || !v.IsSet(KeyNewDirectory) {
		logger.Warn("incomplete mapping file", zap.String("path", path),
			zap.Bool(KeyOldDirectory, v.IsSet(KeyOldDirectory)),
			zap.Bool(KeyNewDirectory, v.IsSet(KeyNewDirectory)))
	}
	return m
}

// SaveMapping writes m to path atomically, creating the parent directory if
// needed.
func SaveMapping(path string, m types.DirectoryMapping) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create mapping dir: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data using the temp-file, fsync, rename pattern.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".relink-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting temp file mode: %w", err)
	}

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
