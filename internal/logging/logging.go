// Package logging builds the zap loggers used by the relink CLI.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options selects level, encoding and destinations for New.
type Options struct {
	// Level is a zap level name (debug, info, warn, error). Empty means info.
	Level string

	// Format is FormatConsole or FormatJSON. Empty means FormatConsole.
	Format string

	// OutputPaths are zap sink URLs or file paths. Empty means stderr.
	OutputPaths []string

	// Writer, when set, receives log output instead of OutputPaths.
	Writer io.Writer
}

// New builds a logger from opts. JSON output uses the production config,
// console output the development config.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch opts.Format {
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	case FormatConsole, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	if opts.Level != "" {
		level, err := zap.ParseAtomicLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = level
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if opts.Writer != nil {
		var enc zapcore.Encoder
		if cfg.Encoding == FormatJSON {
			enc = zapcore.NewJSONEncoder(cfg.EncoderConfig)
		} else {
			enc = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
		}
		return zap.New(zapcore.NewCore(enc, zapcore.AddSync(opts.Writer), cfg.Level)), nil
	}

	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}
