package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cbgen/internal/driver"
)

// setupLogging builds the zap logger from --log-level and --log-format and
// hands it to the driver. Logs go to stderr so generated output on stdout
// stays clean.
func setupLogging(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	levelStr, err := pf.GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	format, err := pf.GetString("log-format")
	if err != nil {
		return fmt.Errorf("failed to get log-format flag: %w", err)
	}
	logger, err := newLogger(levelStr, format, useColor(cmd, os.Stderr))
	if err != nil {
		return err
	}
	driver.SetLogger(logger)
	cleanups = append(cleanups, func() { _ = logger.Sync() })
	return nil
}

func newLogger(levelStr, format string, color bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if color {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid --log-format %q (expected console|json)", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("cbgen"), nil
}
