package config

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. With debug enabled every level is
// written as JSON to <data_dir>/debug.log; otherwise only warnings and
// errors reach stderr so normal CLI output stays clean.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if cfg.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zcfg.OutputPaths = []string{filepath.Join(cfg.DataDir(), "debug.log")}
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.Debug {
		logger.Debug("debug logging started", zap.String("data_dir", cfg.DataDir()))
	}
	return logger, nil
}
