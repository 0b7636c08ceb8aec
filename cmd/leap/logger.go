package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/config"
)

// newLogger writes to the log file because the TUI owns the terminal.
func newLogger(cfg config.RuntimeConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogLevel == "debug" {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = level
	if cfg.LogFile != "" {
		zcfg.OutputPaths = []string{cfg.LogFile}
		zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("leap"), nil
}
