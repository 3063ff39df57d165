package internal

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: production JSON by default,
// a development console encoder for log_format=console or --verbose.
func NewLogger(config *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("parsing log_level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if config.Verbose || config.LogFormat == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	if config.Verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
