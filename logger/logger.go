// Package logger builds the zap logger shared by the server, the admin CLI
// and the background jobs.
package logger

import (
	"fmt"

	"github.com/NightSight1044/legalCRM1/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a structured logger. Production or LOG_FORMAT=json gets the
// JSON encoder, everything else the colored console one.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.LogFormat == "json" || cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.InitialFields = map[string]interface{}{
		"app":         cfg.AppName,
		"environment": cfg.Environment,
	}

	l, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return l, nil
}

// Install builds the logger and makes it the zap global. The returned
// function flushes and restores the previous global.
func Install(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	restore := zap.ReplaceGlobals(l)
	return l, func() {
		_ = l.Sync()
		restore()
	}, nil
}

// WithTenant adds tenant context to a logger
func WithTenant(l *zap.Logger, firmID, profileID string) *zap.Logger {
	return l.With(
		zap.String("firm_id", firmID),
		zap.String("profile_id", profileID),
	)
}

// WithRequest adds request context to a logger
func WithRequest(l *zap.Logger, method, path, requestID string) *zap.Logger {
	return l.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}
