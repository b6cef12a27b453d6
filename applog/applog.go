// Package applog builds the structured loggers used across llmpipe. CLI
// wrappers get a zap logger configured for human-readable console output or
// production JSON depending on config, mirroring how codeNERD's cmd/nerd
// built its zap.Logger from a verbose flag. Library packages never reach for
// a global logger; they accept a *zap.SugaredLogger (or nil, in which case
// they fall back to zap.NewNop()) so tests stay hermetic.
package applog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category tags a log line with the subsystem that emitted it, the way
// codeNERD's internal/logging.Category tagged audit events per component.
type Category string

const (
	CategoryPipeline Category = "pipeline"
	CategoryProvider Category = "provider"
	CategoryCache    Category = "cache"
	CategorySelector Category = "selector"
	CategoryHTTP     Category = "http"
)

// Options configures logger construction.
type Options struct {
	// Debug enables verbose (debug-level) logging, matching the teacher's
	// --verbose flag behavior; otherwise the level is info.
	Debug bool
	// JSON selects zap's production JSON encoding instead of the
	// human-readable console encoding used by default; useful for CLI
	// wrappers run non-interactively (cron, CI).
	JSON bool
}

// New builds a *zap.Logger per Options.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.JSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if opts.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

// Sugared builds a category-scoped SugaredLogger. Packages in this module
// accept a *zap.SugaredLogger parameter (never nil-checked by callers: pass
// Nop() when no logging is desired) so every log call carries its category
// as a structured field rather than a string prefix.
func Sugared(logger *zap.Logger, category Category) *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger.With(zap.String("category", string(category))).Sugar()
}

// Nop returns a logger that discards everything, used as the default in
// tests and in library entry points that don't care to observe telemetry.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
