// Package logger provides structured logging utilities built on Go's standard slog package.
//
// # Basic Usage
//
//	import "github.com/aprenmaker/hubauth/core/logger"
//
//	log := logger.New(
//		logger.WithDevelopment("hubauth"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("session created",
//		logger.Component("session"),
//		logger.SessionToken(sess.Token),
//		logger.Scope("persistent"),
//	)
//
// # Environment Configurations
//
//	// Development: text format, debug level, stdout
//	devLogger := logger.New(logger.WithDevelopment("hubauth"))
//
//	// Production: JSON format, info level, stdout
//	prodLogger := logger.New(logger.WithProduction("hubauth"))
//
//	// Pick by APP_ENV
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "hubauth"))
//
// # Context-Aware Logging
//
// Extractors add attributes to every *Context call:
//
//	log := logger.New(
//		logger.WithContextValue("command", commandKey{}),
//	)
//	log.InfoContext(ctx, "dispatching")
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or empty input, which slog drops,
// so callers never need nil checks:
//
//	log.Warn("analytics write failed", logger.Error(err), logger.StoreKey("analytics-log"))
//
// Libraries in this module default to Discard() so they stay silent unless a
// logger is injected.
package logger
