// Package logger builds configured slog.Logger instances: JSON in
// production, text in development, with optional context attribute
// extractors so request-scoped values (request ID, user ID) land on every
// record automatically.
//
//	log := logger.New(logger.WithEnvironment(cfg.Env, "quoteforge"))
//	logger.SetAsDefault(log)
package logger
