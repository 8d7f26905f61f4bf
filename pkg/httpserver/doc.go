// Package httpserver wraps net/http with graceful shutdown, env-driven
// timeouts, and health-check handlers.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains in-flight requests within the shutdown timeout.
// Listen failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown so callers can inspect them with errors.Is.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
