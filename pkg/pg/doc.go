// Package pg bootstraps the PostgreSQL layer: pooled connectivity with
// startup retries, goose schema migrations, a health probe, and error
// classification helpers for pgx.
//
// The subscription and usage stores ride on the pool this package opens;
// nothing here knows about the billing domain. Configuration comes from
// PG_* environment variables (see Config field tags for names and
// defaults).
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		// handle error
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		// handle error
//	}
//
// IsNotFoundError, IsDuplicateKeyError, and IsForeignKeyViolationError
// unwrap pgx/pgconn errors so business code can classify failures with
// errors.Is/As without importing driver types.
package pg
