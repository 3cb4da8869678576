// Package pg connects to PostgreSQL through a pgx pool, applies the kv_entries
// schema with goose and exposes the table as a kvstore.Store.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	store := pg.NewStore(pool, cfg.Namespace)
//
// Connect retries the initial ping with exponential backoff. Migrate runs the
// embedded migrations unless PG_MIGRATIONS_PATH names a directory on disk.
//
// # Configuration
//
//	PG_CONN_URL            (required)
//	PG_MAX_OPEN_CONNS      (default: 10)
//	PG_MAX_IDLE_CONNS      (default: 5)
//	PG_HEALTHCHECK_PERIOD  (default: 1m)
//	PG_MAX_CONN_IDLE_TIME  (default: 10m)
//	PG_MAX_CONN_LIFETIME   (default: 30m)
//	PG_RETRY_ATTEMPTS      (default: 3)
//	PG_RETRY_INTERVAL      (default: 5s)
//	PG_MIGRATIONS_PATH     (default: embedded)
//	PG_MIGRATIONS_TABLE    (default: schema_migrations)
//	PG_KV_NAMESPACE        (default: hubauth)
//
// # Transactions
//
// WithTx attaches a pgx.Tx to a context. Store methods called with that context
// run inside the transaction, so a session write can commit together with the
// caller's own statements:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	ctx = pg.WithTx(ctx, tx)
//	if err := store.Set(ctx, kvstore.SessionKey, data); err != nil {
//		return err
//	}
//	return tx.Commit(ctx)
//
// # Errors
//
// IsNotFoundError, IsDuplicateKeyError and IsTxClosedError classify pgx errors.
// Missing keys are reported as kvstore.ErrNotFound.
package pg
