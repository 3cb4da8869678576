// Package mongo connects to MongoDB with retry and exposes a collection as a
// kvstore.Store.
//
// New retries the initial ping with exponential backoff, which covers Atlas
// cold starts and short network hiccups during deploys:
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(ctx)
//
//	store := mongo.NewStore(db, cfg)
//	if err := store.EnsureIndexes(ctx); err != nil {
//		return err
//	}
//
// # Configuration
//
//	MONGODB_URL                 (required)
//	MONGODB_CONNECT_TIMEOUT     (default: 10s)
//	MONGODB_MAX_POOL_SIZE       (default: 100)
//	MONGODB_MIN_POOL_SIZE       (default: 1)
//	MONGODB_MAX_CONN_IDLE_TIME  (default: 300s)
//	MONGODB_RETRY_WRITES        (default: true)
//	MONGODB_RETRY_READS         (default: true)
//	MONGODB_RETRY_ATTEMPTS      (default: 3)
//	MONGODB_RETRY_INTERVAL      (default: 5s)
//	MONGODB_DATABASE            (default: hubauth)
//	MONGODB_COLLECTION          (default: kv_entries)
//	MONGODB_KV_NAMESPACE        (default: hubauth)
//
// # Errors
//
//	ErrEmptyConnectionURL     - no URL configured
//	ErrFailedToConnectToMongo - returned when all retry attempts are exhausted
//	ErrHealthcheckFailed      - returned when the health check ping fails
package mongo
