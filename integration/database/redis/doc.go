// Package redis connects to Redis and exposes it as a kvstore.Store so session
// state, analytics and preferences can live in a shared Redis database.
//
// Connect parses the URL (redis:// or rediss://), then pings the server with
// exponential backoff until it answers or the retry budget is spent:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redis.NewStoreFromConfig(client, cfg)
//
// # Configuration
//
//	REDIS_URL              (default: redis://localhost:6379/0)
//	REDIS_RETRY_ATTEMPTS   (default: 3)
//	REDIS_RETRY_INTERVAL   (default: 5s)
//	REDIS_CONNECT_TIMEOUT  (default: 30s)
//	REDIS_SCAN_BATCH_SIZE  (default: 1000)
//	REDIS_KEY_PREFIX       (default: hubauth:)
//
// # Errors
//
//   - ErrFailedToParseRedisConnString: malformed URL or unsupported scheme
//   - ErrRedisNotReady: no PONG within the retry budget
//   - ErrEmptyConnectionURL: no URL configured
//   - ErrHealthcheckFailed: Healthcheck ping failed
//
// Missing keys are reported as kvstore.ErrNotFound.
package redis
