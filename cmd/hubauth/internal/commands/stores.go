package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aprenmaker/hubauth/core/config"
	"github.com/aprenmaker/hubauth/core/health"
	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/integration/database/mongo"
	"github.com/aprenmaker/hubauth/integration/database/pg"
	"github.com/aprenmaker/hubauth/integration/database/redis"
	"github.com/aprenmaker/hubauth/integration/storage/s3"
)

// Store kinds accepted by HUBAUTH_STORE.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreS3       = "s3"
)

func dataDir(cfg AppConfig) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(base, "hubauth"), nil
}

// volatilePath is unique per parent process, so each terminal keeps its own
// non-remembered session the way each browser tab does.
func volatilePath(cfg AppConfig) string {
	if cfg.VolatileFile != "" {
		return cfg.VolatileFile
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("hubauth-%d", os.Getuid()), fmt.Sprintf("volatile-%d.json", os.Getppid()))
}

// backend is an opened persistent store with its release and probe funcs.
type backend struct {
	store kvstore.Store
	close func()
	check health.Check
}

func newBackend(name string, s kvstore.Store, closer func(), ping func(context.Context) error) backend {
	if closer == nil {
		closer = func() {}
	}
	if ping == nil {
		ping = func(ctx context.Context) error {
			_, err := s.Keys(ctx, kvstore.SessionKey)
			return err
		}
	}
	return backend{store: s, close: closer, check: health.Check{Name: "store:" + name, Fn: ping}}
}

// openPersistent opens the backend named by cfg.Store. Backend settings come
// from their own environment variables.
func openPersistent(ctx context.Context, cfg AppConfig, log *slog.Logger) (backend, error) {
	kind := strings.ToLower(cfg.Store)
	switch kind {
	case StoreMemory:
		return newBackend(kind, kvstore.NewMemory(), nil, nil), nil

	case StoreFile, "":
		dir, err := dataDir(cfg)
		if err != nil {
			return backend{}, err
		}
		f, err := kvstore.OpenFile(filepath.Join(dir, "state.json"))
		if err != nil {
			return backend{}, err
		}
		return newBackend(StoreFile, f, nil, nil), nil

	case StoreRedis:
		var rc redis.Config
		if err := config.Load(&rc); err != nil {
			return backend{}, err
		}
		client, err := redis.Connect(ctx, rc)
		if err != nil {
			return backend{}, err
		}
		return newBackend(kind, redis.NewStoreFromConfig(client, rc),
			func() { _ = client.Close() }, redis.Healthcheck(client)), nil

	case StorePostgres:
		var pc pg.Config
		if err := config.Load(&pc); err != nil {
			return backend{}, err
		}
		pool, err := pg.Connect(ctx, pc)
		if err != nil {
			return backend{}, err
		}
		if err := pg.Migrate(ctx, pool, pc, log); err != nil {
			pool.Close()
			return backend{}, err
		}
		return newBackend(kind, pg.NewStore(pool, pc.Namespace), pool.Close, pg.Healthcheck(pool)), nil

	case StoreMongo:
		var mc mongo.Config
		if err := config.Load(&mc); err != nil {
			return backend{}, err
		}
		db, err := mongo.NewWithDatabase(ctx, mc)
		if err != nil {
			return backend{}, err
		}
		closer := func() { _ = db.Client().Disconnect(context.Background()) }
		store := mongo.NewStore(db, mc)
		if err := store.EnsureIndexes(ctx); err != nil {
			closer()
			return backend{}, err
		}
		return newBackend(kind, store, closer, mongo.Healthcheck(db.Client())), nil

	case StoreS3:
		var sc s3.Config
		if err := config.Load(&sc); err != nil {
			return backend{}, err
		}
		store, err := s3.New(ctx, sc)
		if err != nil {
			return backend{}, err
		}
		return newBackend(kind, store, nil, nil), nil

	default:
		return backend{}, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}
}
