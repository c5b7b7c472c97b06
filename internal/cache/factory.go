package cache

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/movies/config"
	"github.com/Gunvolt24/movies/internal/cache/memory"
	pgcache "github.com/Gunvolt24/movies/internal/cache/postgres"
	rediscache "github.com/Gunvolt24/movies/internal/cache/redis"
	"github.com/Gunvolt24/movies/internal/ports"
)

// NewStore — собирает хранилище по cfg.Cache.Backend и оборачивает его в InstrumentedStore.
// Для postgres дополнительно применяются миграции и возвращается воркер чистки.
func NewStore(ctx context.Context, cfg config.Config, log ports.Logger) (*InstrumentedStore, []ports.BackgroundWorker, error) {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		client := rediscache.NewClient(rediscache.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		store := rediscache.New(client, cfg.Cache.Prefix)
		// Недоступный Redis не мешает старту: запросы пойдут мимо кэша.
		if err := store.Ping(ctx); err != nil {
			log.Warnf(ctx, "redis %s is not reachable yet: %v", cfg.Redis.Addr, err)
		}
		return NewInstrumentedStore(store, log, config.BackendRedis), nil, nil

	case config.BackendPostgres:
		pool, err := pgcache.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}
		if err := pgcache.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		store := pgcache.New(pool, cfg.Cache.Prefix)
		janitor := pgcache.NewJanitor(store, cfg.Postgres.PruneInterval, log)
		return NewInstrumentedStore(store, log, config.BackendPostgres), []ports.BackgroundWorker{janitor}, nil

	case config.BackendMemory:
		log.Warnf(ctx, "memory cache backend is process-local; use it for development only")
		return NewInstrumentedStore(memory.New(cfg.Cache.Capacity), log, config.BackendMemory), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
