package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/movies/internal/ports"
	"github.com/Gunvolt24/movies/pkg/metrics"
)

var _ ports.CacheStore = (*InstrumentedStore)(nil)

// InstrumentedStore — декоратор хранилища: логи, cache_operations_total
// и приведение ошибок бэкенда к ErrUnavailable.
type InstrumentedStore struct {
	inner   ports.CacheStore
	log     ports.Logger
	backend string
}

func NewInstrumentedStore(inner ports.CacheStore, log ports.Logger, backend string) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, log: log, backend: backend}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, key)
	latency := time.Since(start)

	switch {
	case err != nil:
		metrics.CacheOps.WithLabelValues("error").Inc()
		s.log.Warnf(ctx, "cache get backend=%s key=%s result=error latency=%s: %v", s.backend, key, latency, err)
		return nil, false, unavailable(err)
	case ok:
		metrics.CacheOps.WithLabelValues("hit").Inc()
		s.log.Infof(ctx, "cache get backend=%s key=%s result=hit latency=%s", s.backend, key, latency)
	default:
		metrics.CacheOps.WithLabelValues("miss").Inc()
		s.log.Infof(ctx, "cache get backend=%s key=%s result=miss latency=%s", s.backend, key, latency)
	}
	return value, ok, nil
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value, ttl)
	latency := time.Since(start)

	if err != nil {
		metrics.CacheOps.WithLabelValues("set_error").Inc()
		s.log.Warnf(ctx, "cache set backend=%s key=%s ttl=%s latency=%s: %v", s.backend, key, ttl, latency, err)
		return unavailable(err)
	}
	metrics.CacheOps.WithLabelValues("set").Inc()
	s.log.Infof(ctx, "cache set backend=%s key=%s ttl=%s latency=%s", s.backend, key, ttl, latency)
	return nil
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	if err := s.inner.Ping(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *InstrumentedStore) Close() error { return s.inner.Close() }

// Backend — имя бэкенда (redis | postgres | memory).
func (s *InstrumentedStore) Backend() string { return s.backend }

func unavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
