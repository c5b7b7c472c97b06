package postgres

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gunvolt24/movies/internal/ports"
	"github.com/Gunvolt24/movies/pkg/metrics"
)

var _ ports.BackgroundWorker = (*Janitor)(nil)

// Pruner — то, что умеет чистить просроченные записи.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Janitor — фоновая чистка movie_cache раз в interval.
type Janitor struct {
	store    Pruner
	interval time.Duration
	log      ports.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

func NewJanitor(store Pruner, interval time.Duration, log ports.Logger) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{store: store, interval: interval, log: log, stop: make(chan struct{})}
}

// Run — блокируется до отмены ctx или Close.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-j.stop:
			return nil
		case <-ticker.C:
			j.pruneOnce(ctx)
		}
	}
}

func (j *Janitor) pruneOnce(ctx context.Context) {
	n, err := j.store.Prune(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			j.log.Warnf(ctx, "cache janitor: %v", err)
		}
		return
	}
	if n > 0 {
		metrics.CachePruned.Add(float64(n))
		j.log.Infof(ctx, "cache janitor: pruned %d expired entries", n)
	}
}

func (j *Janitor) Close() error {
	j.stopOnce.Do(func() { close(j.stop) })
	return nil
}
