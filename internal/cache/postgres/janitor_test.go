package postgres

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gunvolt24/movies/internal/ports/mocks"
	"github.com/Gunvolt24/movies/pkg/metrics"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakePruner struct {
	calls atomic.Int64
	n     int64
	err   error
}

func (p *fakePruner) Prune(context.Context) (int64, error) {
	p.calls.Add(1)
	return p.n, p.err
}

func TestJanitor_PrunesOnTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	pr := &fakePruner{n: 3}
	j := NewJanitor(pr, 10*time.Millisecond, log)
	before := testutil.ToFloat64(metrics.CachePruned)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	deadline := time.After(time.Second)
	for pr.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("janitor did not tick, calls=%d", pr.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	_ = j.Close()

	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if got := testutil.ToFloat64(metrics.CachePruned); got < before+6 {
		t.Fatalf("cache_pruned_total: got=%v want>=%v", got, before+6)
	}
}

func TestJanitor_ErrorIsWarnOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warnf(gomock.Any(), gomock.Any(), gomock.Any()).MinTimes(1)

	pr := &fakePruner{err: errors.New("db down")}
	j := NewJanitor(pr, 5*time.Millisecond, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	for pr.calls.Load() < 1 {
		time.Sleep(2 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run must stop cleanly on ctx cancel, got %v", err)
	}
}

func TestJanitor_CloseIsIdempotent(t *testing.T) {
	j := NewJanitor(&fakePruner{}, time.Hour, nil)
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run after Close must return immediately, got %v", err)
	}
}
