package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gunvolt24/movies/config"
	"github.com/Gunvolt24/movies/internal/app"
	"github.com/Gunvolt24/movies/internal/ports"
	"github.com/Gunvolt24/movies/internal/ports/mocks"
	"github.com/Gunvolt24/movies/internal/testutil"
	"github.com/golang/mock/gomock"
)

// логгер-заглушка
type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// фейковый воркер, который ждёт отмены контекста
type fakeWorker struct {
	runCalls   int32
	closeCalls int32
}

func (f *fakeWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&f.runCalls, 1)
	<-ctx.Done()
	return ctx.Err()
}
func (f *fakeWorker) Close() error {
	atomic.AddInt32(&f.closeCalls, 1)
	return nil
}

func TestAppRun_GracefulShutdown(t *testing.T) {
	// HTTP-сервер на случайном свободном порту
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	fw := &fakeWorker{}
	a := &app.App{
		Logger:     nopLogger{},
		HTTPServer: srv,
		Workers:    []ports.BackgroundWorker{fw},
	}

	// Запуск и быстрая остановка
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if atomic.LoadInt32(&fw.runCalls) == 0 {
		t.Fatalf("worker.Run should be called")
	}
	if atomic.LoadInt32(&fw.closeCalls) == 0 {
		t.Fatalf("worker.Close should be called")
	}
}

// Ошибка воркера останавливает приложение без ожидания отмены контекста.
func TestAppRun_WorkerErrorStopsApp(t *testing.T) {
	ctrl := gomock.NewController(t)

	w := mocks.NewMockBackgroundWorker(ctrl)
	w.EXPECT().Run(gomock.Any()).Return(errors.New("prune: connection reset"))
	w.EXPECT().Close().Return(nil)

	a := &app.App{
		Logger:     nopLogger{},
		HTTPServer: &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()},
		Workers:    []ports.BackgroundWorker{w},
	}

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop after worker error")
	}
}

func memoryConfig(tmdbURL string) *config.Config {
	var cfg config.Config
	cfg.HTTP = config.HTTP{Addr: "127.0.0.1:0", GinMode: "test", HandlerTimeout: time.Second, DefaultRegion: "FR"}
	cfg.TMDB = config.TMDB{BaseURL: tmdbURL, APIKey: "k", Timeout: time.Second, MaxIdleConns: 2}
	cfg.Cache = config.Cache{Backend: config.BackendMemory, TTL: time.Hour, Prefix: "movies", Capacity: 16}
	return &cfg
}

func TestNewMovies_MemoryBackend(t *testing.T) {
	stub := testutil.NewTMDBStub(t)
	ctx := context.Background()

	m, err := app.NewMovies(ctx, memoryConfig(stub.URL()), nopLogger{})
	if err != nil {
		t.Fatalf("NewMovies: %v", err)
	}
	defer func() { _ = m.Close() }()

	if len(m.Workers) != 0 {
		t.Fatalf("memory backend has no workers, got %d", len(m.Workers))
	}
	if _, err := m.Service.UpcomingMovies(ctx, "FR"); err != nil {
		t.Fatalf("UpcomingMovies: %v", err)
	}
	if _, err := m.Service.UpcomingMovies(ctx, "FR"); err != nil {
		t.Fatalf("UpcomingMovies: %v", err)
	}
	if got := stub.Calls("/3/movie/upcoming"); got != 1 {
		t.Fatalf("second call must be served from cache, tmdb calls=%d", got)
	}
}

func TestNewMovies_UnknownBackend(t *testing.T) {
	cfg := memoryConfig("http://127.0.0.1:1")
	cfg.Cache.Backend = "memcached"

	if _, err := app.NewMovies(context.Background(), cfg, nopLogger{}); err == nil {
		t.Fatalf("want error for unknown backend")
	}
}

func TestBootstrap_WarmUpAndRoutes(t *testing.T) {
	stub := testutil.NewTMDBStub(t)
	cfg := memoryConfig(stub.URL())
	cfg.Cache.WarmUpRegions = []string{"FR"}

	a, cleanup, err := app.Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	defer cleanup()

	if got := stub.Calls("/3/movie/upcoming"); got != 1 {
		t.Fatalf("warm-up must fetch FR once, tmdb calls=%d", got)
	}

	// регион по умолчанию из конфигурации (FR) уже прогрет
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/upcoming", http.NoBody)
	w := httptest.NewRecorder()
	a.HTTPServer.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if got := stub.Calls("/3/movie/upcoming"); got != 1 {
		t.Fatalf("warmed region must be served from cache, tmdb calls=%d", got)
	}

	ready := httptest.NewRecorder()
	a.HTTPServer.Handler.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/ready", http.NoBody))
	if ready.Code != http.StatusOK {
		t.Fatalf("/ready: want 200, got %d", ready.Code)
	}
}
