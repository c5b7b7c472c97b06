package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/movies/config"
	"github.com/Gunvolt24/movies/internal/cache"
	"github.com/Gunvolt24/movies/internal/ports"
	"github.com/Gunvolt24/movies/internal/tmdb"
	rest "github.com/Gunvolt24/movies/internal/transport/http"
	"github.com/Gunvolt24/movies/internal/usecase"
	"github.com/Gunvolt24/movies/pkg/logger"
	"github.com/Gunvolt24/movies/pkg/metrics"
	"github.com/Gunvolt24/movies/pkg/telemetry"
	"github.com/gin-gonic/gin"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, фоновые воркеры).
type App struct {
	Logger          ports.Logger             // логгер
	HTTPServer      *http.Server             // HTTP-сервер
	Workers         []ports.BackgroundWorker // фоновые задачи (чистка кэша и т.п.)
	gracefulTimeout time.Duration            // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Movies — сервис чтения фильмов вместе с его хранилищем и воркерами.
type Movies struct {
	Service *usecase.MovieService
	Store   *cache.InstrumentedStore
	Workers []ports.BackgroundWorker
}

// Close — закрывает воркеры и хранилище.
func (m *Movies) Close() error {
	var errs []error
	for _, w := range m.Workers {
		errs = append(errs, w.Close())
	}
	errs = append(errs, m.Store.Close())
	return errors.Join(errs...)
}

// NewMovies — собирает клиент TMDB, хранилище кэша и MovieService по конфигурации.
// Используется и сервером, и CLI.
func NewMovies(ctx context.Context, cfg *config.Config, log ports.Logger) (*Movies, error) {
	store, workers, err := cache.NewStore(ctx, *cfg, log)
	if err != nil {
		return nil, fmt.Errorf("cache store: %w", err)
	}

	var opts []usecase.Option
	if cfg.Cache.Coalesce {
		opts = append(opts, usecase.WithCoalescing())
	}
	client := tmdb.NewClient(cfg.TMDB)
	svc := usecase.NewMovieService(client, store, log, cfg.Cache.TTL, opts...)

	log.Infof(ctx, "movie service ready backend=%s ttl=%s coalesce=%t", store.Backend(), cfg.Cache.TTL, cfg.Cache.Coalesce)
	return &Movies{Service: svc, Store: store, Workers: workers}, nil
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Сборка зависимостей доменного слоя.
	movies, err := NewMovies(ctx, cfg, logg)
	if err != nil {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Прогрев кэша
	if len(cfg.Cache.WarmUpRegions) > 0 {
		if err := movies.Service.WarmUp(ctx, cfg.Cache.WarmUpRegions); err != nil {
			logg.Warnf(ctx, "warm-up cache failed: %v", err)
		}
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(movies.Service, logg, cfg.HTTP.HandlerTimeout,
		rest.WithDefaultRegion(cfg.HTTP.DefaultRegion),
		rest.WithReadiness(movies.Store.Ping),
	)
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		Workers:         movies.Workers,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if err := movies.Close(); err != nil {
			logg.Warnf(ctx, "close movie service: %v", err)
		}
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер и воркеры; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, len(a.Workers)+1)

	// Запуск фоновых воркеров.
	for _, w := range a.Workers {
		go func() {
			if err := w.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка воркеров
	for _, w := range a.Workers {
		if err := w.Close(); err != nil {
			a.Logger.Warnf(ctx, "background worker close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
