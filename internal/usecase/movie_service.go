package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Gunvolt24/movies/internal/cache"
	"github.com/Gunvolt24/movies/internal/domain"
	"github.com/Gunvolt24/movies/internal/ports"
	"github.com/Gunvolt24/movies/internal/tmdb"
	"github.com/Gunvolt24/movies/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Имена наблюдаемых операций (спаны и observation_duration_seconds).
const (
	ObservationUpcomingMovies = "tmdb.upcomingMovies"
	ObservationMovie          = "tmdb.movie"
)

var _ ports.MovieReadService = (*MovieService)(nil)

// MovieService — чтение фильмов через кэш с подгрузкой из TMDB (без знаний о транспорте).
type MovieService struct {
	provider ports.MovieProvider
	log      ports.Logger
	tracer   trace.Tracer
	rt       *readThrough
}

// Option — настройка MovieService.
type Option func(*MovieService)

// WithCoalescing — одновременные промахи по одному ключу делят один запрос к TMDB.
func WithCoalescing() Option {
	return func(s *MovieService) { s.rt.group = &singleflight.Group{} }
}

// WithTracer — трейсер для спанов обращений к TMDB (по умолчанию глобальный).
func WithTracer(tr trace.Tracer) Option {
	return func(s *MovieService) {
		if tr != nil {
			s.tracer = tr
		}
	}
}

// NewMovieService — DI-конструктор.
func NewMovieService(
	provider ports.MovieProvider,
	store ports.CacheStore,
	log ports.Logger,
	ttl time.Duration,
	opts ...Option,
) *MovieService {
	s := &MovieService{
		provider: provider,
		log:      log,
		tracer:   telemetry.Tracer(),
		rt:       &readThrough{store: store, log: log, ttl: ttl},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpcomingMovies — ближайшие премьеры региона, по возрастанию даты выхода.
// Ошибка TMDB возвращается вызывающему.
func (s *MovieService) UpcomingMovies(ctx context.Context, region string) ([]domain.Movie, error) {
	movies, err := fetchThrough(ctx, s.rt, cache.UpcomingMoviesKey(region), cache.KindMovieList,
		func(ctx context.Context) ([]domain.Movie, error) {
			return telemetry.Observe(ctx, s.tracer, telemetry.Observation{
				Name: ObservationUpcomingMovies,
				Low:  []attribute.KeyValue{attribute.String("region", region)},
			}, func(ctx context.Context) ([]domain.Movie, error) {
				start := time.Now()
				page, err := s.provider.Upcoming(ctx, region)
				if err != nil {
					return nil, err
				}
				if page == nil {
					return nil, fmt.Errorf("%w: empty upcoming page", tmdb.ErrMalformed)
				}
				movies, err := tmdb.ToMovies(*page)
				if err != nil {
					return nil, err
				}
				s.log.Infof(ctx, "tmdb upcoming region=%s movies=%d took=%s", region, len(movies), time.Since(start))
				return movies, nil
			})
		})
	if err != nil {
		s.log.Errorf(ctx, "upcoming movies region=%s failed: %v", region, err)
		return nil, fmt.Errorf("upcoming movies region=%s: %w", region, err)
	}
	return movies, nil
}

// Movie — фильм по id. Любая ошибка (нет в TMDB, TMDB недоступен, битый ответ)
// превращается в отсутствие; в кэш при этом ничего не пишется.
func (s *MovieService) Movie(ctx context.Context, movieID string) (domain.Movie, bool) {
	if strings.TrimSpace(movieID) == "" {
		return domain.Movie{}, false
	}

	m, err := fetchThrough(ctx, s.rt, cache.MovieKey(movieID), cache.KindMovie,
		func(ctx context.Context) (domain.Movie, error) {
			return telemetry.Observe(ctx, s.tracer, telemetry.Observation{
				Name: ObservationMovie,
				High: []attribute.KeyValue{attribute.String("movie", movieID)},
			}, func(ctx context.Context) (domain.Movie, error) {
				rec, err := s.provider.Movie(ctx, movieID)
				if err != nil {
					return domain.Movie{}, err
				}
				if rec == nil {
					return domain.Movie{}, fmt.Errorf("%w: empty movie record", tmdb.ErrMalformed)
				}
				return tmdb.ToMovie(*rec)
			})
		})
	if err != nil {
		s.log.Warnf(ctx, "movie id=%s is unavailable: %v", movieID, err)
		return domain.Movie{}, false
	}
	return m, true
}

// WarmUp — прогрев кэша ближайшими премьерами по регионам (например, при старте).
// Ошибки по отдельным регионам только логируются.
func (s *MovieService) WarmUp(ctx context.Context, regions []string) error {
	if len(regions) == 0 {
		return nil
	}

	start := time.Now()
	warmed := 0
	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return err
		}
		region = strings.TrimSpace(region)
		if region == "" {
			continue
		}
		if _, err := s.UpcomingMovies(ctx, region); err != nil {
			s.log.Warnf(ctx, "cache warm-up region=%s failed: %v", region, err)
			continue
		}
		warmed++
	}
	s.log.Infof(ctx, "cache warmed with %d/%d regions in %s", warmed, len(regions), time.Since(start))
	return nil
}
