package ports

import (
	"context"

	"github.com/Gunvolt24/movies/internal/domain"
)

// MovieReadService — сервис чтения фильмов.
type MovieReadService interface {
	// UpcomingMovies — ближайшие премьеры региона по дате выхода; ошибки апстрима возвращаются.
	UpcomingMovies(ctx context.Context, region string) ([]domain.Movie, error)

	// Movie — фильм по id; (Movie{}, false), если его нет или апстрим недоступен.
	Movie(ctx context.Context, movieID string) (domain.Movie, bool)
}
