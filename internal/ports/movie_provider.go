package ports

import (
	"context"

	"github.com/Gunvolt24/movies/internal/tmdb"
)

// MovieProvider — апстрим-каталог фильмов (TMDB).
type MovieProvider interface {
	Upcoming(ctx context.Context, region string) (*tmdb.UpcomingPage, error)
	Movie(ctx context.Context, movieID string) (*tmdb.MovieRecord, error)
}
