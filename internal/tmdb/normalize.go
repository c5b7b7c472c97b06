package tmdb

import (
	"fmt"
	"strings"

	"github.com/Gunvolt24/movies/internal/domain"
)

// ToMovie — приводит запись TMDB к domain.Movie. Остальные поля записи отбрасываются.
func ToMovie(r MovieRecord) (domain.Movie, error) {
	id := strings.TrimSpace(string(r.ID))
	if id == "" {
		return domain.Movie{}, fmt.Errorf("%w: empty id", ErrMalformed)
	}
	date, err := domain.ParseDate(r.ReleaseDate)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("%w: movie %s: release_date: %v", ErrMalformed, id, err)
	}
	return domain.Movie{ID: id, Title: r.Title, ReleaseDate: date}, nil
}

// ToMovies — нормализует страницу и сортирует по дате выхода (стабильно,
// при равных датах сохраняется порядок TMDB). Одна битая запись ломает всю страницу.
func ToMovies(p UpcomingPage) ([]domain.Movie, error) {
	out := make([]domain.Movie, 0, len(p.Results))
	for i, r := range p.Results {
		m, err := ToMovie(r)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		out = append(out, m)
	}
	domain.SortByReleaseDate(out)
	return out, nil
}
