package tmdb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProviderID — идентификатор TMDB. В ответах встречается и числом, и строкой;
// хранится как десятичная строка.
type ProviderID string

func (p *ProviderID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = ProviderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("id %q is not an integer", n.String())
	}
	*p = ProviderID(n.String())
	return nil
}

// MovieRecord — фильм в ответе TMDB. Нормализатор использует только id, title и release_date.
type MovieRecord struct {
	ID               ProviderID `json:"id"`
	Title            string     `json:"title"`
	ReleaseDate      string     `json:"release_date"`
	OriginalTitle    string     `json:"original_title,omitempty"`
	OriginalLanguage string     `json:"original_language,omitempty"`
	Overview         string     `json:"overview,omitempty"`
	Popularity       float64    `json:"popularity,omitempty"`
	PosterPath       string     `json:"poster_path,omitempty"`
	Adult            bool       `json:"adult,omitempty"`
}

// DateRange — окно дат, за которое TMDB собрал список upcoming.
type DateRange struct {
	Maximum string `json:"maximum"`
	Minimum string `json:"minimum"`
}

// UpcomingPage — одна страница /3/movie/upcoming.
type UpcomingPage struct {
	Page         int           `json:"page"`
	Results      []MovieRecord `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Dates        *DateRange    `json:"dates,omitempty"`
}
