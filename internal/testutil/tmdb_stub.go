package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// UpcomingFR — ответ /3/movie/upcoming?region=FR. Порядок TMDB: 2023-10-06, затем 2023-10-03.
const UpcomingFR = `{
  "dates": {"maximum": "2023-10-27", "minimum": "2023-10-02"},
  "page": 1,
  "results": [
    {
      "adult": false,
      "backdrop_path": "/f33XdT6dwNXmXQNvQ4FuyhQrUob.jpg",
      "genre_ids": [27],
      "id": 807172,
      "original_language": "en",
      "original_title": "The Exorcist: Believer",
      "overview": "Since the death of his wife 12 years ago, Victor Fielding has raised their daughter, Angela on his own.",
      "popularity": 228.592,
      "poster_path": "/wGOxTAHx1iq3VZlYTFUbUfMhN5l.jpg",
      "release_date": "2023-10-06",
      "title": "The Exorcist: Believer",
      "video": false,
      "vote_average": 4.3,
      "vote_count": 3
    },
    {
      "adult": false,
      "backdrop_path": null,
      "genre_ids": [35],
      "id": 1182002,
      "original_language": "en",
      "original_title": "Fintech",
      "overview": "A workplace comedy about two tech bros running their company into the ground.",
      "popularity": 22.712,
      "poster_path": "/po0keBfkanr14iEIYpkbNyaJLQG.jpg",
      "release_date": "2023-10-03",
      "title": "Fintech",
      "video": false,
      "vote_average": 0,
      "vote_count": 0
    }
  ],
  "total_pages": 8,
  "total_results": 142
}`

// UpcomingUS — другой регион, другой набор.
const UpcomingUS = `{
  "page": 1,
  "results": [
    {"id": 575264, "title": "Mission: Impossible - Dead Reckoning Part One", "release_date": "2023-07-12"}
  ],
  "total_pages": 1,
  "total_results": 1
}`

// Movie807172 — ответ /3/movie/807172.
const Movie807172 = `{
  "adult": false,
  "id": 807172,
  "imdb_id": "tt12921446",
  "original_language": "en",
  "original_title": "The Exorcist: Believer",
  "release_date": "2023-10-06",
  "runtime": 111,
  "status": "Released",
  "title": "The Exorcist: Believer"
}`

// NotFoundBody — тело 404 от TMDB.
const NotFoundBody = `{"success":false,"status_code":34,"status_message":"The resource you requested could not be found."}`

// TMDBStub — фейковый TMDB на httptest.Server.
// Ответы задаются по пути (без query), счётчики считают обращения к каждому пути.
type TMDBStub struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string]stubResponse
	byRegion  map[string]string
	calls     map[string]*atomic.Int64
	lastQuery map[string]string
	lastAuth  string
}

type stubResponse struct {
	status int
	body   string
}

// NewTMDBStub — поднимает сервер с фикстурами по умолчанию; закрывается через t.Cleanup.
func NewTMDBStub(t testing.TB) *TMDBStub {
	t.Helper()
	s := &TMDBStub{
		responses: map[string]stubResponse{
			"/3/movie/807172": {status: http.StatusOK, body: Movie807172},
		},
		byRegion: map[string]string{
			"FR": UpcomingFR,
			"US": UpcomingUS,
		},
		calls:     map[string]*atomic.Int64{},
		lastQuery: map[string]string{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

// URL — базовый адрес для config.TMDB.BaseURL.
func (s *TMDBStub) URL() string { return s.Server.URL }

// Handle — задаёт ответ для пути.
func (s *TMDBStub) Handle(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = stubResponse{status: status, body: body}
}

// Calls — сколько раз запрашивали путь.
func (s *TMDBStub) Calls(path string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.calls[path]; ok {
		return c.Load()
	}
	return 0
}

// LastQuery — query-строка последнего запроса к пути.
func (s *TMDBStub) LastQuery(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[path]
}

// LastAuthorization — заголовок Authorization последнего запроса.
func (s *TMDBStub) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

func (s *TMDBStub) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.EscapedPath()

	s.mu.Lock()
	c, ok := s.calls[path]
	if !ok {
		c = &atomic.Int64{}
		s.calls[path] = c
	}
	s.lastQuery[path] = r.URL.RawQuery
	s.lastAuth = r.Header.Get("Authorization")
	resp, found := s.responses[path]
	if !found && path == "/3/movie/upcoming" {
		if body, ok := s.byRegion[strings.ToUpper(r.URL.Query().Get("region"))]; ok {
			resp, found = stubResponse{status: http.StatusOK, body: body}, true
		}
	}
	s.mu.Unlock()
	c.Add(1)

	w.Header().Set("Content-Type", "application/json")
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(NotFoundBody))
		return
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
