package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Gunvolt24/movies/config"
	"github.com/Gunvolt24/movies/internal/cache"
	"github.com/Gunvolt24/movies/internal/cache/memory"
	rediscache "github.com/Gunvolt24/movies/internal/cache/redis"
	"github.com/Gunvolt24/movies/internal/domain"
	"github.com/Gunvolt24/movies/internal/ports/mocks"
	"github.com/Gunvolt24/movies/internal/testutil"
	"github.com/Gunvolt24/movies/internal/tmdb"
	"github.com/Gunvolt24/movies/internal/usecase"
	"github.com/Gunvolt24/movies/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const (
	upcomingPath = "/3/movie/upcoming"
	moviePath    = "/3/movie/807172"
)

type env struct {
	svc   *usecase.MovieService
	stub  *testutil.TMDBStub
	redis *miniredis.Miniredis
	spans *tracetest.SpanRecorder
}

func newEnv(t *testing.T, opts ...usecase.Option) *env {
	t.Helper()

	mr := miniredis.RunT(t)
	stub := testutil.NewTMDBStub(t)
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	log := logger.Wrap(nil)
	client := tmdb.NewClient(config.TMDB{BaseURL: stub.URL(), APIKey: "k", Timeout: 2 * time.Second, MaxIdleConns: 4})
	store := cache.NewInstrumentedStore(
		rediscache.New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "movies"),
		log, config.BackendRedis,
	)
	t.Cleanup(func() { _ = store.Close() })

	opts = append(opts, usecase.WithTracer(tp.Tracer("test")))
	return &env{
		svc:   usecase.NewMovieService(client, store, log, ttl, opts...),
		stub:  stub,
		redis: mr,
		spans: rec,
	}
}

func (e *env) spanNames() []string {
	var names []string
	for _, s := range e.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.AsString(), true
		}
	}
	return "", false
}

func TestReadThrough_UpcomingOrderAndHit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.svc.UpcomingMovies(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, []domain.Movie{fintech, exorcist}, first)

	second, err := e.svc.UpcomingMovies(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int64(1), e.stub.Calls(upcomingPath), "hit must not reach TMDB")
	assert.True(t, e.redis.Exists("movies:movies.upcoming::FR"))
	assert.Equal(t, ttl, e.redis.TTL("movies:movies.upcoming::FR"))
}

func TestReadThrough_ExpiryRefetches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.UpcomingMovies(ctx, "FR")
	require.NoError(t, err)

	// чтение внутри TTL срок не продлевает
	e.redis.FastForward(ttl - time.Minute)
	_, err = e.svc.UpcomingMovies(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.stub.Calls(upcomingPath))

	e.redis.FastForward(2 * time.Minute)
	_, err = e.svc.UpcomingMovies(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.stub.Calls(upcomingPath))
}

func TestReadThrough_KeyIsolation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	fr, err := e.svc.UpcomingMovies(ctx, "FR")
	require.NoError(t, err)
	us, err := e.svc.UpcomingMovies(ctx, "US")
	require.NoError(t, err)
	m, ok := e.svc.Movie(ctx, "807172")
	require.True(t, ok)

	assert.Len(t, fr, 2)
	require.Len(t, us, 1)
	assert.Equal(t, "575264", us[0].ID)
	assert.Equal(t, exorcist, m)

	assert.True(t, e.redis.Exists("movies:movies.upcoming::FR"))
	assert.True(t, e.redis.Exists("movies:movies.upcoming::US"))
	assert.True(t, e.redis.Exists("movies:movie::807172"))
	assert.Equal(t, int64(2), e.stub.Calls(upcomingPath))
}

func TestReadThrough_MovieNotFound_NothingCached(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, ok := e.svc.Movie(ctx, "99")
	assert.False(t, ok)
	_, ok = e.svc.Movie(ctx, "99")
	assert.False(t, ok)

	assert.False(t, e.redis.Exists("movies:movie::99"), "absence must not be cached")
	assert.Equal(t, int64(2), e.stub.Calls("/3/movie/99"))
}

func TestReadThrough_UpstreamErrorNotCached(t *testing.T) {
	e := newEnv(t)
	e.stub.Handle(upcomingPath, 503, `{"status_message":"maintenance"}`)

	_, err := e.svc.UpcomingMovies(context.Background(), "FR")
	require.ErrorIs(t, err, tmdb.ErrMalformed)
	assert.False(t, e.redis.Exists("movies:movies.upcoming::FR"))
}

func TestReadThrough_RedisDown_ServesFromUpstream(t *testing.T) {
	e := newEnv(t)
	e.redis.Close()

	got, err := e.svc.UpcomingMovies(context.Background(), "FR")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	m, ok := e.svc.Movie(context.Background(), "807172")
	assert.True(t, ok)
	assert.Equal(t, exorcist, m)
}

func TestReadThrough_Spans(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.UpcomingMovies(ctx, "FR")
	require.NoError(t, err)
	_, ok := e.svc.Movie(ctx, "807172")
	require.True(t, ok)

	spans := e.spans.Ended()
	require.Len(t, spans, 2, "one span per upstream fetch: %v", e.spanNames())

	up, mv := spans[0], spans[1]
	assert.Equal(t, usecase.ObservationUpcomingMovies, up.Name())
	region, ok := spanAttr(up, "region")
	assert.True(t, ok)
	assert.Equal(t, "FR", region)

	assert.Equal(t, usecase.ObservationMovie, mv.Name())
	id, ok := spanAttr(mv, "movie")
	assert.True(t, ok)
	assert.Equal(t, "807172", id)

	// попадания в кэш новых спанов не дают
	_, _ = e.svc.UpcomingMovies(ctx, "FR")
	_, _ = e.svc.Movie(ctx, "807172")
	assert.Len(t, e.spans.Ended(), 2)
}

func TestReadThrough_ConcurrentMissesConsistent(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []usecase.Option
	}{
		{name: "default"},
		{name: "coalesced", opts: []usecase.Option{usecase.WithCoalescing()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t, tc.opts...)

			const n = 16
			results := make([][]domain.Movie, n)
			errs := make([]error, n)

			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					results[i], errs[i] = e.svc.UpcomingMovies(context.Background(), "FR")
				}(i)
			}
			close(start)
			wg.Wait()

			for i := 0; i < n; i++ {
				require.NoError(t, errs[i])
				assert.Equal(t, []domain.Movie{fintech, exorcist}, results[i])
			}
			calls := e.stub.Calls(upcomingPath)
			assert.GreaterOrEqual(t, calls, int64(1))
			assert.LessOrEqual(t, calls, int64(n))

			cached, err := e.svc.UpcomingMovies(context.Background(), "FR")
			require.NoError(t, err)
			assert.Equal(t, results[0], cached)
		})
	}
}

// blockingMovie — ответ TMDB, который приходит только после release.
func blockingMovie(started, release chan struct{}) func(context.Context, string) (*tmdb.MovieRecord, error) {
	return func(ctx context.Context, _ string) (*tmdb.MovieRecord, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &tmdb.MovieRecord{ID: "807172", Title: "The Exorcist: Believer", ReleaseDate: "2023-10-06"}, nil
	}
}

func TestReadThrough_CoalescedLoadOutlivesCanceledCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockMovieProvider(ctrl)

	started, release := make(chan struct{}), make(chan struct{})
	provider.EXPECT().Movie(gomock.Any(), "807172").DoAndReturn(blockingMovie(started, release)).Times(1)

	svc := usecase.NewMovieService(provider, memory.New(16), noopLogger{}, ttl, usecase.WithCoalescing())

	// первый участник начинает загрузку и отменяется, пока она идёт
	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan bool, 1)
	go func() {
		_, ok := svc.Movie(ctxA, "807172")
		doneA <- ok
	}()
	<-started
	cancelA()
	require.False(t, <-doneA, "canceled caller gets absence")

	// второй участник с живым контекстом присоединяется к той же загрузке
	type result struct {
		m  domain.Movie
		ok bool
	}
	doneB := make(chan result, 1)
	go func() {
		m, ok := svc.Movie(context.Background(), "807172")
		doneB <- result{m, ok}
	}()
	close(release)

	select {
	case r := <-doneB:
		require.True(t, r.ok, "live caller must not inherit another caller's cancellation")
		assert.Equal(t, exorcist, r.m)
	case <-time.After(5 * time.Second):
		t.Fatalf("live caller did not return")
	}

	// загрузка завершилась и записала результат
	m, ok := svc.Movie(context.Background(), "807172")
	require.True(t, ok)
	assert.Equal(t, exorcist, m)
}

func TestReadThrough_CoalescedCallersGetOwnSlices(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockMovieProvider(ctrl)

	started, release := make(chan struct{}), make(chan struct{})
	provider.EXPECT().Upcoming(gomock.Any(), "FR").DoAndReturn(
		func(context.Context, string) (*tmdb.UpcomingPage, error) {
			close(started)
			<-release
			return frPage(), nil
		}).Times(1)

	svc := usecase.NewMovieService(provider, memory.New(16), noopLogger{}, ttl, usecase.WithCoalescing())

	results := make([][]domain.Movie, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = svc.UpcomingMovies(context.Background(), "FR")
	}()
	<-started
	go func() {
		defer wg.Done()
		results[1], errs[1] = svc.UpcomingMovies(context.Background(), "FR")
	}()
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	results[0][0].Title = "changed by caller"
	assert.Equal(t, []domain.Movie{fintech, exorcist}, results[1])

	cached, err := svc.UpcomingMovies(context.Background(), "FR")
	require.NoError(t, err)
	assert.Equal(t, []domain.Movie{fintech, exorcist}, cached)
}

func TestReadThrough_WarmUp(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.svc.WarmUp(ctx, []string{"FR", "US"}))
	assert.True(t, e.redis.Exists("movies:movies.upcoming::FR"))
	assert.True(t, e.redis.Exists("movies:movies.upcoming::US"))

	_, err := e.svc.UpcomingMovies(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.stub.Calls(upcomingPath), "warmed region must be served from cache")
}
