package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/movies/internal/domain"
	"github.com/Gunvolt24/movies/internal/ports"
	"github.com/Gunvolt24/movies/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const defaultRegion = "US"

// Handler — HTTP-обработчики поверх MovieReadService.
type Handler struct {
	service       ports.MovieReadService
	log           ports.Logger
	reqTimeout    time.Duration
	defaultRegion string
	ready         func(ctx context.Context) error
}

// HandlerOption — настройка Handler.
type HandlerOption func(*Handler)

// WithDefaultRegion — регион для /upcoming без параметра region.
func WithDefaultRegion(region string) HandlerOption {
	return func(h *Handler) {
		if strings.TrimSpace(region) != "" {
			h.defaultRegion = region
		}
	}
}

// WithReadiness — проверка для /ready (например, Ping хранилища кэша).
func WithReadiness(check func(ctx context.Context) error) HandlerOption {
	return func(h *Handler) { h.ready = check }
}

// NewHandler — reqTimeout <= 0 означает «без собственного таймаута».
func NewHandler(service ports.MovieReadService, log ports.Logger, reqTimeout time.Duration, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:       service,
		log:           log,
		reqTimeout:    reqTimeout,
		defaultRegion: defaultRegion,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter — gin-движок со всеми middleware и маршрутами.
// otelServiceName пустой — otelgin не подключается.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestLogger(h.log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/ready", h.readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1/movies")
	api.GET("/upcoming", h.upcomingMovies)
	api.GET("/:movieId", h.movieByID)

	return r
}

func (h *Handler) upcomingMovies(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	region := httpx.QueryOrDefault(c, "region", h.defaultRegion)

	movies, err := h.service.UpcomingMovies(ctx, region)
	if err != nil {
		h.log.Errorf(ctx, "UpcomingMovies failed region=%s err=%v", region, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	c.JSON(http.StatusOK, movies)
}

func (h *Handler) movieByID(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id := httpx.PathParam(c, "movieId")
	movie, ok := h.service.Movie(ctx, id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *Handler) readiness(c *gin.Context) {
	if h.ready == nil {
		c.String(http.StatusOK, "ready")
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.ready(ctx); err != nil {
		h.log.Warnf(ctx, "readiness check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache backend unavailable"})
		return
	}
	c.String(http.StatusOK, "ready")
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.reqTimeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), h.reqTimeout)
}
