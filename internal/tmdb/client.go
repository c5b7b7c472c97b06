package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gunvolt24/movies/config"
	"github.com/Gunvolt24/movies/pkg/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	EndpointUpcoming = "upcoming"
	EndpointMovie    = "movie"

	maxErrorBody = 4 << 10
)

// Client — HTTP-клиент TMDB API v3. Ретраев нет: ошибка отдаётся вызывающему как есть.
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	http        *http.Client
}

// Option — настройка Client.
type Option func(*Client)

// WithHTTPClient — подменяет HTTP-клиент (тесты).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient — клиент с пулом соединений и otelhttp-транспортом.
func NewClient(cfg config.TMDB, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		accessToken: cfg.AccessToken,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upcoming — GET /3/movie/upcoming?region=<region>, одна страница.
func (c *Client) Upcoming(ctx context.Context, region string) (*UpcomingPage, error) {
	params := url.Values{}
	if region != "" {
		params.Set("region", region)
	}

	var page UpcomingPage
	if err := c.get(ctx, EndpointUpcoming, "/3/movie/upcoming", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Movie — GET /3/movie/{id}.
func (c *Client) Movie(ctx context.Context, movieID string) (*MovieRecord, error) {
	var rec MovieRecord
	if err := c.get(ctx, EndpointMovie, "/3/movie/"+url.PathEscape(movieID), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) (err error) {
	start := time.Now()
	code := "error"
	defer func() {
		metrics.TMDBRequests.WithLabelValues(endpoint, code).Inc()
		metrics.TMDBRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return &Error{Kind: KindUnavailable, Endpoint: endpoint, Err: fmt.Errorf("invalid url: %w", err)}
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return &Error{Kind: KindUnavailable, Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindUnavailable, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	code = strconv.Itoa(resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &Error{Kind: KindNotFound, Endpoint: endpoint, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Kind:     KindMalformed,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindMalformed, Endpoint: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
