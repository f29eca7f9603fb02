package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/watchhive/config"
	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/metrics"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

const (
	maxBodyBytes = 4 << 20

	breakerName             = "catalog-api"
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// StatusError 目录服务返回的非 2xx 响应
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s: unexpected status %d", e.Endpoint, e.Code)
}

// Transient 5xx 与 429 可重试
func (e *StatusError) Transient() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// IsNotFound 判断错误链中是否为目录 404
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client TMDB 兼容的 HTTP 客户端：限流 -> 熔断 -> 指数退避重试
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]

	maxAttempts    uint
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(cfg config.CatalogConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	c := &Client{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(limit, burst),
		breaker:        newBreaker(),
		maxAttempts:    attempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		// 4xx 与调用方取消不是上游故障
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && !se.Transient()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("catalog circuit breaker state change",
				zap.String("from", from.String()), zap.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (c *Client) Recommendations(ctx context.Context, id int64, kind MediaKind, page int) (*Results, error) {
	if kind != MediaMovie && kind != MediaTV {
		return nil, apperr.Invalid("unsupported media kind %q", kind)
	}
	if page < 1 {
		page = 1
	}
	var out Results
	path := fmt.Sprintf("/%s/%d/recommendations", kind, id)
	params := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.get(ctx, "recommendations", path, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Trending(ctx context.Context, media MediaKind, window Window) (*Results, error) {
	if !media.Valid() || !window.Valid() {
		return nil, apperr.Invalid("unsupported trending query %s/%s", media, window)
	}
	var out Results
	if err := c.get(ctx, "trending", fmt.Sprintf("/trending/%s/%s", media, window), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Details(ctx context.Context, id int64, kind MediaKind) (*Detail, error) {
	if kind != MediaMovie && kind != MediaTV {
		return nil, apperr.Invalid("unsupported media kind %q", kind)
	}
	var out Detail
	if err := c.get(ctx, "details", fmt.Sprintf("/%s/%d", kind, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get 发起一次带熔断与重试的 GET，并把响应体解码到 out
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	u := c.baseURL + path
	if q := params.Encode(); q != "" {
		u += "?" + q
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetchWithRetry(ctx, endpoint, u)
	})
	if err != nil {
		status := "error"
		var se *StatusError
		if errors.As(err, &se) {
			status = strconv.Itoa(se.Code)
		}
		metrics.RecordCatalogRequest(endpoint, status, time.Since(start))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return apperr.Upstream(err, "catalog circuit open")
		}
		return apperr.Upstream(err, "catalog "+endpoint)
	}
	metrics.RecordCatalogRequest(endpoint, "200", time.Since(start))

	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Upstream(err, "decode catalog "+endpoint)
	}
	return nil
}

func (c *Client) fetchWithRetry(ctx context.Context, endpoint, u string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = c.maxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0

	op := func() ([]byte, error) {
		body, err := c.fetchOnce(ctx, endpoint, u)
		if err == nil {
			return body, nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Transient() {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("catalog request failed, retrying",
				zap.String("endpoint", endpoint),
				zap.Duration("backoff", next),
				zap.Error(err))
		}),
	)
}

func (c *Client) fetchOnce(ctx context.Context, endpoint, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	return body, nil
}

// PosterURL 拼接海报地址；path 为空时返回空串
func PosterURL(imageBaseURL, path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	return strings.TrimRight(imageBaseURL, "/") + "/" + size + path
}
