// Package metrics 汇总服务的 Prometheus 指标，统一通过 /metrics 暴露。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchhive_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// 信息流
	FeedPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_feed_pages_total",
			Help: "Total number of composed feed pages",
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	FeedComposeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watchhive_feed_compose_duration_seconds",
			Help:    "Time spent composing one feed page",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	FeedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_feed_items_total",
			Help: "Total number of feed items emitted by type",
		},
		[]string{"type"}, // "ENTRY", "SUGGESTION"
	)

	SuggestionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_suggestion_outcomes_total",
			Help: "Suggestion source results by path taken",
		},
		[]string{"path"}, // "primary", "fallback", "degraded"
	)

	// 关系图缓存
	GraphCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_graph_cache_lookups_total",
			Help: "Followee-set cache lookups",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// 外部目录
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_catalog_requests_total",
			Help: "Outbound catalog API requests",
		},
		[]string{"endpoint", "status"},
	)

	CatalogDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchhive_catalog_request_duration_seconds",
			Help:    "Outbound catalog API latency including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"endpoint"},
	)

	CatalogCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_catalog_cache_lookups_total",
			Help: "Catalog response cache lookups",
		},
		[]string{"endpoint", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchhive_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// 粉丝冗余
	FanReplication = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchhive_fan_replication_total",
			Help: "Fan table replication tasks by result",
		},
		[]string{"result"}, // "ok", "error", "dropped"
	)
)

// RecordHTTPRequest 记录一次 HTTP 请求
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordFeedPage 记录一次信息流组装
func RecordFeedPage(entries, suggestions int, d time.Duration, err error) {
	FeedComposeDuration.Observe(d.Seconds())
	switch {
	case err != nil:
		FeedPages.WithLabelValues("error").Inc()
		return
	case entries == 0:
		FeedPages.WithLabelValues("empty").Inc()
	default:
		FeedPages.WithLabelValues("ok").Inc()
	}
	FeedItems.WithLabelValues("ENTRY").Add(float64(entries))
	FeedItems.WithLabelValues("SUGGESTION").Add(float64(suggestions))
}

// RecordCatalogRequest 记录一次外部目录调用，status 为 HTTP 状态码或 "error"
func RecordCatalogRequest(endpoint, status string, d time.Duration) {
	CatalogRequests.WithLabelValues(endpoint, status).Inc()
	CatalogDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
