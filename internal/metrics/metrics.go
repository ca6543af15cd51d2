package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 推荐生成结果
const (
	OutcomeSuccess      = "success"
	OutcomeIneligible   = "ineligible"
	OutcomeNoCandidates = "no_candidates"
	OutcomeError        = "error"
)

var (
	// 推荐生成
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_generation_duration_seconds",
			Help:    "Duration of recommendation generation runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_generations_total",
			Help: "Total number of recommendation generation runs",
		},
		[]string{"outcome"},
	)

	RecommendationsProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_produced_total",
			Help: "Total number of recommendations produced, by algorithm",
		},
		[]string{"algorithm"},
	)

	SignalSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_pass_skipped_total",
			Help: "Total number of algorithm passes skipped for insufficient signal",
		},
		[]string{"algorithm"},
	)

	DataIntegrityIssues = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_data_integrity_issues_total",
			Help: "Total number of missing catalog references skipped during generation",
		},
	)

	// 片库缓存
	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total number of catalog cache hits",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total number of catalog cache misses",
		},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 定时刷新
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_refresh_runs_total",
			Help: "Total number of refresh batches processed",
		},
		[]string{"status"},
	)

	RefreshUsersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_refresh_users_total",
			Help: "Total number of users regenerated by the refresh job",
		},
	)
)

// RecordGeneration 记录一次推荐生成
func RecordGeneration(outcome string, duration time.Duration) {
	GenerationsTotal.WithLabelValues(outcome).Inc()
	GenerationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordProduced 按算法记录推荐条数
func RecordProduced(counts map[string]int) {
	for algorithm, n := range counts {
		RecommendationsProduced.WithLabelValues(algorithm).Add(float64(n))
	}
}

// RecordAPIRequest 记录 HTTP 请求
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
