package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	TrackingEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_tracking_entries_total",
			Help: "Tracking entries written, by metric kind",
		},
		[]string{"metric_kind"},
	)

	MissionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_mission_transitions_total",
			Help: "User mission lifecycle transitions",
		},
		[]string{"status"},
	)

	ActivityCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_activity_completions_total",
			Help: "Activity completions, by activity type",
		},
		[]string{"activity_type"},
	)

	BusinessErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_business_errors_total",
			Help: "Business outcomes returned to callers, by error code",
		},
		[]string{"code"},
	)

	CacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_stats_cache_total",
			Help: "Stats cache lookups by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			TrackingEntries,
			MissionTransitions,
			ActivityCompletions,
			BusinessErrors,
			CacheResults,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
