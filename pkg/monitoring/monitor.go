package monitoring

import (
	"strconv"
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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 编辑器操作结果，result 为 ok 或错误类别
	BuilderOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_operations_total",
			Help: "Question builder operations by result",
		},
		[]string{"operation", "result"},
	)

	BuilderSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "builder_active_sessions",
			Help: "Number of live question builder sessions",
		},
	)

	SnapshotFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_snapshot_failures_total",
			Help: "Snapshot store failures by operation",
		},
		[]string{"operation"},
	)

	MediaSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "media_orphans_swept_total",
			Help: "Orphaned media removed by the sweeper",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(BuilderOperations)
	prometheus.MustRegister(BuilderSessions)
	prometheus.MustRegister(SnapshotFailures)
	prometheus.MustRegister(MediaSwept)
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
