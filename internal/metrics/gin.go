package metrics

import (
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resume_builder"

const unmatchedRoute = "unmatched"

var (
	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds, by route template.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)

	httpResponseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response body size, by route template.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 7),
		},
		[]string{"method", "route"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		},
	)
)

// HTTPMiddleware records latency and response size per route template.
// Routes in skip (long-lived websockets, the scrape endpoint) are not observed.
func HTTPMiddleware(skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if slices.Contains(skip, route) {
			c.Next()
			return
		}
		if route == "" {
			route = unmatchedRoute
		}

		httpInFlight.Inc()
		defer httpInFlight.Dec()
		start := time.Now()
		c.Next()

		method := c.Request.Method
		httpDuration.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			httpResponseBytes.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}
