// Package metrics exposes Prometheus instrumentation: HTTP request metrics for the
// gin engine plus the shop's own counters.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ssu",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssu",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ssu",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	SalesRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ssu",
		Subsystem: "shop",
		Name:      "sales_recorded_total",
		Help:      "Sales written by checkout.",
	})

	SalesRevenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ssu",
		Subsystem: "shop",
		Name:      "sales_revenue_total",
		Help:      "Sum of recorded sale totals.",
	})

	StockDecrements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssu",
			Subsystem: "shop",
			Name:      "stock_decrements_total",
			Help:      "Stock decrements by outcome.",
		},
		[]string{"outcome"}, // "applied" | "missing" | "failed"
	)

	CartMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssu",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by operation.",
		},
		[]string{"op"},
	)

	StoreFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssu",
			Subsystem: "store",
			Name:      "failures_total",
			Help:      "Failed store operations.",
		},
		[]string{"op"},
	)
)

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		SalesRecorded,
		SalesRevenue,
		StockDecrements,
		CartMutations,
		StoreFailures,
	)
}

// Middleware records duration, count and in-flight requests per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		RequestInFlight.Inc()
		defer RequestInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// Handler serves the registry in Prometheus and OpenMetrics formats.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
	return gin.WrapH(h)
}

