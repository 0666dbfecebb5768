package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	metricPrefix = "ecoleta_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	pointsCreated      *prometheus.CounterVec
	pointQueries       *prometheus.CounterVec
	pointQueryLatency  *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
	geoIndexPoints     prometheus.Gauge
	uploadedImageBytes prometheus.Counter
)

// Init registers the collectors on reg. A nil reg means the default registerer.
// A nil db skips the connection pool collector.
func Init(reg prometheus.Registerer, db *sql.DB) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		pointsCreated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "points_created_total",
				Help: "Total create point operations by result",
			},
			[]string{"result"},
		)
		pointQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "point_queries_total",
				Help: "Total point read operations by operation and result",
			},
			[]string{"operation", "result"},
		)
		pointQueryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "point_query_latency_seconds",
				Help:    "Point operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		geoIndexPoints = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "geoindex_points",
				Help: "Number of points held by the nearby index",
			},
		)
		uploadedImageBytes = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "uploaded_image_bytes_total",
				Help: "Total bytes of point images stored",
			},
		)

		reg.MustRegister(
			pointsCreated,
			pointQueries,
			pointQueryLatency,
			httpRequests,
			geoIndexPoints,
			uploadedImageBytes,
		)
		if db != nil {
			reg.MustRegister(collectors.NewDBStatsCollector(db, "ecoleta"))
		}
	})
}

// ObservePointQuery records a read operation (list, show, nearby).
func ObservePointQuery(operation string, duration time.Duration, err error) {
	if pointQueries != nil {
		pointQueries.WithLabelValues(operation, resultOf(err)).Inc()
	}
	if pointQueryLatency != nil {
		pointQueryLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// ObservePointCreated records a create point outcome.
func ObservePointCreated(duration time.Duration, err error) {
	if pointsCreated != nil {
		pointsCreated.WithLabelValues(resultOf(err)).Inc()
	}
	if pointQueryLatency != nil {
		pointQueryLatency.WithLabelValues("create").Observe(duration.Seconds())
	}
}

// IncHTTPRequest counts a served request. route is the registered path, not the raw URL.
func IncHTTPRequest(method, route, status string) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, status).Inc()
	}
}

func SetGeoIndexPoints(n int) {
	if geoIndexPoints != nil {
		geoIndexPoints.Set(float64(n))
	}
}

func AddUploadedBytes(n int64) {
	if uploadedImageBytes != nil && n > 0 {
		uploadedImageBytes.Add(float64(n))
	}
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
