package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsmap_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RecordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmap_records_created_total",
			Help: "Records stored, partitioned by whether the location was resolved",
		},
		[]string{"geocoded"},
	)

	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmap_geocode_requests_total",
			Help: "Forward geocoding calls by outcome (match, no_match, error, rejected)",
		},
		[]string{"outcome"},
	)

	GeocodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsmap_geocode_duration_seconds",
			Help:    "Forward geocoding latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsmap_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmap_cache_lookups_total",
			Help: "Cache lookups by kind (record, list) and result (hit, miss, error)",
		},
		[]string{"kind", "result"},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordGeocode records one geocoder call.
func RecordGeocode(outcome string, d time.Duration) {
	GeocodeRequests.WithLabelValues(outcome).Inc()
	GeocodeDuration.Observe(d.Seconds())
}

// RecordGeocodeRejected counts a call refused by the circuit breaker. No
// upstream request was made, so no latency is observed.
func RecordGeocodeRejected() {
	GeocodeRequests.WithLabelValues("rejected").Inc()
}

// RecordCacheLookup counts a cache lookup.
func RecordCacheLookup(kind, result string) {
	CacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordCreated counts a stored record.
func RecordCreated(geocoded bool) {
	label := "false"
	if geocoded {
		label = "true"
	}
	RecordsCreated.WithLabelValues(label).Inc()
}
