package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the counters exposed on /metrics.
type Metrics struct {
	// ScansTotal counts scan resolutions by terminal state
	// (not_found, inactive, expired, redirect, content).
	ScansTotal *prometheus.CounterVec

	// GeoLookupsTotal counts geolocation outcomes (cache_hit, success,
	// failure, skipped).
	GeoLookupsTotal *prometheus.CounterVec
}

// NewMetrics registers the application counters with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrjet",
			Name:      "scans_total",
			Help:      "Scan resolutions by terminal state.",
		}, []string{"state"}),
		GeoLookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrjet",
			Name:      "geo_lookups_total",
			Help:      "IP geolocation lookups by outcome.",
		}, []string{"outcome"}),
	}
}
