package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors shared by the search pipeline and the coordinate backfill.
type Metrics struct {
	Searches       *prometheus.CounterVec
	SearchResults  prometheus.Histogram
	GeocodeResults *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	TaskProcessed  *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	ActiveWorkers  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Searches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hopmap_searches_total",
			Help: "Total number of nearby searches by filter mode.",
		}, []string{"mode"}),
		SearchResults: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "hopmap_search_results",
			Help:    "Number of breweries returned per nearby search.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		GeocodeResults: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hopmap_location_resolutions_total",
			Help: "Total number of search location resolutions by outcome.",
		}, []string{"status"}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hopmap_geocode_cache_lookups_total",
			Help: "Total number of geocode cache lookups by result.",
		}, []string{"result"}),
		TaskProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hopmap_backfill_tasks_processed_total",
			Help: "Total number of breweries processed by the coordinate backfill.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "hopmap_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hopmap_geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hopmap_backfill_active_workers",
			Help: "Current number of backfill workers processing breweries.",
		}),
	}
}
