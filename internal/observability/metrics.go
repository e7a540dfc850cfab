package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// station ingestion service.
type Metrics struct {
	RegionsIndexed     prometheus.Gauge
	CoordinatesIndexed prometheus.Gauge
	StationsDiscovered prometheus.Gauge
	PipelineRunning    prometheus.Gauge

	// Station lookup metrics.
	StationLookups  *prometheus.CounterVec // labels: outcome={success,empty,error}
	StationCache    *prometheus.CounterVec // labels: result={hit,miss}
	LookupDuration  prometheus.Histogram

	// Observation publishing metrics.
	ObservationFetches    *prometheus.CounterVec // labels: outcome={success,error}
	ObservationsPublished prometheus.Counter
	PublishErrors         prometheus.Counter
	FetchDuration         prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RegionsIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nws_ingest",
			Name:      "regions_indexed",
			Help:      "Number of region codes in the coordinate index.",
		}),
		CoordinatesIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nws_ingest",
			Name:      "coordinates_indexed",
			Help:      "Total coordinates in the index across all regions.",
		}),
		StationsDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nws_ingest",
			Name:      "stations_discovered",
			Help:      "Distinct observation stations resolved from the index.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nws_ingest",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		StationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nws_ingest",
			Name:      "station_lookups_total",
			Help:      "Nearest-station API lookups by outcome.",
		}, []string{"outcome"}),
		StationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nws_ingest",
			Name:      "station_cache_total",
			Help:      "Station lookup cache results.",
		}, []string{"result"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nws_ingest",
			Name:      "station_lookup_duration_seconds",
			Help:      "Nearest-station API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ObservationFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nws_ingest",
			Name:      "observation_fetches_total",
			Help:      "Latest-observation API requests by outcome.",
		}, []string{"outcome"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nws_ingest",
			Name:      "observations_published_total",
			Help:      "Observation messages written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nws_ingest",
			Name:      "publish_errors_total",
			Help:      "Failed sink topic writes.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nws_ingest",
			Name:      "observation_fetch_duration_seconds",
			Help:      "Latest-observation API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.RegionsIndexed,
		m.CoordinatesIndexed,
		m.StationsDiscovered,
		m.PipelineRunning,
		m.StationLookups,
		m.StationCache,
		m.LookupDuration,
		m.ObservationFetches,
		m.ObservationsPublished,
		m.PublishErrors,
		m.FetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// construct as many instances as they need without "already registered"
// panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RegionsIndexed:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "nws_ingest", Name: "regions_indexed"}),
		CoordinatesIndexed:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "nws_ingest", Name: "coordinates_indexed"}),
		StationsDiscovered:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "nws_ingest", Name: "stations_discovered"}),
		PipelineRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "nws_ingest", Name: "pipeline_running"}),
		StationLookups:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nws_ingest", Name: "station_lookups_total"}, []string{"outcome"}),
		StationCache:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nws_ingest", Name: "station_cache_total"}, []string{"result"}),
		LookupDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "nws_ingest", Name: "station_lookup_duration_seconds"}),
		ObservationFetches:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nws_ingest", Name: "observation_fetches_total"}, []string{"outcome"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nws_ingest", Name: "observations_published_total"}),
		PublishErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nws_ingest", Name: "publish_errors_total"}),
		FetchDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "nws_ingest", Name: "observation_fetch_duration_seconds"}),
	}
}
