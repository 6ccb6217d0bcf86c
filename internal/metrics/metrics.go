package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed analyses.
	OutcomeSuccess = "success"
	// OutcomeError labels analyses that failed (data or fitting issues).
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reliabase",
			Name:      "analyses_total",
			Help:      "Total number of asset analyses run, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reliabase",
			Name:      "analysis_seconds",
			Help:      "Asset analysis latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13},
		},
	)

	bootstrapResamples = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reliabase",
			Name:      "bootstrap_resamples",
			Help:      "Resample count per bootstrap confidence interval run.",
			Buckets:   []float64{100, 200, 500, 1000, 2000, 5000},
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reliabase",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, partitioned by method and status class.",
		},
		[]string{"method", "status"},
	)
)

// Register attaches reliabase collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		bootstrapResamples,
		httpRequestsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveBootstrap records the resample count of one bootstrap run.
func ObserveBootstrap(resamples int) {
	if resamples < 0 {
		resamples = 0
	}
	bootstrapResamples.Observe(float64(resamples))
}

// ObserveHTTPRequest counts a served request by method and status class.
func ObserveHTTPRequest(method, statusClass string) {
	httpRequestsTotal.WithLabelValues(method, statusClass).Inc()
}
