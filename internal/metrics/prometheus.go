package metrics

import (
	"net/http"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stepDuration  *prom.HistogramVec
	stepResults   *prom.CounterVec
	fallbacks     prom.Counter
	runDuration   prom.Histogram
	runOutcomes   *prom.CounterVec
	capturedBytes prom.Histogram
}

// NewPrometheusRecorder constructs metrics and registers them with reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	pr := &PrometheusRecorder{
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "ejlv",
			Name:      "idf_step_duration_seconds",
			Help:      "Duration of idf.py invocations",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"action"}),
		stepResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ejlv",
			Name:      "idf_step_results_total",
			Help:      "idf.py invocations by action and result",
		}, []string{"action", "result"}),
		fallbacks: prom.NewCounter(prom.CounterOpts{
			Namespace: "ejlv",
			Name:      "build_fallbacks_total",
			Help:      "Builds that needed a clean reconfigure",
		}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "ejlv",
			Name:      "run_duration_seconds",
			Help:      "Total build, flash and monitor duration",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 1800},
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ejlv",
			Name:      "run_outcomes_total",
			Help:      "Runs by outcome",
		}, []string{"outcome"}),
		capturedBytes: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "ejlv",
			Name:      "serial_captured_bytes",
			Help:      "Serial output captured per session",
			Buckets:   prom.ExponentialBuckets(256, 4, 8),
		}),
	}
	reg.MustRegister(pr.stepDuration, pr.stepResults, pr.fallbacks, pr.runDuration, pr.runOutcomes, pr.capturedBytes)
	return pr
}

func (p *PrometheusRecorder) ObserveStep(action string, d time.Duration, success bool) {
	// "set-target esp32s3" is labelled "set-target" to bound cardinality.
	verb, _, _ := strings.Cut(action, " ")
	p.stepDuration.WithLabelValues(verb).Observe(d.Seconds())
	result := "success"
	if !success {
		result = "failure"
	}
	p.stepResults.WithLabelValues(verb, result).Inc()
}

func (p *PrometheusRecorder) IncBuildFallback() {
	p.fallbacks.Inc()
}

func (p *PrometheusRecorder) ObserveRun(outcome string, d time.Duration) {
	p.runOutcomes.WithLabelValues(outcome).Inc()
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveCapturedBytes(n int) {
	p.capturedBytes.Observe(float64(n))
}

// HTTPHandler serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
