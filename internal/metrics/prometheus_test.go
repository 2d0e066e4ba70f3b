package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStep("build", 10*time.Second, false)
	pr.ObserveStep("set-target esp32s3", 2*time.Second, true)
	pr.ObserveStep("build", 30*time.Second, true)
	pr.IncBuildFallback()
	pr.ObserveRun("success", 2*time.Minute)
	pr.ObserveCapturedBytes(4096)

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.stepResults.WithLabelValues("build", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.stepResults.WithLabelValues("set-target", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.runOutcomes.WithLabelValues("success")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRun("timeout", time.Minute)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `ejlv_run_outcomes_total{outcome="timeout"} 1`))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStep("build", time.Second, true)
	r.IncBuildFallback()
	r.ObserveRun("success", time.Second)
	r.ObserveCapturedBytes(1)
}
