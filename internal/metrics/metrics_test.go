package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/learnflow/internal/metrics"
)

func TestRegisterAndServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	before := testutil.ToFloat64(metrics.CoachingColdStarts)
	metrics.CoachingColdStarts.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CoachingColdStarts))

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "learnflow_coaching_cold_starts_total")
}
