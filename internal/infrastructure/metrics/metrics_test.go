package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHandlerExposesCollectors(t *testing.T) {
	TriageFallbacks.Inc()
	HTTPRequests.WithLabelValues("/api/ping", "GET", "200").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "propertypro_maintenance_triage_fallbacks_total")
	assert.Contains(t, rec.Body.String(), `route="/api/ping"`)
	assert.GreaterOrEqual(t, testutil.ToFloat64(TriageFallbacks), 1.0)
}
