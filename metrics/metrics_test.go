package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordsRequests(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET", "/api/worlds", "200", 20*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/worlds", "200", 10*time.Millisecond)
	m.RecordInvalidation("posts")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/worlds", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidations.WithLabelValues("posts")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SetWSConnections(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eudaimonia_ws_connections 3")
}
