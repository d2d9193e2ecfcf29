package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("complaints_test")

	m.RecordRequest("/api/users/complaints", "POST", 201, 15*time.Millisecond)
	m.RecordRequest("/api/users/complaints", "POST", 201, 5*time.Millisecond)
	m.RecordError("/api/admin/complaints/:id", "GET", "NOT_FOUND")
	m.RecordEvent("complaint_submitted")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("POST", "/api/users/complaints", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("GET", "/api/admin/complaints/:id", "NOT_FOUND")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventCount.WithLabelValues("complaint_submitted")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordEvent("x")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("complaints_test")
	m.RecordEvent("complaint_assigned")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `complaints_test_complaints_events_total{type="complaint_assigned"} 1`))
}
