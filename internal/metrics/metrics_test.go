package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/metrics"
)

func TestRecordNotification(t *testing.T) {
	m := metrics.New()

	m.RecordNotification("slack", 200, 10*time.Millisecond)
	m.RecordNotification("slack", 200, 20*time.Millisecond)
	m.RecordNotification("", 404, 0)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Notifications.WithLabelValues("slack", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Notifications.WithLabelValues("none", "404")), 0)
}

func TestRecordRegistrationAndGauge(t *testing.T) {
	m := metrics.New()

	m.RecordRegistration(201)
	m.RecordRegistration(400)
	m.SetTriggers(3)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Registrations.WithLabelValues("201")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.Triggers), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordRegistration(201)
		m.RecordNotification("slack", 200, time.Second)
		m.SetTriggers(1)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := metrics.New()
	m.RecordNotification("email", 500, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `notifier_notifications_total{service="email",status="500"} 1`)
	assert.Contains(t, string(body), "notifier_dispatch_duration_seconds")
}
