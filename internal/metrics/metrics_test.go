package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.Submission("manual-review")
	m.Transition("offer")
	m.Transition("offer")
	m.Notification("REJECTION", OutcomeFailed)
	m.Selection(true)
	m.Selection(false)
	m.SnapshotWriteFailed()
	m.HTTPRequest("GET", "/api/v1/jobs", 200, 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("manual-review")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("offer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("REJECTION", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.selections.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/jobs", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Submission("submitted")
		m.Transition("offer")
		m.Notification("REJECTION", OutcomeSent)
		m.Selection(false)
		m.SnapshotWriteFailed()
		m.HTTPRequest("GET", "/", 200, time.Millisecond)
		m.WSClients(3)
		m.NotificationQueue(1)
	})
	assert.NotNil(t, m.Handler())
}
