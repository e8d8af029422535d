package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/admin/classes", "200"))
	RecordAPIRequest("GET", "/api/admin/classes", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/admin/classes", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, base+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, base, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordLoginAndTransition(t *testing.T) {
	RecordLogin("throttled")
	assert.GreaterOrEqual(t, testutil.ToFloat64(LoginAttempts.WithLabelValues("throttled")), 1.0)

	RecordEnrollmentTransition("approved")
	assert.GreaterOrEqual(t, testutil.ToFloat64(EnrollmentTransitions.WithLabelValues("approved")), 1.0)
}
