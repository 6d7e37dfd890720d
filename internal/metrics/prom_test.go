package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPromRecorder(reg)
	require.NoError(t, err)

	r.ProviderRequest("google-geocode", OutcomeOK)
	r.ProviderRequest("google-geocode", OutcomeFailed)
	r.ProviderRequest("google-geocode", OutcomeFailed)
	r.CacheLookup("geocode", true)
	r.TravelWarning("tight")
	r.TravelTimeout(ScopeCall)
	r.BatchDuration(250 * time.Millisecond)
	r.ScheduleResult(4, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.providerRequests.WithLabelValues("google-geocode", OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.providerRequests.WithLabelValues("google-geocode", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("geocode", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.travelWarnings.WithLabelValues("tight")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.travelTimeouts.WithLabelValues(ScopeCall)))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.scheduleEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.scheduleSkipped))
}

func TestPromRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromRecorder(reg)
	require.NoError(t, err)
	second, err := NewPromRecorder(reg)
	require.NoError(t, err)

	first.ScheduleResult(2, 0)
	second.ScheduleResult(3, 0)
	assert.Equal(t, 5.0, testutil.ToFloat64(second.scheduleEntries))
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, Nop{}, OrNop(nil))
	OrNop(nil).ScheduleResult(1, 1)
}
