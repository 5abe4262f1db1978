package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterMetrics(reg) })
	assert.Panics(t, func() { RegisterMetrics(reg) }, "duplicate registration panics")

	RecordLogin(ResultSuccess)

	n, err := testutil.GatherAndCount(reg, "recipekeeper_logins_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(Registrations.WithLabelValues(ResultExists))
	RecordRegistration(ResultExists)
	assert.Equal(t, before+1, testutil.ToFloat64(Registrations.WithLabelValues(ResultExists)))

	before = testutil.ToFloat64(SessionLookups.WithLabelValues(LookupExpired))
	RecordSessionLookup(LookupExpired)
	assert.Equal(t, before+1, testutil.ToFloat64(SessionLookups.WithLabelValues(LookupExpired)))

	before = testutil.ToFloat64(SessionsCreated)
	RecordSessionCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(SessionsCreated))
}

func TestRecordSessionsRemoved(t *testing.T) {
	c := SessionsRemoved.WithLabelValues(ReasonSweep)
	before := testutil.ToFloat64(c)

	RecordSessionsRemoved(ReasonSweep, 5)
	RecordSessionsRemoved(ReasonSweep, 0)
	RecordSessionsRemoved(ReasonSweep, -2)

	assert.Equal(t, before+5, testutil.ToFloat64(c))
}
