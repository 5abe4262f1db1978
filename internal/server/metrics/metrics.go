// Package metrics exposes Prometheus counters for account and session
// activity. Call RegisterMetrics once at startup to publish them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Result labels.
const (
	ResultSuccess = "success"
	ResultExists  = "exists"
	ResultInvalid = "invalid"
	ResultError   = "error"

	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupExpired = "expired"
	LookupError   = "error"
)

// Session removal reasons.
const (
	ReasonLogout  = "logout"
	ReasonExpired = "expired"
	ReasonSweep   = "sweep"
	ReasonRevoke  = "revoke"
)

var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipekeeper_registrations_total",
		Help: "Account registrations by result",
	},
	[]string{"result"},
)

var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipekeeper_logins_total",
		Help: "Login attempts by result",
	},
	[]string{"result"},
)

var SessionLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipekeeper_session_lookups_total",
		Help: "Session lookups by outcome",
	},
	[]string{"result"},
)

var SessionsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "recipekeeper_sessions_created_total",
		Help: "Sessions issued",
	},
)

var SessionsRemoved = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipekeeper_sessions_removed_total",
		Help: "Sessions removed by reason",
	},
	[]string{"reason"},
)

// RegisterMetrics registers every collector in this package with reg.
// It panics on duplicate registration, following prometheus convention.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Registrations, Logins, SessionLookups, SessionsCreated, SessionsRemoved)
}

func RecordRegistration(result string) {
	Registrations.WithLabelValues(result).Inc()
}

func RecordLogin(result string) {
	Logins.WithLabelValues(result).Inc()
}

func RecordSessionLookup(result string) {
	SessionLookups.WithLabelValues(result).Inc()
}

func RecordSessionCreated() {
	SessionsCreated.Inc()
}

// RecordSessionsRemoved adds n removals for reason. Non-positive n is ignored.
func RecordSessionsRemoved(reason string, n int64) {
	if n <= 0 {
		return
	}
	SessionsRemoved.WithLabelValues(reason).Add(float64(n))
}
