package rbac

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the authorization decision counter.
const (
	outcomeGranted         = "granted"
	outcomeDenied          = "denied"
	outcomeBypass          = "bypass"
	outcomeUnauthenticated = "unauthenticated"
	outcomeError           = "error"
)

// decisions counts gate decisions. Registered at init time so concurrent
// first decisions never touch unsynchronized state.
var decisions = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "authorization_decisions_total",
		Help: "Number of authorization gate decisions, differentiated by outcome.",
	},
	[]string{"outcome"},
)

// countDecision increments the authorization decision counter.
func countDecision(outcome string) {
	decisions.WithLabelValues(outcome).Inc()
}
