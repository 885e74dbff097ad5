package realtime

import (
	"time"

	"knead/config"
)

// ReconciliationPolicy governs how a session keeps its local view aligned
// with store truth. Both actors share the same policy shape: push-primary
// delivery, a bounded-staleness poll fallback, and mandatory resubscription
// when the event stream drops. Staleness is bounded by
// max(PollInterval, push delivery latency).
type ReconciliationPolicy struct {
	// PollInterval is the fixed poll fallback period. Zero disables polling,
	// reproducing the legacy push-only customer path in which a missed event
	// leaves the view stale until a manual refresh.
	PollInterval time.Duration

	// ResubscribeDelay is the pause before reopening a dropped subscription.
	ResubscribeDelay time.Duration
}

// DefaultPolicy returns the production policy used by both session kinds.
// The poll interval comes from configuration.
func DefaultPolicy() ReconciliationPolicy {
	return ReconciliationPolicy{
		PollInterval:     config.PollInterval(),
		ResubscribeDelay: time.Second,
	}
}

// PushOnly returns a policy with the poll fallback disabled. Used to
// exercise the divergence behavior of push-only reconciliation.
func PushOnly() ReconciliationPolicy {
	return ReconciliationPolicy{ResubscribeDelay: time.Second}
}
