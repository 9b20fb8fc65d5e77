// Package metrics exposes Prometheus counters for task status coordination.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "planner"

var (
	// StatusChanges counts persisted task status changes by new status and actor class.
	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_status_changes_total",
		Help:      "Task status changes committed, by new status and source.",
	}, []string{"status", "source"})

	// ClaimConflicts counts sibling tasks marked as claimed by someone else.
	ClaimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_claim_conflicts_total",
		Help:      "Sibling tasks moved to CLAIMED_BY_SOMEONE_ELSE.",
	})

	// Notifications counts tasks-changed notifications by outcome.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Tasks-changed notifications, by result (sent, failed, skipped).",
	}, []string{"result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
