// Package metrics exposes Prometheus counters for the directory's business
// events, served by the health endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "botlibrary"

var (
	// SubmissionsCreated counts submissions that reached the pending state.
	SubmissionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_created_total",
		Help:      "Submissions persisted as pending.",
	})

	// Approvals counts submissions turned into listings.
	Approvals = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approvals_total",
		Help:      "Submissions approved into listings.",
	})

	// Rejections counts rejected submissions.
	Rejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejections_total",
		Help:      "Submissions rejected by moderators.",
	})

	// VotesRecorded counts persisted rating votes, including changed votes.
	VotesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_recorded_total",
		Help:      "Rating votes persisted to the ledger.",
	})

	// BroadcastDelivered and BroadcastFailed count per-recipient broadcast
	// outcomes.
	BroadcastDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_delivered_total",
		Help:      "Broadcast messages delivered.",
	})
	BroadcastFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_failed_total",
		Help:      "Broadcast messages that could not be delivered.",
	})

	// OpenSessions tracks live submission workflow sessions.
	OpenSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workflow_sessions_open",
		Help:      "Submission workflow sessions currently open.",
	})
)

// Handler serves the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
