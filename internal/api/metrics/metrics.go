// Package metrics defines and registers all custom Prometheus metrics for the
// student registry API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "student_registry"

// RegistrationsTotal counts accounts created through sign-up or admin create.
// Label:
//   - role: "student" or "admin"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of user accounts created, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// UserMutationsTotal counts admin mutations to user records.
// Labels:
//   - action: "update" or "delete"
//   - outcome: "success" or "failure"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of admin user mutations, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// ListUsersDuration measures how long the admin user listing takes, from
// service entry to repository result.
var ListUsersDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "list_users_duration_seconds",
		Help:      "Duration of admin user list queries.",
		Buckets:   prometheus.DefBuckets,
	},
)
