// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfolio"

var (
	ContactSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "contact_submissions_total", Help: "Contact submissions by outcome (recorded or error kind)."},
		[]string{"outcome"},
	)
	ContactNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "contact_notifications_total", Help: "Operator notification attempts by result."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(ContactSubmissions)
	reg.MustRegister(ContactNotifications)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
