// Package metrics holds the Prometheus collectors for the registration lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventpass"

type Metrics struct {
	RegistrationsSubmitted   prometheus.Counter
	RegistrationsValidated   prometheus.Counter
	RegistrationsDeleted     prometheus.Counter
	TicketGenerationFailures prometheus.Counter
	TicketGenerationSeconds  prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg leaves them
// unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_submitted_total",
			Help:      "Registrations created from the public form.",
		}),
		RegistrationsValidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_validated_total",
			Help:      "Registrations moved to validated with a ticket issued.",
		}),
		RegistrationsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_deleted_total",
			Help:      "Registrations removed by an admin.",
		}),
		TicketGenerationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_generation_failures_total",
			Help:      "Validations aborted because the QR code or ticket document could not be produced.",
		}),
		TicketGenerationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ticket_generation_seconds",
			Help:      "Time spent rendering and writing ticket artifacts.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
