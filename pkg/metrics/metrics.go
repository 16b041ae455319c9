package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the console core.
type Metrics struct {
	MutationsTotal      prometheus.Counter
	MutationErrorsTotal prometheus.Counter
	PollTicksTotal      prometheus.Counter
	PollErrorsTotal     prometheus.Counter
	NotificationsTotal  prometheus.Counter
}

// New creates the counters on reg; a nil reg uses the default registerer.
// Tests pass their own registry so instances stay isolated.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		MutationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "console_mutations_total",
			Help: "Total number of successful entity mutations",
		}),
		MutationErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "console_mutation_errors_total",
			Help: "Total number of failed entity mutations",
		}),
		PollTicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "console_poll_ticks_total",
			Help: "Total number of active-scan poll ticks",
		}),
		PollErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "console_poll_errors_total",
			Help: "Total number of poll ticks that failed and were skipped",
		}),
		NotificationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "console_notifications_total",
			Help: "Total number of notifications published",
		}),
	}
}
