// Package metrics exports tumbler pipeline outcomes as Prometheus metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zoobzio/tumbler"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Collector implements tumbler.Observer.
type Collector struct {
	// Steps visited by operation, condition kind and outcome
	Steps *prometheus.CounterVec

	// Decrypts stopped at a closed gate, by kind
	GateRejections *prometheus.CounterVec

	// Whole Encrypt/Decrypt latency
	OperationDuration *prometheus.HistogramVec
}

var _ tumbler.Observer = (*Collector)(nil)

// New creates a Collector with all metrics registered on reg.
// A nil reg registers nothing, which suits short-lived tools and tests.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		Steps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tumbler_steps_total",
			Help: "Total pipeline steps by operation, condition kind and outcome",
		}, []string{"operation", "kind", "outcome"}),

		GateRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tumbler_gate_rejections_total",
			Help: "Total decrypts stopped at an unsatisfied condition, by kind",
		}, []string{"kind"}),

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tumbler_operation_duration_seconds",
			Help:    "Duration of pipeline encrypt and decrypt operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
	}
}

// ObserveStep records one visited condition.
func (c *Collector) ObserveStep(op string, _ int, kind tumbler.Kind, err error) {
	if c == nil {
		return
	}
	outcome := outcomeOf(err)
	c.Steps.WithLabelValues(op, string(kind), outcome).Inc()
	if outcome == OutcomeRejected {
		c.GateRejections.WithLabelValues(string(kind)).Inc()
	}
}

// ObserveOperation records the latency of a whole fold.
func (c *Collector) ObserveOperation(op string, d time.Duration, _ error) {
	if c == nil {
		return
	}
	c.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, tumbler.ErrConditionNotSatisfied):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
