// Package metrics exposes Prometheus counters for lending decisions.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Lending counts decisions and originations. A nil *Lending records nothing.
type Lending struct {
	decisions    *prometheus.CounterVec
	originated   prometheus.Counter
	registered   prometheus.Counter
	creditScores prometheus.Histogram
}

// NewLending creates the collectors and registers them with reg.
func NewLending(reg prometheus.Registerer) *Lending {
	m := &Lending{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "decisions_total",
			Help:      "Loan decisions by operation and outcome.",
		}, []string{"operation", "approved"}),
		originated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "loans_originated_total",
			Help:      "Loans persisted after approval.",
		}),
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "customers_registered_total",
			Help:      "Customers registered.",
		}),
		creditScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "credit",
			Name:      "score",
			Help:      "Distribution of computed credit scores.",
			Buckets:   []float64{10, 30, 50, 70, 90, 100},
		}),
	}
	reg.MustRegister(m.decisions, m.originated, m.registered, m.creditScores)
	return m
}

// ObserveDecision records one decision for operation.
func (m *Lending) ObserveDecision(operation string, approved bool, score int) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(operation, strconv.FormatBool(approved)).Inc()
	m.creditScores.Observe(float64(score))
}

// LoanOriginated records a persisted loan.
func (m *Lending) LoanOriginated() {
	if m == nil {
		return
	}
	m.originated.Inc()
}

// CustomerRegistered records a registration.
func (m *Lending) CustomerRegistered() {
	if m == nil {
		return
	}
	m.registered.Inc()
}
