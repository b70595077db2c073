package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "splitledger_"

// Metrics holds the ledger's Prometheus collectors.
type Metrics struct {
	netOperations *prometheus.CounterVec
}

// NewMetrics creates the ledger collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		netOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "netting_operations_total",
				Help: "Netting operations applied to the pairwise ledger, by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.netOperations)
	}
	return m
}

func (m *Metrics) observeNet(outcome Outcome) {
	m.netOperations.WithLabelValues(string(outcome)).Inc()
}
