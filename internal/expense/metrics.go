package expense

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/splitledger/internal/apperr"
)

// Metrics holds the expense collectors.
type Metrics struct {
	expenses *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the expense collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		expenses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_expenses_total",
				Help: "Expenses processed, by result",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_expense_duration_seconds",
			Help:    "Time to record an expense",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.expenses, m.duration)
	}
	return m
}

func (m *Metrics) observeExpense(result string, elapsed time.Duration) {
	m.expenses.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// resultLabel is "ok", "rejected" for caller errors, or "failed".
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperr.IsBadRequest(err):
		return "rejected"
	default:
		return "failed"
	}
}
