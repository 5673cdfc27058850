package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the settlement engine.
type Metrics struct {
	SettlementRuns        prometheus.Counter
	InvestmentsCredited   prometheus.Counter
	InvestmentsCompleted  prometheus.Counter
	InvestmentsFailed     prometheus.Counter
	InvestmentsSkipped    prometheus.Counter
	CommissionsPaid       *prometheus.CounterVec
	SettlementRunDuration prometheus.Histogram
}

func New(serviceName string) *Metrics {
	return NewWith(prometheus.DefaultRegisterer, serviceName)
}

// NewWith registers the collectors against a specific registerer.
func NewWith(reg prometheus.Registerer, serviceName string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SettlementRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stratum",
			Subsystem: serviceName,
			Name:      "settlement_runs_total",
			Help:      "Total number of settlement runs",
		}),
		InvestmentsCredited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stratum",
			Subsystem: serviceName,
			Name:      "investments_credited_total",
			Help:      "Investments credited with daily profit",
		}),
		InvestmentsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stratum",
			Subsystem: serviceName,
			Name:      "investments_completed_total",
			Help:      "Investments retired at end of term",
		}),
		InvestmentsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stratum",
			Subsystem: serviceName,
			Name:      "investments_failed_total",
			Help:      "Investments skipped in a run because of errors",
		}),
		InvestmentsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stratum",
			Subsystem: serviceName,
			Name:      "investments_skipped_total",
			Help:      "Investments skipped in a run without error",
		}),
		CommissionsPaid: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stratum",
			Subsystem: serviceName,
			Name:      "commissions_paid_total",
			Help:      "Referral commissions paid, by kind",
		}, []string{"kind"}),
		SettlementRunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stratum",
			Subsystem: serviceName,
			Name:      "settlement_run_duration_seconds",
			Help:      "Duration of settlement runs",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
