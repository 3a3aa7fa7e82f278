// Package metrics holds the domain counters exposed next to the fiber
// HTTP metrics on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the set of workflow counters. A nil *Metrics records nothing.
type Metrics struct {
	partRequests     *prometheus.CounterVec
	orphanedRequests prometheus.Counter
	stockAdjustments *prometheus.CounterVec
	jobTransitions   *prometheus.CounterVec
}

// New registers the counters with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		partRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tevor",
			Name:      "part_requests_total",
			Help:      "Part requests raised or cancelled from jobs.",
		}, []string{"op"}),
		orphanedRequests: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tevor",
			Name:      "part_requests_orphaned_total",
			Help:      "Part requests left open because the job update that should reference them failed.",
		}),
		stockAdjustments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tevor",
			Name:      "stock_adjustments_total",
			Help:      "Stock balance adjustments by outcome.",
		}, []string{"result"}),
		jobTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tevor",
			Name:      "job_status_transitions_total",
			Help:      "Job status updates by target status.",
		}, []string{"status"}),
	}
}

// PartRequest counts a part request operation, "add" or "cancel"
func (m *Metrics) PartRequest(op string) {
	if m == nil {
		return
	}
	m.partRequests.WithLabelValues(op).Inc()
}

// OrphanedPartRequest counts a part request that no job references
func (m *Metrics) OrphanedPartRequest() {
	if m == nil {
		return
	}
	m.orphanedRequests.Inc()
}

// StockAdjustment counts a balance adjustment outcome: ok, insufficient, notfound or error
func (m *Metrics) StockAdjustment(result string) {
	if m == nil {
		return
	}
	m.stockAdjustments.WithLabelValues(result).Inc()
}

// JobTransition counts a job moving to status
func (m *Metrics) JobTransition(status string) {
	if m == nil {
		return
	}
	m.jobTransitions.WithLabelValues(status).Inc()
}
