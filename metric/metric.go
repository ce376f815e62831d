// Package metric exposes Prometheus instrumentation for workflow execution
// and envelope routing. A nil *Metrics is a valid no-op receiver so callers
// never need to branch on whether observability is configured.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for one orchestrator instance.
type Metrics struct {
	workflowsTotal   *prometheus.CounterVec
	workflowDuration *prometheus.HistogramVec
	stepsTotal       *prometheus.CounterVec
	stepRetries      prometheus.Counter
	envelopesRouted  prometheus.Counter
}

// New creates Metrics and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		workflowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "govmesh",
			Name:      "workflows_total",
			Help:      "Workflow executions by name and terminal state.",
		}, []string{"workflow", "state"}),
		workflowDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "govmesh",
			Name:      "workflow_duration_seconds",
			Help:      "Wall-clock workflow execution time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "govmesh",
			Name:      "workflow_steps_total",
			Help:      "Workflow steps by action and outcome.",
		}, []string{"action", "outcome"}),
		stepRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "govmesh",
			Name:      "workflow_step_retries_total",
			Help:      "Step attempts beyond the first.",
		}),
		envelopesRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "govmesh",
			Name:      "envelopes_routed_total",
			Help:      "Envelopes handed to the router by the orchestrator.",
		}),
	}
	reg.MustRegister(m.workflowsTotal, m.workflowDuration, m.stepsTotal, m.stepRetries, m.envelopesRouted)
	return m
}

// ObserveWorkflow records one finished workflow execution.
func (m *Metrics) ObserveWorkflow(name, state string, d time.Duration) {
	if m == nil {
		return
	}
	m.workflowsTotal.WithLabelValues(name, state).Inc()
	m.workflowDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ObserveStep records one finished step attempt chain.
func (m *Metrics) ObserveStep(action, outcome string) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveRetry records one retried step attempt.
func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.stepRetries.Inc()
}

// ObserveRouted records one envelope handed to the router.
func (m *Metrics) ObserveRouted() {
	if m == nil {
		return
	}
	m.envelopesRouted.Inc()
}
