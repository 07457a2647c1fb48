// Package metrics holds the prometheus collectors for signed operations and saga steps.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bridge"

// Operation outcomes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Recorder owns a registry so that tests and embedded callers never share global state.
type Recorder struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	sagaSteps    *prometheus.CounterVec
	exchangeReqs *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Signed operations by kind, network and outcome.",
		}, []string{"op", "network", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Wall time of signed operations including confirmation waits.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"op", "network"}),
		sagaSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_steps_total",
			Help:      "Swap-and-bridge steps by name and outcome.",
		}, []string{"step", "status"}),
		exchangeReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_requests_total",
			Help:      "Exchange REST calls by endpoint and error kind.",
		}, []string{"endpoint", "kind"}),
	}

	r.registry.MustRegister(r.operations, r.duration, r.sagaSteps, r.exchangeReqs)

	return r
}

// Registry exposes the collectors, e.g. for a push gateway or a test gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveOperation records one deposit or withdrawal.
func (r *Recorder) ObserveOperation(op, network string, err error, started time.Time) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, network, statusOf(err)).Inc()
	r.duration.WithLabelValues(op, network).Observe(time.Since(started).Seconds())
}

// ObserveStep records one saga step.
func (r *Recorder) ObserveStep(step string, err error) {
	if r == nil {
		return
	}
	r.sagaSteps.WithLabelValues(step, statusOf(err)).Inc()
}

// ObserveExchangeRequest records one exchange call. kind is empty on success.
func (r *Recorder) ObserveExchangeRequest(endpoint, kind string) {
	if r == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	r.exchangeReqs.WithLabelValues(endpoint, kind).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return StatusFailed
	}
	return StatusSuccess
}
