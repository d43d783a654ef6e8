// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector of the service on a private registry, so
// tests can build as many instances as they like. A nil *Metrics records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	BallotsCommitted prometheus.Counter
	BallotsRejected  *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BallotsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "election_ballots_committed_total",
			Help: "Total number of ballots recorded",
		}),
		BallotsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "election_ballots_rejected_total",
			Help: "Total number of ballots refused, by reason code",
		}, []string{"reason"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "election_logins_total",
			Help: "Login attempts by role and outcome",
		}, []string{"role", "outcome"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "election_transitions_total",
			Help: "Election state changes (open, close, reveal, hide, reset)",
		}, []string{"transition"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "election_request_duration_seconds",
			Help:    "Duration of API actions",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint", "action"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncBallotCommitted() {
	if m == nil {
		return
	}
	m.BallotsCommitted.Inc()
}

func (m *Metrics) IncBallotRejected(reason string) {
	if m == nil {
		return
	}
	m.BallotsRejected.WithLabelValues(reason).Inc()
}

// IncLogin records a login attempt. outcome is "success" or an error code.
func (m *Metrics) IncLogin(role, outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) IncTransition(transition string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(transition).Inc()
}

// ObserveRequest records the duration of one action.
// Call with time.Now() at the start of the action.
func (m *Metrics) ObserveRequest(endpoint, action string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(endpoint, action).Observe(time.Since(start).Seconds())
}
