// Package metrics exposes Prometheus counters for the mutual connection flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mutual"

// MutualMetrics implements adapter.MutualMetrics on a dedicated registry.
type MutualMetrics struct {
	registry        *prometheus.Registry
	groupsCreated   *prometheus.CounterVec
	invitesSent     prometheus.Counter
	inviteResponses *prometheus.CounterVec
	groupsPromoted  *prometheus.CounterVec
	groupsStalled   prometheus.Counter
}

// NewMutualMetrics creates the counters and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMutualMetrics() *MutualMetrics {
	m := &MutualMetrics{
		registry: prometheus.NewRegistry(),
		groupsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_created_total",
			Help:      "Mutual groups created, by plan.",
		}, []string{"plan"}),
		invitesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invites_sent_total",
			Help:      "Invitations issued to users.",
		}),
		inviteResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invite_responses_total",
			Help:      "Invitation decisions, by decision.",
		}, []string{"decision"}),
		groupsPromoted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_promoted_total",
			Help:      "Groups that reached ACTIVE, by plan.",
		}, []string{"plan"}),
		groupsStalled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_stalled_total",
			Help:      "Groups moved to STALLED.",
		}),
	}

	m.registry.MustRegister(
		m.groupsCreated,
		m.invitesSent,
		m.inviteResponses,
		m.groupsPromoted,
		m.groupsStalled,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// GroupCreated counts a new group and its invitations.
func (m *MutualMetrics) GroupCreated(plan string, invites int) {
	m.groupsCreated.WithLabelValues(plan).Inc()
	if invites > 0 {
		m.invitesSent.Add(float64(invites))
	}
}

// InviteResponded counts a decision.
func (m *MutualMetrics) InviteResponded(accepted bool) {
	decision := "declined"
	if accepted {
		decision = "accepted"
	}
	m.inviteResponses.WithLabelValues(decision).Inc()
}

func (m *MutualMetrics) GroupPromoted(plan string) {
	m.groupsPromoted.WithLabelValues(plan).Inc()
}

func (m *MutualMetrics) GroupStalled() {
	m.groupsStalled.Inc()
}

// Registry returns the registry holding the counters.
func (m *MutualMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MutualMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
