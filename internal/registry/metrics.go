package registry

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks group fan-out. Zero value is unusable; see NewMetrics.
type Metrics struct {
	groups    prometheus.Gauge
	members   prometheus.Gauge
	delivered prometheus.Counter
	dropped   prometheus.Counter
}

// NewMetrics builds the registry collectors and registers them on reg when
// it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "social",
			Subsystem: "groups",
			Name:      "active",
			Help:      "Groups with at least one member.",
		}),
		members: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "social",
			Subsystem: "groups",
			Name:      "members",
			Help:      "Group memberships across all groups.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "social",
			Subsystem: "groups",
			Name:      "frames_delivered_total",
			Help:      "Frames queued for a member.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "social",
			Subsystem: "groups",
			Name:      "frames_dropped_total",
			Help:      "Frames dropped because a member queue was full.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.groups, m.members, m.delivered, m.dropped)
	}
	return m
}
