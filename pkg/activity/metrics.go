package activity

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// CounterHook counts events by verb.
type CounterHook struct {
	events *prometheus.CounterVec
}

// NewCounterHook registers the counter on reg. A nil reg leaves the counter
// unregistered.
func NewCounterHook(reg prometheus.Registerer) *CounterHook {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social",
		Subsystem: "activity",
		Name:      "events_total",
		Help:      "Notifications and announcements emitted, by verb.",
	}, []string{"verb"})
	if reg != nil {
		reg.MustRegister(events)
	}
	return &CounterHook{events: events}
}

func (h *CounterHook) Notify(_ context.Context, evt Event) {
	verb := evt.Verb
	if verb == "" {
		verb = "announce"
	}
	h.events.WithLabelValues(verb).Inc()
}

// Collector exposes the underlying counter, mostly for tests.
func (h *CounterHook) Collector() *prometheus.CounterVec {
	return h.events
}
