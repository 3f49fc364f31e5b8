package broadcaster

import (
	"context"
	"sync"
)

// Capture records broadcast events in memory. Tests use it in place of the
// live registry.
type Capture struct {
	mu     sync.Mutex
	events []Event
	err    error
}

var _ Broadcaster = (*Capture)(nil)

// NewCapture returns an empty capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

// FailWith makes subsequent broadcasts return err after recording the event.
func (c *Capture) FailWith(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *Capture) Broadcast(ctx context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

// Events returns a copy of every recorded event in order.
func (c *Capture) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// ForGroup returns the recorded events addressed to group.
func (c *Capture) ForGroup(group string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, evt := range c.events {
		if evt.Group == group {
			out = append(out, evt)
		}
	}
	return out
}

// Reset drops the recorded events.
func (c *Capture) Reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}
