package broadcaster

import "context"

// GlobalGroup is the group every notifications connection joins.
const GlobalGroup = "notifications"

// Event is a live payload addressed to one named group.
type Event struct {
	Group   string
	Payload any
}

// Broadcaster publishes events to the members of a group. Delivery is best
// effort: members that are gone or too slow miss the event.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

// Nop broadcaster discards events.
type Nop struct{}

var _ Broadcaster = (*Nop)(nil)

func (n *Nop) Broadcast(ctx context.Context, event Event) error { return nil }
