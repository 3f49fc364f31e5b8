package broadcaster

import "context"

// Func adapts a function to the Broadcaster interface.
type Func func(ctx context.Context, event Event) error

// Broadcast satisfies the Broadcaster interface.
func (f Func) Broadcast(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// Fanout forwards every event to several broadcasters, for example the local
// group registry plus an audit sink.
type Fanout struct {
	targets []Broadcaster
}

// NewFanout assembles a broadcaster that multicasts to the non-nil targets.
func NewFanout(targets ...Broadcaster) *Fanout {
	f := &Fanout{}
	for _, target := range targets {
		f.Add(target)
	}
	return f
}

// Add appends a target; nil targets are ignored.
func (f *Fanout) Add(target Broadcaster) {
	if target == nil {
		return
	}
	f.targets = append(f.targets, target)
}

// Len reports the number of targets.
func (f *Fanout) Len() int {
	return len(f.targets)
}

var _ Broadcaster = (*Fanout)(nil)

// Broadcast delivers the event to each target, returning the first error observed.
func (f *Fanout) Broadcast(ctx context.Context, event Event) error {
	var firstErr error
	for _, target := range f.targets {
		if err := target.Broadcast(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
