// Package registry keeps the live group memberships of connected sessions
// and fans frames out to them.
package registry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/google/uuid"
)

// DefaultQueueSize is the outbound frame buffer of a member.
const DefaultQueueSize = 256

// Member is one connected session. Frames published to its groups are
// queued on Outbound.
type Member struct {
	ID       string
	Identity string
	outbound chan []byte
}

// NewMember returns a member with a queue of size frames. Non-positive sizes
// use DefaultQueueSize.
func NewMember(identity string, size int) *Member {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Member{
		ID:       uuid.NewString(),
		Identity: identity,
		outbound: make(chan []byte, size),
	}
}

// Outbound is the frame queue drained by the connection writer.
func (m *Member) Outbound() <-chan []byte {
	return m.outbound
}

// Offer queues frame unless the queue is full.
func (m *Member) Offer(frame []byte) bool {
	select {
	case m.outbound <- frame:
		return true
	default:
		return false
	}
}

type Option func(*Registry)

func WithMetrics(metrics *Metrics) Option {
	return func(r *Registry) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

func WithLogger(lgr logger.Logger) Option {
	return func(r *Registry) {
		if lgr != nil {
			r.logger = lgr
		}
	}
}

// Registry maps group names to their members.
type Registry struct {
	mu      sync.RWMutex
	groups  map[string]map[*Member]struct{}
	metrics *Metrics
	logger  logger.Logger
}

var _ broadcaster.Broadcaster = (*Registry)(nil)

func New(opts ...Option) *Registry {
	r := &Registry{
		groups:  make(map[string]map[*Member]struct{}),
		metrics: NewMetrics(nil),
		logger:  &logger.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Join adds member to group, creating the group on first join.
func (r *Registry) Join(group string, member *Member) {
	if group == "" || member == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.groups[group]
	if !ok {
		members = make(map[*Member]struct{})
		r.groups[group] = members
		r.metrics.groups.Inc()
	}
	if _, ok := members[member]; ok {
		return
	}
	members[member] = struct{}{}
	r.metrics.members.Inc()
}

// Leave removes member from group. The group disappears with its last
// member. Leaving a group one is not in does nothing.
func (r *Registry) Leave(group string, member *Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.groups[group]
	if !ok {
		return
	}
	if _, ok := members[member]; !ok {
		return
	}
	delete(members, member)
	r.metrics.members.Dec()
	if len(members) == 0 {
		delete(r.groups, group)
		r.metrics.groups.Dec()
	}
}

// Publish queues frame on every member of group without blocking and
// returns how many members accepted it. Members with a full queue miss the
// frame.
func (r *Registry) Publish(ctx context.Context, group string, frame []byte) int {
	r.mu.RLock()
	members := make([]*Member, 0, len(r.groups[group]))
	for m := range r.groups[group] {
		members = append(members, m)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, m := range members {
		if m.Offer(frame) {
			delivered++
			r.metrics.delivered.Inc()
			continue
		}
		r.metrics.dropped.Inc()
		r.logger.Warn("member queue full, frame dropped",
			logger.F("group", group),
			logger.F("member", m.ID),
		)
	}
	return delivered
}

// Members returns the number of members in group.
func (r *Registry) Members(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

// Groups returns the number of non-empty groups.
func (r *Registry) Groups() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// Broadcast encodes the event payload as JSON and publishes it locally.
func (r *Registry) Broadcast(ctx context.Context, event broadcaster.Event) error {
	frame, err := Encode(event.Payload)
	if err != nil {
		return err
	}
	r.Publish(ctx, event.Group, frame)
	return nil
}

// Encode turns a payload into a text frame. Byte slices pass through.
func Encode(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(payload)
	}
}
