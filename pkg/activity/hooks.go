package activity

import (
	"context"
	"time"

	"github.com/goliatone/go-social/pkg/interfaces/logger"
)

// Event captures what happened when a notification was recorded or an
// announcement went out.
type Event struct {
	Verb        string
	ActorID     string
	RecipientID string
	ObjectType  string
	ObjectID    string
	Key         string
	Group       string
	Metadata    map[string]any
	OccurredAt  time.Time
}

// Hook observers receive activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event)
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, evt Event)

func (f HookFunc) Notify(ctx context.Context, evt Event) { f(ctx, evt) }

// Hooks provides a convenient fan-out collection.
type Hooks []Hook

// Notify delivers the event to every hook, skipping nil entries.
func (h Hooks) Notify(ctx context.Context, evt Event) {
	if len(h) == 0 {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	for _, hook := range h {
		if hook == nil {
			continue
		}
		hook.Notify(ctx, evt)
	}
}

// Nop is a no-op hook useful for defaults.
type Nop struct{}

func (Nop) Notify(_ context.Context, _ Event) {}

// LogHook writes every event at debug level.
type LogHook struct {
	Logger logger.Logger
}

func (h LogHook) Notify(_ context.Context, evt Event) {
	if h.Logger == nil {
		return
	}
	h.Logger.Debug("activity",
		logger.F("verb", evt.Verb),
		logger.F("actor_id", evt.ActorID),
		logger.F("recipient_id", evt.RecipientID),
		logger.F("object_type", evt.ObjectType),
		logger.F("object_id", evt.ObjectID),
		logger.F("key", evt.Key),
		logger.F("group", evt.Group),
	)
}

// CloneMetadata makes a shallow copy so hooks can mutate without affecting callers.
func CloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
