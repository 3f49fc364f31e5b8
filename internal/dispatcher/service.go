package dispatcher

import (
	"context"
	"errors"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/pkg/activity"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/interfaces/store"
)

// TypeReceive is the dispatch tag every live payload carries.
const TypeReceive = "receive"

// Broadcast keys understood by the browser client.
const (
	KeyNotification   = "notification"
	KeySocialUpdate   = "social_update"
	KeyAdditionalNews = "additional_news"
)

// Payload is the JSON object pushed to connected sessions.
type Payload struct {
	Type      string `json:"type"`
	Key       string `json:"key,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
	IDValue   string `json:"id_value,omitempty"`
	Message   string `json:"message,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

// NotifyInput describes one domain event addressed to a recipient.
type NotifyInput struct {
	Actor     domain.User
	Recipient domain.User
	Verb      domain.Verb
	Target    domain.Target
	Key       string
	IDValue   string
}

type Dependencies struct {
	Notifications store.NotificationRepository
	Broadcaster   broadcaster.Broadcaster
	Owners        *Owners
	Hooks         activity.Hooks
	Logger        logger.Logger
}

// Service records notifications and pushes the matching live payloads.
type Service struct {
	notifications store.NotificationRepository
	broadcaster   broadcaster.Broadcaster
	owners        *Owners
	hooks         activity.Hooks
	logger        logger.Logger
}

var (
	ErrMissingNotifications = errors.New("dispatcher: notification repository is required")
	ErrMissingOwners        = errors.New("dispatcher: owner resolvers are required")
)

// New builds the dispatcher service.
func New(deps Dependencies) (*Service, error) {
	if deps.Notifications == nil {
		return nil, ErrMissingNotifications
	}
	if deps.Owners == nil {
		return nil, ErrMissingOwners
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = &broadcaster.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		notifications: deps.Notifications,
		broadcaster:   deps.Broadcaster,
		owners:        deps.Owners,
		hooks:         deps.Hooks,
		logger:        deps.Logger,
	}, nil
}

// Notify persists a notification for in.Recipient and then broadcasts it to
// the recipient's personal group. It returns nil, nil when the event is
// suppressed: the actor acting on their own content, a target that does not
// exist, or a recipient that does not own the target. Other owner lookup
// failures are returned.
func (s *Service) Notify(ctx context.Context, in NotifyInput) (*domain.Notification, error) {
	if !in.Verb.Valid() {
		return nil, apperr.Invalid("dispatcher: unknown verb")
	}
	log := s.logger.With(
		logger.F("verb", in.Verb.String()),
		logger.F("actor", in.Actor.Username),
		logger.F("recipient", in.Recipient.Username),
		logger.F("target", in.Target.String()),
	)

	if in.Actor.ID == in.Recipient.ID {
		log.Debug("notification suppressed: self action")
		return nil, nil
	}
	if !in.Target.Valid() {
		log.Warn("notification suppressed: invalid target")
		return nil, nil
	}
	owner, err := s.owners.Resolve(ctx, in.Target)
	switch {
	case errors.Is(err, ErrNoResolver), errors.Is(err, store.ErrNotFound):
		log.Warn("notification suppressed: target owner unknown", logger.Err(err))
		return nil, nil
	case err != nil:
		log.Error("resolve target owner failed", logger.Err(err))
		return nil, apperr.Store(err, "dispatcher: resolve owner")
	}
	if owner != in.Recipient.ID {
		log.Debug("notification suppressed: recipient does not own target")
		return nil, nil
	}

	n := &domain.Notification{
		ActorID:     in.Actor.ID,
		RecipientID: in.Recipient.ID,
		Verb:        in.Verb,
		TargetKind:  in.Target.Kind,
		TargetID:    in.Target.ID,
		Unread:      true,
	}
	n.EnsureID()
	n.Slug = domain.NotificationSlug(in.Recipient.Username, n.ID, n.Verb)
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Error("persist notification failed", logger.Err(err))
		return nil, apperr.Store(err, "dispatcher: persist notification")
	}

	key := in.Key
	if key == "" {
		key = KeyNotification
	}
	s.publish(ctx, log, in.Recipient.Username, Payload{
		Type:      TypeReceive,
		Key:       key,
		ActorName: in.Actor.DisplayName(),
		IDValue:   in.IDValue,
	})

	s.hooks.Notify(ctx, activity.Event{
		Verb:        in.Verb.String(),
		ActorID:     in.Actor.ID.String(),
		RecipientID: in.Recipient.ID.String(),
		ObjectType:  string(in.Target.Kind),
		ObjectID:    in.Target.ID.String(),
		Key:         key,
		Group:       in.Recipient.Username,
		Metadata:    map[string]any{"slug": n.Slug},
	})
	return n, nil
}

// Announce broadcasts key to the global group without recording anything.
func (s *Service) Announce(ctx context.Context, actor domain.User, key, idValue string) {
	log := s.logger.With(logger.F("key", key), logger.F("actor", actor.Username))
	s.publish(ctx, log, broadcaster.GlobalGroup, Payload{
		Type:      TypeReceive,
		Key:       key,
		ActorName: actor.DisplayName(),
		IDValue:   idValue,
	})
	s.hooks.Notify(ctx, activity.Event{
		ActorID: actor.ID.String(),
		Key:     key,
		Group:   broadcaster.GlobalGroup,
	})
}

// PublishMessage pushes a rendered private message to the recipient's
// personal group. The message is persisted by the caller; no notification
// record is written for it.
func (s *Service) PublishMessage(ctx context.Context, sender, recipient domain.User, fragment string) {
	log := s.logger.With(logger.F("sender", sender.Username), logger.F("recipient", recipient.Username))
	s.publish(ctx, log, recipient.Username, Payload{
		Type:    TypeReceive,
		Message: fragment,
		Sender:  sender.Username,
	})
}

// publish is best effort: failures are logged and never surface to callers
// whose write already succeeded.
func (s *Service) publish(ctx context.Context, log logger.Logger, group string, payload Payload) {
	if group == "" {
		return
	}
	if err := s.broadcaster.Broadcast(ctx, broadcaster.Event{Group: group, Payload: payload}); err != nil {
		log.Warn("broadcast failed", logger.F("group", group), logger.Err(err))
	}
}
