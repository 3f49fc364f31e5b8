package messages

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Publisher pushes a rendered message to the recipient's live sessions.
type Publisher interface {
	PublishMessage(ctx context.Context, sender, recipient domain.User, fragment string)
}

// SendInput is a private message to the user named To.
type SendInput struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func (in SendInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.To, validation.Required),
		validation.Field(&in.Body, validation.Required, validation.Length(1, 1000)),
	)
}

type Dependencies struct {
	Messages  store.MessageRepository
	Users     store.UserRepository
	Publisher Publisher
	Renderer  Renderer
	Logger    logger.Logger
}

// Service stores private messages and pushes them to the recipient.
type Service struct {
	messages  store.MessageRepository
	users     store.UserRepository
	publisher Publisher
	renderer  Renderer
	logger    logger.Logger
}

var (
	ErrMissingMessages  = errors.New("messages: repository is required")
	ErrMissingUsers     = errors.New("messages: user repository is required")
	ErrMissingPublisher = errors.New("messages: publisher is required")
)

func NewService(deps Dependencies) (*Service, error) {
	if deps.Messages == nil {
		return nil, ErrMissingMessages
	}
	if deps.Users == nil {
		return nil, ErrMissingUsers
	}
	if deps.Publisher == nil {
		return nil, ErrMissingPublisher
	}
	if deps.Renderer == nil {
		r, err := NewTemplateRenderer("")
		if err != nil {
			return nil, err
		}
		deps.Renderer = r
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		messages:  deps.Messages,
		users:     deps.Users,
		publisher: deps.Publisher,
		renderer:  deps.Renderer,
		logger:    deps.Logger,
	}, nil
}

// Send persists the message and pushes it to the recipient. Blank bodies and
// messages to oneself are rejected.
func (s *Service) Send(ctx context.Context, sender domain.User, in SendInput) (*domain.Message, error) {
	in.To = strings.TrimSpace(in.To)
	in.Body = strings.TrimSpace(in.Body)
	if err := apperr.Validation(in.Validate(), "messages: invalid message"); err != nil {
		return nil, err
	}
	recipient, err := s.users.GetByUsername(ctx, in.To)
	if err != nil {
		return nil, apperr.Store(err, "messages: recipient lookup")
	}
	if recipient.ID == sender.ID {
		return nil, apperr.Invalid("messages: cannot message yourself")
	}

	msg := &domain.Message{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Body:        in.Body,
		Unread:      true,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperr.Store(err, "messages: send")
	}

	fragment, err := s.renderer.Render(*msg, sender)
	if err != nil {
		s.logger.Warn("render message failed", logger.F("message_id", msg.ID.String()), logger.Err(err))
		return msg, nil
	}
	s.publisher.PublishMessage(ctx, sender, *recipient, fragment)
	return msg, nil
}

// Conversation returns the messages between user and the named partner,
// oldest first.
func (s *Service) Conversation(ctx context.Context, user domain.User, partner string, opts store.ListOptions) ([]domain.Message, error) {
	other, err := s.users.GetByUsername(ctx, partner)
	if err != nil {
		return nil, apperr.Store(err, "messages: partner lookup")
	}
	msgs, err := s.messages.Conversation(ctx, user.ID, other.ID, opts)
	if err != nil {
		return nil, apperr.Store(err, "messages: conversation")
	}
	return msgs, nil
}

// MostRecentConversation returns the partner of the latest message user sent
// or received, or user itself when there are none.
func (s *Service) MostRecentConversation(ctx context.Context, user domain.User) (*domain.User, error) {
	latest, err := s.messages.Latest(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return &user, nil
	}
	if err != nil {
		return nil, apperr.Store(err, "messages: latest")
	}
	partner, err := s.users.GetByID(ctx, latest.Partner(user.ID))
	if err != nil {
		return nil, apperr.Store(err, "messages: partner lookup")
	}
	return partner, nil
}

// MarkRead clears the unread flag. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, recipient domain.User, id uuid.UUID) error {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return apperr.Store(err, "messages: get")
	}
	if msg.RecipientID != recipient.ID {
		return apperr.NotFound("messages: message not found")
	}
	return apperr.Store(s.messages.SetUnread(ctx, id, false), "messages: mark read")
}
