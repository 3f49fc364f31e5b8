package commands

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/internal/messages"
	"github.com/goliatone/go-social/internal/news"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/google/uuid"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	MarkNotification     command.Commander[MarkNotification]
	MarkAllNotifications command.Commander[MarkAllNotifications]
	SendMessage          command.Commander[SendMessage]
	ToggleLike           command.Commander[ToggleLike]
	ReplyNews            command.Commander[ReplyNews]
	AcceptAnswer         command.Commander[AcceptAnswer]
}

type userService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type notificationService interface {
	MarkRead(ctx context.Context, recipientID uuid.UUID, slug string) (*domain.Notification, error)
	MarkUnread(ctx context.Context, recipientID uuid.UUID, slug string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error)
	MarkAllUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
}

type messageService interface {
	Send(ctx context.Context, sender domain.User, in messages.SendInput) (*domain.Message, error)
}

type newsService interface {
	Like(ctx context.Context, actor domain.User, newsID uuid.UUID) (news.LikeResult, error)
	Reply(ctx context.Context, actor domain.User, newsID uuid.UUID, text string) (*domain.News, error)
}

type answerService interface {
	AcceptAnswer(ctx context.Context, actor domain.User, answerID uuid.UUID) (*domain.Answer, error)
}

// Dependencies wires services into the command catalog.
type Dependencies struct {
	Users         userService
	Notifications notificationService
	Messages      messageService
	News          newsService
	QA            answerService
	Logger        logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Users == nil {
		return nil, errors.New("commands: users service is required")
	}
	if deps.Notifications == nil {
		return nil, errors.New("commands: notifications service is required")
	}
	if deps.Messages == nil {
		return nil, errors.New("commands: messages service is required")
	}
	if deps.News == nil {
		return nil, errors.New("commands: news service is required")
	}
	if deps.QA == nil {
		return nil, errors.New("commands: qa service is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	actors := actorLookup{users: deps.Users}
	return &Catalog{
		MarkNotification:     markNotificationCommand{svc: deps.Notifications},
		MarkAllNotifications: markAllNotificationsCommand{svc: deps.Notifications},
		SendMessage:          sendMessageCommand{actors: actors, svc: deps.Messages},
		ToggleLike:           toggleLikeCommand{actors: actors, svc: deps.News, logger: deps.Logger},
		ReplyNews:            replyNewsCommand{actors: actors, svc: deps.News},
		AcceptAnswer:         acceptAnswerCommand{actors: actors, svc: deps.QA},
	}, nil
}

type actorLookup struct {
	users userService
}

func (a actorLookup) load(ctx context.Context, rawID string) (domain.User, error) {
	id, err := parseID(rawID, "user_id")
	if err != nil {
		return domain.User{}, err
	}
	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Invalid("commands: invalid " + field)
	}
	return id, nil
}

// MarkNotification flips one notification of UserID.
type MarkNotification struct {
	UserID string `json:"user_id"`
	Slug   string `json:"slug"`
	Read   bool   `json:"read"`
}

type markNotificationCommand struct {
	svc notificationService
}

func (c markNotificationCommand) Execute(ctx context.Context, msg MarkNotification) error {
	id, err := parseID(msg.UserID, "user_id")
	if err != nil {
		return err
	}
	if msg.Read {
		_, err = c.svc.MarkRead(ctx, id, msg.Slug)
	} else {
		_, err = c.svc.MarkUnread(ctx, id, msg.Slug)
	}
	return err
}

// MarkAllNotifications flips every notification of UserID.
type MarkAllNotifications struct {
	UserID string `json:"user_id"`
	Read   bool   `json:"read"`
}

type markAllNotificationsCommand struct {
	svc notificationService
}

func (c markAllNotificationsCommand) Execute(ctx context.Context, msg MarkAllNotifications) error {
	id, err := parseID(msg.UserID, "user_id")
	if err != nil {
		return err
	}
	if msg.Read {
		_, err = c.svc.MarkAllRead(ctx, id)
	} else {
		_, err = c.svc.MarkAllUnread(ctx, id)
	}
	return err
}

// SendMessage sends Body from SenderID to the user named To.
type SendMessage struct {
	SenderID string `json:"sender_id"`
	To       string `json:"to"`
	Body     string `json:"body"`
}

type sendMessageCommand struct {
	actors actorLookup
	svc    messageService
}

func (c sendMessageCommand) Execute(ctx context.Context, msg SendMessage) error {
	sender, err := c.actors.load(ctx, msg.SenderID)
	if err != nil {
		return err
	}
	_, err = c.svc.Send(ctx, sender, messages.SendInput{To: msg.To, Body: msg.Body})
	return err
}

// ToggleLike flips UserID's like on NewsID.
type ToggleLike struct {
	UserID string `json:"user_id"`
	NewsID string `json:"news_id"`
}

type toggleLikeCommand struct {
	actors actorLookup
	svc    newsService
	logger logger.Logger
}

func (c toggleLikeCommand) Execute(ctx context.Context, msg ToggleLike) error {
	actor, err := c.actors.load(ctx, msg.UserID)
	if err != nil {
		return err
	}
	newsID, err := parseID(msg.NewsID, "news_id")
	if err != nil {
		return err
	}
	res, err := c.svc.Like(ctx, actor, newsID)
	if err != nil {
		return err
	}
	c.logger.Debug("like toggled", logger.F("news_id", newsID.String()), logger.F("liked", res.Liked), logger.F("likes", res.Likes))
	return nil
}

// ReplyNews adds Content to the thread of NewsID.
type ReplyNews struct {
	UserID  string `json:"user_id"`
	NewsID  string `json:"news_id"`
	Content string `json:"content"`
}

type replyNewsCommand struct {
	actors actorLookup
	svc    newsService
}

func (c replyNewsCommand) Execute(ctx context.Context, msg ReplyNews) error {
	actor, err := c.actors.load(ctx, msg.UserID)
	if err != nil {
		return err
	}
	newsID, err := parseID(msg.NewsID, "news_id")
	if err != nil {
		return err
	}
	_, err = c.svc.Reply(ctx, actor, newsID, msg.Content)
	return err
}

// AcceptAnswer marks AnswerID as the accepted answer of its question.
type AcceptAnswer struct {
	UserID   string `json:"user_id"`
	AnswerID string `json:"answer_id"`
}

type acceptAnswerCommand struct {
	actors actorLookup
	svc    answerService
}

func (c acceptAnswerCommand) Execute(ctx context.Context, msg AcceptAnswer) error {
	actor, err := c.actors.load(ctx, msg.UserID)
	if err != nil {
		return err
	}
	answerID, err := parseID(msg.AnswerID, "answer_id")
	if err != nil {
		return err
	}
	_, err = c.svc.AcceptAnswer(ctx, actor, answerID)
	return err
}
