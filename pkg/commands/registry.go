package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-social/internal/commands"
	"github.com/goliatone/go-social/internal/messages"
	"github.com/goliatone/go-social/internal/news"
	"github.com/goliatone/go-social/internal/notifications"
	"github.com/goliatone/go-social/internal/qa"
	"github.com/goliatone/go-social/internal/users"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
)

// Re-export request types so consumers need not import internal packages.
type (
	MarkNotification     = internalcommands.MarkNotification
	MarkAllNotifications = internalcommands.MarkAllNotifications
	SendMessage          = internalcommands.SendMessage
	ToggleLike           = internalcommands.ToggleLike
	ReplyNews            = internalcommands.ReplyNews
	AcceptAnswer         = internalcommands.AcceptAnswer
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog              *internalcommands.Catalog
	MarkNotification     command.Commander[MarkNotification]
	MarkAllNotifications command.Commander[MarkAllNotifications]
	SendMessage          command.Commander[SendMessage]
	ToggleLike           command.Commander[ToggleLike]
	ReplyNews            command.Commander[ReplyNews]
	AcceptAnswer         command.Commander[AcceptAnswer]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Users         *users.Service
	Notifications *notifications.Service
	Messages      *messages.Service
	News          *news.Service
	QA            *qa.Service
	Logger        logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internalDeps := internalcommands.Dependencies{Logger: deps.Logger}
	// typed nil pointers must stay nil interfaces so the catalog rejects them
	if deps.Users != nil {
		internalDeps.Users = deps.Users
	}
	if deps.Notifications != nil {
		internalDeps.Notifications = deps.Notifications
	}
	if deps.Messages != nil {
		internalDeps.Messages = deps.Messages
	}
	if deps.News != nil {
		internalDeps.News = deps.News
	}
	if deps.QA != nil {
		internalDeps.QA = deps.QA
	}
	catalog, err := internalcommands.NewCatalog(internalDeps)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:              catalog,
		MarkNotification:     catalog.MarkNotification,
		MarkAllNotifications: catalog.MarkAllNotifications,
		SendMessage:          catalog.SendMessage,
		ToggleLike:           catalog.ToggleLike,
		ReplyNews:            catalog.ReplyNews,
		AcceptAnswer:         catalog.AcceptAnswer,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.MarkNotification,
		r.MarkAllNotifications,
		r.SendMessage,
		r.ToggleLike,
		r.ReplyNews,
		r.AcceptAnswer,
	}
}
