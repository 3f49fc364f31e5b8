// Package social is the embedding entry point: it assembles storage, fan-out,
// services and the HTTP surface behind one value.
package social

import (
	"context"
	"net/http"

	"github.com/goliatone/go-social/internal/articles"
	"github.com/goliatone/go-social/internal/di"
	"github.com/goliatone/go-social/internal/dispatcher"
	"github.com/goliatone/go-social/internal/messages"
	"github.com/goliatone/go-social/internal/news"
	"github.com/goliatone/go-social/internal/notifications"
	"github.com/goliatone/go-social/internal/qa"
	"github.com/goliatone/go-social/internal/registry"
	"github.com/goliatone/go-social/internal/users"
	"github.com/goliatone/go-social/pkg/activity"
	"github.com/goliatone/go-social/pkg/auth"
	"github.com/goliatone/go-social/pkg/commands"
	"github.com/goliatone/go-social/pkg/config"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/storage"
	"github.com/nats-io/nats.go"
)

// ModuleOptions configure the module facade.
type ModuleOptions struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Renderer    messages.Renderer
	Broadcaster broadcaster.Broadcaster
	Hooks       activity.Hooks
	NATS        *nats.Conn
}

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
	commands  *commands.Registry
}

// NewModule assembles repositories, the group registry, the dispatcher and
// every content service.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:      opts.Config,
		Storage:     opts.Storage,
		Logger:      opts.Logger,
		Renderer:    opts.Renderer,
		Broadcaster: opts.Broadcaster,
		Hooks:       opts.Hooks,
		NATS:        opts.NATS,
	})
	if err != nil {
		return nil, err
	}
	cmds, err := commands.New(commands.Dependencies{
		Users:         container.Users,
		Notifications: container.Notifications,
		Messages:      container.Messages,
		News:          container.News,
		QA:            container.QA,
		Logger:        container.Logger,
	})
	if err != nil {
		_ = container.Close(context.Background())
		return nil, err
	}
	return &Module{container: container, commands: cmds}, nil
}

// Handler returns the HTTP and websocket surface.
func (m *Module) Handler() http.Handler {
	if m == nil || m.container == nil {
		return http.NotFoundHandler()
	}
	return m.container.Handler
}

func (m *Module) Users() *users.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Users
}

func (m *Module) Notifications() *notifications.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Notifications
}

func (m *Module) News() *news.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.News
}

func (m *Module) Messages() *messages.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Messages
}

func (m *Module) Articles() *articles.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Articles
}

func (m *Module) QA() *qa.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.QA
}

// Commands returns go-command handlers for the mutating operations.
func (m *Module) Commands() *commands.Registry {
	if m == nil {
		return nil
	}
	return m.commands
}

// Dispatcher exposes notify and announce for host code that records its own
// domain events.
func (m *Module) Dispatcher() *dispatcher.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Dispatcher
}

// Groups returns the local group registry.
func (m *Module) Groups() *registry.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Registry
}

// Auth returns the token issuer used by the HTTP and websocket surfaces.
func (m *Module) Auth() *auth.JWTAuthenticator {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Auth
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}

// Close disconnects live sockets and the cluster relay.
func (m *Module) Close(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close(ctx)
}
