package di

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/goliatone/go-social/internal/articles"
	"github.com/goliatone/go-social/internal/dispatcher"
	"github.com/goliatone/go-social/internal/httpapi"
	"github.com/goliatone/go-social/internal/messages"
	"github.com/goliatone/go-social/internal/news"
	"github.com/goliatone/go-social/internal/notifications"
	"github.com/goliatone/go-social/internal/qa"
	"github.com/goliatone/go-social/internal/registry"
	"github.com/goliatone/go-social/internal/registry/natsrelay"
	"github.com/goliatone/go-social/internal/users"
	"github.com/goliatone/go-social/internal/ws"
	"github.com/goliatone/go-social/pkg/activity"
	"github.com/goliatone/go-social/pkg/auth"
	"github.com/goliatone/go-social/pkg/config"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/storage"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options configure the DI container.
type Options struct {
	Config   config.Config
	Storage  storage.Providers
	Logger   logger.Logger
	Renderer messages.Renderer
	// Broadcaster receives a copy of every event next to the registry (or
	// cluster relay).
	Broadcaster broadcaster.Broadcaster
	Hooks       activity.Hooks
	NATS        *nats.Conn
}

// Container wires repositories, fan-out, services and transport.
type Container struct {
	Config        config.Config
	Storage       storage.Providers
	Logger        logger.Logger
	Metrics       *prometheus.Registry
	Registry      *registry.Registry
	Relay         *natsrelay.Relay
	Dispatcher    *dispatcher.Service
	Users         *users.Service
	Notifications *notifications.Service
	News          *news.Service
	Messages      *messages.Service
	Articles      *articles.Service
	QA            *qa.Service
	Auth          *auth.JWTAuthenticator
	Sockets       *ws.Handler
	Handler       http.Handler
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	providers := opts.Storage
	if providers.Users == nil {
		providers = storage.NewMemoryProviders()
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	groups := registry.New(
		registry.WithMetrics(registry.NewMetrics(metrics)),
		registry.WithLogger(lgr.With(logger.F("component", "registry"))),
	)

	c := &Container{
		Config:   cfg,
		Storage:  providers,
		Logger:   lgr,
		Metrics:  metrics,
		Registry: groups,
	}

	var primary broadcaster.Broadcaster = groups
	if cfg.Cluster.Enabled {
		relay, err := newRelay(cfg, opts.NATS, groups, lgr)
		if err != nil {
			return nil, err
		}
		c.Relay = relay
		primary = relay
	}
	sink := broadcaster.NewFanout(primary, opts.Broadcaster)

	hooks := append(activity.Hooks{
		activity.LogHook{Logger: lgr.With(logger.F("component", "activity"))},
		activity.NewCounterHook(metrics),
	}, opts.Hooks...)

	var err error
	c.Dispatcher, err = dispatcher.New(dispatcher.Dependencies{
		Notifications: providers.Notifications,
		Broadcaster:   sink,
		Owners:        dispatcher.ContentOwners(providers),
		Hooks:         hooks,
		Logger:        lgr.With(logger.F("component", "dispatcher")),
	})
	if err != nil {
		return nil, c.closeOnError(err)
	}

	if c.Users, err = users.NewService(users.Dependencies{
		Repository: providers.Users,
		Logger:     lgr,
	}); err != nil {
		return nil, c.closeOnError(err)
	}
	if c.Notifications, err = notifications.NewService(notifications.Dependencies{
		Repository:  providers.Notifications,
		Logger:      lgr,
		RecentLimit: cfg.Notifications.RecentLimit,
	}); err != nil {
		return nil, c.closeOnError(err)
	}
	if c.News, err = news.NewService(news.Dependencies{
		News:     providers.News,
		Users:    providers.Users,
		Notifier: c.Dispatcher,
		Logger:   lgr,
	}); err != nil {
		return nil, c.closeOnError(err)
	}
	if c.Messages, err = messages.NewService(messages.Dependencies{
		Messages:  providers.Messages,
		Users:     providers.Users,
		Publisher: c.Dispatcher,
		Renderer:  opts.Renderer,
		Logger:    lgr,
	}); err != nil {
		return nil, c.closeOnError(err)
	}
	if c.Articles, err = articles.NewService(articles.Dependencies{
		Articles: providers.Articles,
		Comments: providers.Comments,
		Users:    providers.Users,
		Notifier: c.Dispatcher,
		Logger:   lgr,
	}); err != nil {
		return nil, c.closeOnError(err)
	}
	if c.QA, err = qa.NewService(qa.Dependencies{
		Questions:   providers.Questions,
		Answers:     providers.Answers,
		Votes:       providers.Votes,
		Users:       providers.Users,
		Transaction: providers.Transaction,
		Notifier:    c.Dispatcher,
		Logger:      lgr,
	}); err != nil {
		return nil, c.closeOnError(err)
	}

	if c.Auth, err = auth.NewJWTAuthenticator(auth.Config{
		Secret:     cfg.Auth.Secret,
		Issuer:     cfg.Auth.Issuer,
		CookieName: cfg.Auth.CookieName,
		TTL:        cfg.Auth.TokenTTL,
	}); err != nil {
		return nil, c.closeOnError(err)
	}

	if c.Sockets, err = ws.NewHandler(ws.Dependencies{
		Groups:        groups,
		Authenticator: c.Auth,
		Logger:        lgr.With(logger.F("component", "ws")),
		Options: ws.Options{
			QueueSize:      cfg.Realtime.QueueSize,
			MaxMessageSize: cfg.Realtime.MaxMessageSize,
			PongWait:       cfg.Realtime.PongWait,
			WriteWait:      cfg.Realtime.WriteWait,
		},
	}); err != nil {
		return nil, c.closeOnError(err)
	}

	router, err := httpapi.NewRouter(httpapi.Dependencies{
		Users:         c.Users,
		Notifications: c.Notifications,
		News:          c.News,
		Messages:      c.Messages,
		Articles:      c.Articles,
		QA:            c.QA,
		Auth:          c.Auth,
		Sockets:       c.Sockets,
		Metrics:       promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}),
		Logger:        zerologFrom(lgr),
	})
	if err != nil {
		return nil, c.closeOnError(err)
	}
	c.Handler = router
	return c, nil
}

// Close drops live sockets and the cluster relay.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Sockets != nil {
		errs = append(errs, c.Sockets.Shutdown(ctx))
	}
	if c.Relay != nil {
		errs = append(errs, c.Relay.Close())
	}
	return errors.Join(errs...)
}

func (c *Container) closeOnError(err error) error {
	if c.Relay != nil {
		_ = c.Relay.Close()
	}
	return err
}

func newRelay(cfg config.Config, conn *nats.Conn, local *registry.Registry, lgr logger.Logger) (*natsrelay.Relay, error) {
	relayLog := lgr.With(logger.F("component", "natsrelay"))
	if conn == nil {
		var err error
		conn, err = natsrelay.Connect(context.Background(), cfg.Cluster.NATSURL, cfg.Database.ConnectRetry+1, relayLog)
		if err != nil {
			return nil, err
		}
	}
	return natsrelay.New(conn, local,
		natsrelay.WithPrefix(cfg.Cluster.SubjectPrefix),
		natsrelay.WithLogger(relayLog),
	)
}

func zerologFrom(lgr logger.Logger) zerolog.Logger {
	if z, ok := lgr.(*logger.ZerologLogger); ok {
		return z.Zerolog()
	}
	return zerolog.Nop()
}
