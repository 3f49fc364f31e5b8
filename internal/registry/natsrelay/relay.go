// Package natsrelay shares group frames between server instances over NATS.
// Every instance publishes to <prefix>.<token> and delivers what it receives
// on <prefix>.* to its local registry, including its own messages. The token
// is the unpadded base64url form of the group name, so any group maps to a
// single valid subject token.
package natsrelay

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-social/internal/registry"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/retry"
	"github.com/nats-io/nats.go"
)

// DefaultPrefix is the subject prefix used when none is configured.
const DefaultPrefix = "social.groups"

// Deliverer is the local fan-out the relay feeds.
type Deliverer interface {
	Publish(ctx context.Context, group string, frame []byte) int
}

var (
	ErrMissingConn  = errors.New("natsrelay: connection is required")
	ErrMissingLocal = errors.New("natsrelay: local deliverer is required")
)

type Option func(*Relay)

func WithPrefix(prefix string) Option {
	return func(r *Relay) {
		if prefix = strings.Trim(prefix, ". "); prefix != "" {
			r.prefix = prefix
		}
	}
}

func WithLogger(lgr logger.Logger) Option {
	return func(r *Relay) {
		if lgr != nil {
			r.logger = lgr
		}
	}
}

// Relay implements broadcaster.Broadcaster on top of a NATS connection.
type Relay struct {
	conn   *nats.Conn
	local  Deliverer
	prefix string
	logger logger.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

var _ broadcaster.Broadcaster = (*Relay)(nil)

// New subscribes to the prefix wildcard and returns a running relay.
func New(conn *nats.Conn, local Deliverer, opts ...Option) (*Relay, error) {
	if conn == nil {
		return nil, ErrMissingConn
	}
	if local == nil {
		return nil, ErrMissingLocal
	}
	r := &Relay{
		conn:   conn,
		local:  local,
		prefix: DefaultPrefix,
		logger: &logger.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	sub, err := conn.Subscribe(r.prefix+".*", r.deliver)
	if err != nil {
		return nil, err
	}
	if err := conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}
	r.sub = sub
	return r, nil
}

// Broadcast encodes the event and publishes it on the group subject. Local
// members receive it through the subscription.
func (r *Relay) Broadcast(ctx context.Context, event broadcaster.Event) error {
	if event.Group == "" {
		return nil
	}
	frame, err := registry.Encode(event.Payload)
	if err != nil {
		return err
	}
	return r.conn.Publish(r.Subject(event.Group), frame)
}

// Subject returns the NATS subject for group.
func (r *Relay) Subject(group string) string {
	return r.prefix + "." + base64.RawURLEncoding.EncodeToString([]byte(group))
}

// Group reverses Subject.
func (r *Relay) Group(subject string) (string, bool) {
	token, ok := strings.CutPrefix(subject, r.prefix+".")
	if !ok || token == "" {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

func (r *Relay) deliver(msg *nats.Msg) {
	group, ok := r.Group(msg.Subject)
	if !ok {
		r.logger.Warn("relay message on unexpected subject", logger.F("subject", msg.Subject))
		return
	}
	r.local.Publish(context.Background(), group, msg.Data)
}

// Close unsubscribes and drains the connection.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub == nil {
		return nil
	}
	err := r.sub.Unsubscribe()
	r.sub = nil
	if drainErr := r.conn.Drain(); drainErr != nil && err == nil {
		err = drainErr
	}
	return err
}

// Connect dials url, retrying with backoff until attempts run out.
func Connect(ctx context.Context, url string, attempts int, lgr logger.Logger) (*nats.Conn, error) {
	if lgr == nil {
		lgr = &logger.Nop{}
	}
	var conn *nats.Conn
	err := retry.Do(ctx, attempts, retry.DefaultBackoff(), func(ctx context.Context, attempt int) error {
		c, err := nats.Connect(url,
			nats.Name("go-social"),
			nats.Timeout(5*time.Second),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					lgr.Warn("nats disconnected", logger.Err(err))
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				lgr.Info("nats reconnected", logger.F("url", c.ConnectedUrl()))
			}),
		)
		if err != nil {
			lgr.Warn("nats connect failed", logger.F("attempt", attempt), logger.Err(err))
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}
