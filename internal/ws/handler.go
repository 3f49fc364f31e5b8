// Package ws upgrades browser sessions to websockets, joins them to their
// group and pumps group frames to them until either side goes away.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-social/internal/registry"
	"github.com/goliatone/go-social/pkg/auth"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/gorilla/websocket"
)

// State is the lifecycle position of a connection.
type State int32

const (
	StatePending State = iota
	StateAccepted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAccepted:
		return "accepted"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

const (
	DefaultWriteWait      = 10 * time.Second
	DefaultPongWait       = 60 * time.Second
	DefaultMaxMessageSize = 4096
)

// Groups is the membership registry the handler joins sessions to.
type Groups interface {
	Join(group string, member *registry.Member)
	Leave(group string, member *registry.Member)
}

type Options struct {
	QueueSize      int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	CheckOrigin    func(r *http.Request) bool
}

type Dependencies struct {
	Groups        Groups
	Authenticator auth.Authenticator
	Logger        logger.Logger
	Options       Options
}

var (
	ErrMissingGroups        = errors.New("ws: group registry is required")
	ErrMissingAuthenticator = errors.New("ws: authenticator is required")
	ErrShuttingDown         = errors.New("ws: handler is shutting down")
)

// Handler serves the notification and personal websocket routes.
type Handler struct {
	groups   Groups
	auth     auth.Authenticator
	logger   logger.Logger
	opts     Options
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*session]struct{}
	closing  bool
	wg       sync.WaitGroup
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Groups == nil {
		return nil, ErrMissingGroups
	}
	if deps.Authenticator == nil {
		return nil, ErrMissingAuthenticator
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	opts := deps.Options
	if opts.QueueSize <= 0 {
		opts.QueueSize = registry.DefaultQueueSize
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultMaxMessageSize
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = DefaultWriteWait
	}
	if opts.PongWait <= 0 {
		opts.PongWait = DefaultPongWait
	}
	return &Handler{
		groups: deps.Groups,
		auth:   deps.Authenticator,
		logger: deps.Logger,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		sessions: make(map[*session]struct{}),
	}, nil
}

// Routes mounts both websocket routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/ws/notifications/", h.Notifications)
	r.Get("/ws/{username}/", h.Personal)
}

// Notifications joins the session to the global notifications group.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(auth.Identity) string { return broadcaster.GlobalGroup })
}

// Personal joins the session to the group named after the authenticated
// user. The path segment only has to be present.
func (h *Handler) Personal(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "username") == "" {
		http.NotFound(w, r)
		return
	}
	h.serve(w, r, func(id auth.Identity) string { return id.Username })
}

// Active returns the number of accepted connections.
func (h *Handler) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown closes every live connection and waits for their pumps to exit
// or for ctx to end.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	live := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		live = append(live, s)
	}
	h.mu.Unlock()

	for _, s := range live {
		s.close(websocket.CloseGoingAway, "server shutdown")
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, groupFor func(auth.Identity) string) {
	id, authenticated := h.auth.Authenticate(r)
	if !authenticated {
		h.reject(w, r)
		return
	}
	if h.isClosing() {
		http.Error(w, ErrShuttingDown.Error(), http.StatusServiceUnavailable)
		return
	}

	// Membership starts before the handshake completes; frames published in
	// between wait in the member queue.
	group := groupFor(id)
	member := registry.NewMember(id.Username, h.opts.QueueSize)
	h.groups.Join(group, member)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.groups.Leave(group, member)
		h.logger.Warn("websocket upgrade failed", logger.F("path", r.URL.Path), logger.Err(err))
		return
	}

	s := &session{
		conn:   conn,
		group:  group,
		member: member,
		done:   make(chan struct{}),
		opts:   h.opts,
	}
	s.log = h.logger.With(logger.F("group", s.group), logger.F("member", s.member.ID))

	if !h.track(s) {
		h.groups.Leave(group, member)
		s.close(websocket.CloseGoingAway, "server shutdown")
		return
	}
	defer h.wg.Done()
	defer h.untrack(s)

	s.state.Store(int32(StateAccepted))
	defer func() {
		h.groups.Leave(s.group, s.member)
		s.state.Store(int32(StateClosed))
		s.close(websocket.CloseNormalClosure, "")
	}()

	s.log.Debug("websocket accepted")
	go s.writePump()
	s.readPump()
}

// reject completes the handshake only to close it with a policy violation.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logger.F("path", r.URL.Path), logger.Err(err))
		return
	}
	deadline := time.Now().Add(h.opts.WriteWait)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""), deadline)
	_ = conn.Close()
}

func (h *Handler) isClosing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closing
}

func (h *Handler) track(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.sessions[s] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Handler) untrack(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

type session struct {
	conn   *websocket.Conn
	group  string
	member *registry.Member
	opts   Options
	log    logger.Logger
	state  atomic.Int32

	done      chan struct{}
	closeOnce sync.Once
}

// State reports where the session is in its lifecycle.
func (s *session) State() State {
	return State(s.state.Load())
}

// close sends a close frame and tears the connection down once.
func (s *session) close(code int, reason string) {
	s.closeOnce.Do(func() {
		close(s.done)
		deadline := time.Now().Add(s.opts.WriteWait)
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = s.conn.Close()
	})
}

// readPump echoes every inbound text frame back as a JSON string until the
// connection fails.
func (s *session) readPump() {
	s.conn.SetReadLimit(s.opts.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Warn("websocket read failed", logger.Err(err))
			}
			return
		}
		echo, err := json.Marshal(string(data))
		if err != nil {
			continue
		}
		if !s.member.Offer(echo) {
			s.log.Warn("echo dropped, queue full")
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(s.opts.PongWait * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case frame := <-s.member.Outbound():
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.log.Debug("websocket write failed", logger.Err(err))
				_ = s.conn.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return
			}
		}
	}
}
