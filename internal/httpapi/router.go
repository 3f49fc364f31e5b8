// Package httpapi exposes the social services over JSON HTTP.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-social/internal/articles"
	"github.com/goliatone/go-social/internal/messages"
	"github.com/goliatone/go-social/internal/news"
	"github.com/goliatone/go-social/internal/notifications"
	"github.com/goliatone/go-social/internal/qa"
	"github.com/goliatone/go-social/internal/users"
	"github.com/goliatone/go-social/internal/ws"
	"github.com/goliatone/go-social/pkg/auth"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/rs/zerolog"
)

// TokenIssuer signs session tokens for registered users.
type TokenIssuer interface {
	auth.Authenticator
	Issue(user domain.User) (string, error)
}

type Dependencies struct {
	Users         *users.Service
	Notifications *notifications.Service
	News          *news.Service
	Messages      *messages.Service
	Articles      *articles.Service
	QA            *qa.Service
	Auth          TokenIssuer
	Sockets       *ws.Handler
	Metrics       http.Handler
	Logger        zerolog.Logger
}

var (
	ErrMissingServices = errors.New("httpapi: services are required")
	ErrMissingAuth     = errors.New("httpapi: authenticator is required")
)

type api struct {
	users         *users.Service
	notifications *notifications.Service
	news          *news.Service
	messages      *messages.Service
	articles      *articles.Service
	qa            *qa.Service
	auth          TokenIssuer
}

// NewRouter mounts every route on a chi router.
func NewRouter(deps Dependencies) (chi.Router, error) {
	if deps.Users == nil || deps.Notifications == nil || deps.News == nil ||
		deps.Messages == nil || deps.Articles == nil || deps.QA == nil {
		return nil, ErrMissingServices
	}
	if deps.Auth == nil {
		return nil, ErrMissingAuth
	}
	a := &api{
		users:         deps.Users,
		notifications: deps.Notifications,
		news:          deps.News,
		messages:      deps.Messages,
		articles:      deps.Articles,
		qa:            deps.QA,
		auth:          deps.Auth,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(accessLog(deps.Logger)...)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	r.Post("/users", a.register)

	if deps.Sockets != nil {
		deps.Sockets.Routes(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(a.requireUser)

		r.Route("/news", func(r chi.Router) {
			r.Get("/", a.listNews)
			r.Post("/", a.postNews)
			r.Delete("/{id}", a.deleteNews)
			r.Post("/{id}/like", a.likeNews)
			r.Post("/{id}/replies", a.replyNews)
			r.Get("/{id}/thread", a.newsThread)
			r.Get("/{id}/interactions", a.newsInteractions)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", a.listArticles)
			r.Post("/", a.createArticle)
			r.Get("/drafts", a.listDrafts)
			r.Post("/{id}/publish", a.publishArticle)
			r.Get("/{id}/comments", a.articleComments)
			r.Post("/{id}/comments", a.commentArticle)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Post("/", a.askQuestion)
			r.Get("/answered", a.listAnswered)
			r.Get("/unanswered", a.listUnanswered)
			r.Get("/tags", a.tagCounts)
			r.Get("/{id}/answers", a.listAnswers)
			r.Post("/{id}/answers", a.answerQuestion)
		})
		r.Post("/answers/{id}/accept", a.acceptAnswer)
		r.Post("/votes", a.vote)
		r.Get("/votes/{kind}/{id}", a.voteSummary)

		r.Post("/messages", a.sendMessage)
		r.Get("/messages/latest", a.latestConversation)
		r.Get("/messages/{username}", a.conversation)
		r.Post("/messages/{id}/read", a.readMessage)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", a.listNotifications)
			r.Get("/latest", a.latestNotifications)
			r.Get("/unread-count", a.unreadCount)
			r.Post("/read-all", a.readAllNotifications)
			r.Post("/unread-all", a.unreadAllNotifications)
			r.Post("/{slug}/read", a.readNotification)
			r.Post("/{slug}/unread", a.unreadNotification)
		})
	})
	return r, nil
}
