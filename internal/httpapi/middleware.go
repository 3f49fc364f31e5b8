package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/pkg/auth"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type userKey struct{}

// accessLog attaches lgr to each request and logs one line per response.
func accessLog(lgr zerolog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(lgr),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.MethodHandler("method"),
		hlog.URLHandler("url"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
	}
}

// requireUser rejects anonymous requests and loads the caller's record.
func (a *api) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := a.auth.Authenticate(r)
		if !ok {
			writeError(w, r, apperr.Unauthenticated("authentication required"))
			return
		}
		user, err := a.users.GetByID(r.Context(), id.UserID)
		if err != nil {
			writeError(w, r, apperr.Unauthenticated("unknown session user"))
			return
		}
		ctx := auth.WithIdentity(r.Context(), id)
		ctx = context.WithValue(ctx, userKey{}, *user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) domain.User {
	user, _ := r.Context().Value(userKey{}).(domain.User)
	return user
}
