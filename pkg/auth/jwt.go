// Package auth issues and verifies the session tokens that identify users on
// HTTP requests and websocket upgrades.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the authenticated user attached to a request.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// Claims carries the username next to the registered claims. The subject
// holds the user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator resolves the identity of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (Identity, bool)
}

type Config struct {
	Secret     string
	Issuer     string
	CookieName string
	TTL        time.Duration
}

var (
	ErrMissingSecret = errors.New("auth: secret is required")
	ErrInvalidToken  = errors.New("auth: invalid token")
)

// JWTAuthenticator signs HS256 tokens and reads them back from the
// Authorization header, the session cookie or the token query parameter.
type JWTAuthenticator struct {
	secret []byte
	issuer string
	cookie string
	ttl    time.Duration
	now    func() time.Time
}

var _ Authenticator = (*JWTAuthenticator)(nil)

func NewJWTAuthenticator(cfg Config) (*JWTAuthenticator, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	return &JWTAuthenticator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		cookie: cfg.CookieName,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for user.
func (a *JWTAuthenticator) Issue(user domain.User) (string, error) {
	now := a.now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses token and returns the identity it carries.
func (a *JWTAuthenticator) Verify(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || claims.Username == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: id, Username: claims.Username}, nil
}

// Authenticate reports the identity of r, or false for anonymous requests.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (Identity, bool) {
	token := tokenFrom(r, a.cookie)
	if token == "" {
		return Identity{}, false
	}
	id, err := a.Verify(token)
	if err != nil {
		return Identity{}, false
	}
	return id, true
}

// CookieName is the cookie Authenticate reads.
func (a *JWTAuthenticator) CookieName() string {
	return a.cookie
}

func tokenFrom(r *http.Request, cookie string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

type identityKey struct{}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored on ctx.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
