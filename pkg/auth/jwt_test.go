package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newAuthenticator(t *testing.T) *JWTAuthenticator {
	t.Helper()
	a, err := NewJWTAuthenticator(Config{Secret: "s3cret", Issuer: "go-social", TTL: time.Hour})
	require.NoError(t, err)
	return a
}

func testUser() domain.User {
	u := domain.User{Username: "alice"}
	u.ID = uuid.New()
	return u
}

func TestIssueAndVerify(t *testing.T) {
	a := newAuthenticator(t)
	user := testUser()

	token, err := a.Issue(user)
	require.NoError(t, err)

	id, err := a.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, id.UserID)
	require.Equal(t, "alice", id.Username)
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	a := newAuthenticator(t)
	token, err := a.Issue(testUser())
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewJWTAuthenticator(Config{Secret: "other", Issuer: "go-social"})
	require.NoError(t, err)
	foreign, err := other.Issue(testUser())
	require.NoError(t, err)
	_, err = newAuthenticator(t).Verify(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateSources(t *testing.T) {
	a := newAuthenticator(t)
	token, err := a.Issue(testUser())
	require.NoError(t, err)

	header := httptest.NewRequest(http.MethodGet, "/", nil)
	header.Header.Set("Authorization", "Bearer "+token)
	_, ok := a.Authenticate(header)
	require.True(t, ok)

	cookie := httptest.NewRequest(http.MethodGet, "/", nil)
	cookie.AddCookie(&http.Cookie{Name: a.CookieName(), Value: token})
	_, ok = a.Authenticate(cookie)
	require.True(t, ok)

	query := httptest.NewRequest(http.MethodGet, "/ws/notifications/?token="+token, nil)
	_, ok = a.Authenticate(query)
	require.True(t, ok)

	_, ok = a.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := NewJWTAuthenticator(Config{})
	require.ErrorIs(t, err, ErrMissingSecret)
}
