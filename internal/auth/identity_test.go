package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/h2h-trivia/internal/auth/jwt"
)

func newAuthenticator(t *testing.T) (*Authenticator, *jwt.Manager) {
	t.Helper()
	m := jwt.NewManager(jwt.TokenConfig{AccessSecret: []byte("secret")})
	return NewAuthenticator(m), m
}

func TestFromRequestWithoutToken(t *testing.T) {
	a, _ := newAuthenticator(t)

	id, err := a.FromRequest(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.False(t, id.Authenticated)
}

func TestFromRequestQueryToken(t *testing.T) {
	a, m := newAuthenticator(t)
	userID := uuid.New()
	token, err := m.GenerateAccessToken(jwt.User{ID: userID, DisplayName: "Ana", ClubID: "psg"})
	require.NoError(t, err)

	id, err := a.FromRequest(httptest.NewRequest("GET", "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.True(t, id.Authenticated)
	assert.Equal(t, userID.String(), id.UserID)
	assert.Equal(t, "Ana", id.DisplayName)
	assert.Equal(t, "psg", id.ClubID)
}

func TestFromRequestBearerHeader(t *testing.T) {
	a, m := newAuthenticator(t)
	token, err := m.GenerateAccessToken(jwt.User{ID: uuid.New(), IsGuest: true})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	id, err := a.FromRequest(req)
	require.NoError(t, err)
	assert.True(t, id.IsGuest)
}

func TestFromRequestRejectsBadToken(t *testing.T) {
	a, _ := newAuthenticator(t)

	_, err := a.FromRequest(httptest.NewRequest("GET", "/ws?token=bogus", nil))
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Authorization", "Basic abc")
	_, err = a.FromRequest(req)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestFromRequestAuthDisabled(t *testing.T) {
	a := NewAuthenticator(nil)

	_, err := a.FromRequest(httptest.NewRequest("GET", "/ws?token=abc", nil))
	assert.ErrorIs(t, err, ErrAuthDisabled)
}
