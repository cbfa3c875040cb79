// Package auth resolves who is behind a websocket connection.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gokatarajesh/h2h-trivia/internal/auth/jwt"
)

var ErrAuthDisabled = errors.New("token authentication is not configured")

// Identity is the verified part of a player's identity. Connections without
// a token get the zero Identity and play as guests.
type Identity struct {
	UserID        string
	DisplayName   string
	ClubID        string
	IsGuest       bool
	Authenticated bool
}

// Authenticator verifies identity tokens. A nil tokens manager disables
// token authentication.
type Authenticator struct {
	tokens *jwt.Manager
}

func NewAuthenticator(tokens *jwt.Manager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// FromRequest reads a bearer token from the Authorization header or the
// token query parameter. No token yields a guest identity.
func (a *Authenticator) FromRequest(r *http.Request) (Identity, error) {
	token := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); token == "" && header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Identity{}, jwt.ErrInvalidToken
		}
		token = parts[1]
	}
	if token == "" {
		return Identity{}, nil
	}
	if a == nil || a.tokens == nil {
		return Identity{}, ErrAuthDisabled
	}

	claims, err := a.tokens.ValidateAccessToken(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:        claims.UserID.String(),
		DisplayName:   claims.DisplayName,
		ClubID:        claims.ClubID,
		IsGuest:       claims.IsGuest,
		Authenticated: true,
	}, nil
}
