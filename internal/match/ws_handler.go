package match

import (
	"net/http"

	httperrors "github.com/gokatarajesh/h2h-trivia/pkg/http/errors"
)

// HandleWebSocket resolves the caller's identity and upgrades the request.
// Requests without a token play as guests; a bad token is rejected.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.opts.Authenticator.FromRequest(r)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
		return
	}

	conn, err := h.opts.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.HandleConnection(conn, identity)
}
