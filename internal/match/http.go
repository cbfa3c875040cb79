package match

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/gokatarajesh/h2h-trivia/internal/matchmaking"
	httperrors "github.com/gokatarajesh/h2h-trivia/pkg/http/errors"
)

const qrSize = 320

// JoinURL is the link a room host shares with the opponent.
func JoinURL(baseURL, code string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/play?room=" + url.QueryEscape(code)
}

// HTTPHandlers provides REST endpoints for private rooms.
type HTTPHandlers struct {
	registry *matchmaking.Registry
	baseURL  string
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for room endpoints.
func NewHTTPHandlers(registry *matchmaking.Registry, publicBaseURL string, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		registry: registry,
		baseURL:  publicBaseURL,
		logger:   logger.With().Str("component", "match_http").Logger(),
	}
}

// RoomQR handles GET /v1/rooms/{code}/qr with a PNG of the join link.
func (h *HTTPHandlers) RoomQR(w http.ResponseWriter, r *http.Request) {
	code := matchmaking.NormalizeCode(r.PathValue("code"))
	if !validCode(code) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRoomCode, "Invalid room code")
		return
	}

	room, ok := h.registry.Room(code)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeRoomNotFound, "Room not found")
		return
	}

	link := JoinURL(h.baseURL, room.Code)
	if link == "" {
		link = room.Code
	}
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error().Err(err).Str("room_code", room.Code).Msg("qr generation failed")
		httperrors.RespondInternalError(w, "QR generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func validCode(code string) bool {
	if len(code) != matchmaking.CodeLength {
		return false
	}
	for _, ch := range code {
		if !strings.ContainsRune(matchmaking.CodeAlphabet, ch) {
			return false
		}
	}
	return true
}
