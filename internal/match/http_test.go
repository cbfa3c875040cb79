package match

import (
	"bytes"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/h2h-trivia/internal/clock"
	"github.com/gokatarajesh/h2h-trivia/internal/matchmaking"
	"github.com/gokatarajesh/h2h-trivia/internal/player"
)

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://play.example/play?room=ABC234", JoinURL("https://play.example/", "ABC234"))
	assert.Equal(t, "", JoinURL("", "ABC234"))
}

func serveQR(h *HTTPHandlers, code string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/rooms/{code}/qr", h.RoomQR)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rooms/"+code+"/qr", nil))
	return rec
}

func TestRoomQR(t *testing.T) {
	reg := matchmaking.NewRegistry(clock.NewFake(epoch), matchmaking.Options{
		Codes: func() (string, error) { return "ABC234", nil },
	}, nil, zerolog.New(io.Discard))
	_, err := reg.CreateRoom("c1", player.User{ID: "u1"})
	require.NoError(t, err)
	h := NewHTTPHandlers(reg, "https://play.example", zerolog.New(io.Discard))

	t.Run("live room", func(t *testing.T) {
		rec := serveQR(h, "abc234")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 320, img.Bounds().Dx())
	})

	t.Run("unknown room", func(t *testing.T) {
		rec := serveQR(h, "ZZZZZZ")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "room_not_found")
	})

	t.Run("malformed code", func(t *testing.T) {
		rec := serveQR(h, "ABC10O")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_room_code")
	})
}

func TestRoomQRExpired(t *testing.T) {
	clk := clock.NewFake(epoch)
	reg := matchmaking.NewRegistry(clk, matchmaking.Options{RoomTTL: time.Minute}, nil, zerolog.New(io.Discard))
	room, err := reg.CreateRoom("c1", player.User{ID: "u1"})
	require.NoError(t, err)
	clk.Advance(time.Minute)

	rec := serveQR(NewHTTPHandlers(reg, "", zerolog.New(io.Discard)), room.Code)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
