package matchmaking

import (
	"strings"
	"time"

	"github.com/gokatarajesh/h2h-trivia/internal/clock"
	"github.com/gokatarajesh/h2h-trivia/internal/player"
)

const maxCodeAttempts = 16

// Room is a private room waiting for its second player.
type Room struct {
	Code      string
	Host      player.Ref
	CreatedAt time.Time
	ExpiresAt time.Time
}

type room struct {
	Room
	timer clock.Timer
}

// CreateRoom opens a room hosted by the connection and schedules its expiry.
func (r *Registry) CreateRoom(connID string, user player.User) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.freeCodeLocked()
	if err != nil {
		return Room{}, err
	}

	now := r.clock.Now()
	rm := &room{Room: Room{
		Code:      code,
		Host:      player.Ref{ConnID: connID, User: user},
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}}
	rm.timer = r.clock.AfterFunc(r.ttl, func() { r.expire(rm) })
	r.rooms[code] = rm
	r.observeLocked()

	r.logger.Info().
		Str("room_code", code).
		Str("conn_id", connID).
		Time("expires_at", rm.ExpiresAt).
		Msg("private room created")
	return rm.Room, nil
}

// JoinRoom consumes the room and pairs its host with the joiner. Codes are
// matched case-insensitively. Both connections leave the open queue and any
// other room they host.
func (r *Registry) JoinRoom(code, connID string, user player.User) (Pair, error) {
	code = NormalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok || !r.clock.Now().Before(rm.ExpiresAt) {
		return Pair{}, ErrRoomNotFound
	}
	if rm.Host.ConnID == connID {
		return Pair{}, ErrSelfJoin
	}

	rm.timer.Stop()
	delete(r.rooms, code)
	r.dequeueLocked(rm.Host.ConnID)
	r.dequeueLocked(connID)
	r.closeHostedLocked(rm.Host.ConnID, "host paired")
	r.closeHostedLocked(connID, "host paired")
	r.observeLocked()

	r.logger.Info().
		Str("room_code", code).
		Str("host", rm.Host.ConnID).
		Str("joiner", connID).
		Msg("private room joined")
	return Pair{First: rm.Host, Second: player.Ref{ConnID: connID, User: user}}, nil
}

// Room returns the live room registered under code.
func (r *Registry) Room(code string) (Room, bool) {
	code = NormalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok || !r.clock.Now().Before(rm.ExpiresAt) {
		return Room{}, false
	}
	return rm.Room, true
}

// Rooms lists live rooms.
func (r *Registry) Rooms() []Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	out := make([]Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		if now.Before(rm.ExpiresAt) {
			out = append(out, rm.Room)
		}
	}
	return out
}

// expire removes rm unless it was already consumed or replaced.
func (r *Registry) expire(rm *room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.rooms[rm.Code]; !ok || current != rm {
		return
	}
	delete(r.rooms, rm.Code)
	r.observeLocked()
	r.logger.Info().Str("room_code", rm.Code).Msg("private room expired")
}

func (r *Registry) freeCodeLocked() (string, error) {
	for range maxCodeAttempts {
		code, err := r.codes()
		if err != nil {
			return "", err
		}
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// NormalizeCode upper-cases and trims a user-supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
