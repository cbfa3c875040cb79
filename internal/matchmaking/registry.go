// Package matchmaking pairs waiting players through an open FIFO queue or a
// private room code.
package matchmaking

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/h2h-trivia/internal/clock"
	"github.com/gokatarajesh/h2h-trivia/internal/metrics"
	"github.com/gokatarajesh/h2h-trivia/internal/player"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrSelfJoin           = errors.New("cannot join own room")
	ErrCodeSpaceExhausted = errors.New("could not allocate a free room code")
)

const defaultRoomTTL = 5 * time.Minute

// Pair is two connections about to play each other. For room pairs First is
// the host.
type Pair struct {
	First  player.Ref
	Second player.Ref
}

// Options tune the registry.
type Options struct {
	RoomTTL time.Duration
	// Codes generates room codes; defaults to a crypto/rand generator.
	Codes CodeGenerator
}

// Registry holds the open queue and live private rooms. All methods are safe
// for concurrent use.
type Registry struct {
	mu    sync.Mutex
	queue []player.Ref
	rooms map[string]*room

	clock   clock.Clock
	ttl     time.Duration
	codes   CodeGenerator
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewRegistry(clk clock.Clock, opts Options, m *metrics.Metrics, logger zerolog.Logger) *Registry {
	if opts.RoomTTL <= 0 {
		opts.RoomTTL = defaultRoomTTL
	}
	if opts.Codes == nil {
		opts.Codes = RandomCodes
	}
	return &Registry{
		rooms:   make(map[string]*room),
		clock:   clk,
		ttl:     opts.RoomTTL,
		codes:   opts.Codes,
		metrics: m,
		logger:  logger.With().Str("component", "matchmaking").Logger(),
	}
}

// RemoveFromQueue drops every waiting entry of the connection: its queue
// slot and any room it hosts.
func (r *Registry) RemoveFromQueue(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dequeueLocked(connID)
	r.closeHostedLocked(connID, "host left")
	r.observeLocked()
}

// closeHostedLocked drops every room hosted by connID.
func (r *Registry) closeHostedLocked(connID, reason string) {
	for code, rm := range r.rooms {
		if rm.Host.ConnID == connID {
			rm.timer.Stop()
			delete(r.rooms, code)
			r.logger.Info().Str("room_code", code).Str("conn_id", connID).Str("reason", reason).Msg("room closed")
		}
	}
}

// Close stops every room expiry timer and forgets all waiting players.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for code, rm := range r.rooms {
		rm.timer.Stop()
		delete(r.rooms, code)
	}
	r.queue = nil
	r.observeLocked()
}

func (r *Registry) observeLocked() {
	r.metrics.SetQueueLength(len(r.queue))
	r.metrics.SetRooms(len(r.rooms))
}
