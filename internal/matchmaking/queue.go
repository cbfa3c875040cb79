package matchmaking

import "github.com/gokatarajesh/h2h-trivia/internal/player"

// AddToQueue appends the connection to the tail of the queue. It reports
// false when the connection is already queued.
func (r *Registry) AddToQueue(connID string, user player.User) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.queuedLocked(connID) >= 0 {
		return false
	}
	r.queue = append(r.queue, player.Ref{ConnID: connID, User: user})
	r.observeLocked()

	r.logger.Info().
		Str("conn_id", connID).
		Str("user_id", user.ID).
		Int("queue_length", len(r.queue)).
		Msg("player enqueued")
	return true
}

// TryPair pops the two oldest waiting connections when at least two wait.
// Rooms hosted by either connection are closed with the same lock held.
func (r *Registry) TryPair() (Pair, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) < 2 {
		return Pair{}, false
	}
	pair := Pair{First: r.queue[0], Second: r.queue[1]}
	r.queue = append(r.queue[:0:0], r.queue[2:]...)
	r.closeHostedLocked(pair.First.ConnID, "paired from queue")
	r.closeHostedLocked(pair.Second.ConnID, "paired from queue")
	r.observeLocked()

	r.logger.Info().
		Str("first", pair.First.ConnID).
		Str("second", pair.Second.ConnID).
		Msg("queue pair formed")
	return pair, true
}

// Position returns the 1-based queue position of the connection, or 0 when
// it is not queued.
func (r *Registry) Position(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queuedLocked(connID) + 1
}

// QueueLen reports how many connections are waiting.
func (r *Registry) QueueLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

func (r *Registry) queuedLocked(connID string) int {
	for i, ref := range r.queue {
		if ref.ConnID == connID {
			return i
		}
	}
	return -1
}

func (r *Registry) dequeueLocked(connID string) {
	kept := r.queue[:0]
	for _, ref := range r.queue {
		if ref.ConnID != connID {
			kept = append(kept, ref)
		}
	}
	clear(r.queue[len(kept):])
	r.queue = kept
}
