package question

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Warmer periodically reloads the unfiltered question pool into the cache so
// the top-up stage of question selection rarely hits the database.
type Warmer struct {
	service  *Service
	logger   zerolog.Logger
	interval time.Duration
	timeout  time.Duration
}

func NewWarmer(service *Service, interval, timeout time.Duration, logger zerolog.Logger) *Warmer {
	if interval <= 0 {
		interval = 4 * time.Minute
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Warmer{
		service:  service,
		logger:   logger.With().Str("component", "question_warmer").Logger(),
		interval: interval,
		timeout:  timeout,
	}
}

// Run blocks until the context is cancelled.
func (w *Warmer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Warmer) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	n, err := w.service.Refresh(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("question pool refresh failed")
		return
	}
	w.logger.Debug().Int("questions", n).Msg("question pool refreshed")
}
