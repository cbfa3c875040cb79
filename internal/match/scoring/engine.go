package scoring

import (
	"math"
	"time"
)

// ScoringConfig holds the scoring constants.
type ScoringConfig struct {
	BasePoints     float64 // awarded for any correct answer, default 100
	BonusPerSecond float64 // per second left on the clock, default 5
}

// DefaultScoringConfig returns production defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BasePoints:     100,
		BonusPerSecond: 5,
	}
}

// Engine computes server-side scores.
type Engine struct {
	config ScoringConfig
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config ScoringConfig) *Engine {
	return &Engine{config: config}
}

// Remaining clamps elapsed into [0, roundDuration] and returns the time left.
func Remaining(elapsed, roundDuration time.Duration) time.Duration {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > roundDuration {
		elapsed = roundDuration
	}
	return roundDuration - elapsed
}

// CalculateScore computes points for a single answer measured by the server.
// Formula: round(base + remaining_seconds * bonus); wrong answers score 0.
func (e *Engine) CalculateScore(isCorrect bool, elapsed, roundDuration time.Duration) int {
	if !isCorrect {
		return 0
	}
	remaining := Remaining(elapsed, roundDuration)
	return int(math.Round(e.config.BasePoints + remaining.Seconds()*e.config.BonusPerSecond))
}

// Winner returns the key with the strictly greatest score. A tie at the top
// yields ok=false.
func Winner[K comparable](scores map[K]int) (winner K, ok bool) {
	best := math.MinInt
	for k, s := range scores {
		switch {
		case s > best:
			best, winner, ok = s, k, true
		case s == best:
			ok = false
		}
	}
	if !ok {
		var zero K
		return zero, false
	}
	return winner, true
}
