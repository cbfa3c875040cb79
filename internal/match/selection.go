package match

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/gokatarajesh/h2h-trivia/internal/question"
)

// selector builds the question set for a new match: affinity pools first,
// then the unfiltered pool, then the built-in set.
type selector struct {
	source question.Source
	target int
	rng    *lockedRand
	logger zerolog.Logger
}

func (s *selector) Select(ctx context.Context, affinities [2]string) []question.Question {
	picked := make([]question.Question, 0, s.target)
	seen := make(map[string]struct{}, s.target)
	add := func(qs []question.Question, limit int) {
		for _, q := range qs {
			if len(picked) >= limit {
				return
			}
			if _, dup := seen[q.ID]; dup || !q.Valid() {
				continue
			}
			seen[q.ID] = struct{}{}
			picked = append(picked, q)
		}
	}

	add(interleave(s.fetchAffinities(ctx, affinities)), s.target)

	if len(picked) < s.target && s.source != nil {
		all, err := s.source.FetchAll(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("question pool unavailable")
		}
		add(s.rng.shuffled(all), s.target)
	}

	if len(picked) < s.target {
		add(s.rng.shuffled(question.Fallback()), s.target)
	}

	return s.rng.shuffled(picked)
}

func (s *selector) fetchAffinities(ctx context.Context, affinities [2]string) [2][]question.Question {
	var pools [2][]question.Question
	if s.source == nil {
		return pools
	}
	per := s.target / 2
	if per == 0 {
		per = 1
	}

	var wg conc.WaitGroup
	for i, key := range affinities {
		if key == "" {
			continue
		}
		wg.Go(func() {
			qs, err := s.source.FetchByAffinity(ctx, key, per)
			if err != nil {
				s.logger.Warn().Err(err).Str("club_id", key).Msg("affinity questions unavailable")
				return
			}
			if len(qs) > per {
				qs = qs[:per]
			}
			pools[i] = qs
		})
	}
	if r := wg.WaitAndRecover(); r != nil {
		s.logger.Error().Str("panic", r.String()).Msg("affinity fetch panicked")
	}
	return pools
}

// interleave alternates between the two pools so neither player's club
// dominates the opening rounds.
func interleave(pools [2][]question.Question) []question.Question {
	out := make([]question.Question, 0, len(pools[0])+len(pools[1]))
	for i := 0; i < len(pools[0]) || i < len(pools[1]); i++ {
		if i < len(pools[0]) {
			out = append(out, pools[0][i])
		}
		if i < len(pools[1]) {
			out = append(out, pools[1][i])
		}
	}
	return out
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(src rand.Source) *lockedRand {
	return &lockedRand{r: rand.New(src)}
}

// shuffled returns a Fisher-Yates shuffled copy of qs.
func (l *lockedRand) shuffled(qs []question.Question) []question.Question {
	out := append([]question.Question(nil), qs...)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
