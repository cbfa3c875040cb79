package question

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"
)

const defaultAffinityPoolLimit = 500

// ServiceOptions tune the question service.
type ServiceOptions struct {
	// AffinityPoolLimit bounds the club list loaded from the bank and cached.
	AffinityPoolLimit int
	// RandSource seeds affinity sampling.
	RandSource rand.Source
}

// Service fronts the question bank with a cache. Cache failures degrade to
// direct bank reads; bank failures are returned to the caller.
type Service struct {
	bank      Source
	cache     ListCache
	poolLimit int
	logger    zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ Source = (*Service)(nil)

func NewService(bank Source, cache ListCache, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.AffinityPoolLimit <= 0 {
		opts.AffinityPoolLimit = defaultAffinityPoolLimit
	}
	if opts.RandSource == nil {
		opts.RandSource = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Service{
		bank:      bank,
		cache:     cache,
		poolLimit: opts.AffinityPoolLimit,
		rng:       rand.New(opts.RandSource),
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

// FetchByAffinity returns a fresh random sample of up to count questions
// tagged with key. The club's whole list is what gets cached.
func (s *Service) FetchByAffinity(ctx context.Context, key string, count int) ([]Question, error) {
	if key == "" || count <= 0 {
		return nil, nil
	}
	pool, err := s.cached(ctx, affinityKey(key), func(ctx context.Context) ([]Question, error) {
		return s.bank.FetchByAffinity(ctx, key, s.poolLimit)
	})
	if err != nil {
		return nil, err
	}
	return s.sample(pool, count), nil
}

// sample picks count questions without replacement. pool is not modified.
func (s *Service) sample(pool []Question, count int) []Question {
	out := append([]Question(nil), pool...)
	s.rngMu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.rngMu.Unlock()
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// FetchAll returns the unfiltered question pool.
func (s *Service) FetchAll(ctx context.Context) ([]Question, error) {
	return s.cached(ctx, allKey, s.bank.FetchAll)
}

// Refresh reloads the unfiltered pool from the bank into the cache.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	qs, err := s.bank.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load question pool: %w", err)
	}
	qs = playable(qs)
	if s.cache != nil {
		if err := s.cache.Set(ctx, allKey, qs); err != nil {
			return 0, fmt.Errorf("store question pool: %w", err)
		}
	}
	return len(qs), nil
}

func (s *Service) cached(ctx context.Context, key string, load func(context.Context) ([]Question, error)) ([]Question, error) {
	if s.cache != nil {
		qs, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("question cache read failed")
		} else if ok {
			return qs, nil
		}
	}

	qs, err := load(ctx)
	if err != nil {
		return nil, err
	}
	qs = playable(qs)

	if s.cache != nil && len(qs) > 0 {
		if err := s.cache.Set(ctx, key, qs); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("question cache write failed")
		}
	}
	return qs, nil
}

// playable drops malformed rows so they never reach a match.
func playable(qs []Question) []Question {
	out := qs[:0:0]
	for _, q := range qs {
		if q.Valid() {
			out = append(out, q)
		}
	}
	return out
}
