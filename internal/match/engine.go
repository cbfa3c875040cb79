package match

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/h2h-trivia/internal/clock"
	"github.com/gokatarajesh/h2h-trivia/internal/match/scoring"
	"github.com/gokatarajesh/h2h-trivia/internal/metrics"
	"github.com/gokatarajesh/h2h-trivia/internal/player"
	"github.com/gokatarajesh/h2h-trivia/internal/question"
	"github.com/gokatarajesh/h2h-trivia/pkg/http/ws"
)

// Options configures the match engine. Zero values take the defaults.
type Options struct {
	QuestionCount        int
	RoundDuration        time.Duration
	RoundGrace           time.Duration
	PreMatchDelay        time.Duration
	InterRoundDelay      time.Duration
	QuestionFetchTimeout time.Duration
	PersistTimeout       time.Duration
	ScoringConfig        scoring.ScoringConfig
	// RandSource seeds question shuffling.
	RandSource rand.Source
}

func (o Options) withDefaults() Options {
	if o.QuestionCount <= 0 {
		o.QuestionCount = 10
	}
	if o.RoundDuration <= 0 {
		o.RoundDuration = 10 * time.Second
	}
	if o.RoundGrace < 0 {
		o.RoundGrace = 0
	}
	if o.PreMatchDelay < 0 {
		o.PreMatchDelay = 0
	}
	if o.InterRoundDelay < 0 {
		o.InterRoundDelay = 0
	}
	if o.QuestionFetchTimeout <= 0 {
		o.QuestionFetchTimeout = 4 * time.Second
	}
	if o.PersistTimeout <= 0 {
		o.PersistTimeout = 5 * time.Second
	}
	if o.ScoringConfig.BasePoints == 0 {
		o.ScoringConfig = scoring.DefaultScoringConfig()
	}
	if o.RandSource == nil {
		o.RandSource = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return o
}

// Engine owns every live match and drives each one through its rounds.
//
// Locking: the table lock guards matches and byConn; each match has its own
// lock. A goroutine holding a match lock may take the table lock, never the
// reverse.
type Engine struct {
	mu      sync.RWMutex
	matches map[uuid.UUID]*liveMatch
	byConn  map[string]uuid.UUID

	gateway  Gateway
	recorder Recorder
	clock    clock.Clock
	scorer   *scoring.Engine
	selector *selector
	metrics  *metrics.Metrics
	opts     Options
	logger   zerolog.Logger
}

type liveMatch struct {
	mu sync.Mutex
	Match
	timer   clock.Timer
	removed bool
}

// NewEngine creates a match engine. recorder may be nil to disable
// persistence.
func NewEngine(
	source question.Source,
	gateway Gateway,
	recorder Recorder,
	clk clock.Clock,
	m *metrics.Metrics,
	opts Options,
	logger zerolog.Logger,
) *Engine {
	opts = opts.withDefaults()
	logger = logger.With().Str("component", "match_engine").Logger()
	return &Engine{
		matches:  make(map[uuid.UUID]*liveMatch),
		byConn:   make(map[string]uuid.UUID),
		gateway:  gateway,
		recorder: recorder,
		clock:    clk,
		scorer:   scoring.NewEngine(opts.ScoringConfig),
		selector: &selector{
			source: source,
			target: opts.QuestionCount,
			rng:    newLockedRand(opts.RandSource),
			logger: logger,
		},
		metrics: m,
		opts:    opts,
		logger:  logger,
	}
}

// CreateMatch builds the question set, registers the match, announces it to
// both players and schedules the first round.
func (e *Engine) CreateMatch(ctx context.Context, p1, p2 player.Ref) (uuid.UUID, error) {
	if p1.ConnID == "" || p1.ConnID == p2.ConnID {
		return uuid.Nil, ErrInvalidPair
	}
	if e.busy(p1.ConnID, p2.ConnID) {
		return uuid.Nil, ErrPlayerBusy
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.opts.QuestionFetchTimeout)
	questions := e.selector.Select(fetchCtx, [2]string{p1.User.ClubID, p2.User.ClubID})
	cancel()
	if len(questions) == 0 {
		return uuid.Nil, ErrNoQuestions
	}

	id := uuid.New()
	m := &liveMatch{Match: Match{
		ID:           id,
		Players:      map[string]player.Ref{p1.ConnID: p1, p2.ConnID: p2},
		Order:        [2]string{p1.ConnID, p2.ConnID},
		Questions:    questions,
		CurrentIndex: 0,
		Scores:       map[string]int{p1.ConnID: 0, p2.ConnID: 0},
		Answers:      make(map[int]map[string]AnswerRecord),
		State:        StateForming,
	}}

	m.mu.Lock()
	defer m.mu.Unlock()

	e.mu.Lock()
	if e.busyLocked(p1.ConnID, p2.ConnID) {
		e.mu.Unlock()
		return uuid.Nil, ErrPlayerBusy
	}
	e.matches[id] = m
	e.byConn[p1.ConnID] = id
	e.byConn[p2.ConnID] = id
	e.mu.Unlock()
	e.metrics.MatchStarted()

	logger := e.logger.With().Str("match_id", id.String()).Logger()
	logger.Info().
		Str("player1", p1.ConnID).
		Str("player2", p2.ConnID).
		Int("questions", len(questions)).
		Msg("match created")

	group := id.String()
	e.gateway.JoinGroup(group, p1.ConnID)
	e.gateway.JoinGroup(group, p2.ConnID)

	for _, pair := range [][2]player.Ref{{p1, p2}, {p2, p1}} {
		e.send(pair[0].ConnID, ws.TypeMatchFound, MatchFoundPayload{
			MatchID:         group,
			Opponent:        pair[1].User.Profile(),
			TotalQuestions:  len(questions),
			RoundDurationMs: e.opts.RoundDuration.Milliseconds(),
		})
	}

	m.timer = e.clock.AfterFunc(e.opts.PreMatchDelay, func() { e.startRound(id, 0) })

	for _, connID := range m.Order {
		if !e.gateway.Connected(connID) {
			logger.Info().Str("conn_id", connID).Msg("player left before match start")
			e.abortLocked(m, connID)
			break
		}
	}
	return id, nil
}

func (e *Engine) startRound(id uuid.UUID, index int) {
	m := e.lookup(id)
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removed || m.CurrentIndex != index || (m.State != StateForming && m.State != StateRoundSettled) {
		return
	}

	now := e.clock.Now()
	m.RoundStartedAt = now
	m.Answers[index] = make(map[string]AnswerRecord, 2)
	m.State = StateRoundActive

	e.broadcast(m, ws.TypeNewQuestion, NewQuestionPayload{
		MatchID:  id.String(),
		Question: m.Questions[index].Public(),
		Index:    index + 1,
		Total:    len(m.Questions),
		Deadline: now.Add(e.opts.RoundDuration).UnixMilli(),
	})

	m.timer = e.clock.AfterFunc(e.opts.RoundDuration+e.opts.RoundGrace, func() { e.roundTimeout(id, index) })
}

func (e *Engine) roundTimeout(id uuid.UUID, index int) {
	m := e.lookup(id)
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removed || m.State != StateRoundActive || m.CurrentIndex != index {
		return
	}
	e.settleLocked(m, metrics.TriggerTimeout)
}

// SubmitAnswer scores an answer against the active round. The first answer
// per player and round wins; the round settles as soon as both answered.
func (e *Engine) SubmitAnswer(matchID uuid.UUID, connID string, optionIndex int) (AnswerRecord, error) {
	m := e.lookup(matchID)
	if m == nil {
		return AnswerRecord{}, ErrMatchNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removed {
		return AnswerRecord{}, ErrMatchNotFound
	}
	if _, ok := m.Players[connID]; !ok {
		return AnswerRecord{}, ErrNotParticipant
	}
	if m.State != StateRoundActive {
		return AnswerRecord{}, ErrRoundNotActive
	}
	round := m.Answers[m.CurrentIndex]
	if _, done := round[connID]; done {
		return AnswerRecord{}, ErrAlreadyAnswered
	}

	elapsed := e.clock.Now().Sub(m.RoundStartedAt)
	correct := optionIndex == m.Questions[m.CurrentIndex].CorrectIndex
	rec := AnswerRecord{
		OptionIndex: optionIndex,
		IsCorrect:   correct,
		Points:      e.scorer.CalculateScore(correct, elapsed, e.opts.RoundDuration),
	}
	round[connID] = rec
	m.Scores[connID] += rec.Points
	e.metrics.AnswerRecorded(correct)

	e.logger.Debug().
		Str("match_id", matchID.String()).
		Str("conn_id", connID).
		Int("index", m.CurrentIndex).
		Bool("correct", correct).
		Int("points", rec.Points).
		Dur("elapsed", elapsed).
		Msg("answer recorded")

	if len(round) == len(m.Players) {
		if m.timer != nil {
			m.timer.Stop()
		}
		e.settleLocked(m, metrics.TriggerAllAnswered)
	}
	return rec, nil
}

func (e *Engine) settleLocked(m *liveMatch, trigger string) {
	index := m.CurrentIndex
	m.State = StateRoundSettled
	e.metrics.RoundSettled(trigger)

	e.broadcast(m, ws.TypeQuestionResult, QuestionResultPayload{
		MatchID:      m.ID.String(),
		Index:        index + 1,
		CorrectIndex: m.Questions[index].CorrectIndex,
		Scores:       copyScores(m.Scores),
		Answers:      copyAnswers(m.Answers[index]),
	})

	m.CurrentIndex++
	id, next := m.ID, m.CurrentIndex
	if next < len(m.Questions) {
		m.timer = e.clock.AfterFunc(e.opts.InterRoundDelay, func() { e.startRound(id, next) })
		return
	}
	m.timer = e.clock.AfterFunc(e.opts.InterRoundDelay, func() { e.finish(id) })
}

func (e *Engine) finish(id uuid.UUID) {
	m := e.lookup(id)
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removed || m.State != StateRoundSettled || m.CurrentIndex != len(m.Questions) {
		return
	}
	m.State = StateFinished
	m.timer = nil

	logger := e.logger.With().Str("match_id", id.String()).Logger()
	winnerConn, decided := scoring.Winner(m.Scores)
	outcome := metrics.OutcomeDraw
	if decided {
		outcome = metrics.OutcomeWin
	}

	e.persistLocked(m, winnerConn, decided, logger)

	payload := GameOverPayload{MatchID: id.String(), Scores: copyScores(m.Scores)}
	if decided {
		winnerUser := m.Players[winnerConn].User.ID
		payload.WinnerID = &winnerConn
		payload.WinnerUserID = &winnerUser
	}
	e.broadcast(m, ws.TypeGameOver, payload)

	e.removeLocked(m)
	e.metrics.MatchEnded(outcome)
	logger.Info().Str("outcome", outcome).Interface("scores", m.Scores).Msg("match finished")
}

func (e *Engine) persistLocked(m *liveMatch, winnerConn string, decided bool, logger zerolog.Logger) {
	p1, p2 := m.Players[m.Order[0]], m.Players[m.Order[1]]
	if p1.User.IsGuest || p2.User.IsGuest {
		logger.Info().Msg("guest player in match, skipping persistence")
		e.metrics.Persisted(metrics.PersistSkipped)
		return
	}
	if e.recorder == nil {
		return
	}

	rec := Record{
		MatchID:      m.ID,
		Player1ID:    p1.User.ID,
		Player2ID:    p2.User.ID,
		Player1Score: m.Scores[p1.ConnID],
		Player2Score: m.Scores[p2.ConnID],
		Questions:    append([]question.Question(nil), m.Questions...),
	}
	if decided {
		rec.WinnerID = m.Players[winnerConn].User.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.PersistTimeout)
	defer cancel()
	if err := e.recorder.RecordMatch(ctx, rec); err != nil {
		logger.Error().Err(err).Msg("failed to persist match")
		e.metrics.Persisted(metrics.PersistFailed)
		return
	}
	e.metrics.Persisted(metrics.PersistOK)
}

// HandleDisconnect stops the match the connection plays in, if any, and
// tells the remaining player. It reports whether a match was stopped.
func (e *Engine) HandleDisconnect(connID string) bool {
	id, ok := e.InMatch(connID)
	if !ok {
		return false
	}
	m := e.lookup(id)
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removed {
		return false
	}
	e.abortLocked(m, connID)
	return true
}

func (e *Engine) abortLocked(m *liveMatch, leaver string) {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.State = StateFinished
	e.broadcast(m, ws.TypeOpponentDisconnected, OpponentDisconnectedPayload{MatchID: m.ID.String()})
	e.removeLocked(m)
	e.metrics.MatchEnded(metrics.OutcomeDisconnected)

	e.logger.Info().
		Str("match_id", m.ID.String()).
		Str("conn_id", leaver).
		Str("opponent", m.opponent(leaver)).
		Msg("match stopped by disconnect")
}

// removeLocked drops m from the table. Caller holds m.mu.
func (e *Engine) removeLocked(m *liveMatch) {
	m.removed = true
	e.mu.Lock()
	delete(e.matches, m.ID)
	for connID := range m.Players {
		if e.byConn[connID] == m.ID {
			delete(e.byConn, connID)
		}
	}
	e.mu.Unlock()
	e.gateway.DropGroup(m.ID.String())
}

// Snapshot returns a copy of the match state.
func (e *Engine) Snapshot(id uuid.UUID) (Match, bool) {
	m := e.lookup(id)
	if m == nil {
		return Match{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return Match{}, false
	}
	return m.clone(), true
}

// ActiveMatches reports how many matches are live.
func (e *Engine) ActiveMatches() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.matches)
}

// InMatch returns the live match the connection plays in.
func (e *Engine) InMatch(connID string) (uuid.UUID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.byConn[connID]
	return id, ok
}

// Shutdown stops every match without a result. Used at process stop.
func (e *Engine) Shutdown() {
	e.mu.RLock()
	live := make([]*liveMatch, 0, len(e.matches))
	for _, m := range e.matches {
		live = append(live, m)
	}
	e.mu.RUnlock()

	for _, m := range live {
		m.mu.Lock()
		if !m.removed {
			if m.timer != nil {
				m.timer.Stop()
				m.timer = nil
			}
			m.State = StateFinished
			e.removeLocked(m)
			e.metrics.MatchEnded(metrics.OutcomeAborted)
		}
		m.mu.Unlock()
	}
	if len(live) > 0 {
		e.logger.Info().Int("matches", len(live)).Msg("live matches aborted")
	}
}

func (e *Engine) lookup(id uuid.UUID) *liveMatch {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matches[id]
}

func (e *Engine) busy(connIDs ...string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.busyLocked(connIDs...)
}

func (e *Engine) busyLocked(connIDs ...string) bool {
	for _, id := range connIDs {
		if _, ok := e.byConn[id]; ok {
			return true
		}
	}
	return false
}

func (e *Engine) send(connID, msgType string, payload any) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		e.logger.Error().Err(err).Str("type", msgType).Msg("encode event")
		return
	}
	if err := e.gateway.SendTo(connID, msg); err != nil {
		e.logger.Debug().Err(err).Str("conn_id", connID).Str("type", msgType).Msg("event not delivered")
	}
}

func (e *Engine) broadcast(m *liveMatch, msgType string, payload any) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		e.logger.Error().Err(err).Str("type", msgType).Msg("encode event")
		return
	}
	if err := e.gateway.Broadcast(m.ID.String(), msg); err != nil {
		e.logger.Debug().Err(err).Str("match_id", m.ID.String()).Str("type", msgType).Msg("broadcast incomplete")
	}
}
