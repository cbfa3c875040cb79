package match

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/h2h-trivia/internal/clock"
	"github.com/gokatarajesh/h2h-trivia/internal/metrics"
	"github.com/gokatarajesh/h2h-trivia/internal/player"
	"github.com/gokatarajesh/h2h-trivia/internal/question"
	"github.com/gokatarajesh/h2h-trivia/pkg/http/ws"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu      sync.Mutex
	groups  map[string]map[string]bool
	inbox   map[string][]ws.Message
	offline map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		groups:  map[string]map[string]bool{},
		inbox:   map[string][]ws.Message{},
		offline: map[string]bool{},
	}
}

func (g *fakeGateway) JoinGroup(group, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.groups[group] == nil {
		g.groups[group] = map[string]bool{}
	}
	g.groups[group][connID] = true
}

func (g *fakeGateway) DropGroup(group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.groups, group)
}

func (g *fakeGateway) SendTo(connID string, msg ws.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.offline[connID] {
		return ws.ErrConnectionNotFound
	}
	g.inbox[connID] = append(g.inbox[connID], msg)
	return nil
}

func (g *fakeGateway) Broadcast(group string, msg ws.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for connID := range g.groups[group] {
		if !g.offline[connID] {
			g.inbox[connID] = append(g.inbox[connID], msg)
		}
	}
	return nil
}

func (g *fakeGateway) Connected(connID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.offline[connID]
}

func (g *fakeGateway) disconnect(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.offline[connID] = true
	for _, members := range g.groups {
		delete(members, connID)
	}
}

func (g *fakeGateway) events(connID, msgType string) []ws.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []ws.Message
	for _, m := range g.inbox[connID] {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (g *fakeGateway) count(connID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inbox[connID])
}

func decodePayload[T any](t *testing.T, msg ws.Message) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(msg.Payload, &out))
	return out
}

type stubSource struct {
	mu         sync.Mutex
	byAffinity map[string][]question.Question
	all        []question.Question
	err        error
	calls      []string
}

func (s *stubSource) FetchByAffinity(_ context.Context, key string, count int) ([]question.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("affinity:%s:%d", key, count))
	if s.err != nil {
		return nil, s.err
	}
	qs := s.byAffinity[key]
	return qs[:min(count, len(qs))], nil
}

func (s *stubSource) FetchAll(_ context.Context) ([]question.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "all")
	if s.err != nil {
		return nil, s.err
	}
	return s.all, nil
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordMatch(ctx context.Context, rec Record) error {
	return m.Called(ctx, rec).Error(0)
}

func makeQuestions(prefix string, n int) []question.Question {
	out := make([]question.Question, n)
	for i := range out {
		out[i] = question.Question{
			ID:           fmt.Sprintf("%s%d", prefix, i+1),
			Prompt:       fmt.Sprintf("question %s%d", prefix, i+1),
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
		}
	}
	return out
}

func ref(connID, userID string, guest bool) player.Ref {
	return player.Ref{ConnID: connID, User: player.User{ID: userID, DisplayName: "name-" + connID, IsGuest: guest}}
}

type engineFixture struct {
	engine  *Engine
	gateway *fakeGateway
	clock   *clock.Fake
	opts    Options
}

func newEngineFixture(t *testing.T, source question.Source, recorder Recorder, questionCount int) *engineFixture {
	t.Helper()
	opts := Options{
		QuestionCount:   questionCount,
		RoundDuration:   10 * time.Second,
		RoundGrace:      time.Second,
		PreMatchDelay:   3 * time.Second,
		InterRoundDelay: 3 * time.Second,
		RandSource:      rand.NewPCG(1, 2),
	}
	gw := newFakeGateway()
	clk := clock.NewFake(epoch)
	eng := NewEngine(source, gw, recorder, clk, metrics.New(prometheus.NewRegistry()), opts, zerolog.New(io.Discard))
	return &engineFixture{engine: eng, gateway: gw, clock: clk, opts: eng.opts}
}

func (f *engineFixture) currentQuestion(t *testing.T, id uuid.UUID) question.Question {
	t.Helper()
	snap := f.snapshot(t, id)
	return snap.Questions[snap.CurrentIndex]
}

func (f *engineFixture) snapshot(t *testing.T, id uuid.UUID) Match {
	t.Helper()
	snap, ok := f.engine.Snapshot(id)
	require.True(t, ok, "match %s not live", id)
	return snap
}

func wrong(q question.Question) int {
	return (q.CorrectIndex + 1) % 4
}
