package match

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/h2h-trivia/internal/player"
	"github.com/gokatarajesh/h2h-trivia/internal/question"
	"github.com/gokatarajesh/h2h-trivia/pkg/http/ws"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrNotParticipant  = errors.New("connection is not a participant of the match")
	ErrRoundNotActive  = errors.New("no round is accepting answers")
	ErrAlreadyAnswered = errors.New("answer already recorded for this round")
	ErrPlayerBusy      = errors.New("player is already in a match")
	ErrInvalidPair     = errors.New("a match needs two distinct connections")
	ErrNoQuestions     = errors.New("no questions available")
)

// State is the lifecycle phase of a match.
type State int

const (
	StateForming State = iota
	StateRoundActive
	StateRoundSettled
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateForming:
		return "forming"
	case StateRoundActive:
		return "round_active"
	case StateRoundSettled:
		return "round_settled"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// AnswerRecord is a scored answer for one round.
type AnswerRecord struct {
	OptionIndex int  `json:"option_index"`
	IsCorrect   bool `json:"is_correct"`
	Points      int  `json:"points"`
}

// Match is the state of a live match. Maps are keyed by connection id.
type Match struct {
	ID             uuid.UUID
	Players        map[string]player.Ref
	Order          [2]string
	Questions      []question.Question
	CurrentIndex   int
	Scores         map[string]int
	Answers        map[int]map[string]AnswerRecord
	RoundStartedAt time.Time
	State          State
}

func (m *Match) clone() Match {
	out := *m
	out.Players = make(map[string]player.Ref, len(m.Players))
	for k, v := range m.Players {
		out.Players[k] = v
	}
	out.Questions = append([]question.Question(nil), m.Questions...)
	out.Scores = copyScores(m.Scores)
	out.Answers = make(map[int]map[string]AnswerRecord, len(m.Answers))
	for idx, round := range m.Answers {
		out.Answers[idx] = copyAnswers(round)
	}
	return out
}

func (m *Match) opponent(connID string) string {
	if m.Order[0] == connID {
		return m.Order[1]
	}
	return m.Order[0]
}

func copyScores(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyAnswers(in map[string]AnswerRecord) map[string]AnswerRecord {
	out := make(map[string]AnswerRecord, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Record is a finished match as handed to persistence. Ids are user ids.
type Record struct {
	MatchID      uuid.UUID
	Player1ID    string
	Player2ID    string
	Player1Score int
	Player2Score int
	WinnerID     string // empty on a draw
	Questions    []question.Question
}

// Recorder stores finished matches.
type Recorder interface {
	RecordMatch(ctx context.Context, rec Record) error
}

// Gateway delivers events to connections and match groups.
type Gateway interface {
	JoinGroup(group, connID string)
	DropGroup(group string)
	SendTo(connID string, msg ws.Message) error
	Broadcast(group string, msg ws.Message) error
	Connected(connID string) bool
}
