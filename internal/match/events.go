package match

import (
	"github.com/gokatarajesh/h2h-trivia/internal/player"
	"github.com/gokatarajesh/h2h-trivia/internal/question"
)

// MatchFoundPayload is sent to each player individually.
type MatchFoundPayload struct {
	MatchID         string         `json:"match_id"`
	Opponent        player.Profile `json:"opponent"`
	TotalQuestions  int            `json:"total_questions"`
	RoundDurationMs int64          `json:"round_duration_ms"`
}

// NewQuestionPayload announces a round. Index is 1-based; Deadline is unix ms.
type NewQuestionPayload struct {
	MatchID  string          `json:"match_id"`
	Question question.Public `json:"question"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Deadline int64           `json:"deadline"`
}

// QuestionResultPayload reveals a settled round. Players that did not answer
// are absent from Answers.
type QuestionResultPayload struct {
	MatchID      string                  `json:"match_id"`
	Index        int                     `json:"index"`
	CorrectIndex int                     `json:"correct_index"`
	Scores       map[string]int          `json:"scores"`
	Answers      map[string]AnswerRecord `json:"answers"`
}

// GameOverPayload ends a match. WinnerID is the winning connection id, the
// key used in Scores; WinnerUserID is that player's user id. Both are null on
// a draw.
type GameOverPayload struct {
	MatchID      string         `json:"match_id"`
	Scores       map[string]int `json:"scores"`
	WinnerID     *string        `json:"winner_id"`
	WinnerUserID *string        `json:"winner_user_id"`
}

type OpponentDisconnectedPayload struct {
	MatchID string `json:"match_id"`
}
