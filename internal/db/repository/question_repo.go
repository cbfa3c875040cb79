package repository

import (
	"context"

	sqlcgen "github.com/gokatarajesh/h2h-trivia/internal/db/sqlc"
	"github.com/gokatarajesh/h2h-trivia/internal/question"
)

type questionStore interface {
	GetQuestionPool(ctx context.Context, limit int32) ([]sqlcgen.Question, error)
	GetQuestionsByClub(ctx context.Context, arg sqlcgen.GetQuestionsByClubParams) ([]sqlcgen.Question, error)
}

// QuestionRepository serves the question bank from Postgres.
type QuestionRepository struct {
	store     questionStore
	poolLimit int32
}

var _ question.Source = (*QuestionRepository)(nil)

func NewQuestionRepository(store questionStore, poolLimit int) *QuestionRepository {
	if poolLimit <= 0 {
		poolLimit = 500
	}
	return &QuestionRepository{store: store, poolLimit: int32(poolLimit)}
}

// FetchByAffinity returns up to count of the newest questions tagged with the
// club.
func (r *QuestionRepository) FetchByAffinity(ctx context.Context, clubID string, count int) ([]question.Question, error) {
	if clubID == "" || count <= 0 {
		return nil, nil
	}
	rows, err := r.store.GetQuestionsByClub(ctx, sqlcgen.GetQuestionsByClubParams{
		ClubID: clubID,
		Limit:  int32(count),
	})
	if err != nil {
		return nil, err
	}
	return toQuestions(rows), nil
}

// FetchAll returns the newest questions, bounded by the pool limit.
func (r *QuestionRepository) FetchAll(ctx context.Context) ([]question.Question, error) {
	rows, err := r.store.GetQuestionPool(ctx, r.poolLimit)
	if err != nil {
		return nil, err
	}
	return toQuestions(rows), nil
}

func toQuestions(rows []sqlcgen.Question) []question.Question {
	out := make([]question.Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, question.Question{
			ID:           row.QuestionID,
			Prompt:       row.Prompt,
			Options:      row.Options,
			CorrectIndex: int(row.CorrectIndex),
		})
	}
	return out
}
