package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	sqlcgen "github.com/gokatarajesh/h2h-trivia/internal/db/sqlc"
	"github.com/gokatarajesh/h2h-trivia/internal/match"
)

type matchStore interface {
	InsertMatch(ctx context.Context, arg sqlcgen.InsertMatchParams) (sqlcgen.Match, error)
}

// MatchRepository stores completed matches.
type MatchRepository struct {
	store matchStore
}

var _ match.Recorder = (*MatchRepository)(nil)

// NewMatchRepository constructs a new match repository.
func NewMatchRepository(store matchStore) *MatchRepository {
	return &MatchRepository{store: store}
}

// RecordMatch persists a finished match. Player ids must be UUIDs; an empty
// winner id stores a draw.
func (r *MatchRepository) RecordMatch(ctx context.Context, rec match.Record) error {
	p1, err := toPgUUID(rec.Player1ID)
	if err != nil {
		return fmt.Errorf("player1 id: %w", err)
	}
	p2, err := toPgUUID(rec.Player2ID)
	if err != nil {
		return fmt.Errorf("player2 id: %w", err)
	}
	var winner pgtype.UUID
	if rec.WinnerID != "" {
		if winner, err = toPgUUID(rec.WinnerID); err != nil {
			return fmt.Errorf("winner id: %w", err)
		}
	}
	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	_, err = r.store.InsertMatch(ctx, sqlcgen.InsertMatchParams{
		MatchID:      pgtype.UUID{Bytes: rec.MatchID, Valid: true},
		Player1ID:    p1,
		Player2ID:    p2,
		Player1Score: int32(rec.Player1Score),
		Player2Score: int32(rec.Player2Score),
		WinnerID:     winner,
		Questions:    questions,
	})
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func toPgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}
