package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sqlcgen "github.com/gokatarajesh/h2h-trivia/internal/db/sqlc"
	"github.com/gokatarajesh/h2h-trivia/internal/match"
	"github.com/gokatarajesh/h2h-trivia/internal/question"
)

type mockMatchStore struct {
	mock.Mock
}

func (m *mockMatchStore) InsertMatch(ctx context.Context, arg sqlcgen.InsertMatchParams) (sqlcgen.Match, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(sqlcgen.Match), args.Error(1)
}

func TestMatchRepository_RecordMatch(t *testing.T) {
	store := new(mockMatchStore)
	repo := NewMatchRepository(store)

	qs := question.Fallback()[:2]
	encoded, err := json.Marshal(qs)
	require.NoError(t, err)

	rec := match.Record{
		MatchID:      uuidFromByte(1),
		Player1ID:    uuidFromByte(2).String(),
		Player2ID:    uuidFromByte(3).String(),
		Player1Score: 150,
		Player2Score: 90,
		WinnerID:     uuidFromByte(2).String(),
		Questions:    qs,
	}
	expect := sqlcgen.InsertMatchParams{
		MatchID:      pgUUID(uuidFromByte(1)),
		Player1ID:    pgUUID(uuidFromByte(2)),
		Player2ID:    pgUUID(uuidFromByte(3)),
		Player1Score: 150,
		Player2Score: 90,
		WinnerID:     pgUUID(uuidFromByte(2)),
		Questions:    encoded,
	}
	store.On("InsertMatch", mock.Anything, expect).Return(sqlcgen.Match{MatchID: expect.MatchID}, nil)

	assert.NoError(t, repo.RecordMatch(context.Background(), rec))
	store.AssertExpectations(t)
}

func TestMatchRepository_RecordDrawLeavesWinnerNull(t *testing.T) {
	store := new(mockMatchStore)
	repo := NewMatchRepository(store)

	store.On("InsertMatch", mock.Anything, mock.MatchedBy(func(arg sqlcgen.InsertMatchParams) bool {
		return arg.WinnerID == (pgtype.UUID{}) && arg.Player1Score == arg.Player2Score
	})).Return(sqlcgen.Match{}, nil)

	err := repo.RecordMatch(context.Background(), match.Record{
		MatchID:      uuidFromByte(4),
		Player1ID:    uuidFromByte(5).String(),
		Player2ID:    uuidFromByte(6).String(),
		Player1Score: 100,
		Player2Score: 100,
	})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestMatchRepository_RecordRejectsNonUUIDPlayer(t *testing.T) {
	store := new(mockMatchStore)
	repo := NewMatchRepository(store)

	err := repo.RecordMatch(context.Background(), match.Record{
		MatchID:   uuidFromByte(7),
		Player1ID: "guest-abc",
		Player2ID: uuidFromByte(8).String(),
	})
	assert.Error(t, err)
	store.AssertNotCalled(t, "InsertMatch", mock.Anything, mock.Anything)
}

func TestMatchRepository_RecordWrapsStoreError(t *testing.T) {
	store := new(mockMatchStore)
	repo := NewMatchRepository(store)

	boom := errors.New("connection reset")
	store.On("InsertMatch", mock.Anything, mock.Anything).Return(sqlcgen.Match{}, boom)

	err := repo.RecordMatch(context.Background(), match.Record{
		MatchID:   uuidFromByte(9),
		Player1ID: uuidFromByte(10).String(),
		Player2ID: uuidFromByte(11).String(),
	})
	assert.ErrorIs(t, err, boom)
}
