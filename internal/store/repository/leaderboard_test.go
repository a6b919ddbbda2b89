package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/rinkboard/internal/docstore"
	"github.com/fortuna/rinkboard/internal/rebuild"
	"github.com/fortuna/rinkboard/internal/store"
)

const (
	deleteSeasonSQL = `DELETE FROM player_season_stats WHERE season_id = $1`
	insertSQL       = `INSERT INTO player_season_stats`
	pruneSQL        = `DELETE FROM player_season_stats WHERE NOT (season_id = ANY($1))`
)

func setupLeaderboardRepo(t *testing.T) (*LeaderboardRepository, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewLeaderboardRepository(store.NewDatabaseFromConn(conn)), mock
}

func TestLeaderboardRepository_Name(t *testing.T) {
	repo := NewLeaderboardRepository(nil)
	assert.Equal(t, "postgres:player_season_stats", repo.Name())
}

func TestReplaceSeason_RanksInOrder(t *testing.T) {
	repo, mock := setupLeaderboardRepo(t)
	updatedAt := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

	players := []docstore.PlayerStat{
		{Name: "A", Games: 1, Goals: 2, Points: 2, Wins: 1},
		{Name: "C", Games: 1, Goals: 1, Points: 1, Losses: 1},
		{Name: "B", Games: 1, Assists: 1, Points: 1, Wins: 1},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteSeasonSQL)).
		WithArgs("25-26").
		WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare(insertSQL)
	prep.ExpectExec().
		WithArgs("25-26", "A", 1, 1, 2, 0, 2, 1, 0, 0, updatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("25-26", "C", 2, 1, 1, 0, 1, 0, 0, 1, updatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("25-26", "B", 3, 1, 0, 1, 1, 1, 0, 0, updatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceSeason(context.Background(), "25-26", players, updatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSeason_EmptyLeaderboardClearsRows(t *testing.T) {
	repo, mock := setupLeaderboardRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteSeasonSQL)).
		WithArgs("25-26").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectPrepare(insertSQL)
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceSeason(context.Background(), "25-26", nil, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSeason_InsertFailureRollsBack(t *testing.T) {
	repo, mock := setupLeaderboardRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteSeasonSQL)).
		WithArgs("25-26").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(insertSQL).
		ExpectExec().
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.ReplaceSeason(context.Background(), "25-26", []docstore.PlayerStat{{Name: "A"}}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "25-26/A")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPruneSeasons(t *testing.T) {
	tests := []struct {
		name string
		keep []string
		arg  string
	}{
		{name: "keeps listed seasons", keep: []string{"24-25", "25-26"}, arg: `{"24-25","25-26"}`},
		{name: "empty keep list removes everything", keep: []string{}, arg: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupLeaderboardRepo(t)

			mock.ExpectExec(regexp.QuoteMeta(pruneSQL)).
				WithArgs(tt.arg).
				WillReturnResult(sqlmock.NewResult(0, 2))

			require.NoError(t, repo.PruneSeasons(context.Background(), tt.keep))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPublish_ReplacesEverySeasonThenPrunes(t *testing.T) {
	repo, mock := setupLeaderboardRepo(t)
	finished := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

	res := &rebuild.Result{
		FinishedAt: finished,
		Seasons: []rebuild.SeasonResult{
			{Season: "24-25", Leaderboard: docstore.PlayerLeaderboard{Players: []docstore.PlayerStat{{Name: "A", Goals: 1, Points: 1}}}},
			{Season: "25-26"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteSeasonSQL)).WithArgs("24-25").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(insertSQL).ExpectExec().
		WithArgs("24-25", "A", 1, 0, 1, 0, 1, 0, 0, 0, finished).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteSeasonSQL)).WithArgs("25-26").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(insertSQL)
	mock.ExpectCommit()

	mock.ExpectExec(regexp.QuoteMeta(pruneSQL)).
		WithArgs(`{"24-25","25-26"}`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Publish(context.Background(), res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_StopsOnSeasonFailure(t *testing.T) {
	repo, mock := setupLeaderboardRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	err := repo.Publish(context.Background(), &rebuild.Result{Seasons: []rebuild.SeasonResult{{Season: "25-26"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin season 25-26")
	assert.NoError(t, mock.ExpectationsWereMet())
}
