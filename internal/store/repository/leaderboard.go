package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fortuna/rinkboard/internal/docstore"
	"github.com/fortuna/rinkboard/internal/rebuild"
	"github.com/fortuna/rinkboard/internal/store"
)

// LeaderboardRepository mirrors season leaderboards into player_season_stats.
type LeaderboardRepository struct {
	db *store.Database
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository(db *store.Database) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// Name identifies the sink in diagnostics.
func (r *LeaderboardRepository) Name() string {
	return "postgres:player_season_stats"
}

// Publish replaces every season's rows and removes seasons that are gone.
func (r *LeaderboardRepository) Publish(ctx context.Context, res *rebuild.Result) error {
	updatedAt := res.FinishedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	seasons := make([]string, 0, len(res.Seasons))
	for _, s := range res.Seasons {
		if err := r.ReplaceSeason(ctx, s.Season, s.Leaderboard.Players, updatedAt); err != nil {
			return err
		}
		seasons = append(seasons, s.Season)
	}

	return r.PruneSeasons(ctx, seasons)
}

// ReplaceSeason swaps a season's rows for players in one transaction.
// Rank follows the order of players, starting at 1.
func (r *LeaderboardRepository) ReplaceSeason(ctx context.Context, season string, players []docstore.PlayerStat, updatedAt time.Time) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin season %s: %w", season, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_season_stats WHERE season_id = $1`, season); err != nil {
		return fmt.Errorf("clear season %s: %w", season, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_season_stats (
			season_id, player_name, rank, games, goals, assists, points, wins, draws, losses, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range players {
		if _, err := stmt.ExecContext(ctx,
			season, p.Name, i+1, p.Games, p.Goals, p.Assists, p.Points, p.Wins, p.Draws, p.Losses, updatedAt,
		); err != nil {
			return fmt.Errorf("insert %s/%s: %w", season, p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season %s: %w", season, err)
	}
	return nil
}

// PruneSeasons deletes rows of seasons not listed in keep.
func (r *LeaderboardRepository) PruneSeasons(ctx context.Context, keep []string) error {
	_, err := r.db.DB().ExecContext(ctx,
		`DELETE FROM player_season_stats WHERE NOT (season_id = ANY($1))`,
		pq.Array(keep),
	)
	if err != nil {
		return fmt.Errorf("prune seasons: %w", err)
	}
	return nil
}
