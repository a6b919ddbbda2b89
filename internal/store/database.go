package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the PostgreSQL connection used to mirror leaderboards.
type Database struct {
	conn *sql.DB
}

// NewDatabase opens and pings a PostgreSQL connection.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{conn: db}, nil
}

// NewDatabaseFromConn wraps an already opened connection pool.
func NewDatabaseFromConn(conn *sql.DB) *Database {
	return &Database{conn: conn}
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

const schema = `
	CREATE TABLE IF NOT EXISTS player_season_stats (
		season_id   VARCHAR(64)  NOT NULL,
		player_name VARCHAR(255) NOT NULL,
		rank        INTEGER      NOT NULL,
		games       INTEGER      NOT NULL DEFAULT 0,
		goals       INTEGER      NOT NULL DEFAULT 0,
		assists     INTEGER      NOT NULL DEFAULT 0,
		points      INTEGER      NOT NULL DEFAULT 0,
		wins        INTEGER      NOT NULL DEFAULT 0,
		draws       INTEGER      NOT NULL DEFAULT 0,
		losses      INTEGER      NOT NULL DEFAULT 0,
		updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		PRIMARY KEY (season_id, player_name)
	)
`

// EnsureSchema creates the leaderboard mirror table if it does not exist.
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create player_season_stats: %w", err)
	}
	return nil
}
