// Package database persists room, round, and result records to
// Postgres. Persistence is write-behind: the room state machine is
// authoritative and recorders are invoked asynchronously. When DB is
// nil (no DSN configured) callers skip persistence entirely.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool. Nil when persistence is not configured.
var DB *pgxpool.Pool

// Connect opens the shared pool. An empty DSN leaves DB nil.
func Connect(ctx context.Context, dsn string) error {
	if dsn == "" {
		logrus.Info("database url not set, persistence disabled")
		return nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	DB = pool
	logrus.Info("connected to postgres")
	return nil
}

// Close shuts down the shared pool if one was opened.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// EnsureSchema creates the tables the recorders write to.
func EnsureSchema(ctx context.Context) error {
	if DB == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id UUID PRIMARY KEY,
			host_player_id UUID NOT NULL,
			status TEXT NOT NULL,
			config JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS room_players (
			room_id UUID NOT NULL,
			player_id UUID NOT NULL,
			username TEXT NOT NULL,
			seat INT NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (room_id, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id UUID PRIMARY KEY,
			room_id UUID NOT NULL,
			card_id UUID NOT NULL,
			claimer_id UUID NOT NULL,
			target_id UUID NOT NULL,
			declared TEXT NOT NULL,
			pass_count INT NOT NULL,
			resolution JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS game_results (
			room_id UUID PRIMARY KEY,
			winner_id UUID,
			loser_id UUID,
			loss_reason TEXT NOT NULL,
			rounds_played INT NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
