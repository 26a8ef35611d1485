// Package store keeps the results of finished rounds in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrDuplicateRound is returned when a round ID has already been recorded.
var ErrDuplicateRound = errors.New("store: round already recorded")

// Round is one finished round.
type Round struct {
	ID         string
	Level      string
	Outcome    string
	Frames     uint64
	Humans     int
	Zombies    int
	FinishedAt time.Time
}

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results store %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection is usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		level TEXT NOT NULL,
		outcome TEXT NOT NULL,
		frames INTEGER NOT NULL DEFAULT 0,
		humans INTEGER NOT NULL DEFAULT 0,
		zombies INTEGER NOT NULL DEFAULT 0,
		finished_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rounds_finished ON rounds(finished_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate results store: %w", err)
	}
	return nil
}

// RecordRound inserts r.
func (db *DB) RecordRound(ctx context.Context, r Round) error {
	if r.ID == "" {
		return fmt.Errorf("record round: missing id")
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}

	var exists int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds WHERE id = ?`, r.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("record round %s: %w", r.ID, err)
	}
	if exists > 0 {
		return fmt.Errorf("record round %s: %w", r.ID, ErrDuplicateRound)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO rounds (id, level, outcome, frames, humans, zombies, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Level, r.Outcome, int64(r.Frames), r.Humans, r.Zombies, r.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record round %s: %w", r.ID, err)
	}
	return nil
}

// RecentRounds returns up to limit rounds, newest first.
func (db *DB) RecentRounds(ctx context.Context, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, level, outcome, frames, humans, zombies, finished_at
		 FROM rounds ORDER BY finished_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		var (
			r        Round
			frames   int64
			finished int64
		)
		if err := rows.Scan(&r.ID, &r.Level, &r.Outcome, &frames, &r.Humans, &r.Zombies, &finished); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		r.Frames = uint64(frames)
		r.FinishedAt = time.UnixMilli(finished).UTC()
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

// OutcomeCounts returns how many rounds ended with each outcome.
func (db *DB) OutcomeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM rounds GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}
