package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/riftbound/duel-server-go/internal/game"
)

// ErrNotFound is returned when a match id is unknown.
var ErrNotFound = errors.New("match not found")

// Match is one finished duel.
type Match struct {
	ID         string    `json:"id"`
	Player0    string    `json:"player0"`
	Player1    string    `json:"player1"`
	Winner     int       `json:"winner"`
	Score0     int       `json:"score0"`
	Score1     int       `json:"score1"`
	Turns      int       `json:"turns"`
	Seed       int64     `json:"seed"`
	FinishedAt time.Time `json:"finishedAt"`
}

// MatchRepository stores finished matches.
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates the repository.
func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// SaveMatch records a finished duel and its replay.
func (r *MatchRepository) SaveMatch(ctx context.Context, s *game.State, replay []game.ReplayEntry) error {
	if !s.Over {
		return fmt.Errorf("game %s is not finished", s.ID)
	}

	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO matches (id, player0, player1, winner, score0, score1, turns, seed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`,
		s.ID, s.Players[0].Name, s.Players[1].Name, s.Winner,
		s.Players[0].Score, s.Players[1].Score, s.Turn, s.Seed)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	actions, err := json.Marshal(replay)
	if err != nil {
		return fmt.Errorf("marshal replay: %w", err)
	}
	_, err = tx.Exec(ctx, `
INSERT INTO match_replays (match_id, actions)
VALUES ($1, $2)
ON CONFLICT (match_id) DO NOTHING`, s.ID, actions)
	if err != nil {
		return fmt.Errorf("insert replay: %w", err)
	}

	return tx.Commit(ctx)
}

// GetMatch loads one match record.
func (r *MatchRepository) GetMatch(ctx context.Context, id string) (*Match, error) {
	row := r.db.pool.QueryRow(ctx, `
SELECT id, player0, player1, winner, score0, score1, turns, seed, finished_at
FROM matches WHERE id = $1`, id)

	var m Match
	err := row.Scan(&m.ID, &m.Player0, &m.Player1, &m.Winner,
		&m.Score0, &m.Score1, &m.Turns, &m.Seed, &m.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan match: %w", err)
	}
	return &m, nil
}

// GetReplay loads a match's recorded actions.
func (r *MatchRepository) GetReplay(ctx context.Context, id string) ([]game.ReplayEntry, error) {
	var raw []byte
	err := r.db.pool.QueryRow(ctx,
		`SELECT actions FROM match_replays WHERE match_id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan replay: %w", err)
	}

	var entries []game.ReplayEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal replay: %w", err)
	}
	return entries, nil
}

// ListRecent returns the latest finished matches, newest first.
func (r *MatchRepository) ListRecent(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.pool.Query(ctx, `
SELECT id, player0, player1, winner, score0, score1, turns, seed, finished_at
FROM matches ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Player0, &m.Player1, &m.Winner,
			&m.Score0, &m.Score1, &m.Turns, &m.Seed, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
