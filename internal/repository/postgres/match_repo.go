package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/zksprint/land-battle-arbiter/internal/model"
)

// MatchRepo keeps the durable match history.
//
// Match ids are 64-bit unsigned, so they are stored in their decimal string
// form, the same form they take on the wire.
//
// Schema:
//
//	CREATE TABLE matches (
//	    id          TEXT PRIMARY KEY,
//	    player1     TEXT NOT NULL,
//	    player2     TEXT NOT NULL,
//	    status      TEXT NOT NULL DEFAULT 'waiting',
//	    winner      TEXT,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    finished_at TIMESTAMPTZ
//	);
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// CreateMatch inserts the row for a freshly formed match.
func (r *MatchRepo) CreateMatch(ctx context.Context, id uint64, player1, player2 string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (id, player1, player2, status) VALUES ($1, $2, $3, $4)`,
		fmt.Sprintf("%d", id), player1, player2, model.MatchWaiting)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// SetResult marks a match finished with the winning player's pubkey.
func (r *MatchRepo) SetResult(ctx context.Context, id uint64, winner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $2, winner = $3, finished_at = now() WHERE id = $1`,
		fmt.Sprintf("%d", id), model.MatchFinished, winner)
	if err != nil {
		return fmt.Errorf("set match result: %w", err)
	}
	return nil
}

// SetAbandoned marks a match abandoned (both players gone, no decision).
func (r *MatchRepo) SetAbandoned(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $2, finished_at = now() WHERE id = $1`,
		fmt.Sprintf("%d", id), model.MatchAbandoned)
	if err != nil {
		return fmt.Errorf("set match abandoned: %w", err)
	}
	return nil
}

// FindMatch returns a match record, or nil when none exists.
func (r *MatchRepo) FindMatch(ctx context.Context, id uint64) (*model.MatchRecord, error) {
	var rec model.MatchRecord
	var idStr string
	var winner sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, player1, player2, status, winner, created_at, finished_at
		 FROM matches WHERE id = $1`, fmt.Sprintf("%d", id),
	).Scan(&idStr, &rec.Player1, &rec.Player2, &rec.Status, &winner, &rec.CreatedAt, &rec.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	rec.ID, err = strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("find match: bad id %q: %w", idStr, err)
	}
	rec.Winner = winner.String
	return &rec, nil
}
