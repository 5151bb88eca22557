package repository

import (
	"context"

	"github.com/zksprint/land-battle-arbiter/internal/model"
)

// MatchRecorder defines durable match bookkeeping. Every call is best-effort
// from the arbiter's perspective: failures are logged by the caller and never
// block or abort a match.
type MatchRecorder interface {
	CreateMatch(ctx context.Context, id uint64, player1, player2 string) error
	SetResult(ctx context.Context, id uint64, winner string) error
	SetAbandoned(ctx context.Context, id uint64) error
	FindMatch(ctx context.Context, id uint64) (*model.MatchRecord, error)
}

// MatchStatusCache defines the live match status mirror.
type MatchStatusCache interface {
	SetStatus(ctx context.Context, id uint64, status model.MatchStatus) error
	GetStatus(ctx context.Context, id uint64) (*model.MatchStatus, error)
	DeleteStatus(ctx context.Context, id uint64) error
}
