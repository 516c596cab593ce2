package ingest

import (
	"context"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
)

// Store hands out sessions. Each pipeline invocation acquires its own.
type Store interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session owns one store connection until Close.
type Session interface {
	Begin(ctx context.Context) (Tx, error)
	// NaturalKeys returns every stored key of kind.
	NaturalKeys(ctx context.Context, kind Kind) (map[string]struct{}, error)
	Close() error
}

// Tx is one chunk transaction. A failed upsert leaves the transaction usable.
type Tx interface {
	UpsertTeam(ctx context.Context, item team.Team) (Outcome, error)
	UpsertGame(ctx context.Context, item game.Game) (Outcome, error)
	UpsertPlayer(ctx context.Context, item player.Player) (Outcome, error)
	UpsertPlay(ctx context.Context, item play.Play) (Outcome, error)
	Commit() error
	Rollback() error
}

// StatusRepository backs LoadStatus.
type StatusRepository interface {
	Count(ctx context.Context, kind Kind) (int64, error)
	LatestGame(ctx context.Context) (time.Time, int, bool, error)
	ListSeasons(ctx context.Context) ([]int, error)
}
