package game

import (
	"context"
	"time"
)

// Query narrows finished-game reads. Zero values disable a filter.
type Query struct {
	// Team matches games where the team is home or away.
	Team string
	// Opponent, together with Team, keeps only meetings between the two.
	Opponent   string
	FromSeason int
	ToSeason   int
	// Before is an exclusive date cutoff.
	Before time.Time
}

// Repository exposes game reads for the aggregation services. Results are
// ordered by date then game id.
type Repository interface {
	ListFinished(ctx context.Context, q Query) ([]Game, error)
	ListBySeason(ctx context.Context, season int) ([]Game, error)
}

// Matches applies q to an in-memory game.
func (q Query) Matches(g Game) bool {
	if !g.Finished() {
		return false
	}
	if q.Team != "" && !g.Involves(q.Team) {
		return false
	}
	if q.Team != "" && q.Opponent != "" && g.Opponent(q.Team) != q.Opponent {
		return false
	}
	if q.FromSeason > 0 && g.Season < q.FromSeason {
		return false
	}
	if q.ToSeason > 0 && g.Season > q.ToSeason {
		return false
	}
	if !q.Before.IsZero() && !g.Date.Before(q.Before) {
		return false
	}
	return true
}
