package play

import "context"

// Repository exposes play reads for the aggregation services. Results are
// ordered by game id then play id.
type Repository interface {
	ListBySeason(ctx context.Context, season int) ([]Play, error)
	// ListByTeam returns plays where team had possession or was on defense.
	ListByTeam(ctx context.Context, season int, team string) ([]Play, error)
}
