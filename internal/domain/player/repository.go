package player

import "context"

// Repository describes player reads needed by the aggregation services.
type Repository interface {
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
}
