package team

import "context"

// Repository describes team reads needed by the aggregation services.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	GetByAbbr(ctx context.Context, abbr string) (Team, bool, error)
}
