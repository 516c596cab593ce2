package rawdata

import (
	"context"

	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
)

// Source materializes provider batches. seasons scopes season-keyed kinds.
type Source interface {
	Fetch(ctx context.Context, kind ingest.Kind, seasons []int) (Batch, error)
}
