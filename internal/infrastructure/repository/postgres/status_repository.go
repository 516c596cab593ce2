package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	qb "github.com/riskibarqy/gridiron-stats/internal/platform/querybuilder"
)

const listSeasonsQuery = "SELECT season FROM games UNION SELECT season FROM plays ORDER BY season"

type StatusRepository struct {
	db *sqlx.DB
}

func NewStatusRepository(db *sqlx.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) Count(ctx context.Context, kind ingest.Kind) (int64, error) {
	target, ok := naturalKeyColumns[kind]
	if !ok {
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}

	query, args, err := qb.Select("COUNT(*)").From(target.table).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count %s query: %w", kind, err)
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return count, nil
}

func (r *StatusRepository) LatestGame(ctx context.Context) (time.Time, int, bool, error) {
	query, args, err := qb.Select("game_date", "season").From("games").
		OrderBy("game_date DESC", "game_id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return time.Time{}, 0, false, fmt.Errorf("build select latest game query: %w", err)
	}

	var row struct {
		Date   time.Time `db:"game_date"`
		Season int       `db:"season"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return time.Time{}, 0, false, nil
		}
		return time.Time{}, 0, false, fmt.Errorf("select latest game: %w", err)
	}
	return row.Date.UTC(), row.Season, true, nil
}

func (r *StatusRepository) ListSeasons(ctx context.Context) ([]int, error) {
	var seasons []int
	if err := r.db.SelectContext(ctx, &seasons, listSeasonsQuery); err != nil {
		return nil, fmt.Errorf("select seasons: %w", err)
	}
	if seasons == nil {
		seasons = []int{}
	}
	return seasons, nil
}
