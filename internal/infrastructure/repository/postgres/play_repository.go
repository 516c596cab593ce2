package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	qb "github.com/riskibarqy/gridiron-stats/internal/platform/querybuilder"
)

var playColumns = modelColumns(playTableModel{})

type PlayRepository struct {
	db *sqlx.DB
}

func NewPlayRepository(db *sqlx.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

func (r *PlayRepository) ListBySeason(ctx context.Context, season int) ([]play.Play, error) {
	query, args, err := qb.Select(playColumns...).From("plays").
		Where(qb.Eq("season", season), qb.IsNull("deleted_at")).
		OrderBy("game_id", "play_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select plays by season query: %w", err)
	}

	return r.selectPlays(ctx, "plays by season", query, args)
}

func (r *PlayRepository) ListByTeam(ctx context.Context, season int, team string) ([]play.Play, error) {
	query, args, err := qb.Select(playColumns...).From("plays").
		Where(
			qb.Eq("season", season),
			qb.Expr("(posteam = ? OR defteam = ?)", team, team),
			qb.IsNull("deleted_at"),
		).
		OrderBy("game_id", "play_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select plays by team query: %w", err)
	}

	return r.selectPlays(ctx, "plays by team", query, args)
}

func (r *PlayRepository) selectPlays(ctx context.Context, label, query string, args []any) ([]play.Play, error) {
	var rows []playTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", label, err)
	}

	out := make([]play.Play, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
