package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	qb "github.com/riskibarqy/gridiron-stats/internal/platform/querybuilder"
)

var gameColumns = modelColumns(gameTableModel{})

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) ListFinished(ctx context.Context, q game.Query) ([]game.Game, error) {
	conditions := []qb.Condition{
		qb.Expr("home_score IS NOT NULL AND away_score IS NOT NULL"),
		qb.IsNull("deleted_at"),
	}
	switch {
	case q.Team != "" && q.Opponent != "":
		conditions = append(conditions, qb.Expr(
			"((home_team = ? AND away_team = ?) OR (home_team = ? AND away_team = ?))",
			q.Team, q.Opponent, q.Opponent, q.Team,
		))
	case q.Team != "":
		conditions = append(conditions, qb.Expr("(home_team = ? OR away_team = ?)", q.Team, q.Team))
	}
	if q.FromSeason > 0 {
		conditions = append(conditions, qb.Gte("season", q.FromSeason))
	}
	if q.ToSeason > 0 {
		conditions = append(conditions, qb.Lte("season", q.ToSeason))
	}
	if !q.Before.IsZero() {
		conditions = append(conditions, qb.Lt("game_date", q.Before))
	}

	query, args, err := qb.Select(gameColumns...).From("games").
		Where(conditions...).
		OrderBy("game_date", "game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select finished games query: %w", err)
	}

	return r.selectGames(ctx, "finished games", query, args)
}

func (r *GameRepository) ListBySeason(ctx context.Context, season int) ([]game.Game, error) {
	query, args, err := qb.Select(gameColumns...).From("games").
		Where(qb.Eq("season", season), qb.IsNull("deleted_at")).
		OrderBy("game_date", "game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by season query: %w", err)
	}

	return r.selectGames(ctx, "games by season", query, args)
}

func (r *GameRepository) selectGames(ctx context.Context, label, query string, args []any) ([]game.Game, error) {
	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", label, err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
