package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
)

type GameRepository struct{ store *Store }

func NewGameRepository(store *Store) *GameRepository {
	return &GameRepository{store: store}
}

func (r *GameRepository) ListFinished(_ context.Context, q game.Query) ([]game.Game, error) {
	return r.filter(q.Matches), nil
}

func (r *GameRepository) ListBySeason(_ context.Context, season int) ([]game.Game, error) {
	return r.filter(func(g game.Game) bool { return g.Season == season }), nil
}

func (r *GameRepository) filter(keep func(game.Game) bool) []game.Game {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.store.games {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
