package memory

import (
	"context"

	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
)

type PlayRepository struct{ store *Store }

func NewPlayRepository(store *Store) *PlayRepository {
	return &PlayRepository{store: store}
}

func (r *PlayRepository) ListBySeason(_ context.Context, season int) ([]play.Play, error) {
	return r.filter(func(p play.Play) bool { return p.Season == season }), nil
}

func (r *PlayRepository) ListByTeam(_ context.Context, season int, teamAbbr string) ([]play.Play, error) {
	return r.filter(func(p play.Play) bool {
		return p.Season == season && (p.PossessionTeam == teamAbbr || p.DefenseTeam == teamAbbr)
	}), nil
}

func (r *PlayRepository) filter(keep func(play.Play) bool) []play.Play {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]play.Play, 0)
	for _, item := range sortedValues(r.store.plays) {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
