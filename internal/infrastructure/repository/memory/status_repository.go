package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
)

type StatusRepository struct{ store *Store }

func NewStatusRepository(store *Store) *StatusRepository {
	return &StatusRepository{store: store}
}

func (r *StatusRepository) Count(_ context.Context, kind ingest.Kind) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	switch kind {
	case ingest.KindTeam:
		return int64(len(r.store.teams)), nil
	case ingest.KindGame:
		return int64(len(r.store.games)), nil
	case ingest.KindPlayer:
		return int64(len(r.store.players)), nil
	case ingest.KindPlay:
		return int64(len(r.store.plays)), nil
	}
	return 0, nil
}

func (r *StatusRepository) LatestGame(_ context.Context) (time.Time, int, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest game.Game
	found := false
	for _, item := range r.store.games {
		if !found || item.Date.After(latest.Date) {
			latest = item
			found = true
		}
	}
	return latest.Date, latest.Season, found, nil
}

func (r *StatusRepository) ListSeasons(_ context.Context) ([]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[int]struct{})
	for _, item := range r.store.games {
		seen[item.Season] = struct{}{}
	}
	for _, item := range r.store.plays {
		seen[item.Season] = struct{}{}
	}

	out := make([]int, 0, len(seen))
	for season := range seen {
		out = append(out, season)
	}
	sort.Ints(out)
	return out, nil
}
