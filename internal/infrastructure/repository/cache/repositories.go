// Package cache decorates read repositories with process-local caching.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	basecache "github.com/riskibarqy/gridiron-stats/internal/platform/cache"
)

const teamsKey = "teams"

type teamIndex struct {
	list   []team.Team
	byAbbr map[string]team.Team
}

// TeamRepository serves every team read from one cached List of the wrapped
// repository. Callers get copies of the cached slice.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store[teamIndex]
}

func NewTeamRepository(next team.Repository, ttl time.Duration) *TeamRepository {
	return &TeamRepository{next: next, cache: basecache.NewStore[teamIndex](ttl)}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	index, err := r.index(ctx)
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), index.list...), nil
}

func (r *TeamRepository) GetByAbbr(ctx context.Context, abbr string) (team.Team, bool, error) {
	index, err := r.index(ctx)
	if err != nil {
		return team.Team{}, false, err
	}
	item, ok := index.byAbbr[strings.ToUpper(strings.TrimSpace(abbr))]
	return item, ok, nil
}

// Forget drops the cached team list; the next read reloads it.
func (r *TeamRepository) Forget() {
	r.cache.Forget(teamsKey)
}

func (r *TeamRepository) index(ctx context.Context) (teamIndex, error) {
	return r.cache.GetOrLoad(ctx, teamsKey, func(ctx context.Context) (teamIndex, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return teamIndex{}, err
		}
		index := teamIndex{
			list:   append([]team.Team(nil), items...),
			byAbbr: make(map[string]team.Team, len(items)),
		}
		for _, item := range items {
			index.byAbbr[item.Abbr] = item
		}
		return index, nil
	})
}
