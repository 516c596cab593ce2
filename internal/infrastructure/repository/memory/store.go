package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
)

var errTxDone = errors.New("transaction already committed or rolled back")

// Store keeps every entity kind in process memory. It backs tests and the
// dry-run mode of the CLI.
type Store struct {
	mu      sync.RWMutex
	teams   map[string]team.Team
	games   map[string]game.Game
	players map[string]player.Player
	plays   map[string]play.Play
}

func NewStore() *Store {
	return &Store{
		teams:   make(map[string]team.Team),
		games:   make(map[string]game.Game),
		players: make(map[string]player.Player),
		plays:   make(map[string]play.Play),
	}
}

func (s *Store) Acquire(_ context.Context) (ingest.Session, error) {
	return &session{store: s}, nil
}

type session struct {
	store  *Store
	closed bool
}

func (s *session) Begin(_ context.Context) (ingest.Tx, error) {
	if s.closed {
		return nil, errors.New("session closed")
	}
	return &tx{
		store:   s.store,
		teams:   make(map[string]team.Team),
		games:   make(map[string]game.Game),
		players: make(map[string]player.Player),
		plays:   make(map[string]play.Play),
	}, nil
}

func (s *session) NaturalKeys(_ context.Context, kind ingest.Kind) (map[string]struct{}, error) {
	if s.closed {
		return nil, errors.New("session closed")
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	switch kind {
	case ingest.KindTeam:
		return keysOf(s.store.teams), nil
	case ingest.KindGame:
		return keysOf(s.store.games), nil
	case ingest.KindPlayer:
		return keysOf(s.store.players), nil
	case ingest.KindPlay:
		return keysOf(s.store.plays), nil
	}
	return nil, errors.New("unknown entity kind " + string(kind))
}

func (s *session) Close() error {
	s.closed = true
	return nil
}

// tx stages writes and applies them to the store on Commit.
type tx struct {
	store   *Store
	done    bool
	teams   map[string]team.Team
	games   map[string]game.Game
	players map[string]player.Player
	plays   map[string]play.Play
}

func (t *tx) UpsertTeam(_ context.Context, item team.Team) (ingest.Outcome, error) {
	if t.done {
		return 0, errTxDone
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return stage(t.teams, t.store.teams, item.NaturalKey(), item, team.Team.Merge)
}

func (t *tx) UpsertGame(_ context.Context, item game.Game) (ingest.Outcome, error) {
	if t.done {
		return 0, errTxDone
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return stage(t.games, t.store.games, item.NaturalKey(), item, game.Game.Merge)
}

func (t *tx) UpsertPlayer(_ context.Context, item player.Player) (ingest.Outcome, error) {
	if t.done {
		return 0, errTxDone
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return stage(t.players, t.store.players, item.NaturalKey(), item, player.Player.Merge)
}

func (t *tx) UpsertPlay(_ context.Context, item play.Play) (ingest.Outcome, error) {
	if t.done {
		return 0, errTxDone
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return stage(t.plays, t.store.plays, item.NaturalKey(), item, play.Play.Merge)
}

func (t *tx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	apply(t.store.teams, t.teams)
	apply(t.store.games, t.games)
	apply(t.store.players, t.players)
	apply(t.store.plays, t.plays)
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	return nil
}

func stage[T any](pending, stored map[string]T, key string, item T, merge func(T, T) T) (ingest.Outcome, error) {
	if existing, ok := pending[key]; ok {
		pending[key] = merge(item, existing)
		return ingest.OutcomeUpdated, nil
	}
	if existing, ok := stored[key]; ok {
		pending[key] = merge(item, existing)
		return ingest.OutcomeUpdated, nil
	}
	pending[key] = item
	return ingest.OutcomeInserted, nil
}

func apply[T any](dst, src map[string]T) {
	for key, item := range src {
		dst[key] = item
	}
}

func keysOf[T any](items map[string]T) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for key := range items {
		out[key] = struct{}{}
	}
	return out
}

func sortedValues[T any](items map[string]T) []T {
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]T, 0, len(keys))
	for _, key := range keys {
		out = append(out, items[key])
	}
	return out
}
