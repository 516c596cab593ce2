package ingest

import (
	"fmt"
	"strings"
	"time"
)

// Kind is one of the four loadable entity kinds.
type Kind string

const (
	KindTeam   Kind = "teams"
	KindGame   Kind = "games"
	KindPlayer Kind = "players"
	KindPlay   Kind = "plays"
)

// DependencyOrder is the order kinds must load in: later kinds reference
// earlier ones by natural key.
var DependencyOrder = []Kind{KindTeam, KindGame, KindPlayer, KindPlay}

func ParseKind(raw string) (Kind, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.TrimSuffix(value, "s") + "s"
	switch Kind(value) {
	case KindTeam, KindGame, KindPlayer, KindPlay:
		return Kind(value), nil
	}
	return "", fmt.Errorf("unknown entity kind %q", raw)
}

// Rank returns the position of k in DependencyOrder.
func (k Kind) Rank() int {
	for i, item := range DependencyOrder {
		if item == k {
			return i
		}
	}
	return len(DependencyOrder)
}

// Record is a validated domain record ready for the loader.
type Record interface {
	NaturalKey() string
	Validate() error
}

// Outcome is what an upsert did to the stored row.
type Outcome int

const (
	OutcomeInserted Outcome = iota + 1
	OutcomeUpdated
)

// LoadResult summarizes one load call for one kind.
type LoadResult struct {
	Kind             Kind      `json:"kind"`
	Season           int       `json:"season,omitempty"`
	Success          bool      `json:"success"`
	RecordsProcessed int       `json:"records_processed"`
	RecordsInserted  int       `json:"records_inserted"`
	RecordsUpdated   int       `json:"records_updated"`
	RecordsSkipped   int       `json:"records_skipped"`
	RecordsRejected  int       `json:"records_rejected"`
	Errors           []string  `json:"errors"`
	DurationSeconds  float64   `json:"duration_seconds"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
}

// FailedResult is the result of a kind whose batch never materialized.
func FailedResult(kind Kind, err error, start time.Time) LoadResult {
	end := time.Now()
	return LoadResult{
		Kind:            kind,
		Success:         false,
		Errors:          []string{err.Error()},
		DurationSeconds: end.Sub(start).Seconds(),
		StartTime:       start,
		EndTime:         end,
	}
}

// LoadStatus is the on-demand coverage report of the store.
type LoadStatus struct {
	Counts           map[Kind]int64 `json:"counts"`
	LatestGameDate   *time.Time     `json:"latest_game_date,omitempty"`
	LatestGameSeason int            `json:"latest_game_season,omitempty"`
	Seasons          []int          `json:"seasons"`
}
