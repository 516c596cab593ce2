package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type LeaderRole string

const (
	RolePasser   LeaderRole = "passer"
	RoleRusher   LeaderRole = "rusher"
	RoleReceiver LeaderRole = "receiver"
)

// LeaderQuery selects one leaderboard. MinVolume applies to attempts,
// carries or targets depending on Role. Limit 0 keeps every qualifier.
type LeaderQuery struct {
	Season    int
	Role      LeaderRole
	MinVolume int
	Limit     int
}

type PassingLine struct {
	Attempts        int     `json:"attempts"`
	Completions     int     `json:"completions"`
	Yards           int     `json:"yards"`
	Touchdowns      int     `json:"touchdowns"`
	Interceptions   int     `json:"interceptions"`
	CompletionRate  float64 `json:"completion_rate"`
	YardsPerAttempt float64 `json:"yards_per_attempt"`
	AvgEPA          float64 `json:"avg_epa"`
	Rating          float64 `json:"passer_rating"`
}

type RushingLine struct {
	Carries       int     `json:"carries"`
	Yards         int     `json:"yards"`
	Touchdowns    int     `json:"touchdowns"`
	YardsPerCarry float64 `json:"yards_per_carry"`
	Longest       int     `json:"longest"`
	Runs10Plus    int     `json:"runs_10_plus"`
	Runs20Plus    int     `json:"runs_20_plus"`
	Fumbles       int     `json:"fumbles"`
	AvgEPA        float64 `json:"avg_epa"`
}

type ReceivingLine struct {
	Targets           int     `json:"targets"`
	Receptions        int     `json:"receptions"`
	CatchRate         float64 `json:"catch_rate"`
	Yards             int     `json:"yards"`
	Touchdowns        int     `json:"touchdowns"`
	YardsPerReception float64 `json:"yards_per_reception"`
	AvgAirYards       float64 `json:"avg_air_yards"`
	AvgYAC            float64 `json:"avg_yac"`
	AvgEPA            float64 `json:"avg_epa"`
}

type LeaderEntry struct {
	Rank       int            `json:"rank"`
	PlayerID   string         `json:"player_id"`
	PlayerName string         `json:"player_name,omitempty"`
	Team       string         `json:"team,omitempty"`
	Volume     int            `json:"volume"`
	Metric     float64        `json:"metric"`
	Passing    *PassingLine   `json:"passing,omitempty"`
	Rushing    *RushingLine   `json:"rushing,omitempty"`
	Receiving  *ReceivingLine `json:"receiving,omitempty"`
}

type LeaderService struct {
	plays   play.Repository
	players player.Repository
	logger  *logging.Logger
}

func NewLeaderService(plays play.Repository, players player.Repository, logger *logging.Logger) *LeaderService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderService{plays: plays, players: players, logger: logger.Named("leaders")}
}

func (s *LeaderService) ComputeLeaders(ctx context.Context, q LeaderQuery) ([]LeaderEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderService.ComputeLeaders",
		attribute.Int("nfl.season", q.Season),
		attribute.String("nfl.leader_role", string(q.Role)),
	)
	defer span.End()

	if q.Season <= 0 {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if q.MinVolume < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("%w: min volume and limit must be >= 0", ErrInvalidInput)
	}

	plays, err := s.plays.ListBySeason(ctx, q.Season)
	if err != nil {
		return nil, fmt.Errorf("list plays: %w", err)
	}

	var entries []LeaderEntry
	switch q.Role {
	case RolePasser:
		entries = passerEntries(plays)
	case RoleRusher:
		entries = rusherEntries(plays)
	case RoleReceiver:
		entries = receiverEntries(plays)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, q.Role)
	}

	qualified := entries[:0]
	for _, entry := range entries {
		if entry.Volume >= q.MinVolume {
			qualified = append(qualified, entry)
		}
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		if qualified[i].Metric != qualified[j].Metric {
			return qualified[i].Metric > qualified[j].Metric
		}
		return qualified[i].PlayerID < qualified[j].PlayerID
	})
	if q.Limit > 0 && len(qualified) > q.Limit {
		qualified = qualified[:q.Limit]
	}

	if err := s.attachPlayers(ctx, qualified); err != nil {
		return nil, err
	}
	for i := range qualified {
		qualified[i].Rank = i + 1
	}

	s.logger.DebugContext(ctx, "leaders computed", "season", q.Season, "role", q.Role, "qualified", len(qualified))
	return qualified, nil
}

func (s *LeaderService) attachPlayers(ctx context.Context, entries []LeaderEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.PlayerID)
	}

	players, err := s.players.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get players: %w", err)
	}
	byID := make(map[string]player.Player, len(players))
	for _, item := range players {
		byID[item.ID] = item
	}
	for i := range entries {
		if item, ok := byID[entries[i].PlayerID]; ok {
			entries[i].PlayerName = item.FullName
			entries[i].Team = item.TeamAbbr
		}
	}
	return nil
}

// PasserRating is the NFL passer rating. Each component is clamped to
// [0, 2.375] before averaging.
func PasserRating(attempts, completions, yards, touchdowns, interceptions int) float64 {
	if attempts <= 0 {
		return 0
	}
	att := float64(attempts)
	a := clamp((float64(completions)/att-0.3)*5, 0, 2.375)
	b := clamp((float64(yards)/att-3)*0.25, 0, 2.375)
	c := clamp(float64(touchdowns)/att*20, 0, 2.375)
	d := clamp(2.375-float64(interceptions)/att*25, 0, 2.375)
	return (a + b + c + d) / 6 * 100
}

// mean is a running average over the samples that were present.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *mean) addEPA(p play.Play) {
	if p.EPA != nil {
		m.add(*p.EPA)
	}
}

func (m mean) value() float64 {
	return ratio(m.sum, float64(m.n))
}

func passerEntries(plays []play.Play) []LeaderEntry {
	type acc struct {
		line PassingLine
		epa  mean
	}
	byPlayer := make(map[string]*acc)
	for _, p := range plays {
		if p.Type != play.TypePass || p.PasserID == "" {
			continue
		}
		a := byPlayer[p.PasserID]
		if a == nil {
			a = &acc{}
			byPlayer[p.PasserID] = a
		}
		a.line.Attempts++
		if p.CompletePass {
			a.line.Completions++
		}
		a.line.Yards += intValue(p.YardsGained)
		if p.PassTouchdown {
			a.line.Touchdowns++
		}
		if p.Interception {
			a.line.Interceptions++
		}
		a.epa.addEPA(p)
	}

	out := make([]LeaderEntry, 0, len(byPlayer))
	for id, a := range byPlayer {
		line := a.line
		att := float64(line.Attempts)
		line.CompletionRate = ratio(float64(line.Completions), att)
		line.YardsPerAttempt = ratio(float64(line.Yards), att)
		line.AvgEPA = a.epa.value()
		line.Rating = PasserRating(line.Attempts, line.Completions, line.Yards, line.Touchdowns, line.Interceptions)
		out = append(out, LeaderEntry{PlayerID: id, Volume: line.Attempts, Metric: line.Rating, Passing: &line})
	}
	return out
}

func rusherEntries(plays []play.Play) []LeaderEntry {
	type acc struct {
		line RushingLine
		epa  mean
		seen bool
	}
	byPlayer := make(map[string]*acc)
	for _, p := range plays {
		if p.Type != play.TypeRun || p.RusherID == "" {
			continue
		}
		a := byPlayer[p.RusherID]
		if a == nil {
			a = &acc{}
			byPlayer[p.RusherID] = a
		}
		yards := intValue(p.YardsGained)
		a.line.Carries++
		a.line.Yards += yards
		if !a.seen || yards > a.line.Longest {
			a.line.Longest = yards
			a.seen = true
		}
		if yards >= 10 {
			a.line.Runs10Plus++
		}
		if yards >= 20 {
			a.line.Runs20Plus++
		}
		if p.RushTouchdown {
			a.line.Touchdowns++
		}
		if p.Fumble {
			a.line.Fumbles++
		}
		a.epa.addEPA(p)
	}

	out := make([]LeaderEntry, 0, len(byPlayer))
	for id, a := range byPlayer {
		line := a.line
		line.YardsPerCarry = ratio(float64(line.Yards), float64(line.Carries))
		line.AvgEPA = a.epa.value()
		out = append(out, LeaderEntry{PlayerID: id, Volume: line.Carries, Metric: float64(line.Yards), Rushing: &line})
	}
	return out
}

func receiverEntries(plays []play.Play) []LeaderEntry {
	type acc struct {
		rec ReceivingLine
		epa mean
		air mean
		yac mean
	}
	byPlayer := make(map[string]*acc)
	for _, p := range plays {
		if p.Type != play.TypePass || p.ReceiverID == "" {
			continue
		}
		a := byPlayer[p.ReceiverID]
		if a == nil {
			a = &acc{}
			byPlayer[p.ReceiverID] = a
		}
		a.rec.Targets++
		if p.AirYards != nil {
			a.air.add(float64(*p.AirYards))
		}
		if p.CompletePass {
			a.rec.Receptions++
			a.rec.Yards += intValue(p.YardsGained)
			if p.PassTouchdown {
				a.rec.Touchdowns++
			}
			if p.YardsAfterCatch != nil {
				a.yac.add(float64(*p.YardsAfterCatch))
			}
		}
		a.epa.addEPA(p)
	}

	out := make([]LeaderEntry, 0, len(byPlayer))
	for id, a := range byPlayer {
		line := a.rec
		line.CatchRate = ratio(float64(line.Receptions), float64(line.Targets))
		line.YardsPerReception = ratio(float64(line.Yards), float64(line.Receptions))
		line.AvgAirYards = a.air.value()
		line.AvgYAC = a.yac.value()
		line.AvgEPA = a.epa.value()
		out = append(out, LeaderEntry{PlayerID: id, Volume: line.Targets, Metric: float64(line.Yards), Receiving: &line})
	}
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
