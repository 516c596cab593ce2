package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// PlayEfficiency summarizes pass and run snaps from one side of the ball.
type PlayEfficiency struct {
	Plays          int     `json:"plays"`
	Yards          int     `json:"yards"`
	YardsPerPlay   float64 `json:"yards_per_play"`
	FirstDowns     int     `json:"first_downs"`
	FirstDownRate  float64 `json:"first_down_rate"`
	SuccessRate    float64 `json:"success_rate"`
	ExplosivePlays int     `json:"explosive_plays"`
	ExplosiveRate  float64 `json:"explosive_rate"`
	PassPlays      int     `json:"pass_plays"`
	RunPlays       int     `json:"run_plays"`
	EPAPerPlay     float64 `json:"epa_per_play"`
}

type ConversionBucket struct {
	Attempts    int     `json:"attempts"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
}

type ThirdDownEfficiency struct {
	ConversionBucket
	AvgYardsToGo float64          `json:"avg_yards_to_go"`
	Short        ConversionBucket `json:"short"`
	Medium       ConversionBucket `json:"medium"`
	Long         ConversionBucket `json:"long"`
}

type RedZoneEfficiency struct {
	Trips         int     `json:"trips"`
	Touchdowns    int     `json:"touchdowns"`
	FieldGoals    int     `json:"field_goals"`
	TouchdownRate float64 `json:"touchdown_rate"`
	FieldGoalRate float64 `json:"field_goal_rate"`
	SuccessRate   float64 `json:"success_rate"`
}

type TurnoverEfficiency struct {
	Giveaways           int `json:"giveaways"`
	Takeaways           int `json:"takeaways"`
	Differential        int `json:"differential"`
	InterceptionsThrown int `json:"interceptions_thrown"`
	InterceptionsCaught int `json:"interceptions_caught"`
	FumblesLost         int `json:"fumbles_lost"`
	FumblesRecovered    int `json:"fumbles_recovered"`
}

type ScoringEfficiency struct {
	Games                int     `json:"games"`
	PointsPerGame        float64 `json:"points_per_game"`
	PointsAllowedPerGame float64 `json:"points_allowed_per_game"`
	PointDifferential    float64 `json:"point_differential"`
}

// TeamEfficiency is the per-season efficiency profile of one team. Rates are
// fractions in [0, 1].
type TeamEfficiency struct {
	Team             string              `json:"team"`
	TeamName         string              `json:"team_name,omitempty"`
	Season           int                 `json:"season"`
	Offense          PlayEfficiency      `json:"offense"`
	Defense          PlayEfficiency      `json:"defense"`
	ThirdDownOffense ThirdDownEfficiency `json:"third_down_offense"`
	ThirdDownDefense ThirdDownEfficiency `json:"third_down_defense"`
	RedZoneOffense   RedZoneEfficiency   `json:"red_zone_offense"`
	RedZoneDefense   RedZoneEfficiency   `json:"red_zone_defense"`
	Turnovers        TurnoverEfficiency  `json:"turnovers"`
	Scoring          ScoringEfficiency   `json:"scoring"`
}

type EfficiencyService struct {
	plays   play.Repository
	games   game.Repository
	teams   team.Repository
	workers int
	logger  *logging.Logger
}

func NewEfficiencyService(plays play.Repository, games game.Repository, teams team.Repository, workers int, logger *logging.Logger) *EfficiencyService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &EfficiencyService{
		plays:   plays,
		games:   games,
		teams:   teams,
		workers: workers,
		logger:  logger.Named("efficiency"),
	}
}

func (s *EfficiencyService) ComputeTeamEfficiency(ctx context.Context, season int, teamAbbr string) (TeamEfficiency, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EfficiencyService.ComputeTeamEfficiency",
		attribute.Int("nfl.season", season),
		attribute.String("nfl.team", teamAbbr),
	)
	defer span.End()

	teamAbbr = strings.ToUpper(strings.TrimSpace(teamAbbr))
	if season <= 0 || teamAbbr == "" {
		return TeamEfficiency{}, fmt.Errorf("%w: season and team are required", ErrInvalidInput)
	}

	item, exists, err := s.teams.GetByAbbr(ctx, teamAbbr)
	if err != nil {
		return TeamEfficiency{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return TeamEfficiency{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamAbbr)
	}

	out, err := s.compute(ctx, season, teamAbbr)
	if err != nil {
		return TeamEfficiency{}, err
	}
	out.TeamName = item.Name
	return out, nil
}

// ComputeLeagueEfficiency profiles every stored team, ordered by offensive
// EPA per play.
func (s *EfficiencyService) ComputeLeagueEfficiency(ctx context.Context, season int) ([]TeamEfficiency, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EfficiencyService.ComputeLeagueEfficiency", attribute.Int("nfl.season", season))
	defer span.End()

	if season <= 0 {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		return []TeamEfficiency{}, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(teams)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		workers  sync.WaitGroup
		out      = make([]TeamEfficiency, 0, len(teams))
		firstErr error
	)
	for _, item := range teams {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row, err := s.compute(ctx, season, item.Abbr)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("team %s: %w", item.Abbr, err)
				}
				return
			}
			row.TeamName = item.Name
			out = append(out, row)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Offense.EPAPerPlay != out[j].Offense.EPAPerPlay {
			return out[i].Offense.EPAPerPlay > out[j].Offense.EPAPerPlay
		}
		return out[i].Team < out[j].Team
	})
	return out, nil
}

func (s *EfficiencyService) compute(ctx context.Context, season int, teamAbbr string) (TeamEfficiency, error) {
	plays, err := s.plays.ListByTeam(ctx, season, teamAbbr)
	if err != nil {
		return TeamEfficiency{}, fmt.Errorf("list plays: %w", err)
	}
	games, err := s.games.ListFinished(ctx, game.Query{Team: teamAbbr, FromSeason: season, ToSeason: season})
	if err != nil {
		return TeamEfficiency{}, fmt.Errorf("list finished games: %w", err)
	}

	offense := make([]play.Play, 0, len(plays)/2)
	defense := make([]play.Play, 0, len(plays)/2)
	for _, p := range plays {
		switch teamAbbr {
		case p.PossessionTeam:
			offense = append(offense, p)
		case p.DefenseTeam:
			defense = append(defense, p)
		}
	}

	return TeamEfficiency{
		Team:             teamAbbr,
		Season:           season,
		Offense:          playEfficiency(offense),
		Defense:          playEfficiency(defense),
		ThirdDownOffense: thirdDownEfficiency(offense),
		ThirdDownDefense: thirdDownEfficiency(defense),
		RedZoneOffense:   redZoneEfficiency(offense),
		RedZoneDefense:   redZoneEfficiency(defense),
		Turnovers:        turnoverEfficiency(offense, defense),
		Scoring:          scoringEfficiency(games, teamAbbr),
	}, nil
}

// playEfficiency covers pass and run snaps with a known yardage.
func playEfficiency(plays []play.Play) PlayEfficiency {
	var out PlayEfficiency
	var epa mean
	successes := 0
	for _, p := range plays {
		if !p.Type.Scrimmage() || p.YardsGained == nil {
			continue
		}
		yards := *p.YardsGained
		out.Plays++
		out.Yards += yards
		if p.Type == play.TypePass {
			out.PassPlays++
			if yards >= 20 {
				out.ExplosivePlays++
			}
		} else {
			out.RunPlays++
			if yards >= 15 {
				out.ExplosivePlays++
			}
		}
		if p.FirstDown {
			out.FirstDowns++
		}
		if p.EPA != nil && *p.EPA > 0 {
			successes++
		}
		epa.addEPA(p)
	}

	n := float64(out.Plays)
	out.YardsPerPlay = ratio(float64(out.Yards), n)
	out.FirstDownRate = ratio(float64(out.FirstDowns), n)
	out.SuccessRate = ratio(float64(successes), n)
	out.ExplosiveRate = ratio(float64(out.ExplosivePlays), n)
	out.EPAPerPlay = epa.value()
	return out
}

func thirdDownEfficiency(plays []play.Play) ThirdDownEfficiency {
	var out ThirdDownEfficiency
	var toGo mean
	for _, p := range plays {
		if !p.Type.Scrimmage() || p.Down == nil || *p.Down != 3 {
			continue
		}
		converted := p.FirstDown || p.Touchdown
		out.ConversionBucket.record(converted)
		if p.YardsToGo == nil {
			continue
		}
		distance := *p.YardsToGo
		toGo.add(float64(distance))
		switch {
		case distance <= 3:
			out.Short.record(converted)
		case distance <= 7:
			out.Medium.record(converted)
		default:
			out.Long.record(converted)
		}
	}

	out.AvgYardsToGo = toGo.value()
	out.ConversionBucket.finish()
	out.Short.finish()
	out.Medium.finish()
	out.Long.finish()
	return out
}

func (b *ConversionBucket) record(converted bool) {
	b.Attempts++
	if converted {
		b.Conversions++
	}
}

func (b *ConversionBucket) finish() {
	b.Rate = ratio(float64(b.Conversions), float64(b.Attempts))
}

// redZoneEfficiency counts a trip per first-down snap inside the 20.
func redZoneEfficiency(plays []play.Play) RedZoneEfficiency {
	var out RedZoneEfficiency
	for _, p := range plays {
		if p.YardLine100 == nil || *p.YardLine100 > 20 {
			continue
		}
		if !p.Type.Scrimmage() && p.Type != play.TypeFieldGoal {
			continue
		}
		if p.Down != nil && *p.Down == 1 {
			out.Trips++
		}
		if p.Touchdown {
			out.Touchdowns++
		}
		if p.Type == play.TypeFieldGoal && p.FieldGoalMade {
			out.FieldGoals++
		}
	}

	trips := float64(out.Trips)
	out.TouchdownRate = ratio(float64(out.Touchdowns), trips)
	out.FieldGoalRate = ratio(float64(out.FieldGoals), trips)
	out.SuccessRate = ratio(float64(out.Touchdowns+out.FieldGoals), trips)
	return out
}

func turnoverEfficiency(offense, defense []play.Play) TurnoverEfficiency {
	var out TurnoverEfficiency
	for _, p := range offense {
		if p.Interception {
			out.InterceptionsThrown++
		}
		if p.Fumble {
			out.FumblesLost++
		}
	}
	for _, p := range defense {
		if p.Interception {
			out.InterceptionsCaught++
		}
		if p.Fumble {
			out.FumblesRecovered++
		}
	}
	out.Giveaways = out.InterceptionsThrown + out.FumblesLost
	out.Takeaways = out.InterceptionsCaught + out.FumblesRecovered
	out.Differential = out.Takeaways - out.Giveaways
	return out
}

func scoringEfficiency(games []game.Game, teamAbbr string) ScoringEfficiency {
	var out ScoringEfficiency
	var scored, allowed int
	for _, g := range games {
		if !g.Finished() || !g.Involves(teamAbbr) {
			continue
		}
		pf, pa := g.PointsFor(teamAbbr)
		scored += pf
		allowed += pa
		out.Games++
	}
	n := float64(out.Games)
	out.PointsPerGame = ratio(float64(scored), n)
	out.PointsAllowedPerGame = ratio(float64(allowed), n)
	out.PointDifferential = out.PointsPerGame - out.PointsAllowedPerGame
	return out
}
