package game

import (
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/platform/validation"
)

// SeasonType splits a season into preseason, regular season and playoffs.
type SeasonType string

const (
	SeasonTypePre  SeasonType = "PRE"
	SeasonTypeReg  SeasonType = "REG"
	SeasonTypePost SeasonType = "POST"
)

// WeekRange returns the inclusive week bounds for a season type.
func (t SeasonType) WeekRange() (int, int, bool) {
	switch t {
	case SeasonTypePre:
		return 0, 4, true
	case SeasonTypeReg:
		return 1, 18, true
	case SeasonTypePost:
		return 19, 22, true
	}
	return 0, 0, false
}

// Game is one scheduled matchup. Scores stay nil until the game is played.
type Game struct {
	ID          string     `validate:"required,max=20"`
	Season      int        `validate:"gte=1920,lte=2100"`
	SeasonType  SeasonType `validate:"oneof=PRE REG POST"`
	Week        *int       `validate:"omitempty,gte=0,lte=22"`
	Date        time.Time  `validate:"required"`
	KickoffTime string     `validate:"omitempty,len=5"`
	HomeTeam    string     `validate:"required,min=2,max=3,nefield=AwayTeam"`
	AwayTeam    string     `validate:"required,min=2,max=3"`
	HomeScore   *int       `validate:"omitempty,gte=0,lte=100"`
	AwayScore   *int       `validate:"omitempty,gte=0,lte=100"`
	Roof        string     `validate:"omitempty,oneof=dome outdoors closed open retractable"`
	Surface     string     `validate:"max=30"`
	Temperature *int       `validate:"omitempty,gte=-20,lte=120"`
	Wind        *int       `validate:"omitempty,gte=0,lte=50"`
	HomeSpread  *float64   `validate:"omitempty,gte=-30,lte=30"`
	TotalLine   *float64   `validate:"omitempty,gte=20,lte=80"`
	OldGameID   string     `validate:"max=20"`
}

func (g Game) NaturalKey() string {
	return g.ID
}

func (g Game) Validate() error {
	return validation.Struct(g)
}

// Finished reports whether both scores are known.
func (g Game) Finished() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Involves reports whether team played in g.
func (g Game) Involves(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}

// Opponent returns the other side of the matchup for team.
func (g Game) Opponent(team string) string {
	if g.HomeTeam == team {
		return g.AwayTeam
	}
	return g.HomeTeam
}

// PointsFor returns (scored, allowed) from team's point of view. Callers must
// check Finished first.
func (g Game) PointsFor(team string) (int, int) {
	if g.HomeTeam == team {
		return *g.HomeScore, *g.AwayScore
	}
	return *g.AwayScore, *g.HomeScore
}

// Merge overlays the fields g sets on top of existing.
func (g Game) Merge(existing Game) Game {
	out := g
	if out.Week == nil {
		out.Week = existing.Week
	}
	if out.KickoffTime == "" {
		out.KickoffTime = existing.KickoffTime
	}
	if out.HomeScore == nil {
		out.HomeScore = existing.HomeScore
	}
	if out.AwayScore == nil {
		out.AwayScore = existing.AwayScore
	}
	if out.Roof == "" {
		out.Roof = existing.Roof
	}
	if out.Surface == "" {
		out.Surface = existing.Surface
	}
	if out.Temperature == nil {
		out.Temperature = existing.Temperature
	}
	if out.Wind == nil {
		out.Wind = existing.Wind
	}
	if out.HomeSpread == nil {
		out.HomeSpread = existing.HomeSpread
	}
	if out.TotalLine == nil {
		out.TotalLine = existing.TotalLine
	}
	if out.OldGameID == "" {
		out.OldGameID = existing.OldGameID
	}
	return out
}
