package play

import "github.com/riskibarqy/gridiron-stats/internal/platform/validation"

// Type classifies a snap.
type Type string

const (
	TypePass       Type = "pass"
	TypeRun        Type = "run"
	TypePunt       Type = "punt"
	TypeFieldGoal  Type = "field_goal"
	TypeExtraPoint Type = "extra_point"
	TypeKickoff    Type = "kickoff"
	TypeQBKneel    Type = "qb_kneel"
	TypeQBSpike    Type = "qb_spike"
	TypeTimeout    Type = "timeout"
	TypeEndPeriod  Type = "end_period"
	TypeNoPlay     Type = "no_play"
)

var knownTypes = map[Type]struct{}{
	TypePass:       {},
	TypeRun:        {},
	TypePunt:       {},
	TypeFieldGoal:  {},
	TypeExtraPoint: {},
	TypeKickoff:    {},
	TypeQBKneel:    {},
	TypeQBSpike:    {},
	TypeTimeout:    {},
	TypeEndPeriod:  {},
	TypeNoPlay:     {},
}

func (t Type) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// Scrimmage reports whether t is a pass or run.
func (t Type) Scrimmage() bool {
	return t == TypePass || t == TypeRun
}

// Play is one snap of play-by-play, keyed by (GameID, PlayID).
type Play struct {
	GameID               string `validate:"required,max=20"`
	PlayID               string `validate:"required,max=30"`
	Season               int    `validate:"gte=1920,lte=2100"`
	Week                 *int   `validate:"omitempty,gte=1,lte=22"`
	PossessionTeam       string `validate:"omitempty,min=2,max=3"`
	DefenseTeam          string `validate:"omitempty,min=2,max=3"`
	Quarter              *int   `validate:"omitempty,gte=1,lte=5"`
	GameSecondsRemaining *int   `validate:"omitempty,gte=0,lte=3600"`
	HalfSecondsRemaining *int   `validate:"omitempty,gte=0,lte=1800"`
	GameHalf             string `validate:"omitempty,oneof=half1 half2 overtime"`
	YardLine100          *int   `validate:"omitempty,gte=1,lte=99"`
	YardsToGo            *int   `validate:"omitempty,gte=1,lte=99"`
	Down                 *int   `validate:"omitempty,gte=1,lte=4"`
	Type                 Type   `validate:"required,max=20"`
	Description          string
	YardsGained          *int     `validate:"omitempty,gte=-99,lte=99"`
	EP                   *float64 `validate:"omitempty,gte=-10,lte=10"`
	EPA                  *float64 `validate:"omitempty,gte=-15,lte=15"`
	WP                   *float64 `validate:"omitempty,gte=0,lte=1"`
	WPA                  *float64 `validate:"omitempty,gte=-1,lte=1"`
	AirYards             *int     `validate:"omitempty,gte=-20,lte=80"`
	YardsAfterCatch      *int     `validate:"omitempty,gte=0,lte=99"`
	PasserID             string   `validate:"max=20"`
	ReceiverID           string   `validate:"max=20"`
	RusherID             string   `validate:"max=20"`
	Touchdown            bool
	PassTouchdown        bool
	RushTouchdown        bool
	Interception         bool
	Fumble               bool
	Safety               bool
	Penalty              bool
	FirstDown            bool
	CompletePass         bool
	FieldGoalMade        bool
}

func (p Play) NaturalKey() string {
	return p.GameID + "/" + p.PlayID
}

func (p Play) Validate() error {
	return validation.Struct(p)
}

// Turnover reports an interception or fumble on the snap.
func (p Play) Turnover() bool {
	return p.Interception || p.Fumble
}

// Merge overlays the fields p sets on top of existing. Outcome flags always
// come from the newer extraction.
func (p Play) Merge(existing Play) Play {
	out := p
	out.Week = pickInt(p.Week, existing.Week)
	out.PossessionTeam = pickString(p.PossessionTeam, existing.PossessionTeam)
	out.DefenseTeam = pickString(p.DefenseTeam, existing.DefenseTeam)
	out.Quarter = pickInt(p.Quarter, existing.Quarter)
	out.GameSecondsRemaining = pickInt(p.GameSecondsRemaining, existing.GameSecondsRemaining)
	out.HalfSecondsRemaining = pickInt(p.HalfSecondsRemaining, existing.HalfSecondsRemaining)
	out.GameHalf = pickString(p.GameHalf, existing.GameHalf)
	out.YardLine100 = pickInt(p.YardLine100, existing.YardLine100)
	out.YardsToGo = pickInt(p.YardsToGo, existing.YardsToGo)
	out.Down = pickInt(p.Down, existing.Down)
	out.Description = pickString(p.Description, existing.Description)
	out.YardsGained = pickInt(p.YardsGained, existing.YardsGained)
	out.EP = pickFloat(p.EP, existing.EP)
	out.EPA = pickFloat(p.EPA, existing.EPA)
	out.WP = pickFloat(p.WP, existing.WP)
	out.WPA = pickFloat(p.WPA, existing.WPA)
	out.AirYards = pickInt(p.AirYards, existing.AirYards)
	out.YardsAfterCatch = pickInt(p.YardsAfterCatch, existing.YardsAfterCatch)
	out.PasserID = pickString(p.PasserID, existing.PasserID)
	out.ReceiverID = pickString(p.ReceiverID, existing.ReceiverID)
	out.RusherID = pickString(p.RusherID, existing.RusherID)
	return out
}

func pickString(incoming, existing string) string {
	if incoming != "" {
		return incoming
	}
	return existing
}

func pickInt(incoming, existing *int) *int {
	if incoming != nil {
		return incoming
	}
	return existing
}

func pickFloat(incoming, existing *float64) *float64 {
	if incoming != nil {
		return incoming
	}
	return existing
}
