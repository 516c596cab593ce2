package player

import "github.com/riskibarqy/gridiron-stats/internal/platform/validation"

// Status is the roster status of a player.
type Status string

const (
	StatusActive        Status = "active"
	StatusInjured       Status = "injured"
	StatusRetired       Status = "retired"
	StatusSuspended     Status = "suspended"
	StatusPracticeSquad Status = "practice_squad"
)

// Player is an athlete keyed by the provider's opaque player id.
type Player struct {
	ID              string `validate:"required,max=20"`
	FullName        string `validate:"required,max=100"`
	FirstName       string `validate:"max=50"`
	LastName        string `validate:"max=50"`
	Position        string `validate:"omitempty,max=10,uppercase"`
	TeamAbbr        string `validate:"omitempty,min=2,max=3,uppercase"`
	JerseyNumber    *int   `validate:"omitempty,gte=0,lte=99"`
	HeightInches    *int   `validate:"omitempty,gte=60,lte=84"`
	WeightPounds    *int   `validate:"omitempty,gte=150,lte=400"`
	Age             *int   `validate:"omitempty,gte=18,lte=50"`
	RookieYear      *int   `validate:"omitempty,gte=1920"`
	YearsExperience *int   `validate:"omitempty,gte=0,lte=30"`
	College         string `validate:"max=100"`
	DraftYear       *int   `validate:"omitempty,gte=1920"`
	DraftRound      *int   `validate:"omitempty,gte=1,lte=10"`
	DraftPick       *int   `validate:"omitempty,gte=1,lte=300"`
	DraftTeam       string `validate:"omitempty,max=3"`
	HeadshotURL     string `validate:"omitempty,startswith=http"`
	Status          Status `validate:"omitempty,oneof=active injured retired suspended practice_squad"`
}

// Placeholder is the minimal record stored for a player a play references
// before any roster row for them has loaded. A roster load fills in the rest.
func Placeholder(id string) Player {
	return Player{ID: id, FullName: id}
}

func (p Player) NaturalKey() string {
	return p.ID
}

func (p Player) Validate() error {
	return validation.Struct(p)
}

// Merge overlays the fields p sets on top of existing.
func (p Player) Merge(existing Player) Player {
	out := existing
	out.ID = p.ID
	out.FullName = pickString(p.FullName, existing.FullName)
	out.FirstName = pickString(p.FirstName, existing.FirstName)
	out.LastName = pickString(p.LastName, existing.LastName)
	out.Position = pickString(p.Position, existing.Position)
	out.TeamAbbr = pickString(p.TeamAbbr, existing.TeamAbbr)
	out.JerseyNumber = pickInt(p.JerseyNumber, existing.JerseyNumber)
	out.HeightInches = pickInt(p.HeightInches, existing.HeightInches)
	out.WeightPounds = pickInt(p.WeightPounds, existing.WeightPounds)
	out.Age = pickInt(p.Age, existing.Age)
	out.RookieYear = pickInt(p.RookieYear, existing.RookieYear)
	out.YearsExperience = pickInt(p.YearsExperience, existing.YearsExperience)
	out.College = pickString(p.College, existing.College)
	out.DraftYear = pickInt(p.DraftYear, existing.DraftYear)
	out.DraftRound = pickInt(p.DraftRound, existing.DraftRound)
	out.DraftPick = pickInt(p.DraftPick, existing.DraftPick)
	out.DraftTeam = pickString(p.DraftTeam, existing.DraftTeam)
	out.HeadshotURL = pickString(p.HeadshotURL, existing.HeadshotURL)
	out.Status = Status(pickString(string(p.Status), string(existing.Status)))
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
