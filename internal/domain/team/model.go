package team

import "github.com/riskibarqy/gridiron-stats/internal/platform/validation"

type Conference string

const (
	ConferenceAFC Conference = "AFC"
	ConferenceNFC Conference = "NFC"
)

type Division string

const (
	DivisionNorth Division = "North"
	DivisionSouth Division = "South"
	DivisionEast  Division = "East"
	DivisionWest  Division = "West"
)

// Team is a franchise keyed by its current abbreviation.
type Team struct {
	Abbr           string     `validate:"required,min=2,max=3,alpha,uppercase"`
	Name           string     `validate:"max=100"`
	Nickname       string     `validate:"max=50"`
	Conference     Conference `validate:"omitempty,oneof=AFC NFC"`
	Division       Division   `validate:"omitempty,oneof=North South East West"`
	PrimaryColor   string     `validate:"omitempty,hexcolor"`
	SecondaryColor string     `validate:"omitempty,hexcolor"`
	LogoESPN       string
	LogoWikipedia  string
	Active         bool
}

func (t Team) NaturalKey() string {
	return t.Abbr
}

func (t Team) Validate() error {
	return validation.Struct(t)
}

// Merge overlays the fields t sets on top of existing.
func (t Team) Merge(existing Team) Team {
	out := existing
	out.Abbr = t.Abbr
	out.Name = pick(t.Name, existing.Name)
	out.Nickname = pick(t.Nickname, existing.Nickname)
	out.Conference = Conference(pick(string(t.Conference), string(existing.Conference)))
	out.Division = Division(pick(string(t.Division), string(existing.Division)))
	out.PrimaryColor = pick(t.PrimaryColor, existing.PrimaryColor)
	out.SecondaryColor = pick(t.SecondaryColor, existing.SecondaryColor)
	out.LogoESPN = pick(t.LogoESPN, existing.LogoESPN)
	out.LogoWikipedia = pick(t.LogoWikipedia, existing.LogoWikipedia)
	out.Active = true
	return out
}

func pick(incoming, existing string) string {
	if incoming != "" {
		return incoming
	}
	return existing
}
