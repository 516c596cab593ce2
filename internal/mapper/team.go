package mapper

import (
	"regexp"

	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func mapTeam(f *fields) (team.Team, error) {
	raw, ok := f.str("team_abbr")
	if !ok {
		return team.Team{}, missing("team_abbr")
	}
	abbr, ok := team.Canonical(raw)
	if !ok {
		return team.Team{}, missing("team_abbr")
	}

	out := team.Team{
		Abbr:          abbr,
		Name:          f.text("team_name", 100),
		Nickname:      f.text("team_nick", 50),
		LogoESPN:      f.url("team_logo_espn"),
		LogoWikipedia: f.url("team_logo_wikipedia"),
		Active:        true,
	}
	out.PrimaryColor = f.color("team_color")
	out.SecondaryColor = f.color("team_color2")

	if alignment, ok := team.Lookup(abbr); ok {
		out.Conference = alignment.Conference
		out.Division = alignment.Division
		return out, nil
	}
	if value, ok := f.str("team_conf"); ok {
		if conf, ok := team.ParseConference(value); ok {
			out.Conference = conf
		} else {
			f.drop("team_conf")
		}
	}
	if value, ok := f.str("team_division"); ok {
		if div, ok := team.ParseDivision(value); ok {
			out.Division = div
		} else {
			f.drop("team_division")
		}
	}
	return out, nil
}

func (f *fields) color(column string) string {
	value, ok := f.str(column)
	if !ok {
		return ""
	}
	if !hexColorPattern.MatchString(value) {
		f.drop(column)
		return ""
	}
	return value
}
