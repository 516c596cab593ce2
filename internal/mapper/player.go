package mapper

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
)

var (
	playerTeamColumns     = []string{"team", "team_roster", "latest_team", "team_player"}
	playerPositionColumns = []string{"position", "position_roster", "position_player", "position_x", "position_y", "ngs_position"}
	playerJerseyColumns   = []string{"jersey_number", "jersey_number_roster", "jersey_number_player", "jersey_number_x", "jersey_number_y"}
)

var positionAliases = map[string]string{
	"HB":  "RB",
	"OG":  "G",
	"OT":  "T",
	"NT":  "DT",
	"ILB": "LB",
	"OLB": "LB",
	"MLB": "LB",
	"FS":  "S",
	"SS":  "S",
}

var playerStatuses = map[string]player.Status{
	"act":                player.StatusActive,
	"active":             player.StatusActive,
	"ina":                player.StatusInjured,
	"injured":            player.StatusInjured,
	"res":                player.StatusRetired,
	"retired":            player.StatusRetired,
	"non":                player.StatusPracticeSquad,
	"dev":                player.StatusPracticeSquad,
	"practice_squad":     player.StatusPracticeSquad,
	"practice_squad_dev": player.StatusPracticeSquad,
	"udf":                player.StatusSuspended,
	"sus":                player.StatusSuspended,
	"suspended":          player.StatusSuspended,
}

func mapPlayer(f *fields, currentYear int) (player.Player, error) {
	id, ok := f.str("gsis_id")
	if !ok {
		return player.Player{}, missing("gsis_id")
	}
	name, ok := f.str("display_name")
	if !ok {
		return player.Player{}, missing("display_name")
	}

	out := player.Player{
		ID:           id,
		FullName:     name,
		FirstName:    f.text("first_name", 50),
		LastName:     f.text("last_name", 50),
		Position:     f.position(),
		TeamAbbr:     f.playerTeam(),
		JerseyNumber: f.firstIntIn(playerJerseyColumns, 0, 99),
		HeightInches: f.height("height"),
		WeightPounds: f.intIn("weight", 150, 400),
		Age:          f.intIn("age", 18, 50),
		DraftYear:    f.intIn("draft_year", 1920, currentYear),
		DraftRound:   f.intIn("draft_round", 1, 10),
		DraftPick:    f.intIn("draft_pick", 1, 300),
		DraftTeam:    f.draftTeam(),
		HeadshotURL:  f.url("headshot"),
		Status:       f.status(),
	}

	if _, _, ok := f.row.First("rookie_season", "rookie_year"); ok {
		out.RookieYear = f.firstIntIn([]string{"rookie_season", "rookie_year"}, 1920, currentYear)
	}
	if _, _, ok := f.row.First("years_of_experience", "years_exp"); ok {
		out.YearsExperience = f.firstIntIn([]string{"years_of_experience", "years_exp"}, 0, 30)
	}
	if column, _, ok := f.row.First("college_name", "college"); ok {
		out.College = f.text(column, 100)
	}
	if out.HeadshotURL == "" {
		out.HeadshotURL = f.url("headshot_url")
	}

	return out, nil
}

func (f *fields) playerTeam() string {
	for _, column := range playerTeamColumns {
		raw, ok := f.str(column)
		if !ok {
			continue
		}
		if abbr, ok := team.Canonical(raw); ok {
			return abbr
		}
		f.drop(column)
	}
	return ""
}

func (f *fields) position() string {
	column, raw, ok := f.row.First(playerPositionColumns...)
	if !ok {
		return ""
	}
	value := strings.ToUpper(raw)
	if alias, ok := positionAliases[value]; ok {
		value = alias
	}
	if len(value) > 10 {
		f.drop(column)
		return ""
	}
	return value
}

func (f *fields) draftTeam() string {
	raw, ok := f.str("draft_team")
	if !ok {
		return ""
	}
	value := strings.ToUpper(raw)
	if len(value) > 3 {
		f.drop("draft_team")
		return ""
	}
	return value
}

func (f *fields) status() player.Status {
	raw, ok := f.str("status")
	if !ok {
		return ""
	}
	status, ok := playerStatuses[strings.ToLower(raw)]
	if !ok {
		f.drop("status")
		return ""
	}
	return status
}

func (f *fields) height(column string) *int {
	raw, ok := f.str(column)
	if !ok {
		return nil
	}
	inches, ok := parseHeight(raw)
	if !ok || inches < 60 || inches > 84 {
		f.drop(column)
		return nil
	}
	return &inches
}

// parseHeight accepts feet-inches ("6-2", 6'2") or a bare inch count.
func parseHeight(raw string) (int, bool) {
	value := strings.ReplaceAll(raw, `"`, "")
	value = strings.TrimSpace(strings.ReplaceAll(value, "'", "-"))

	if strings.Contains(value, "-") {
		parts := strings.Split(value, "-")
		if len(parts) != 2 {
			return 0, false
		}
		feet, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || feet < 0 || feet > 8 {
			return 0, false
		}
		inches, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || inches < 0 || inches > 11 {
			return 0, false
		}
		return feet*12 + inches, true
	}

	return parseInt(value)
}
