package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
)

var seasonTypes = map[string]game.SeasonType{
	"PRE":  game.SeasonTypePre,
	"REG":  game.SeasonTypeReg,
	"POST": game.SeasonTypePost,
	"WC":   game.SeasonTypePost,
	"DIV":  game.SeasonTypePost,
	"CON":  game.SeasonTypePost,
	"SB":   game.SeasonTypePost,
}

var roofTypes = map[string]struct{}{
	"dome":        {},
	"outdoors":    {},
	"closed":      {},
	"open":        {},
	"retractable": {},
}

func mapGame(f *fields) (game.Game, error) {
	id, ok := f.str("game_id")
	if !ok {
		return game.Game{}, missing("game_id")
	}

	seasonRaw, ok := f.str("season")
	if !ok {
		return game.Game{}, missing("season")
	}
	season, ok := parseInt(seasonRaw)
	if !ok {
		return game.Game{}, fmt.Errorf("season %q is not a number", seasonRaw)
	}

	typeRaw, ok := f.str("game_type")
	if !ok {
		return game.Game{}, missing("game_type")
	}
	seasonType, ok := seasonTypes[strings.ToUpper(typeRaw)]
	if !ok {
		return game.Game{}, fmt.Errorf("unknown game_type %q", typeRaw)
	}

	dayRaw, ok := f.str("gameday")
	if !ok {
		return game.Game{}, missing("gameday")
	}
	day, err := time.Parse(time.DateOnly, dayRaw)
	if err != nil {
		return game.Game{}, fmt.Errorf("gameday %q is not YYYY-MM-DD", dayRaw)
	}

	home, err := requiredTeam(f, "home_team")
	if err != nil {
		return game.Game{}, err
	}
	away, err := requiredTeam(f, "away_team")
	if err != nil {
		return game.Game{}, err
	}
	if home == away {
		return game.Game{}, fmt.Errorf("home_team and away_team are both %s", home)
	}

	lo, hi, _ := seasonType.WeekRange()
	out := game.Game{
		ID:          id,
		Season:      season,
		SeasonType:  seasonType,
		Week:        f.intIn("week", lo, hi),
		Date:        day,
		KickoffTime: f.kickoff("gametime"),
		HomeTeam:    home,
		AwayTeam:    away,
		HomeScore:   f.intIn("home_score", 0, 100),
		AwayScore:   f.intIn("away_score", 0, 100),
		Roof:        f.roof("roof"),
		Surface:     strings.ToLower(f.text("surface", 30)),
		Temperature: f.intIn("temp", -20, 120),
		Wind:        f.intIn("wind", 0, 50),
		HomeSpread:  f.floatIn("spread_line", -30, 30),
		TotalLine:   f.floatIn("total_line", 20, 80),
		OldGameID:   f.ref("old_game_id", 20),
	}
	return out, nil
}

func requiredTeam(f *fields, column string) (string, error) {
	raw, ok := f.str(column)
	if !ok {
		return "", missing(column)
	}
	abbr, ok := team.Canonical(raw)
	if !ok {
		return "", fmt.Errorf("%s %q is not a team abbreviation", column, raw)
	}
	return abbr, nil
}

func (f *fields) kickoff(column string) string {
	raw, ok := f.str(column)
	if !ok {
		return ""
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		f.drop(column)
		return ""
	}
	return t.Format("15:04")
}

func (f *fields) roof(column string) string {
	raw, ok := f.str(column)
	if !ok {
		return ""
	}
	value := strings.ToLower(raw)
	if _, ok := roofTypes[value]; !ok {
		f.drop(column)
		return ""
	}
	return value
}
