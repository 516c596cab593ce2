package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
)

var playTypeAliases = map[string]play.Type{
	"rushing":       play.TypeRun,
	"running":       play.TypeRun,
	"passing":       play.TypePass,
	"field goal":    play.TypeFieldGoal,
	"fg":            play.TypeFieldGoal,
	"extra point":   play.TypeExtraPoint,
	"pat":           play.TypeExtraPoint,
	"qb kneel":      play.TypeQBKneel,
	"qb spike":      play.TypeQBSpike,
	"end of period": play.TypeEndPeriod,
	"end period":    play.TypeEndPeriod,
	"no play":       play.TypeNoPlay,
}

// playTypeFlags is the derivation order for rows without a play_type.
var playTypeFlags = []struct {
	column string
	typ    play.Type
}{
	{"pass_attempt", play.TypePass},
	{"rush_attempt", play.TypeRun},
	{"punt_attempt", play.TypePunt},
	{"field_goal_attempt", play.TypeFieldGoal},
	{"extra_point_attempt", play.TypeExtraPoint},
	{"kickoff_attempt", play.TypeKickoff},
}

var gameHalves = map[string]struct{}{
	"half1":    {},
	"half2":    {},
	"overtime": {},
}

func mapPlay(f *fields) (play.Play, error) {
	playRaw, ok := f.str("play_id")
	if !ok {
		return play.Play{}, missing("play_id")
	}
	gameID, ok := f.str("game_id")
	if !ok {
		return play.Play{}, missing("game_id")
	}
	seasonRaw, ok := f.str("season")
	if !ok {
		return play.Play{}, missing("season")
	}
	season, ok := parseInt(seasonRaw)
	if !ok {
		return play.Play{}, fmt.Errorf("season %q is not a number", seasonRaw)
	}

	out := play.Play{
		GameID:               gameID,
		PlayID:               normalizePlayID(playRaw),
		Season:               season,
		Week:                 f.intIn("week", 1, 22),
		PossessionTeam:       f.teamRef("posteam"),
		DefenseTeam:          f.teamRef("defteam"),
		Quarter:              f.intIn("qtr", 1, 5),
		GameSecondsRemaining: f.intIn("game_seconds_remaining", 0, 3600),
		HalfSecondsRemaining: f.intIn("half_seconds_remaining", 0, 1800),
		GameHalf:             f.gameHalf("game_half"),
		YardLine100:          f.intIn("yardline_100", 1, 99),
		YardsToGo:            f.intIn("ydstogo", 1, 99),
		Down:                 f.intIn("down", 1, 4),
		Type:                 f.playType(),
		YardsGained:          f.intIn("yards_gained", -99, 99),
		EP:                   f.floatIn("ep", -10, 10),
		EPA:                  f.floatIn("epa", -15, 15),
		WP:                   f.floatIn("wp", 0, 1),
		WPA:                  f.floatIn("wpa", -1, 1),
		AirYards:             f.intIn("air_yards", -20, 80),
		YardsAfterCatch:      f.intIn("yards_after_catch", 0, 99),
		PasserID:             f.ref("passer_player_id", 20),
		ReceiverID:           f.ref("receiver_player_id", 20),
		RusherID:             f.ref("rusher_player_id", 20),
		Touchdown:            f.flag("touchdown"),
		PassTouchdown:        f.flag("pass_touchdown"),
		RushTouchdown:        f.flag("rush_touchdown"),
		Interception:         f.flag("interception"),
		Fumble:               f.flag("fumble"),
		Safety:               f.flag("safety"),
		Penalty:              f.flag("penalty"),
		FirstDown:            f.flag("first_down"),
		CompletePass:         f.flag("complete_pass"),
		FieldGoalMade:        f.fieldGoalMade("field_goal_result"),
	}
	if desc, ok := f.str("desc"); ok {
		out.Description = desc
	}
	return out, nil
}

// normalizePlayID turns "55.0" into "55" so re-extracted files key alike.
func normalizePlayID(raw string) string {
	if v, ok := parseInt(raw); ok {
		return strconv.Itoa(v)
	}
	return raw
}

func (f *fields) playType() play.Type {
	if raw, ok := f.str("play_type"); ok {
		value := strings.ToLower(raw)
		if typ, ok := playTypeAliases[value]; ok {
			return typ
		}
		if typ := play.Type(strings.ReplaceAll(value, " ", "_")); typ.Known() {
			return typ
		}
		f.drop("play_type")
	}

	for _, candidate := range playTypeFlags {
		if raw, ok := f.str(candidate.column); ok {
			if set, _ := parseBool(raw); set {
				return candidate.typ
			}
		}
	}
	return play.TypeNoPlay
}

func (f *fields) gameHalf(column string) string {
	raw, ok := f.str(column)
	if !ok {
		return ""
	}
	value := strings.ToLower(raw)
	if _, ok := gameHalves[value]; !ok {
		f.drop(column)
		return ""
	}
	return value
}

// fieldGoalMade reads nflverse's made/missed/blocked result. Unknown values
// are dropped and read as a miss.
func (f *fields) fieldGoalMade(column string) bool {
	raw, ok := f.str(column)
	if !ok {
		return false
	}
	switch strings.ToLower(raw) {
	case "made", "good":
		return true
	case "missed", "blocked":
		return false
	default:
		f.drop(column)
		return false
	}
}
