package postgres

import (
	"database/sql"

	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
)

type playTableModel struct {
	GameID               string          `db:"game_id"`
	PlayID               string          `db:"play_id"`
	Season               int             `db:"season"`
	Week                 sql.NullInt64   `db:"week"`
	PossessionTeam       sql.NullString  `db:"posteam"`
	DefenseTeam          sql.NullString  `db:"defteam"`
	Quarter              sql.NullInt64   `db:"quarter"`
	GameSecondsRemaining sql.NullInt64   `db:"game_seconds_remaining"`
	HalfSecondsRemaining sql.NullInt64   `db:"half_seconds_remaining"`
	GameHalf             sql.NullString  `db:"game_half"`
	YardLine100          sql.NullInt64   `db:"yardline_100"`
	YardsToGo            sql.NullInt64   `db:"ydstogo"`
	Down                 sql.NullInt64   `db:"down"`
	PlayType             string          `db:"play_type"`
	Description          sql.NullString  `db:"description"`
	YardsGained          sql.NullInt64   `db:"yards_gained"`
	EP                   sql.NullFloat64 `db:"ep"`
	EPA                  sql.NullFloat64 `db:"epa"`
	WP                   sql.NullFloat64 `db:"wp"`
	WPA                  sql.NullFloat64 `db:"wpa"`
	AirYards             sql.NullInt64   `db:"air_yards"`
	YardsAfterCatch      sql.NullInt64   `db:"yards_after_catch"`
	PasserID             sql.NullString  `db:"passer_player_id"`
	ReceiverID           sql.NullString  `db:"receiver_player_id"`
	RusherID             sql.NullString  `db:"rusher_player_id"`
	Touchdown            bool            `db:"touchdown"`
	PassTouchdown        bool            `db:"pass_touchdown"`
	RushTouchdown        bool            `db:"rush_touchdown"`
	Interception         bool            `db:"interception"`
	Fumble               bool            `db:"fumble"`
	Safety               bool            `db:"safety"`
	Penalty              bool            `db:"penalty"`
	FirstDown            bool            `db:"first_down"`
	CompletePass         bool            `db:"complete_pass"`
	FieldGoalMade        bool            `db:"field_goal_made"`
}

// playFlagColumns are outcome flags; an update always takes the newer
// extraction's value.
var playFlagColumns = []string{
	"touchdown", "pass_touchdown", "rush_touchdown", "interception", "fumble",
	"safety", "penalty", "first_down", "complete_pass", "field_goal_made",
}

func playModel(item play.Play) playTableModel {
	return playTableModel{
		GameID:               item.GameID,
		PlayID:               item.PlayID,
		Season:               item.Season,
		Week:                 nullInt(item.Week),
		PossessionTeam:       nullString(item.PossessionTeam),
		DefenseTeam:          nullString(item.DefenseTeam),
		Quarter:              nullInt(item.Quarter),
		GameSecondsRemaining: nullInt(item.GameSecondsRemaining),
		HalfSecondsRemaining: nullInt(item.HalfSecondsRemaining),
		GameHalf:             nullString(item.GameHalf),
		YardLine100:          nullInt(item.YardLine100),
		YardsToGo:            nullInt(item.YardsToGo),
		Down:                 nullInt(item.Down),
		PlayType:             string(item.Type),
		Description:          nullString(item.Description),
		YardsGained:          nullInt(item.YardsGained),
		EP:                   nullFloat(item.EP),
		EPA:                  nullFloat(item.EPA),
		WP:                   nullFloat(item.WP),
		WPA:                  nullFloat(item.WPA),
		AirYards:             nullInt(item.AirYards),
		YardsAfterCatch:      nullInt(item.YardsAfterCatch),
		PasserID:             nullString(item.PasserID),
		ReceiverID:           nullString(item.ReceiverID),
		RusherID:             nullString(item.RusherID),
		Touchdown:            item.Touchdown,
		PassTouchdown:        item.PassTouchdown,
		RushTouchdown:        item.RushTouchdown,
		Interception:         item.Interception,
		Fumble:               item.Fumble,
		Safety:               item.Safety,
		Penalty:              item.Penalty,
		FirstDown:            item.FirstDown,
		CompletePass:         item.CompletePass,
		FieldGoalMade:        item.FieldGoalMade,
	}
}

func (row playTableModel) toDomain() play.Play {
	return play.Play{
		GameID:               row.GameID,
		PlayID:               row.PlayID,
		Season:               row.Season,
		Week:                 intPtr(row.Week),
		PossessionTeam:       row.PossessionTeam.String,
		DefenseTeam:          row.DefenseTeam.String,
		Quarter:              intPtr(row.Quarter),
		GameSecondsRemaining: intPtr(row.GameSecondsRemaining),
		HalfSecondsRemaining: intPtr(row.HalfSecondsRemaining),
		GameHalf:             row.GameHalf.String,
		YardLine100:          intPtr(row.YardLine100),
		YardsToGo:            intPtr(row.YardsToGo),
		Down:                 intPtr(row.Down),
		Type:                 play.Type(row.PlayType),
		Description:          row.Description.String,
		YardsGained:          intPtr(row.YardsGained),
		EP:                   floatPtr(row.EP),
		EPA:                  floatPtr(row.EPA),
		WP:                   floatPtr(row.WP),
		WPA:                  floatPtr(row.WPA),
		AirYards:             intPtr(row.AirYards),
		YardsAfterCatch:      intPtr(row.YardsAfterCatch),
		PasserID:             row.PasserID.String,
		ReceiverID:           row.ReceiverID.String,
		RusherID:             row.RusherID.String,
		Touchdown:            row.Touchdown,
		PassTouchdown:        row.PassTouchdown,
		RushTouchdown:        row.RushTouchdown,
		Interception:         row.Interception,
		Fumble:               row.Fumble,
		Safety:               row.Safety,
		Penalty:              row.Penalty,
		FirstDown:            row.FirstDown,
		CompletePass:         row.CompletePass,
		FieldGoalMade:        row.FieldGoalMade,
	}
}
