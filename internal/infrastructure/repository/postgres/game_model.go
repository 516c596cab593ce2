package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
)

type gameTableModel struct {
	ID          string          `db:"game_id"`
	Season      int             `db:"season"`
	SeasonType  string          `db:"season_type"`
	Week        sql.NullInt64   `db:"week"`
	Date        time.Time       `db:"game_date"`
	KickoffTime sql.NullString  `db:"kickoff_time"`
	HomeTeam    string          `db:"home_team"`
	AwayTeam    string          `db:"away_team"`
	HomeScore   sql.NullInt64   `db:"home_score"`
	AwayScore   sql.NullInt64   `db:"away_score"`
	Roof        sql.NullString  `db:"roof"`
	Surface     sql.NullString  `db:"surface"`
	Temperature sql.NullInt64   `db:"temperature"`
	Wind        sql.NullInt64   `db:"wind"`
	HomeSpread  sql.NullFloat64 `db:"home_spread"`
	TotalLine   sql.NullFloat64 `db:"total_line"`
	OldGameID   sql.NullString  `db:"old_game_id"`
}

func gameModel(item game.Game) gameTableModel {
	return gameTableModel{
		ID:          item.ID,
		Season:      item.Season,
		SeasonType:  string(item.SeasonType),
		Week:        nullInt(item.Week),
		Date:        item.Date,
		KickoffTime: nullString(item.KickoffTime),
		HomeTeam:    item.HomeTeam,
		AwayTeam:    item.AwayTeam,
		HomeScore:   nullInt(item.HomeScore),
		AwayScore:   nullInt(item.AwayScore),
		Roof:        nullString(item.Roof),
		Surface:     nullString(item.Surface),
		Temperature: nullInt(item.Temperature),
		Wind:        nullInt(item.Wind),
		HomeSpread:  nullFloat(item.HomeSpread),
		TotalLine:   nullFloat(item.TotalLine),
		OldGameID:   nullString(item.OldGameID),
	}
}

func (row gameTableModel) toDomain() game.Game {
	return game.Game{
		ID:          row.ID,
		Season:      row.Season,
		SeasonType:  game.SeasonType(row.SeasonType),
		Week:        intPtr(row.Week),
		Date:        row.Date.UTC(),
		KickoffTime: row.KickoffTime.String,
		HomeTeam:    row.HomeTeam,
		AwayTeam:    row.AwayTeam,
		HomeScore:   intPtr(row.HomeScore),
		AwayScore:   intPtr(row.AwayScore),
		Roof:        row.Roof.String,
		Surface:     row.Surface.String,
		Temperature: intPtr(row.Temperature),
		Wind:        intPtr(row.Wind),
		HomeSpread:  floatPtr(row.HomeSpread),
		TotalLine:   floatPtr(row.TotalLine),
		OldGameID:   row.OldGameID.String,
	}
}
