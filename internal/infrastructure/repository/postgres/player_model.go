package postgres

import (
	"database/sql"

	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
)

type playerTableModel struct {
	ID              string         `db:"player_id"`
	FullName        string         `db:"full_name"`
	FirstName       sql.NullString `db:"first_name"`
	LastName        sql.NullString `db:"last_name"`
	Position        sql.NullString `db:"position"`
	TeamAbbr        sql.NullString `db:"team_abbr"`
	JerseyNumber    sql.NullInt64  `db:"jersey_number"`
	HeightInches    sql.NullInt64  `db:"height_inches"`
	WeightPounds    sql.NullInt64  `db:"weight_pounds"`
	Age             sql.NullInt64  `db:"age"`
	RookieYear      sql.NullInt64  `db:"rookie_year"`
	YearsExperience sql.NullInt64  `db:"years_experience"`
	College         sql.NullString `db:"college"`
	DraftYear       sql.NullInt64  `db:"draft_year"`
	DraftRound      sql.NullInt64  `db:"draft_round"`
	DraftPick       sql.NullInt64  `db:"draft_pick"`
	DraftTeam       sql.NullString `db:"draft_team"`
	HeadshotURL     sql.NullString `db:"headshot_url"`
	Status          sql.NullString `db:"status"`
}

func playerModel(item player.Player) playerTableModel {
	return playerTableModel{
		ID:              item.ID,
		FullName:        item.FullName,
		FirstName:       nullString(item.FirstName),
		LastName:        nullString(item.LastName),
		Position:        nullString(item.Position),
		TeamAbbr:        nullString(item.TeamAbbr),
		JerseyNumber:    nullInt(item.JerseyNumber),
		HeightInches:    nullInt(item.HeightInches),
		WeightPounds:    nullInt(item.WeightPounds),
		Age:             nullInt(item.Age),
		RookieYear:      nullInt(item.RookieYear),
		YearsExperience: nullInt(item.YearsExperience),
		College:         nullString(item.College),
		DraftYear:       nullInt(item.DraftYear),
		DraftRound:      nullInt(item.DraftRound),
		DraftPick:       nullInt(item.DraftPick),
		DraftTeam:       nullString(item.DraftTeam),
		HeadshotURL:     nullString(item.HeadshotURL),
		Status:          nullString(string(item.Status)),
	}
}

func (row playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:              row.ID,
		FullName:        row.FullName,
		FirstName:       row.FirstName.String,
		LastName:        row.LastName.String,
		Position:        row.Position.String,
		TeamAbbr:        row.TeamAbbr.String,
		JerseyNumber:    intPtr(row.JerseyNumber),
		HeightInches:    intPtr(row.HeightInches),
		WeightPounds:    intPtr(row.WeightPounds),
		Age:             intPtr(row.Age),
		RookieYear:      intPtr(row.RookieYear),
		YearsExperience: intPtr(row.YearsExperience),
		College:         row.College.String,
		DraftYear:       intPtr(row.DraftYear),
		DraftRound:      intPtr(row.DraftRound),
		DraftPick:       intPtr(row.DraftPick),
		DraftTeam:       row.DraftTeam.String,
		HeadshotURL:     row.HeadshotURL.String,
		Status:          player.Status(row.Status.String),
	}
}
