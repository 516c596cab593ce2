package postgres

import (
	"database/sql"

	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
)

type teamTableModel struct {
	Abbr           string         `db:"team_abbr"`
	Name           sql.NullString `db:"team_name"`
	Nickname       sql.NullString `db:"team_nick"`
	Conference     sql.NullString `db:"conference"`
	Division       sql.NullString `db:"division"`
	PrimaryColor   sql.NullString `db:"primary_color"`
	SecondaryColor sql.NullString `db:"secondary_color"`
	LogoESPN       sql.NullString `db:"logo_espn"`
	LogoWikipedia  sql.NullString `db:"logo_wikipedia"`
	Active         bool           `db:"is_active"`
}

func teamModel(item team.Team) teamTableModel {
	return teamTableModel{
		Abbr:           item.Abbr,
		Name:           nullString(item.Name),
		Nickname:       nullString(item.Nickname),
		Conference:     nullString(string(item.Conference)),
		Division:       nullString(string(item.Division)),
		PrimaryColor:   nullString(item.PrimaryColor),
		SecondaryColor: nullString(item.SecondaryColor),
		LogoESPN:       nullString(item.LogoESPN),
		LogoWikipedia:  nullString(item.LogoWikipedia),
		Active:         true,
	}
}

func (row teamTableModel) toDomain() team.Team {
	return team.Team{
		Abbr:           row.Abbr,
		Name:           row.Name.String,
		Nickname:       row.Nickname.String,
		Conference:     team.Conference(row.Conference.String),
		Division:       team.Division(row.Division.String),
		PrimaryColor:   row.PrimaryColor.String,
		SecondaryColor: row.SecondaryColor.String,
		LogoESPN:       row.LogoESPN.String,
		LogoWikipedia:  row.LogoWikipedia.String,
		Active:         row.Active,
	}
}
