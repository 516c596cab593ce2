package postgres

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return sqlx.NewDb(sqlDB, "postgres"), mock
}

func exactly(query string) string {
	return "^" + regexp.QuoteMeta(query) + "$"
}

func TestBuildUpsertTeam(t *testing.T) {
	t.Parallel()

	query, args, err := buildUpsert(teamUpsert, teamModel(team.Team{Abbr: "KC", Name: "Kansas City Chiefs"}))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO teams (team_abbr, team_name, team_nick, conference, division, primary_color, secondary_color, logo_espn, logo_wikipedia, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)"), query)
	assert.Contains(t, query, " ON CONFLICT (team_abbr) DO UPDATE SET team_name = COALESCE(EXCLUDED.team_name, teams.team_name), ")
	assert.Contains(t, query, "is_active = EXCLUDED.is_active, updated_at = NOW()")
	assert.NotContains(t, query, "team_abbr = ")
	assert.True(t, strings.HasSuffix(query, " RETURNING (xmax = 0) AS inserted"), query)
	assert.Len(t, args, 10)
}

func TestBuildUpsertPlayOverwritesFlags(t *testing.T) {
	t.Parallel()

	query, _, err := buildUpsert(playUpsert, playModel(play.Play{GameID: "G1", PlayID: "1", Season: 2024, Type: play.TypeRun}))
	require.NoError(t, err)

	assert.Contains(t, query, "ON CONFLICT (game_id, play_id) DO UPDATE SET ")
	assert.Contains(t, query, "epa = COALESCE(EXCLUDED.epa, plays.epa)")
	for _, column := range playFlagColumns {
		assert.Contains(t, query, column+" = EXCLUDED."+column)
	}
	assert.NotContains(t, query, "play_id = COALESCE")
}

func TestStoreUpsertReportsOutcome(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	for _, inserted := range []bool{true, false} {
		mock.ExpectExec(exactly("SAVEPOINT record_upsert")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).
			WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(inserted))
		mock.ExpectExec(exactly("RELEASE SAVEPOINT record_upsert")).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	ctx := context.Background()
	session, err := store.Acquire(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	tx, err := session.Begin(ctx)
	require.NoError(t, err)

	outcome, err := tx.UpsertTeam(ctx, team.Team{Abbr: "KC"})
	require.NoError(t, err)
	assert.Equal(t, ingest.OutcomeInserted, outcome)

	outcome, err = tx.UpsertTeam(ctx, team.Team{Abbr: "KC", Name: "Kansas City Chiefs"})
	require.NoError(t, err)
	assert.Equal(t, ingest.OutcomeUpdated, outcome)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpsertFailureKeepsTransactionUsable(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(exactly("SAVEPOINT record_upsert")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plays")).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Message: "violates foreign key constraint"})
	mock.ExpectExec(exactly("ROLLBACK TO SAVEPOINT record_upsert")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(exactly("SAVEPOINT record_upsert")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plays")).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))
	mock.ExpectExec(exactly("RELEASE SAVEPOINT record_upsert")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ctx := context.Background()
	session, err := store.Acquire(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	tx, err := session.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.UpsertPlay(ctx, play.Play{GameID: "GX", PlayID: "1", Season: 2024, Type: play.TypeRun})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert plays GX/1 rejected by constraint")

	outcome, err := tx.UpsertPlay(ctx, play.Play{GameID: "G1", PlayID: "1", Season: 2024, Type: play.TypeRun})
	require.NoError(t, err)
	assert.Equal(t, ingest.OutcomeInserted, outcome)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionNaturalKeys(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectQuery(exactly("SELECT game_id || '/' || play_id FROM plays")).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("G1/1").AddRow("G1/2"))

	ctx := context.Background()
	session, err := store.Acquire(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	keys, err := session.NaturalKeys(ctx, ingest.KindPlay)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"G1/1": {}, "G1/2": {}}, keys)

	_, err = session.NaturalKeys(ctx, ingest.Kind("drives"))
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
