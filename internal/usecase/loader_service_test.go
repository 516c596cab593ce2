package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	"github.com/riskibarqy/gridiron-stats/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWithStore(t *testing.T, store *memory.Store, kind ingest.Kind, records ...ingest.Record) ingest.LoadResult {
	t.Helper()

	ctx := context.Background()
	session, err := store.Acquire(ctx)
	require.NoError(t, err)
	defer session.Close()

	return NewLoaderService(testLogger()).Load(ctx, session, kind, [][]ingest.Record{records})
}

func TestLoaderService_Load_IsIdempotent(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	status := memory.NewStatusRepository(store)
	teams := []ingest.Record{
		testTeam("AA", team.ConferenceNFC, team.DivisionWest),
		testTeam("BB", "", ""),
	}

	first := loadWithStore(t, store, ingest.KindTeam, teams...)
	require.True(t, first.Success)
	assert.Equal(t, 2, first.RecordsProcessed)
	assert.Equal(t, 2, first.RecordsInserted)
	assert.Equal(t, 0, first.RecordsUpdated)

	second := loadWithStore(t, store, ingest.KindTeam, teams...)
	require.True(t, second.Success)
	assert.Equal(t, 0, second.RecordsInserted)
	assert.Equal(t, 2, second.RecordsUpdated)
	assert.Empty(t, second.Errors)

	count, err := status.Count(context.Background(), ingest.KindTeam)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestLoaderService_Load_UpdateKeepsStoredFields(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	full := testTeam("AA", team.ConferenceNFC, team.DivisionWest)
	full.PrimaryColor = "#AA0000"
	loadWithStore(t, store, ingest.KindTeam, full)

	partial := team.Team{Abbr: "AA", Name: "Renamed"}
	result := loadWithStore(t, store, ingest.KindTeam, partial)
	require.Equal(t, 1, result.RecordsUpdated)

	got, ok, err := memory.NewTeamRepository(store).GetByAbbr(context.Background(), "AA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "#AA0000", got.PrimaryColor)
	assert.Equal(t, team.ConferenceNFC, got.Conference)
}

func TestLoaderService_Load_NullsTeamsAndStubsUnknownPlayers(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedStore(t, store,
		testTeam("AA", team.ConferenceNFC, team.DivisionWest),
		finalGame(t, "G1", 2024, "2024-09-08", "AA", "BB", 24, 21),
		testPlayer("P1", "Pat One", "AA"),
	)

	players := loadWithStore(t, store, ingest.KindPlayer, testPlayer("P9", "Nobody", "ZZ"))
	require.True(t, players.Success)
	assert.Equal(t, 1, players.RecordsInserted)

	stored, err := memory.NewPlayerRepository(store).GetByIDs(context.Background(), []string{"P9"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Empty(t, stored[0].TeamAbbr)

	orphan := passPlay("G1", "1", "P1", "P404", 12, true)
	result := loadWithStore(t, store, ingest.KindPlay, orphan)
	require.True(t, result.Success)
	assert.Equal(t, 1, result.RecordsInserted)

	plays, err := memory.NewPlayRepository(store).ListBySeason(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Equal(t, "AA", plays[0].PossessionTeam)
	assert.Empty(t, plays[0].DefenseTeam, "BB was never loaded")
	assert.Equal(t, "P1", plays[0].PasserID)
	assert.Equal(t, "P404", plays[0].ReceiverID)

	placeholder, err := memory.NewPlayerRepository(store).GetByIDs(context.Background(), []string{"P404"})
	require.NoError(t, err)
	require.Len(t, placeholder, 1)
	assert.Equal(t, "P404", placeholder[0].FullName)
	assert.Empty(t, placeholder[0].TeamAbbr)
}

func TestLoaderService_Load_RosterLoadFillsPlaceholder(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedStore(t, store,
		testTeam("AA", team.ConferenceNFC, team.DivisionWest),
		finalGame(t, "G1", 2024, "2024-09-08", "AA", "BB", 24, 21),
	)

	result := loadWithStore(t, store, ingest.KindPlay,
		runPlay("G1", "1", "P2", 8),
		runPlay("G1", "2", "P2", 3),
	)
	require.True(t, result.Success)
	assert.Equal(t, 2, result.RecordsInserted, "placeholders are not counted as plays")

	roster := loadWithStore(t, store, ingest.KindPlayer, testPlayer("P2", "Sam Two", "AA"))
	assert.Equal(t, 0, roster.RecordsInserted)
	assert.Equal(t, 1, roster.RecordsUpdated)

	got, err := memory.NewPlayerRepository(store).GetByIDs(context.Background(), []string{"P2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sam Two", got[0].FullName)
	assert.Equal(t, "AA", got[0].TeamAbbr)
}

func TestLoaderService_Load_RecordwiseRetryKeepsPlaceholders(t *testing.T) {
	t.Parallel()

	session := &stubSession{
		keys:        map[ingest.Kind]map[string]struct{}{ingest.KindGame: {"G1": {}}},
		failCommits: 1,
	}
	result := NewLoaderService(testLogger()).Load(context.Background(), session, ingest.KindPlay, [][]ingest.Record{{
		runPlay("G1", "1", "P7", 4),
		runPlay("G1", "2", "P7", 6),
	}})

	require.True(t, result.Success)
	assert.Equal(t, 2, result.RecordsInserted)
	assert.Equal(t, []string{"P7", "G1/1", "G1/2"}, session.committed, "the placeholder commits once, with the first play")
}

func TestLoaderService_Load_PlayWithoutGameIsSkipped(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedStore(t, store, finalGame(t, "G1", 2024, "2024-09-08", "AA", "BB", 24, 21))

	result := loadWithStore(t, store, ingest.KindPlay,
		runPlay("G1", "1", "", 4),
		runPlay("G404", "1", "", 4),
	)
	require.True(t, result.Success, "record failures do not fail the load")
	assert.Equal(t, 2, result.RecordsProcessed)
	assert.Equal(t, 1, result.RecordsInserted)
	assert.Equal(t, 1, result.RecordsSkipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "G404")
}

func TestLoaderService_Load_RevalidatesRecords(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedStore(t, store, finalGame(t, "G1", 2024, "2024-09-08", "AA", "BB", 24, 21))

	bad := runPlay("G1", "2", "", 4)
	bad.EPA = floatPtr(40)
	result := loadWithStore(t, store, ingest.KindPlay, runPlay("G1", "1", "", 4), bad, testTeam("CC", "", ""))

	assert.Equal(t, 1, result.RecordsInserted)
	assert.Equal(t, 2, result.RecordsSkipped)
	assert.Len(t, result.Errors, 2)
}

func TestLoaderService_Load_RecordFailureIsIsolated(t *testing.T) {
	t.Parallel()

	session := &stubSession{upsertErr: map[string]error{"BB": errStub}}
	result := NewLoaderService(testLogger()).Load(context.Background(), session, ingest.KindTeam, [][]ingest.Record{{
		testTeam("AA", "", ""),
		testTeam("BB", "", ""),
		testTeam("CC", "", ""),
	}})

	require.True(t, result.Success)
	assert.Equal(t, 3, result.RecordsProcessed)
	assert.Equal(t, 2, result.RecordsInserted)
	assert.Equal(t, 1, result.RecordsSkipped)
	assert.Equal(t, []string{"AA", "CC"}, session.committed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "BB")
}

func TestLoaderService_Load_CommitFailureFallsBackToRecordwise(t *testing.T) {
	t.Parallel()

	session := &stubSession{failCommits: 1}
	result := NewLoaderService(testLogger()).Load(context.Background(), session, ingest.KindTeam, [][]ingest.Record{{
		testTeam("AA", "", ""),
		testTeam("BB", "", ""),
	}})

	require.True(t, result.Success)
	assert.Equal(t, 2, result.RecordsInserted)
	assert.Equal(t, 0, result.RecordsSkipped)
	assert.Equal(t, 3, session.begins, "one chunk transaction plus one per record")
	assert.Equal(t, []string{"AA", "BB"}, session.committed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "commit teams chunk of 2")
}

func TestLoaderService_Load_CountsOnlyCommittedOutcomes(t *testing.T) {
	t.Parallel()

	session := &stubSession{failCommits: 2}
	result := NewLoaderService(testLogger()).Load(context.Background(), session, ingest.KindTeam, [][]ingest.Record{{
		testTeam("AA", "", ""),
		testTeam("BB", "", ""),
	}})

	assert.Equal(t, 1, result.RecordsInserted, "AA fails its own commit, BB succeeds")
	assert.Equal(t, 1, result.RecordsSkipped)
	assert.Equal(t, []string{"BB"}, session.committed)
}

func TestLoaderService_Load_BeginFailureFailsResult(t *testing.T) {
	t.Parallel()

	session := &stubSession{beginErr: errStub}
	result := NewLoaderService(testLogger()).Load(context.Background(), session, ingest.KindTeam, [][]ingest.Record{
		{testTeam("AA", "", "")},
		{testTeam("BB", "", "")},
	})

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.RecordsProcessed)
	assert.Equal(t, 2, result.RecordsSkipped)
	assert.Equal(t, 0, result.RecordsInserted)
}

func TestLoaderService_Load_ReferenceReadFailure(t *testing.T) {
	t.Parallel()

	session := &stubSession{keysErr: errStub}
	result := NewLoaderService(testLogger()).Load(context.Background(), session, ingest.KindPlay, [][]ingest.Record{
		{runPlay("G1", "1", "", 3)},
	})

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RecordsProcessed)
	assert.Equal(t, 0, session.begins)
}

func TestLoaderService_Load_StopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := &stubSession{}
	result := NewLoaderService(testLogger()).Load(ctx, session, ingest.KindTeam, [][]ingest.Record{
		{testTeam("AA", "", "")},
	})

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RecordsProcessed)
	assert.Equal(t, 0, session.begins)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cancelled")
}

func TestLoaderService_Load_CapsErrorList(t *testing.T) {
	t.Parallel()

	failures := make(map[string]error)
	chunk := make([]ingest.Record, 0, 150)
	for i := 0; i < 150; i++ {
		item := play.Play{GameID: "G1", PlayID: fmt.Sprint(i), Season: 2024, Type: play.TypeRun}
		failures[item.NaturalKey()] = crerr.New("constraint violation")
		chunk = append(chunk, item)
	}
	session := &stubSession{
		keys:      map[ingest.Kind]map[string]struct{}{ingest.KindGame: {"G1": {}}},
		upsertErr: failures,
	}

	result := NewLoaderService(testLogger()).Load(context.Background(), session, ingest.KindPlay, [][]ingest.Record{chunk})

	assert.Equal(t, 150, result.RecordsSkipped)
	require.Len(t, result.Errors, maxResultErrors+1)
	assert.True(t, strings.HasPrefix(result.Errors[maxResultErrors], "50 further errors"))
}

func TestLoaderService_LoadWithRejections_SummaryCountsEverything(t *testing.T) {
	t.Parallel()

	rejections := make([]string, 0, maxResultErrors)
	for i := 0; i < maxResultErrors; i++ {
		rejections = append(rejections, fmt.Sprintf("teams row %d: required field team_abbr is missing", i))
	}
	session := &stubSession{upsertErr: map[string]error{"BB": errStub}}

	result := NewLoaderService(testLogger()).LoadWithRejections(context.Background(), session, ingest.KindTeam,
		[][]ingest.Record{{testTeam("AA", "", ""), testTeam("BB", "", "")}},
		rejections,
	)

	assert.Equal(t, maxResultErrors, result.RecordsRejected)
	assert.Equal(t, 1, result.RecordsInserted)
	assert.Equal(t, 1, result.RecordsSkipped)
	require.Len(t, result.Errors, maxResultErrors+1)
	assert.Equal(t, rejections[0], result.Errors[0])
	assert.Equal(t, "1 further errors suppressed", result.Errors[maxResultErrors], "the record failure past the cap is counted")
}
