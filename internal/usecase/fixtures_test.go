package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	"github.com/riskibarqy/gridiron-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testLogger() *logging.Logger { return logging.NewNop() }

// seedStore commits records to store in one transaction.
func seedStore(t *testing.T, store *memory.Store, records ...ingest.Record) {
	t.Helper()

	ctx := context.Background()
	session, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire session: %v", err)
	}
	defer session.Close()

	tx, err := session.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, record := range records {
		if _, err := upsertRecord(ctx, tx, record); err != nil {
			t.Fatalf("seed %s: %v", record.NaturalKey(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit seed: %v", err)
	}
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	value, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return value
}

func finalGame(t *testing.T, id string, season int, date, home, away string, homeScore, awayScore int) game.Game {
	t.Helper()
	return game.Game{
		ID:         id,
		Season:     season,
		SeasonType: game.SeasonTypeReg,
		Date:       mustDate(t, date),
		HomeTeam:   home,
		AwayTeam:   away,
		HomeScore:  intPtr(homeScore),
		AwayScore:  intPtr(awayScore),
	}
}

func testTeam(abbr string, conf team.Conference, div team.Division) team.Team {
	return team.Team{Abbr: abbr, Name: abbr + " Club", Conference: conf, Division: div, Active: true}
}

func testPlayer(id, name, teamAbbr string) player.Player {
	return player.Player{ID: id, FullName: name, TeamAbbr: teamAbbr}
}

func passPlay(gameID, playID, passer, receiver string, yards int, complete bool) play.Play {
	return play.Play{
		GameID:         gameID,
		PlayID:         playID,
		Season:         2024,
		PossessionTeam: "AA",
		DefenseTeam:    "BB",
		Type:           play.TypePass,
		YardsGained:    intPtr(yards),
		PasserID:       passer,
		ReceiverID:     receiver,
		CompletePass:   complete,
	}
}

func runPlay(gameID, playID, rusher string, yards int) play.Play {
	return play.Play{
		GameID:         gameID,
		PlayID:         playID,
		Season:         2024,
		PossessionTeam: "AA",
		DefenseTeam:    "BB",
		Type:           play.TypeRun,
		YardsGained:    intPtr(yards),
		RusherID:       rusher,
	}
}

var errStub = errors.New("stub failure")

// stubSession is an ingest.Session whose failures are scripted per test.
type stubSession struct {
	keys        map[ingest.Kind]map[string]struct{}
	keysErr     error
	beginErr    error
	failCommits int
	upsertErr   map[string]error

	begins    int
	committed []string
}

func (s *stubSession) Begin(context.Context) (ingest.Tx, error) {
	s.begins++
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &stubTx{session: s}, nil
}

func (s *stubSession) NaturalKeys(_ context.Context, kind ingest.Kind) (map[string]struct{}, error) {
	if s.keysErr != nil {
		return nil, s.keysErr
	}
	if keys, ok := s.keys[kind]; ok {
		return keys, nil
	}
	return map[string]struct{}{}, nil
}

func (s *stubSession) Close() error { return nil }

type stubTx struct {
	session *stubSession
	staged  []string
}

func (t *stubTx) stage(key string) (ingest.Outcome, error) {
	if err := t.session.upsertErr[key]; err != nil {
		return 0, err
	}
	t.staged = append(t.staged, key)
	return ingest.OutcomeInserted, nil
}

func (t *stubTx) UpsertTeam(_ context.Context, item team.Team) (ingest.Outcome, error) {
	return t.stage(item.NaturalKey())
}

func (t *stubTx) UpsertGame(_ context.Context, item game.Game) (ingest.Outcome, error) {
	return t.stage(item.NaturalKey())
}

func (t *stubTx) UpsertPlayer(_ context.Context, item player.Player) (ingest.Outcome, error) {
	return t.stage(item.NaturalKey())
}

func (t *stubTx) UpsertPlay(_ context.Context, item play.Play) (ingest.Outcome, error) {
	return t.stage(item.NaturalKey())
}

func (t *stubTx) Commit() error {
	if t.session.failCommits > 0 {
		t.session.failCommits--
		return errStub
	}
	t.session.committed = append(t.session.committed, t.staged...)
	return nil
}

func (t *stubTx) Rollback() error { return nil }
