package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	"github.com/riskibarqy/gridiron-stats/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snap struct {
	id        string
	offense   string
	kind      play.Type
	yards     *int
	epa       float64
	down      int
	toGo      int
	yardline  int
	firstDown bool
	touchdown bool
	intercept bool
	fumble    bool
	fgMade    bool
}

func (s snap) play() play.Play {
	defense := "BB"
	if s.offense == "BB" {
		defense = "AA"
	}
	out := play.Play{
		GameID:         "G1",
		PlayID:         s.id,
		Season:         2024,
		PossessionTeam: s.offense,
		DefenseTeam:    defense,
		Type:           s.kind,
		YardsGained:    s.yards,
		EPA:            floatPtr(s.epa),
		FirstDown:      s.firstDown,
		Touchdown:      s.touchdown,
		Interception:   s.intercept,
		Fumble:         s.fumble,
		FieldGoalMade:  s.fgMade,
	}
	if s.down > 0 {
		out.Down = intPtr(s.down)
	}
	if s.toGo > 0 {
		out.YardsToGo = intPtr(s.toGo)
	}
	if s.yardline > 0 {
		out.YardLine100 = intPtr(s.yardline)
	}
	return out
}

func newEfficiencyFixture(t *testing.T) *EfficiencyService {
	t.Helper()

	snaps := []snap{
		{id: "01", offense: "AA", kind: play.TypePass, yards: intPtr(25), epa: 1.5, firstDown: true},
		{id: "02", offense: "AA", kind: play.TypeRun, yards: intPtr(16), epa: 0.8, firstDown: true},
		{id: "03", offense: "AA", kind: play.TypeRun, yards: intPtr(2), epa: -0.4, down: 3, toGo: 2, firstDown: true},
		{id: "04", offense: "AA", kind: play.TypePass, yards: intPtr(0), epa: -1.0, down: 3, toGo: 9},
		{id: "05", offense: "AA", kind: play.TypePass, yards: intPtr(5), epa: 2.0, down: 1, yardline: 10, touchdown: true},
		{id: "06", offense: "AA", kind: play.TypeFieldGoal, epa: 0.3, down: 4, yardline: 15, fgMade: true},
		{id: "07", offense: "AA", kind: play.TypePass, yards: intPtr(0), epa: -3.0, intercept: true},
		{id: "08", offense: "AA", kind: play.TypePunt, epa: 0},
		{id: "09", offense: "BB", kind: play.TypeRun, yards: intPtr(4), epa: 0.1, fumble: true},
		{id: "10", offense: "BB", kind: play.TypePass, yards: intPtr(10), epa: -0.2, down: 3, toGo: 5, firstDown: true},
		{id: "11", offense: "AA", kind: play.TypeRun, yards: intPtr(3), epa: 0.2, down: 1, yardline: 18},
		{id: "12", offense: "AA", kind: play.TypeRun, epa: 0.9},
	}
	records := []ingest.Record{
		testTeam("AA", team.ConferenceNFC, team.DivisionWest),
		testTeam("BB", team.ConferenceNFC, team.DivisionWest),
		finalGame(t, "G1", 2024, "2024-09-08", "AA", "BB", 24, 21),
		finalGame(t, "G2", 2024, "2024-09-15", "BB", "AA", 10, 17),
		game.Game{ID: "G3", Season: 2024, SeasonType: game.SeasonTypeReg, Date: mustDate(t, "2024-12-01"), HomeTeam: "AA", AwayTeam: "BB"},
	}
	for _, s := range snaps {
		records = append(records, s.play())
	}

	store := memory.NewStore()
	seedStore(t, store, records...)
	return NewEfficiencyService(
		memory.NewPlayRepository(store),
		memory.NewGameRepository(store),
		memory.NewTeamRepository(store),
		2,
		testLogger(),
	)
}

func TestEfficiencyService_ComputeTeamEfficiency(t *testing.T) {
	t.Parallel()

	svc := newEfficiencyFixture(t)
	got, err := svc.ComputeTeamEfficiency(context.Background(), 2024, "aa")
	require.NoError(t, err)
	assert.Equal(t, "AA", got.Team)
	assert.Equal(t, "AA Club", got.TeamName)

	off := got.Offense
	assert.Equal(t, 7, off.Plays, "kicks and snaps without yardage are excluded")
	assert.Equal(t, 51, off.Yards)
	assert.InDelta(t, 51.0/7, off.YardsPerPlay, 1e-9)
	assert.InDelta(t, 4.0/7, off.SuccessRate, 1e-9)
	assert.Equal(t, 2, off.ExplosivePlays)
	assert.InDelta(t, 2.0/7, off.ExplosiveRate, 1e-9)
	assert.Equal(t, 4, off.PassPlays)
	assert.Equal(t, 3, off.RunPlays)
	assert.Equal(t, 3, off.FirstDowns)
	assert.InDelta(t, 0.1/7, off.EPAPerPlay, 1e-9)

	def := got.Defense
	assert.Equal(t, 2, def.Plays)
	assert.InDelta(t, 7.0, def.YardsPerPlay, 1e-9)
	assert.InDelta(t, 0.5, def.SuccessRate, 1e-9)
	assert.InDelta(t, -0.05, def.EPAPerPlay, 1e-9)

	third := got.ThirdDownOffense
	assert.Equal(t, 2, third.Attempts)
	assert.Equal(t, 1, third.Conversions)
	assert.InDelta(t, 0.5, third.Rate, 1e-9)
	assert.InDelta(t, 5.5, third.AvgYardsToGo, 1e-9)
	assert.Equal(t, ConversionBucket{Attempts: 1, Conversions: 1, Rate: 1}, third.Short)
	assert.Equal(t, ConversionBucket{}, third.Medium)
	assert.Equal(t, ConversionBucket{Attempts: 1}, third.Long)
	assert.Equal(t, ConversionBucket{Attempts: 1, Conversions: 1, Rate: 1}, got.ThirdDownDefense.Medium)

	red := got.RedZoneOffense
	assert.Equal(t, 2, red.Trips)
	assert.Equal(t, 1, red.Touchdowns)
	assert.Equal(t, 1, red.FieldGoals)
	assert.InDelta(t, 0.5, red.TouchdownRate, 1e-9)
	assert.InDelta(t, 0.5, red.FieldGoalRate, 1e-9)
	assert.InDelta(t, 1.0, red.SuccessRate, 1e-9)

	assert.Equal(t, TurnoverEfficiency{
		Giveaways:           1,
		Takeaways:           1,
		InterceptionsThrown: 1,
		FumblesRecovered:    1,
	}, got.Turnovers)

	assert.Equal(t, 2, got.Scoring.Games, "unfinished games do not count")
	assert.InDelta(t, 20.5, got.Scoring.PointsPerGame, 1e-9)
	assert.InDelta(t, 15.5, got.Scoring.PointsAllowedPerGame, 1e-9)
	assert.InDelta(t, 5.0, got.Scoring.PointDifferential, 1e-9)
}

func TestEfficiencyService_ComputeTeamEfficiency_Errors(t *testing.T) {
	t.Parallel()

	svc := newEfficiencyFixture(t)
	if _, err := svc.ComputeTeamEfficiency(context.Background(), 2024, "ZZ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ComputeTeamEfficiency(context.Background(), 0, "AA"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEfficiencyService_ComputeLeagueEfficiency(t *testing.T) {
	t.Parallel()

	svc := newEfficiencyFixture(t)
	got, err := svc.ComputeLeagueEfficiency(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AA", got[0].Team)
	assert.Equal(t, "BB", got[1].Team)
	assert.GreaterOrEqual(t, got[0].Offense.EPAPerPlay, got[1].Offense.EPAPerPlay)
	assert.Equal(t, -got[0].Turnovers.Differential, got[1].Turnovers.Differential)
}

func TestEfficiencyService_ComputeLeagueEfficiency_EmptySeason(t *testing.T) {
	t.Parallel()

	svc := newEfficiencyFixture(t)
	got, err := svc.ComputeLeagueEfficiency(context.Background(), 2019)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Zero(t, got[0].Offense.Plays)
	assert.Zero(t, got[0].Scoring.PointsPerGame)
}

func TestRedZoneEfficiency_CountsOnlyMadeFieldGoals(t *testing.T) {
	t.Parallel()

	plays := []play.Play{
		snap{id: "01", offense: "AA", kind: play.TypePass, yards: intPtr(3), down: 1, yardline: 15}.play(),
		snap{id: "02", offense: "AA", kind: play.TypeFieldGoal, yards: intPtr(0), down: 4, yardline: 12}.play(),
		snap{id: "03", offense: "AA", kind: play.TypeRun, yards: intPtr(2), down: 1, yardline: 18}.play(),
		snap{id: "04", offense: "AA", kind: play.TypeFieldGoal, yards: intPtr(0), down: 4, yardline: 16, fgMade: true}.play(),
	}

	got := redZoneEfficiency(plays)
	assert.Equal(t, 2, got.Trips)
	assert.Equal(t, 1, got.FieldGoals, "a missed kick is not a field goal")
	assert.InDelta(t, 0.5, got.FieldGoalRate, 1e-9)
	assert.InDelta(t, 0.5, got.SuccessRate, 1e-9)

	missedOnly := redZoneEfficiency(plays[:2])
	assert.Equal(t, 1, missedOnly.Trips)
	assert.Zero(t, missedOnly.FieldGoals)
	assert.Zero(t, missedOnly.SuccessRate)
}
