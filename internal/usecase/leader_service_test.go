package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/riskibarqy/gridiron-stats/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasserRating(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                 string
		att, cmp, yds, td, i int
		want                 float64
	}{
		{name: "season line", att: 400, cmp: 260, yds: 3200, td: 24, i: 8, want: 101.25},
		{name: "perfect", att: 10, cmp: 10, yds: 200, td: 3, i: 0, want: 158.33333333333334},
		{name: "floor", att: 10, cmp: 0, yds: 0, td: 0, i: 5, want: 0},
		{name: "interception component clamps", att: 10, cmp: 6, yds: 80, td: 1, i: 1, want: 79.16666666666667},
		{name: "no attempts", att: 0, want: 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := PasserRating(tc.att, tc.cmp, tc.yds, tc.td, tc.i)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("PasserRating=%v want=%v", got, tc.want)
			}
		})
	}

	if got := math.Round(PasserRating(400, 260, 3200, 24, 8)*10) / 10; got != 101.3 {
		t.Fatalf("expected 101.3 to one decimal, got %v", got)
	}
}

func newLeaderFixture(t *testing.T) *LeaderService {
	t.Helper()

	store := memory.NewStore()
	td := runPlay("G1", "7", "R1", 25)
	td.RushTouchdown = true
	td.Touchdown = true
	fumble := runPlay("G1", "8", "R2", -2)
	fumble.Fumble = true
	pick := passPlay("G1", "9", "QB2", "WR1", 0, false)
	pick.Interception = true
	deep := passPlay("G1", "3", "QB1", "WR1", 30, true)
	deep.AirYards = intPtr(22)
	deep.YardsAfterCatch = intPtr(8)
	deep.EPA = floatPtr(2.5)

	seedStore(t, store,
		testPlayer("R1", "Rusher One", "AA"),
		testPlayer("R2", "Rusher Two", "AA"),
		testPlayer("QB1", "Quarterback One", "AA"),
		deep,
		passPlay("G1", "4", "QB1", "WR2", 0, false),
		passPlay("G1", "5", "QB1", "WR2", 6, true),
		pick,
		td,
		runPlay("G1", "10", "R1", 5),
		runPlay("G1", "11", "R2", 40),
		fumble,
		runPlay("G1", "12", "R3", 30),
	)
	return NewLeaderService(memory.NewPlayRepository(store), memory.NewPlayerRepository(store), testLogger())
}

func TestLeaderService_ComputeLeaders_Rushers(t *testing.T) {
	t.Parallel()

	svc := newLeaderFixture(t)
	got, err := svc.ComputeLeaders(context.Background(), LeaderQuery{Season: 2024, Role: RoleRusher, MinVolume: 1})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// R1 and R3 tie on 30 yards; the player id breaks the tie.
	assert.Equal(t, []string{"R2", "R1", "R3"}, []string{got[0].PlayerID, got[1].PlayerID, got[2].PlayerID})
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
	assert.Equal(t, float64(38), got[0].Metric)
	assert.Equal(t, "Rusher One", got[1].PlayerName)
	assert.Equal(t, "AA", got[1].Team)
	assert.Empty(t, got[2].PlayerName, "unknown players keep their entry")

	line := got[1].Rushing
	require.NotNil(t, line)
	assert.Equal(t, 2, line.Carries)
	assert.Equal(t, 1, line.Touchdowns)
	assert.Equal(t, 25, line.Longest)
	assert.Equal(t, 1, line.Runs20Plus)
	assert.Equal(t, 1, line.Runs10Plus)
	assert.InDelta(t, 15.0, line.YardsPerCarry, 1e-9)

	assert.Equal(t, 1, got[0].Rushing.Fumbles)
	assert.Equal(t, 40, got[0].Rushing.Longest)
}

func TestLeaderService_ComputeLeaders_MinVolumeAndLimit(t *testing.T) {
	t.Parallel()

	svc := newLeaderFixture(t)
	got, err := svc.ComputeLeaders(context.Background(), LeaderQuery{Season: 2024, Role: RoleRusher, MinVolume: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = svc.ComputeLeaders(context.Background(), LeaderQuery{Season: 2024, Role: RoleRusher, MinVolume: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "R2", got[0].PlayerID)
}

func TestLeaderService_ComputeLeaders_Passers(t *testing.T) {
	t.Parallel()

	svc := newLeaderFixture(t)
	got, err := svc.ComputeLeaders(context.Background(), LeaderQuery{Season: 2024, Role: RolePasser})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "QB1", got[0].PlayerID)

	line := got[0].Passing
	require.NotNil(t, line)
	assert.Equal(t, 3, line.Attempts)
	assert.Equal(t, 2, line.Completions)
	assert.Equal(t, 36, line.Yards)
	assert.InDelta(t, 12.0, line.YardsPerAttempt, 1e-9)
	assert.InDelta(t, 2.5, line.AvgEPA, 1e-9, "plays without EPA do not count")
	assert.InDelta(t, PasserRating(3, 2, 36, 0, 0), line.Rating, 1e-9)
	assert.Equal(t, 1, got[1].Passing.Interceptions)
}

func TestLeaderService_ComputeLeaders_Receivers(t *testing.T) {
	t.Parallel()

	svc := newLeaderFixture(t)
	got, err := svc.ComputeLeaders(context.Background(), LeaderQuery{Season: 2024, Role: RoleReceiver})
	require.NoError(t, err)
	require.Len(t, got, 2)

	wr1 := got[0]
	assert.Equal(t, "WR1", wr1.PlayerID)
	assert.Equal(t, 2, wr1.Volume)
	assert.Equal(t, 1, wr1.Receiving.Receptions)
	assert.InDelta(t, 0.5, wr1.Receiving.CatchRate, 1e-9)
	assert.InDelta(t, 22.0, wr1.Receiving.AvgAirYards, 1e-9)
	assert.InDelta(t, 8.0, wr1.Receiving.AvgYAC, 1e-9)
	assert.Equal(t, 6, got[1].Receiving.Yards)
}

func TestLeaderService_ComputeLeaders_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := newLeaderFixture(t)
	for _, q := range []LeaderQuery{
		{Season: 0, Role: RolePasser},
		{Season: 2024, Role: "kicker"},
		{Season: 2024, Role: RolePasser, MinVolume: -1},
	} {
		if _, err := svc.ComputeLeaders(context.Background(), q); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("query %+v: expected ErrInvalidInput, got %v", q, err)
		}
	}
}

func TestLeaderService_ComputeLeaders_EmptySeason(t *testing.T) {
	t.Parallel()

	svc := newLeaderFixture(t)
	got, err := svc.ComputeLeaders(context.Background(), LeaderQuery{Season: 2019, Role: RolePasser})
	require.NoError(t, err)
	assert.Empty(t, got)
}
