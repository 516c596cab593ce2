package game

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestGameValidate(t *testing.T) {
	t.Parallel()

	g := Game{
		ID:         "G1",
		Season:     2023,
		SeasonType: SeasonTypeReg,
		Date:       time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC),
		HomeTeam:   "AA",
		AwayTeam:   "BB",
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected valid game, got %v", err)
	}

	g.AwayTeam = "AA"
	if err := g.Validate(); err == nil {
		t.Fatalf("expected error when home and away are the same team")
	}
}

func TestGameFinishedAndPoints(t *testing.T) {
	t.Parallel()

	g := Game{HomeTeam: "AA", AwayTeam: "BB", HomeScore: intPtr(24)}
	if g.Finished() {
		t.Fatalf("expected unfinished game with one score")
	}

	g.AwayScore = intPtr(21)
	if !g.Finished() {
		t.Fatalf("expected finished game")
	}
	scored, allowed := g.PointsFor("BB")
	if scored != 21 || allowed != 24 {
		t.Fatalf("unexpected points for BB: %d-%d", scored, allowed)
	}
	if g.Opponent("BB") != "AA" {
		t.Fatalf("unexpected opponent: %s", g.Opponent("BB"))
	}
}

func TestQueryMatches(t *testing.T) {
	t.Parallel()

	g := Game{
		Season:    2023,
		Date:      time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
		HomeTeam:  "AA",
		AwayTeam:  "BB",
		HomeScore: intPtr(10),
		AwayScore: intPtr(7),
	}

	if !(Query{Team: "BB", Opponent: "AA"}).Matches(g) {
		t.Fatalf("expected head-to-head match")
	}
	if (Query{Team: "AA", Opponent: "CC"}).Matches(g) {
		t.Fatalf("expected opponent filter to exclude game")
	}
	if (Query{Before: time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)}).Matches(g) {
		t.Fatalf("expected cutoff to be exclusive")
	}
	if (Query{FromSeason: 2024}).Matches(g) {
		t.Fatalf("expected season filter to exclude game")
	}
}
