package mapper

import (
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/domain/rawdata"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
)

func fixedMapper() *Mapper {
	return &Mapper{now: func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }}
}

func batch(rows ...rawdata.Row) rawdata.Batch {
	return rawdata.Batch{Source: "test", Rows: rows}
}

func TestMapTeamsUsesReferenceAlignment(t *testing.T) {
	t.Parallel()

	result := fixedMapper().Map(ingest.KindTeam, batch(
		rawdata.Row{"team_abbr": "oak", "team_name": "Raiders", "team_conf": "NFC", "team_color": "#000000"},
		rawdata.Row{"team_abbr": "AA", "team_conf": "NFC", "team_division": "NFC West", "team_color": "blue"},
		rawdata.Row{"team_abbr": "UNK"},
	))

	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d (rejected=%v)", len(result.Records), result.Rejected)
	}
	lv := result.Records[0].(team.Team)
	if lv.Abbr != "LV" || lv.Conference != team.ConferenceAFC || lv.Division != team.DivisionWest {
		t.Fatalf("unexpected canonical team: %+v", lv)
	}
	if lv.PrimaryColor != "#000000" || !lv.Active {
		t.Fatalf("unexpected team attributes: %+v", lv)
	}

	aa := result.Records[1].(team.Team)
	if aa.Conference != team.ConferenceNFC || aa.Division != team.DivisionWest {
		t.Fatalf("expected row alignment for unknown abbreviation, got %+v", aa)
	}
	if aa.PrimaryColor != "" || result.DroppedFields["team_color"] != 1 {
		t.Fatalf("expected invalid color to be dropped, got %q drops=%v", aa.PrimaryColor, result.DroppedFields)
	}

	if len(result.Rejected) != 1 || result.Rejected[0].Index != 2 {
		t.Fatalf("expected UNK row rejected, got %+v", result.Rejected)
	}
	if !crerr.Is(result.Rejected[0].Err, ingest.ErrRowRejected) {
		t.Fatalf("expected rejection to be marked ErrRowRejected")
	}
}

func TestMapPlayerFieldPolicy(t *testing.T) {
	t.Parallel()

	result := fixedMapper().Map(ingest.KindPlayer, batch(
		rawdata.Row{
			"gsis_id":              "00-001",
			"display_name":         "Test Player",
			"team":                 "NA",
			"team_roster":          "stl",
			"position":             "olb",
			"jersey_number":        "120",
			"jersey_number_roster": "54.0",
			"height":               `6'2"`,
			"weight":               "455",
			"age":                  "27",
			"rookie_season":        "2030",
			"draft_round":          "2",
			"headshot":             "ftp://img",
			"status":               "RES",
			"college_name":         "State",
		},
		rawdata.Row{"gsis_id": "00-002"},
		rawdata.Row{"display_name": "No Id"},
	))

	if len(result.Records) != 1 || len(result.Rejected) != 2 {
		t.Fatalf("expected 1 record and 2 rejections, got %d/%d", len(result.Records), len(result.Rejected))
	}

	p := result.Records[0].(player.Player)
	if p.TeamAbbr != "LAR" {
		t.Fatalf("expected team from fallback column canonicalized to LAR, got %q", p.TeamAbbr)
	}
	if p.Position != "LB" {
		t.Fatalf("expected OLB normalized to LB, got %q", p.Position)
	}
	if p.JerseyNumber == nil || *p.JerseyNumber != 54 {
		t.Fatalf("expected jersey 54 from fallback column, got %v", p.JerseyNumber)
	}
	if p.HeightInches == nil || *p.HeightInches != 74 {
		t.Fatalf("expected 74 inches, got %v", p.HeightInches)
	}
	if p.WeightPounds != nil || p.RookieYear != nil || p.HeadshotURL != "" {
		t.Fatalf("expected out-of-range fields dropped, got %+v", p)
	}
	if p.Age == nil || *p.Age != 27 || p.Status != player.StatusRetired || p.College != "State" {
		t.Fatalf("unexpected player attributes: %+v", p)
	}
	for _, column := range []string{"weight", "rookie_season", "headshot"} {
		if result.DroppedFields[column] != 1 {
			t.Fatalf("expected %s counted as dropped, got %v", column, result.DroppedFields)
		}
	}
}

func TestParseHeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{raw: "6-2", want: 74, ok: true},
		{raw: `5'11"`, want: 71, ok: true},
		{raw: "74", want: 74, ok: true},
		{raw: "73.0", want: 73, ok: true},
		{raw: "6-12", ok: false},
		{raw: "6-2-1", ok: false},
		{raw: "tall", ok: false},
	}

	for _, tc := range tests {
		got, ok := parseHeight(tc.raw)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("parseHeight(%q) = %d, %v; want %d, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMapGames(t *testing.T) {
	t.Parallel()

	result := fixedMapper().Map(ingest.KindGame, batch(
		rawdata.Row{
			"game_id": "G1", "season": "2023", "game_type": "WC", "week": "19",
			"gameday": "2024-01-13", "gametime": "16:30", "home_team": "aa", "away_team": "BB",
			"home_score": "24", "away_score": "21", "roof": "Outdoors", "surface": "Grass",
			"temp": "200", "spread_line": "-3.5",
		},
		rawdata.Row{
			"game_id": "G2", "season": "2023", "game_type": "REG", "week": "25",
			"gameday": "2023-09-10", "home_team": "AA", "away_team": "BB",
		},
		rawdata.Row{"game_id": "G3", "season": "2023", "game_type": "REG", "gameday": "2023-09-10", "home_team": "AA", "away_team": "AA"},
		rawdata.Row{"game_id": "G4", "season": "2023", "game_type": "REG", "gameday": "09/10/2023", "home_team": "AA", "away_team": "BB"},
		rawdata.Row{"game_id": "G5", "season": "2023", "game_type": "XYZ", "gameday": "2023-09-10", "home_team": "AA", "away_team": "BB"},
	))

	if len(result.Records) != 2 || len(result.Rejected) != 3 {
		t.Fatalf("expected 2 records and 3 rejections, got %d/%d", len(result.Records), len(result.Rejected))
	}

	g1 := result.Records[0].(game.Game)
	if g1.SeasonType != game.SeasonTypePost || g1.Week == nil || *g1.Week != 19 {
		t.Fatalf("expected playoff game in week 19, got %+v", g1)
	}
	if g1.HomeTeam != "AA" || !g1.Finished() || g1.Roof != "outdoors" || g1.Surface != "grass" {
		t.Fatalf("unexpected game attributes: %+v", g1)
	}
	if g1.Temperature != nil || g1.HomeSpread == nil || *g1.HomeSpread != -3.5 {
		t.Fatalf("unexpected weather/line fields: %+v", g1)
	}

	g2 := result.Records[1].(game.Game)
	if g2.Week != nil || g2.Finished() {
		t.Fatalf("expected out-of-range week dropped on unfinished game, got %+v", g2)
	}
}

func TestMapPlaysDerivesTypeAndDropsOutOfRange(t *testing.T) {
	t.Parallel()

	result := fixedMapper().Map(ingest.KindPlay, batch(
		rawdata.Row{
			"play_id": "55.0", "game_id": "G1", "season": "2023", "posteam": " aa ", "defteam": "  ",
			"qtr": "7", "down": "3", "play_type": "NA", "pass_attempt": "1.0", "rush_attempt": "1",
			"yards_gained": "12", "epa": "0.8", "passer_player_id": "P1", "receiver_player_id": " ",
			"complete_pass": "1", "touchdown": "0",
		},
		rawdata.Row{"play_id": "56", "game_id": "G1", "season": "2023", "play_type": "Field Goal"},
		rawdata.Row{"play_id": "57", "game_id": "G1", "season": "2023"},
		rawdata.Row{"play_id": "58", "season": "2023"},
	))

	if len(result.Records) != 3 || len(result.Rejected) != 1 {
		t.Fatalf("expected 3 records and 1 rejection, got %d/%d", len(result.Records), len(result.Rejected))
	}

	first := result.Records[0].(play.Play)
	if first.PlayID != "55" || first.NaturalKey() != "G1/55" {
		t.Fatalf("unexpected play key %q", first.NaturalKey())
	}
	if first.Type != play.TypePass {
		t.Fatalf("expected pass to win derivation, got %q", first.Type)
	}
	if first.PossessionTeam != "AA" || first.DefenseTeam != "" || first.ReceiverID != "" {
		t.Fatalf("unexpected references: %+v", first)
	}
	if first.Quarter != nil || result.DroppedFields["qtr"] != 1 {
		t.Fatalf("expected qtr 7 dropped, got %v", first.Quarter)
	}
	if !first.CompletePass || first.Touchdown || first.YardsGained == nil || *first.YardsGained != 12 {
		t.Fatalf("unexpected outcome fields: %+v", first)
	}

	if got := result.Records[1].(play.Play).Type; got != play.TypeFieldGoal {
		t.Fatalf("expected field_goal, got %q", got)
	}
	if got := result.Records[2].(play.Play).Type; got != play.TypeNoPlay {
		t.Fatalf("expected no_play, got %q", got)
	}
}

func TestMapPlaysReadsFieldGoalResult(t *testing.T) {
	t.Parallel()

	result := fixedMapper().Map(ingest.KindPlay, batch(
		rawdata.Row{"play_id": "1", "game_id": "G1", "season": "2024", "play_type": "field_goal", "field_goal_result": "made"},
		rawdata.Row{"play_id": "2", "game_id": "G1", "season": "2024", "play_type": "field_goal", "field_goal_result": "missed"},
		rawdata.Row{"play_id": "3", "game_id": "G1", "season": "2024", "play_type": "field_goal", "field_goal_result": "doink"},
	))
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}

	want := []bool{true, false, false}
	for i, record := range result.Records {
		if got := record.(play.Play).FieldGoalMade; got != want[i] {
			t.Fatalf("play %d: expected made=%v, got %v", i+1, want[i], got)
		}
	}
	if result.DroppedFields["field_goal_result"] != 1 {
		t.Fatalf("expected the unknown result dropped, got %v", result.DroppedFields)
	}
}

func TestMapNeverFailsTheBatch(t *testing.T) {
	t.Parallel()

	rows := []rawdata.Row{
		nil,
		{},
		{"play_id": "1", "game_id": "G1", "season": "banana"},
		{"play_id": "2", "game_id": "G1", "season": "1800"},
		{"play_id": "3", "game_id": "G1", "season": "2023", "yards_gained": "1e309"},
	}

	result := fixedMapper().Map(ingest.KindPlay, batch(rows...))
	if len(result.Records)+len(result.Rejected) != len(rows) {
		t.Fatalf("every row must be either mapped or rejected")
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected only the last row to survive, got %d", len(result.Records))
	}
	for _, rec := range result.Records {
		if err := rec.Validate(); err != nil {
			t.Fatalf("mapped record failed validation: %v", err)
		}
	}
}

func TestResultChunks(t *testing.T) {
	t.Parallel()

	records := make([]ingest.Record, 5)
	for i := range records {
		records[i] = play.Play{GameID: "G1", PlayID: string(rune('a' + i))}
	}

	plays := Result{Kind: ingest.KindPlay, Records: records}
	chunks := plays.Chunks(2)
	if len(chunks) != 3 || len(chunks[2]) != 1 {
		t.Fatalf("expected chunks of 2,2,1, got %d chunks", len(chunks))
	}

	games := Result{Kind: ingest.KindGame, Records: records}
	if got := games.Chunks(2); len(got) != 1 || len(got[0]) != 5 {
		t.Fatalf("expected games in a single chunk")
	}

	if got := (Result{Kind: ingest.KindPlay}).Chunks(10); got != nil {
		t.Fatalf("expected no chunks for empty result")
	}
}
