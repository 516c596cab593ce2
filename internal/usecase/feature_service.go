package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	"github.com/riskibarqy/gridiron-stats/internal/platform/cache"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
)

const (
	defaultRecentGames = 5
	defaultH2HSeasons  = 3
)

// FeatureInput describes one matchup. A zero AsOf uses every finished game
// of Season. Season may be zero when AsOf is set.
type FeatureInput struct {
	HomeTeam string
	AwayTeam string
	Season   int
	AsOf     time.Time
}

// TeamForm is one side's record as of the feature cutoff.
type TeamForm struct {
	Team                 string  `json:"team"`
	GamesPlayed          int     `json:"games_played"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	Ties                 int     `json:"ties"`
	WinPct               float64 `json:"win_pct"`
	PointsPerGame        float64 `json:"ppg"`
	PointsAllowedPerGame float64 `json:"papg"`
	PointDiffPerGame     float64 `json:"point_diff"`
	StrengthOfSchedule   float64 `json:"sos"`
	RecentGames          int     `json:"recent_games"`
	RecentWins           int     `json:"recent_wins"`
	RecentForm           float64 `json:"recent_form"`
}

// HeadToHead is reported from the home team's point of view.
type HeadToHead struct {
	Games          int     `json:"games"`
	HomeWins       int     `json:"home_team_wins"`
	AwayWins       int     `json:"away_team_wins"`
	Ties           int     `json:"ties"`
	AvgTotalPoints float64 `json:"avg_total_points"`
	AvgPointDiff   float64 `json:"avg_point_diff"`
}

type GameFeatures struct {
	HomeTeam string     `json:"home_team"`
	AwayTeam string     `json:"away_team"`
	Season   int        `json:"season"`
	AsOf     *time.Time `json:"as_of,omitempty"`
	Home     TeamForm   `json:"home"`
	Away     TeamForm   `json:"away"`
	H2H      HeadToHead `json:"head_to_head"`

	WinPctDiff           float64 `json:"win_pct_diff"`
	PPGDiff              float64 `json:"ppg_diff"`
	PAPGDiff             float64 `json:"papg_diff"`
	PointDiffAdvantage   float64 `json:"point_diff_advantage"`
	FormDiff             float64 `json:"form_diff"`
	SOSDiff              float64 `json:"sos_diff"`
	IsDivisional         float64 `json:"is_divisional"`
	IsConference         float64 `json:"is_conference"`
	HomeAdvantage        float64 `json:"home_advantage"`
	WeekOfSeason         float64 `json:"week_of_season"`
	DaysSinceSeasonStart float64 `json:"days_since_season_start"`
}

// Vector flattens f into named model inputs.
func (f GameFeatures) Vector() map[string]float64 {
	out := map[string]float64{
		"win_pct_diff":            f.WinPctDiff,
		"ppg_diff":                f.PPGDiff,
		"papg_diff":               f.PAPGDiff,
		"point_diff_advantage":    f.PointDiffAdvantage,
		"form_diff":               f.FormDiff,
		"sos_diff":                f.SOSDiff,
		"is_divisional":           f.IsDivisional,
		"is_conference":           f.IsConference,
		"home_advantage":          f.HomeAdvantage,
		"week_of_season":          f.WeekOfSeason,
		"days_since_season_start": f.DaysSinceSeasonStart,
		"h2h_games":               float64(f.H2H.Games),
		"h2h_home_team_wins":      float64(f.H2H.HomeWins),
		"h2h_away_team_wins":      float64(f.H2H.AwayWins),
		"h2h_ties":                float64(f.H2H.Ties),
		"h2h_avg_total_points":    f.H2H.AvgTotalPoints,
		"h2h_avg_point_diff":      f.H2H.AvgPointDiff,
	}
	for prefix, side := range map[string]TeamForm{"home": f.Home, "away": f.Away} {
		out[prefix+"_games_played"] = float64(side.GamesPlayed)
		out[prefix+"_win_pct"] = side.WinPct
		out[prefix+"_ppg"] = side.PointsPerGame
		out[prefix+"_papg"] = side.PointsAllowedPerGame
		out[prefix+"_point_diff"] = side.PointDiffPerGame
		out[prefix+"_sos"] = side.StrengthOfSchedule
		out[prefix+"_recent_games"] = float64(side.RecentGames)
		out[prefix+"_recent_form"] = side.RecentForm
	}
	return out
}

type FeatureOptions struct {
	RecentGames int
	H2HSeasons  int
	// CacheTTL bounds how long full-season records are reused. Zero keeps
	// them until ForgetSeasons.
	CacheTTL time.Duration
}

// teamRecord is the raw season record of one team up to a cutoff. Opponents
// keeps one entry per game in (date, id) order.
type teamRecord struct {
	Games         int
	Wins          int
	Losses        int
	Ties          int
	PointsFor     int
	PointsAgainst int
	Opponents     []string
}

func (r teamRecord) winPct() float64 {
	if r.Games == 0 {
		return 0.5
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(r.Games)
}

type FeatureService struct {
	games  game.Repository
	teams  team.Repository
	cache  *cache.Store[teamRecord]
	opts   FeatureOptions
	logger *logging.Logger
}

// NewFeatureService owns a cache of full-season team records keyed by season
// and team. Cutoff-qualified records are never stored there.
func NewFeatureService(games game.Repository, teams team.Repository, opts FeatureOptions, logger *logging.Logger) *FeatureService {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.RecentGames <= 0 {
		opts.RecentGames = defaultRecentGames
	}
	if opts.H2HSeasons <= 0 {
		opts.H2HSeasons = defaultH2HSeasons
	}
	return &FeatureService{
		games:  games,
		teams:  teams,
		cache:  cache.NewStore[teamRecord](opts.CacheTTL),
		opts:   opts,
		logger: logger.Named("features"),
	}
}

func (s *FeatureService) BuildGameFeatures(ctx context.Context, input FeatureInput) (GameFeatures, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.BuildGameFeatures")
	defer span.End()

	home := strings.ToUpper(strings.TrimSpace(input.HomeTeam))
	away := strings.ToUpper(strings.TrimSpace(input.AwayTeam))
	if home == "" || away == "" {
		return GameFeatures{}, fmt.Errorf("%w: home and away teams are required", ErrInvalidInput)
	}
	if home == away {
		return GameFeatures{}, fmt.Errorf("%w: home and away teams must differ", ErrInvalidInput)
	}
	season := input.Season
	if season == 0 && !input.AsOf.IsZero() {
		season = SeasonOf(input.AsOf)
	}
	if season <= 0 {
		return GameFeatures{}, fmt.Errorf("%w: season or as-of date is required", ErrInvalidInput)
	}

	call := &featureCall{
		service: s,
		season:  season,
		cutoff:  input.AsOf,
		scratch: make(map[string]teamRecord),
	}

	homeForm, err := call.teamForm(ctx, home)
	if err != nil {
		markSpanFailed(span, err)
		return GameFeatures{}, err
	}
	awayForm, err := call.teamForm(ctx, away)
	if err != nil {
		markSpanFailed(span, err)
		return GameFeatures{}, err
	}
	h2h, err := s.headToHead(ctx, home, away, season, input.AsOf)
	if err != nil {
		markSpanFailed(span, err)
		return GameFeatures{}, err
	}
	divisional, conference, err := s.alignmentFlags(ctx, home, away)
	if err != nil {
		markSpanFailed(span, err)
		return GameFeatures{}, err
	}

	out := GameFeatures{
		HomeTeam:           home,
		AwayTeam:           away,
		Season:             season,
		Home:               homeForm,
		Away:               awayForm,
		H2H:                h2h,
		WinPctDiff:         homeForm.WinPct - awayForm.WinPct,
		PPGDiff:            homeForm.PointsPerGame - awayForm.PointsPerGame,
		PAPGDiff:           awayForm.PointsAllowedPerGame - homeForm.PointsAllowedPerGame,
		PointDiffAdvantage: homeForm.PointDiffPerGame - awayForm.PointDiffPerGame,
		FormDiff:           homeForm.RecentForm - awayForm.RecentForm,
		SOSDiff:            awayForm.StrengthOfSchedule - homeForm.StrengthOfSchedule,
		IsDivisional:       divisional,
		IsConference:       conference,
		HomeAdvantage:      1,
	}
	if !input.AsOf.IsZero() {
		asOf := input.AsOf
		out.AsOf = &asOf
		out.WeekOfSeason = float64(WeekOfSeason(asOf, season))
		out.DaysSinceSeasonStart = float64(DaysSinceSeasonStart(asOf, season))
	}
	return out, nil
}

// featureCall scopes one BuildGameFeatures invocation. scratch memoizes
// cutoff-qualified records for the duration of the call only.
type featureCall struct {
	service *FeatureService
	season  int
	cutoff  time.Time
	scratch map[string]teamRecord
}

func (c *featureCall) teamForm(ctx context.Context, abbr string) (TeamForm, error) {
	record, err := c.record(ctx, abbr)
	if err != nil {
		return TeamForm{}, err
	}
	sos, err := c.strengthOfSchedule(ctx, record)
	if err != nil {
		return TeamForm{}, err
	}
	recent, wins, form, err := c.recentForm(ctx, abbr)
	if err != nil {
		return TeamForm{}, err
	}

	n := float64(record.Games)
	return TeamForm{
		Team:                 abbr,
		GamesPlayed:          record.Games,
		Wins:                 record.Wins,
		Losses:               record.Losses,
		Ties:                 record.Ties,
		WinPct:               record.winPct(),
		PointsPerGame:        ratio(float64(record.PointsFor), n),
		PointsAllowedPerGame: ratio(float64(record.PointsAgainst), n),
		PointDiffPerGame:     ratio(float64(record.PointsFor-record.PointsAgainst), n),
		StrengthOfSchedule:   sos,
		RecentGames:          recent,
		RecentWins:           wins,
		RecentForm:           form,
	}, nil
}

func (c *featureCall) record(ctx context.Context, abbr string) (teamRecord, error) {
	if c.cutoff.IsZero() {
		return c.service.seasonRecord(ctx, abbr, c.season)
	}
	if cached, ok := c.scratch[abbr]; ok {
		return cached, nil
	}
	record, err := c.service.loadRecord(ctx, abbr, c.season, c.cutoff)
	if err != nil {
		return teamRecord{}, err
	}
	c.scratch[abbr] = record
	return record, nil
}

// strengthOfSchedule averages the opponents' win percentage at the same
// cutoff, once per game played.
func (c *featureCall) strengthOfSchedule(ctx context.Context, record teamRecord) (float64, error) {
	if len(record.Opponents) == 0 {
		return 0.5, nil
	}
	var sos mean
	for _, opponent := range record.Opponents {
		opp, err := c.record(ctx, opponent)
		if err != nil {
			return 0, err
		}
		sos.add(opp.winPct())
	}
	return sos.value(), nil
}

// recentForm looks at the last games before the cutoff across every season up
// to the feature season, scaled to [-1, 1].
func (c *featureCall) recentForm(ctx context.Context, abbr string) (int, int, float64, error) {
	games, err := c.service.games.ListFinished(ctx, game.Query{
		Team:     abbr,
		ToSeason: c.season,
		Before:   c.cutoff,
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("list recent games: %w", err)
	}
	if len(games) > c.service.opts.RecentGames {
		games = games[len(games)-c.service.opts.RecentGames:]
	}
	if len(games) == 0 {
		return 0, 0, 0, nil
	}

	var record teamRecord
	for _, g := range games {
		record.tally(g, abbr)
	}
	return record.Games, record.Wins, record.winPct()*2 - 1, nil
}

func recordKey(season int, abbr string) string {
	return fmt.Sprintf("team-record:%d:%s", season, abbr)
}

func (s *FeatureService) seasonRecord(ctx context.Context, abbr string, season int) (teamRecord, error) {
	return s.cache.GetOrLoad(ctx, recordKey(season, abbr), func(ctx context.Context) (teamRecord, error) {
		return s.loadRecord(ctx, abbr, season, time.Time{})
	})
}

// ForgetSeasons drops cached records for the given seasons, or every record
// when none are given.
func (s *FeatureService) ForgetSeasons(seasons ...int) int {
	if len(seasons) == 0 {
		return s.cache.Forget("team-record:")
	}
	removed := 0
	for _, season := range seasons {
		removed += s.cache.Forget(fmt.Sprintf("team-record:%d:", season))
	}
	return removed
}

// CacheStats reports lookups against the full-season record cache.
func (s *FeatureService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

func (s *FeatureService) loadRecord(ctx context.Context, abbr string, season int, cutoff time.Time) (teamRecord, error) {
	games, err := s.games.ListFinished(ctx, game.Query{
		Team:       abbr,
		FromSeason: season,
		ToSeason:   season,
		Before:     cutoff,
	})
	if err != nil {
		return teamRecord{}, fmt.Errorf("list games for %s: %w", abbr, err)
	}
	var record teamRecord
	for _, g := range games {
		record.tally(g, abbr)
	}
	return record, nil
}

func (r *teamRecord) tally(g game.Game, abbr string) {
	if !g.Finished() || !g.Involves(abbr) {
		return
	}
	scored, allowed := g.PointsFor(abbr)
	r.Games++
	r.PointsFor += scored
	r.PointsAgainst += allowed
	r.Opponents = append(r.Opponents, g.Opponent(abbr))
	switch {
	case scored > allowed:
		r.Wins++
	case scored < allowed:
		r.Losses++
	default:
		r.Ties++
	}
}

func (s *FeatureService) headToHead(ctx context.Context, home, away string, season int, cutoff time.Time) (HeadToHead, error) {
	games, err := s.games.ListFinished(ctx, game.Query{
		Team:       home,
		Opponent:   away,
		FromSeason: season - s.opts.H2HSeasons + 1,
		ToSeason:   season,
		Before:     cutoff,
	})
	if err != nil {
		return HeadToHead{}, fmt.Errorf("list head-to-head games: %w", err)
	}

	var out HeadToHead
	var total, diff int
	for _, g := range games {
		if !g.Finished() {
			continue
		}
		scored, allowed := g.PointsFor(home)
		out.Games++
		total += scored + allowed
		diff += scored - allowed
		switch {
		case scored > allowed:
			out.HomeWins++
		case scored < allowed:
			out.AwayWins++
		default:
			out.Ties++
		}
	}
	n := float64(out.Games)
	out.AvgTotalPoints = ratio(float64(total), n)
	out.AvgPointDiff = ratio(float64(diff), n)
	return out, nil
}

// alignmentFlags prefers the stored alignment and falls back to the static
// franchise table.
func (s *FeatureService) alignmentFlags(ctx context.Context, home, away string) (float64, float64, error) {
	homeAlign, homeKnown, err := s.alignment(ctx, home)
	if err != nil {
		return 0, 0, err
	}
	awayAlign, awayKnown, err := s.alignment(ctx, away)
	if err != nil {
		return 0, 0, err
	}
	if !homeKnown || !awayKnown {
		return 0, 0.5, nil
	}

	divisional, conference := 0.0, 0.0
	if homeAlign.Conference == awayAlign.Conference {
		conference = 1
		if homeAlign.Division == awayAlign.Division {
			divisional = 1
		}
	}
	return divisional, conference, nil
}

func (s *FeatureService) alignment(ctx context.Context, abbr string) (team.Alignment, bool, error) {
	if s.teams != nil {
		item, exists, err := s.teams.GetByAbbr(ctx, abbr)
		if err != nil {
			return team.Alignment{}, false, fmt.Errorf("get team %s: %w", abbr, err)
		}
		if exists && item.Conference != "" && item.Division != "" {
			return team.Alignment{Conference: item.Conference, Division: item.Division}, true, nil
		}
	}
	align, ok := team.Lookup(abbr)
	return align, ok, nil
}

// SeasonOf maps a date to the season it belongs to. January and February
// games close out the previous season.
func SeasonOf(date time.Time) int {
	if date.Month() <= time.February {
		return date.Year() - 1
	}
	return date.Year()
}

// WeekOfSeason counts weeks from the first Thursday of September, clamped to
// 1..22.
func WeekOfSeason(date time.Time, season int) int {
	start := time.Date(season, time.September, 1, 0, 0, 0, 0, time.UTC)
	for start.Weekday() != time.Thursday {
		start = start.AddDate(0, 0, 1)
	}
	days := daysBetween(start, date)
	week := 1
	if days > 0 {
		week = days/7 + 1
	}
	return min(max(week, 1), 22)
}

// DaysSinceSeasonStart counts days from September 1, never negative.
func DaysSinceSeasonStart(date time.Time, season int) int {
	start := time.Date(season, time.September, 1, 0, 0, 0, 0, time.UTC)
	return max(daysBetween(start, date), 0)
}

func daysBetween(from, to time.Time) int {
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
