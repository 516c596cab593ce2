package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/gridiron-stats/internal/app"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/usecase"
	"github.com/spf13/cobra"
)

var errLoadFailed = errors.New("every requested kind failed to load")

func loadCmd(opts *rootOptions) *cobra.Command {
	var (
		seasons []int
		kinds   []string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Fetch, validate and upsert provider data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseKinds(kinds)
			if err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				report, err := a.Pipeline.LoadSeasons(ctx, usecase.LoadInput{Seasons: seasons, Kinds: parsed})
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if totalFailure(report) {
					return errLoadFailed
				}
				return nil
			})
		},
	}
	cmd.Flags().IntSliceVar(&seasons, "season", nil, "Season to load; repeat or comma-separate for several")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Entity kinds to load (teams,games,players,plays); all when empty")
	return cmd
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report stored row counts and season coverage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				status, err := a.Pipeline.Status(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), status)
			})
		},
	}
}

func leadersCmd(opts *rootOptions) *cobra.Command {
	var (
		season    int
		role      string
		minVolume int
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "leaders",
		Short: "Rank passers, rushers or receivers for a season",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				leaders, err := a.Leaders.ComputeLeaders(ctx, usecase.LeaderQuery{
					Season:    season,
					Role:      usecase.LeaderRole(strings.ToLower(strings.TrimSpace(role))),
					MinVolume: minVolume,
					Limit:     limit,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), leaders)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year")
	cmd.Flags().StringVar(&role, "role", string(usecase.RolePasser), "passer, rusher or receiver")
	cmd.Flags().IntVar(&minVolume, "min", 0, "Minimum attempts, carries or targets")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum entries; 0 keeps every qualifier")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func efficiencyCmd(opts *rootOptions) *cobra.Command {
	var (
		season int
		team   string
	)
	cmd := &cobra.Command{
		Use:   "efficiency",
		Short: "Team efficiency for one team, or the league when no team is given",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if strings.TrimSpace(team) == "" {
					league, err := a.Efficiency.ComputeLeagueEfficiency(ctx, season)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), league)
				}
				out, err := a.Efficiency.ComputeTeamEfficiency(ctx, season, team)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year")
	cmd.Flags().StringVar(&team, "team", "", "Team abbreviation")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func featuresCmd(opts *rootOptions) *cobra.Command {
	var (
		season     int
		home, away string
		asOf       string
	)
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Pre-game feature vector for a matchup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.FeatureInput{HomeTeam: home, AwayTeam: away, Season: season}
			if strings.TrimSpace(asOf) != "" {
				cutoff, err := time.Parse(time.DateOnly, strings.TrimSpace(asOf))
				if err != nil {
					return fmt.Errorf("parse --as-of: %w", err)
				}
				input.AsOf = cutoff
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				features, err := a.Features.BuildGameFeatures(ctx, input)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), features)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year; derived from --as-of when omitted")
	cmd.Flags().StringVar(&home, "home", "", "Home team abbreviation")
	cmd.Flags().StringVar(&away, "away", "", "Away team abbreviation")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Exclusive cutoff date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("home")
	_ = cmd.MarkFlagRequired("away")
	return cmd
}

func parseKinds(raw []string) ([]ingest.Kind, error) {
	out := make([]ingest.Kind, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item) == "" {
			continue
		}
		kind, err := ingest.ParseKind(item)
		if err != nil {
			return nil, err
		}
		out = append(out, kind)
	}
	return out, nil
}

// totalFailure reports a run where no kind loaded anything.
func totalFailure(report usecase.PipelineReport) bool {
	if len(report.Results) == 0 {
		return false
	}
	for _, result := range report.Results {
		if result.Success {
			return false
		}
	}
	return true
}
