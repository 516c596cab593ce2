package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/rawdata"
	"github.com/riskibarqy/gridiron-stats/internal/mapper"
	"github.com/riskibarqy/gridiron-stats/internal/platform/id"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

// LoadInput selects what one pipeline run loads. Empty Kinds loads all four.
type LoadInput struct {
	Seasons []int
	Kinds   []ingest.Kind
}

type PipelineReport struct {
	RunID           string              `json:"run_id"`
	Seasons         []int               `json:"seasons"`
	Results         []ingest.LoadResult `json:"results"`
	Success         bool                `json:"success"`
	DurationSeconds float64             `json:"duration_seconds"`
}

type PipelineOptions struct {
	ChunkSize     int
	SeasonWorkers int
	// AfterLoad, when set, sees every result of a run in report order once
	// the run has finished.
	AfterLoad func(ctx context.Context, result ingest.LoadResult)
}

type PipelineService struct {
	source rawdata.Source
	mapper *mapper.Mapper
	loader *LoaderService
	store  ingest.Store
	status ingest.StatusRepository
	ids    id.Generator
	opts   PipelineOptions
	logger *logging.Logger
}

func NewPipelineService(
	source rawdata.Source,
	recordMapper *mapper.Mapper,
	loader *LoaderService,
	store ingest.Store,
	status ingest.StatusRepository,
	ids id.Generator,
	opts PipelineOptions,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if recordMapper == nil {
		recordMapper = mapper.New()
	}
	if loader == nil {
		loader = NewLoaderService(logger)
	}
	if ids == nil {
		ids = id.NewTimeOrderedGenerator()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = mapper.DefaultChunkSize
	}
	if opts.SeasonWorkers <= 0 {
		opts.SeasonWorkers = 1
	}
	return &PipelineService{
		source: source,
		mapper: recordMapper,
		loader: loader,
		store:  store,
		status: status,
		ids:    ids,
		opts:   opts,
		logger: logger.Named("pipeline"),
	}
}

// LoadSeasons runs fetch, map and load for every requested kind in
// dependency order. A failed kind never stops the kinds after it.
func (s *PipelineService) LoadSeasons(ctx context.Context, input LoadInput) (PipelineReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.LoadSeasons", attribute.IntSlice("nfl.seasons", input.Seasons))
	defer span.End()

	seasons, kinds, err := normalizeLoadInput(input)
	if err != nil {
		return PipelineReport{}, err
	}
	runID, err := s.ids.NewID()
	if err != nil {
		return PipelineReport{}, fmt.Errorf("generate run id: %w", err)
	}

	started := time.Now()
	logger := s.logger.With("run_id", runID)
	logger.InfoContext(ctx, "pipeline started", "seasons", seasons, "kinds", kinds)

	report := PipelineReport{
		RunID:   runID,
		Seasons: seasons,
		Results: make([]ingest.LoadResult, 0, len(kinds)+len(seasons)),
	}

	var reference []ingest.Kind
	loadPlays := false
	for _, kind := range kinds {
		if kind == ingest.KindPlay {
			loadPlays = true
			continue
		}
		reference = append(reference, kind)
	}

	if len(reference) > 0 {
		report.Results = append(report.Results, s.loadReferenceKinds(ctx, logger, reference, seasons)...)
	}
	if loadPlays {
		results, err := s.loadPlaysBySeason(ctx, logger, seasons)
		if err != nil {
			markSpanFailed(span, err)
			return PipelineReport{}, err
		}
		report.Results = append(report.Results, results...)
	}

	report.Success = true
	for _, result := range report.Results {
		if !result.Success {
			report.Success = false
			break
		}
	}
	report.DurationSeconds = time.Since(started).Seconds()

	if s.opts.AfterLoad != nil {
		for _, result := range report.Results {
			s.opts.AfterLoad(ctx, result)
		}
	}

	logger.InfoContext(ctx, "pipeline finished",
		"success", report.Success,
		"results", len(report.Results),
		"duration_seconds", report.DurationSeconds,
	)
	return report, nil
}

// loadReferenceKinds loads teams, games and players sequentially on a single
// session.
func (s *PipelineService) loadReferenceKinds(ctx context.Context, logger *logging.Logger, kinds []ingest.Kind, seasons []int) []ingest.LoadResult {
	out := make([]ingest.LoadResult, 0, len(kinds))

	session, err := s.store.Acquire(ctx)
	if err != nil {
		for _, kind := range kinds {
			out = append(out, ingest.FailedResult(kind, fmt.Errorf("acquire store session: %w", err), time.Now()))
		}
		return out
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.WarnContext(ctx, "close store session failed", "error", err)
		}
	}()

	for _, kind := range kinds {
		out = append(out, s.runKind(ctx, logger, session, kind, seasons, 0))
	}
	return out
}

// loadPlaysBySeason treats every season as an independent run with its own
// session.
func (s *PipelineService) loadPlaysBySeason(ctx context.Context, logger *logging.Logger, seasons []int) ([]ingest.LoadResult, error) {
	workerPool, err := ants.NewPool(min(s.opts.SeasonWorkers, len(seasons)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
		results = make([]ingest.LoadResult, 0, len(seasons))
	)
	for _, season := range seasons {
		season := season
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()
			result := s.loadSeasonPlays(ctx, logger, season)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Season < results[j].Season
	})
	return results, nil
}

func (s *PipelineService) loadSeasonPlays(ctx context.Context, logger *logging.Logger, season int) ingest.LoadResult {
	seasonLogger := logger.With("season", season)

	session, err := s.store.Acquire(ctx)
	if err != nil {
		result := ingest.FailedResult(ingest.KindPlay, fmt.Errorf("acquire store session: %w", err), time.Now())
		result.Season = season
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			seasonLogger.WarnContext(ctx, "close store session failed", "error", err)
		}
	}()

	return s.runKind(ctx, seasonLogger, session, ingest.KindPlay, []int{season}, season)
}

func (s *PipelineService) runKind(ctx context.Context, logger *logging.Logger, session ingest.Session, kind ingest.Kind, seasons []int, season int) ingest.LoadResult {
	started := time.Now()

	batch, err := s.source.Fetch(ctx, kind, seasons)
	if err != nil {
		if !crerr.Is(err, ingest.ErrFetch) {
			err = crerr.Mark(err, ingest.ErrFetch)
		}
		logger.WarnContext(ctx, "fetch failed", "kind", kind, "error", err)
		result := ingest.FailedResult(kind, err, started)
		result.Season = season
		return result
	}

	mapped := s.mapper.Map(kind, batch)
	for column, count := range mapped.DroppedFields {
		logger.DebugContext(ctx, "optional field dropped", "kind", kind, "column", column, "rows", count)
	}
	if len(mapped.Rejected) > 0 {
		logger.WarnContext(ctx, "rows rejected",
			"kind", kind,
			"rejected", len(mapped.Rejected),
			"rows", len(batch.Rows),
		)
	}

	rejections := make([]string, 0, len(mapped.Rejected))
	for _, rejection := range mapped.Rejected {
		rejections = append(rejections, fmt.Sprintf("%s row %d: %s", kind, rejection.Index, rejection.Reason))
	}
	result := s.loader.LoadWithRejections(ctx, session, kind, mapped.Chunks(s.opts.ChunkSize), rejections)
	result.Season = season
	result.StartTime = started
	result.EndTime = time.Now()
	result.DurationSeconds = result.EndTime.Sub(started).Seconds()
	return result
}

// Status reports store coverage. The queries run concurrently.
func (s *PipelineService) Status(ctx context.Context) (ingest.LoadStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Status")
	defer span.End()

	var (
		mu     sync.Mutex
		status = ingest.LoadStatus{Counts: make(map[ingest.Kind]int64, len(ingest.DependencyOrder))}
	)

	tasks := pool.New().WithErrors().WithContext(ctx)
	for _, kind := range ingest.DependencyOrder {
		kind := kind
		tasks.Go(func(ctx context.Context) error {
			count, err := s.status.Count(ctx, kind)
			if err != nil {
				return fmt.Errorf("count %s: %w", kind, err)
			}
			mu.Lock()
			status.Counts[kind] = count
			mu.Unlock()
			return nil
		})
	}
	tasks.Go(func(ctx context.Context) error {
		date, season, ok, err := s.status.LatestGame(ctx)
		if err != nil {
			return fmt.Errorf("latest game: %w", err)
		}
		if ok {
			mu.Lock()
			status.LatestGameDate = &date
			status.LatestGameSeason = season
			mu.Unlock()
		}
		return nil
	})
	tasks.Go(func(ctx context.Context) error {
		seasons, err := s.status.ListSeasons(ctx)
		if err != nil {
			return fmt.Errorf("list seasons: %w", err)
		}
		mu.Lock()
		status.Seasons = seasons
		mu.Unlock()
		return nil
	})

	if err := tasks.Wait(); err != nil {
		markSpanFailed(span, err)
		return ingest.LoadStatus{}, crerr.Mark(err, ErrDependencyUnavailable)
	}
	if status.Seasons == nil {
		status.Seasons = []int{}
	}
	return status, nil
}

func normalizeLoadInput(input LoadInput) ([]int, []ingest.Kind, error) {
	seen := make(map[int]struct{}, len(input.Seasons))
	seasons := make([]int, 0, len(input.Seasons))
	for _, season := range input.Seasons {
		if season < 1920 || season > 2100 {
			return nil, nil, fmt.Errorf("%w: season %d out of range", ErrInvalidInput, season)
		}
		if _, ok := seen[season]; ok {
			continue
		}
		seen[season] = struct{}{}
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)

	kinds := input.Kinds
	if len(kinds) == 0 {
		kinds = ingest.DependencyOrder
	}
	unique := make(map[ingest.Kind]struct{}, len(kinds))
	ordered := make([]ingest.Kind, 0, len(kinds))
	for _, kind := range kinds {
		if kind.Rank() >= len(ingest.DependencyOrder) {
			return nil, nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, kind)
		}
		if _, ok := unique[kind]; ok {
			continue
		}
		unique[kind] = struct{}{}
		ordered = append(ordered, kind)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Rank() < ordered[j].Rank()
	})

	for _, kind := range ordered {
		seasonal := kind == ingest.KindGame || kind == ingest.KindPlay
		if seasonal && len(seasons) == 0 {
			return nil, nil, fmt.Errorf("%w: kind %s requires at least one season", ErrInvalidInput, kind)
		}
	}
	return seasons, ordered, nil
}
