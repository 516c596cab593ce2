package app

import (
	"context"
	"fmt"
	"net/http"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/gridiron-stats/external/nflverse"
	"github.com/riskibarqy/gridiron-stats/internal/config"
	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/domain/rawdata"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	cacherepo "github.com/riskibarqy/gridiron-stats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/gridiron-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gridiron-stats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/gridiron-stats/internal/mapper"
	idgen "github.com/riskibarqy/gridiron-stats/internal/platform/id"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
	"github.com/riskibarqy/gridiron-stats/internal/platform/resilience"
	"github.com/riskibarqy/gridiron-stats/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// Repositories is the storage side of the pipeline.
type Repositories struct {
	Store   ingest.Store
	Status  ingest.StatusRepository
	Teams   team.Repository
	Games   game.Repository
	Players player.Repository
	Plays   play.Repository
}

type Options struct {
	// InMemory keeps every record in process memory; nothing is persisted.
	InMemory bool
}

// App holds the wired services behind the CLI commands.
type App struct {
	Config     config.Config
	Logger     *logging.Logger
	Pipeline   *usecase.PipelineService
	Leaders    *usecase.LeaderService
	Efficiency *usecase.EfficiencyService
	Features   *usecase.FeatureService

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	source := NewSource(cfg, logger)

	if opts.InMemory {
		logger.Info("using in-memory store", "source", cfg.SourceKind)
		return NewWithRepositories(cfg, logger, source, MemoryRepositories(memory.NewStore())), nil
	}

	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL), "max_open_conns", cfg.DBMaxOpenConns)

	app := NewWithRepositories(cfg, logger, source, PostgresRepositories(db))
	app.closers = append(app.closers, db.Close)
	return app, nil
}

func NewWithRepositories(cfg config.Config, logger *logging.Logger, source rawdata.Source, repos Repositories) *App {
	if logger == nil {
		logger = logging.Default()
	}

	teams := cacherepo.NewTeamRepository(repos.Teams, cfg.StatsCacheTTL)
	features := usecase.NewFeatureService(
		repos.Games,
		teams,
		usecase.FeatureOptions{
			RecentGames: cfg.FeatureRecentGames,
			H2HSeasons:  cfg.FeatureH2HSeasons,
			CacheTTL:    cfg.StatsCacheTTL,
		},
		logger,
	)

	pipeline := usecase.NewPipelineService(
		source,
		mapper.New(),
		usecase.NewLoaderService(logger),
		repos.Store,
		repos.Status,
		idgen.NewTimeOrderedGenerator(),
		usecase.PipelineOptions{
			ChunkSize:     cfg.ChunkSize,
			SeasonWorkers: cfg.SeasonWorkers,
			AfterLoad: func(ctx context.Context, result ingest.LoadResult) {
				if result.RecordsInserted+result.RecordsUpdated == 0 {
					return
				}
				switch result.Kind {
				case ingest.KindTeam:
					teams.Forget()
				case ingest.KindGame:
					if removed := features.ForgetSeasons(); removed > 0 {
						logger.DebugContext(ctx, "team record cache cleared after game load", "entries", removed)
					}
				}
			},
		},
		logger,
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Pipeline:   pipeline,
		Leaders:    usecase.NewLeaderService(repos.Plays, repos.Players, logger),
		Efficiency: usecase.NewEfficiencyService(repos.Plays, repos.Games, teams, cfg.StatsWorkers, logger),
		Features:   features,
	}
}

func (a *App) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = crerr.CombineErrors(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Store:   store,
		Status:  memory.NewStatusRepository(store),
		Teams:   memory.NewTeamRepository(store),
		Games:   memory.NewGameRepository(store),
		Players: memory.NewPlayerRepository(store),
		Plays:   memory.NewPlayRepository(store),
	}
}

func PostgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Store:   postgres.NewStore(db),
		Status:  postgres.NewStatusRepository(db),
		Teams:   postgres.NewTeamRepository(db),
		Games:   postgres.NewGameRepository(db),
		Players: postgres.NewPlayerRepository(db),
		Plays:   postgres.NewPlayRepository(db),
	}
}

// OpenDB opens the traced Postgres pool and verifies it answers.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBApplicationName)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func NewSource(cfg config.Config, logger *logging.Logger) rawdata.Source {
	if cfg.SourceKind == config.SourceDir {
		return nflverse.NewDirSource(cfg.SourceDir, logger)
	}

	return nflverse.NewHTTPSource(nflverse.HTTPSourceConfig{
		HTTPClient: &http.Client{Timeout: cfg.SourceTimeout},
		BaseURL:    cfg.SourceBaseURL,
		Timeout:    cfg.SourceTimeout,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SourceCircuitEnabled,
			FailureThreshold: cfg.SourceCircuitFailureCount,
			OpenTimeout:      cfg.SourceCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SourceCircuitHalfOpenMaxReq,
		},
	})
}
