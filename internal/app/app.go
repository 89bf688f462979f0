package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/matchsight/matchsight/external/statsfeed"
	"github.com/matchsight/matchsight/internal/config"
	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	"github.com/matchsight/matchsight/internal/infrastructure/repository/file"
	"github.com/matchsight/matchsight/internal/infrastructure/repository/memory"
	"github.com/matchsight/matchsight/internal/infrastructure/repository/postgres"
	"github.com/matchsight/matchsight/internal/interfaces/httpapi"
	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/matchsight/matchsight/internal/platform/resilience"
	"github.com/matchsight/matchsight/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"
)

// App bundles the wired dependencies shared by cmd/api and cmd/sync.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	Store     rawmatch.Store
	Corpus    *usecase.CorpusProvider
	Analytics *usecase.AnalyticsService
	Squad     *usecase.SquadService
	Sync      *usecase.SyncService

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	store, err := a.buildStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store

	a.Corpus = usecase.NewCorpusProvider(store, cfg.CorpusCacheTTL)
	a.Analytics = usecase.NewAnalyticsService(a.Corpus)
	a.Squad = usecase.NewSquadService(a.Corpus)

	var provider usecase.MatchFeedProvider
	if cfg.FeedConfigured() {
		provider = statsfeed.NewClient(statsfeed.ClientConfig{
			BaseURL:              cfg.FeedBaseURL,
			OAuthURL:             cfg.FeedOAuthURL,
			OutletKey:            cfg.FeedOutletKey,
			SecretKey:            cfg.FeedSecretKey,
			TournamentCalendarID: cfg.TournamentCalendarID,
			Sport:                cfg.FeedSport,
			Timeout:              cfg.FeedTimeout,
			MaxRetries:           cfg.FeedMaxRetries,
			Logger:               logger,
			CircuitBreaker: resilience.BreakerConfig{
				Enabled:          cfg.FeedCircuitEnabled,
				FailureThreshold: cfg.FeedCircuitFailureCount,
				Cooldown:         cfg.FeedCircuitOpenTimeout,
				ProbeLimit:       cfg.FeedCircuitHalfOpenMaxReq,
			},
		})
	}

	a.Sync = usecase.NewSyncService(provider, store, a.Corpus, usecase.SyncConfig{
		Competition:          cfg.CompetitionName,
		Season:               cfg.SeasonName,
		TournamentCalendarID: cfg.TournamentCalendarID,
		Workers:              cfg.SyncWorkers,
		FetchDelay:           cfg.SyncFetchDelay,
		StaleAfter:           cfg.StaleAfter,
	}, logger)

	return a, nil
}

// HTTPServer builds the API server on top of the wired services.
func (a *App) HTTPServer() (*http.Server, error) {
	if a.Config.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(a.Analytics, a.Squad, a.Sync, a.Logger)
	router := httpapi.NewRouter(
		handler,
		a.Logger,
		a.Config.SwaggerEnabled,
		a.Config.CORSAllowedOrigins,
		a.Config.InternalJobToken,
	)

	return &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}, nil
}

// Close releases resources held by the wiring (currently the DB pool).
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) buildStore(cfg config.Config, logger *logging.Logger) (rawmatch.Store, error) {
	switch cfg.CorpusStore {
	case config.StoreMemory:
		return memory.NewCorpusStore(), nil
	case config.StoreFile:
		return file.NewCorpusStore(cfg.CorpusDir, logger), nil
	case config.StorePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		return postgres.NewCorpusStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported corpus store %q", cfg.CorpusStore)
	}
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	return db, nil
}
