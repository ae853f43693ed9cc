package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/ground-setup/external/dribl"
	"github.com/riskibarqy/ground-setup/external/jobqueue"
	"github.com/riskibarqy/ground-setup/internal/config"
	cacherepo "github.com/riskibarqy/ground-setup/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/ground-setup/internal/interfaces/httpapi"
	"github.com/riskibarqy/ground-setup/internal/metrics"
	basecache "github.com/riskibarqy/ground-setup/internal/platform/cache"
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"github.com/riskibarqy/ground-setup/internal/usecase"
)

// App holds the wired services shared by the HTTP server and the CLI.
type App struct {
	Sync    *usecase.SyncService
	Jobs    *usecase.SyncJobService
	Query   *usecase.QueryService
	Metrics *metrics.Registry

	cfg     config.Config
	logger  *logging.Logger
	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger, repos)
}

// newApp wires the services over opened repositories. The sync reads and
// writes the stores directly; only the query side goes through the cache.
func newApp(cfg config.Config, logger *logging.Logger, repos repositories) (*App, error) {
	a := &App{cfg: cfg, logger: logger}
	if repos.close != nil {
		a.closers = append(a.closers, repos.close)
	}

	reads := repos
	var invalidator *cacherepo.Invalidator
	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		reads.fixtures = cacherepo.NewFixtureRepository(repos.fixtures, store)
		reads.rosters = cacherepo.NewRosterRepository(repos.rosters, store)
		reads.views = cacherepo.NewGroundViewRepository(repos.views, store)
		invalidator = cacherepo.NewInvalidator(store)
	}

	driblClient := dribl.NewClient(dribl.ClientConfig{
		BaseURL:        cfg.DriblBaseURL,
		Season:         cfg.DriblSeason,
		Competition:    cfg.DriblCompetition,
		Club:           cfg.DriblClub,
		Tenant:         cfg.DriblTenant,
		Timeout:        cfg.DriblTimeout,
		RateLimit:      cfg.DriblRateLimit,
		Logger:         logger,
		CircuitBreaker: cfg.DriblCircuit,
	})

	deriver, err := usecase.NewRosterDeriver(cfg.ClubName, cfg.CollationLocale)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build roster deriver: %w", err)
	}

	a.Sync = usecase.NewSyncService(
		usecase.NewFixtureFetcher(driblClient, logger.WithComponent("fetcher")),
		deriver,
		usecase.NewGroundViewBuilder(cfg.ClubName, cfg.ClubGrounds),
		repos.fixtures,
		repos.rosters,
		repos.views,
		repos.runs,
		usecase.SyncConfig{
			HorizonDays: cfg.HorizonDays,
			WeekAnchor:  cfg.WeekStartDay,
			Location:    cfg.Location,
		},
		logger,
	)
	if invalidator != nil {
		a.Sync.AddWriteListener(invalidator)
	}
	if cfg.MetricsEnabled {
		a.Metrics = metrics.New()
		a.Sync.SetObserver(a.Metrics)
	}

	a.Jobs = usecase.NewSyncJobService(a.Sync, newJobQueue(cfg, logger), usecase.SyncJobConfig{Interval: cfg.SyncInterval}, logger)
	a.Query = usecase.NewQueryService(reads.fixtures, reads.rosters, reads.views, reads.runs, cfg.Location)

	logger.Info("application wired",
		"store", cfg.Store,
		"cache", cfg.CacheEnabled,
		"metrics", cfg.MetricsEnabled,
		"qstash", cfg.QStashEnabled,
	)
	return a, nil
}

func newJobQueue(cfg config.Config, logger *logging.Logger) usecase.JobQueue {
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue()
	}
	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker:   cfg.QStashCircuit,
	}, logger)
}

// Handler builds the HTTP router over the wired services.
func (a *App) Handler() http.Handler {
	routerCfg := httpapi.RouterConfig{
		Logger:             a.logger,
		CORSAllowedOrigins: a.cfg.CORSAllowedOrigins,
		InternalJobToken:   a.cfg.InternalJobToken,
	}
	if a.Metrics != nil {
		routerCfg.Metrics = a.Metrics
	}
	handler := httpapi.NewHandler(a.Sync, a.Jobs, a.Query, a.logger)
	return httpapi.NewRouter(handler, routerCfg)
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      a.Handler(),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}, nil
}

// Close releases the store connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
