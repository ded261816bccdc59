package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"RecipeScanner/internal/config"
	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/httpapi"
	"RecipeScanner/internal/infrastructure/contextstore"
	"RecipeScanner/internal/infrastructure/inbox"
	"RecipeScanner/internal/infrastructure/notion"
	"RecipeScanner/internal/infrastructure/parser"
	"RecipeScanner/internal/infrastructure/pinclicks"
	"RecipeScanner/internal/infrastructure/scheduler"
	"RecipeScanner/internal/infrastructure/storage"
	"RecipeScanner/internal/infrastructure/telegram"
	"RecipeScanner/internal/keywords"
	"RecipeScanner/internal/logging"
	"RecipeScanner/internal/metrics"
	"RecipeScanner/internal/ports"
	"RecipeScanner/internal/usecase"
	"RecipeScanner/pkg/logger"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	metrics    *metrics.Metrics
	keywords   *keywords.Generator
	ingestor   *usecase.Ingestor
	automation *usecase.Automation
	scheduler  *usecase.Scheduler
	journal    *storage.PostgresRepository
	db         *sql.DB

	// notionErr is set when the remote store cannot be used; ingest paths report it.
	notionErr error
}

// New builds the application graph. Optional adapters (journal, notifier, scheduler)
// are left out when their configuration is empty.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(reg)

	a.keywords = keywords.New(keywords.Deps{
		Themes:  cfg.Themes(),
		Store:   contextstore.NewYAMLStore(cfg.Keywords.ContextFile),
		Metrics: a.metrics,
		Logger:  baseLogger,
	})

	var runs ports.RunRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		a.journal = storage.NewPostgresRepository(db)
		runs = a.journal
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.Enabled() {
		notifier = telegram.NewNotifier(tg.BaseURL, tg.BotToken, tg.ChatID)
	}

	var upserter *usecase.Upserter
	if err := cfg.Notion.Validate(); err != nil {
		a.notionErr = err
		baseLogger.Warn("notion is not configured, ingest is disabled", "error", err)
	} else {
		client := notion.NewClient(notion.Options{
			BaseURL:           cfg.Notion.BaseURL,
			Token:             cfg.Notion.APIKey,
			Version:           cfg.Notion.Version,
			RequestsPerSecond: cfg.Notion.RequestsPerSecond,
			Timeout:           cfg.Notion.Timeout,
		})
		store := notion.NewStore(notion.StoreDeps{
			Client:     client,
			RecipesDB:  cfg.Notion.RecipesDB,
			WebsitesDB: cfg.Notion.WebsitesDB,
			Logger:     baseLogger,
		})
		upserter = usecase.NewUpserter(usecase.UpserterDeps{
			Store:         store,
			Resolver:      usecase.NewResolver(store, baseLogger),
			Stats:         usecase.NewStatsRecorder(store, baseLogger),
			Metrics:       a.metrics,
			Logger:        baseLogger,
			ChunkSize:     cfg.Upsert.ChunkSize,
			ChunkInterval: cfg.Upsert.ChunkInterval,
			WriteTimeout:  cfg.Upsert.WriteTimeout,
		})
	}

	a.ingestor = usecase.NewIngestor(usecase.IngestorDeps{
		Source:   parser.NewFileSource(parser.DefaultRegistry(), baseLogger),
		Upserter: upserter,
		Runs:     runs,
		Notifier: notifier,
		Metrics:  a.metrics,
		Logger:   baseLogger,
	})

	a.automation = usecase.NewAutomation(usecase.AutomationDeps{
		Websites: cfg.WebsiteList,
		Keywords: a.keywords,
		Exporter: pinclicks.NewExporter(pinclicks.Options{
			BaseURL:        cfg.PinClicks.BaseURL,
			SearchPath:     cfg.PinClicks.SearchPath,
			ExportSelector: cfg.PinClicks.ExportSelector,
			Cookie:         cfg.PinClicks.Cookie,
			DownloadDir:    cfg.PinClicks.DownloadDir,
			Logger:         baseLogger,
		}),
		Ingestor: a.ingestor,
		Logger:   baseLogger,
		Delay:    cfg.Scheduler.WebsiteDelay,
	})

	if cfg.Scheduler.Enabled {
		driver, err := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Timezone, baseLogger)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		a.scheduler = usecase.NewScheduler(driver, a.automation, baseLogger)
	}

	return a, nil
}

// Keywords exposes the keyword generator to command handlers.
func (a *Application) Keywords() *keywords.Generator {
	return a.keywords
}

// RequireNotion reports missing remote store credentials.
func (a *Application) RequireNotion() error {
	return a.notionErr
}

// Website resolves a domain against the configured websites.
func (a *Application) Website(websiteDomain, name string) domain.Website {
	websiteDomain = strings.ToLower(strings.TrimSpace(websiteDomain))
	for _, w := range a.cfg.WebsiteList() {
		if w.Domain == websiteDomain {
			if name != "" {
				w.Name = name
			}
			return w
		}
	}
	return domain.Website{Domain: websiteDomain, Name: name, Active: true}
}

// Ingest processes export files for one website as a single run.
func (a *Application) Ingest(ctx context.Context, paths []string, site domain.Website) (domain.RunSummary, error) {
	if err := a.RequireNotion(); err != nil {
		return domain.RunSummary{}, err
	}
	if err := a.initJournal(ctx); err != nil {
		return domain.RunSummary{}, err
	}
	jobs := make([]usecase.FileJob, 0, len(paths))
	for _, p := range paths {
		jobs = append(jobs, usecase.FileJob{Path: p, Website: site})
	}
	return a.ingestor.IngestFiles(ctx, jobs), nil
}

// Run performs a single automation pass over the configured websites.
func (a *Application) Run(ctx context.Context, opts usecase.AutomationOptions) (domain.RunSummary, error) {
	if err := a.RequireNotion(); err != nil {
		return domain.RunSummary{}, err
	}
	if err := a.initJournal(ctx); err != nil {
		return domain.RunSummary{}, err
	}
	return a.automation.Run(ctx, opts)
}

// RecentRuns reads the run journal; it fails when no database is configured.
func (a *Application) RecentRuns(ctx context.Context, websiteDomain string, limit uint64) ([]domain.RunRecord, error) {
	if a.journal == nil {
		return nil, fmt.Errorf("run journal is disabled: set %s", "DATABASE_DSN")
	}
	return a.journal.RecentRuns(ctx, websiteDomain, limit)
}

// Serve runs the HTTP API, the inbox watcher and the scheduler until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.initJournal(ctx); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = logger.FromSlog(a.logger, "gin", slog.LevelDebug).Writer()

	deps := httpapi.Deps{
		Keywords:   a.keywords,
		Automation: a.automation,
		Metrics:    a.metrics,
		Logger:     a.logger,
		Version:    Version,
	}
	if a.notionErr == nil {
		deps.Uploader = a.ingestor
	}
	if a.journal != nil {
		deps.Runs = a.journal
	}
	server := httpapi.NewServer(a.cfg.Server.Addr, httpapi.NewRouter(deps), a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })

	if a.cfg.Inbox.Dir != "" && a.notionErr == nil {
		watcher := inbox.NewWatcher(a.cfg.Inbox.Dir, a.ingestDropped, a.cfg.Inbox.Settle, a.logger)
		g.Go(func() error { return watcher.Run(gctx) })
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(gctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduled automation enabled",
			"cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Timezone)
	}

	err := g.Wait()

	stopCtx := context.WithoutCancel(ctx)
	if a.scheduler != nil {
		if serr := a.scheduler.Stop(stopCtx); serr != nil {
			a.logger.Warn("stop scheduler", "error", serr)
		}
	}
	if serr := a.automation.Stop(stopCtx); serr != nil {
		a.logger.Warn("stop automation", "error", serr)
	}
	return err
}

func (a *Application) ingestDropped(ctx context.Context, path, websiteDomain string) error {
	summary := a.ingestor.IngestFiles(ctx, []usecase.FileJob{{Path: path, Website: a.Website(websiteDomain, "")}})
	if summary.Processed == 0 {
		return fmt.Errorf("ingest %s failed: %s", path, summary.String())
	}
	return nil
}

func (a *Application) initJournal(ctx context.Context) error {
	if a.journal == nil {
		return nil
	}
	if err := a.journal.Init(ctx); err != nil {
		return fmt.Errorf("init run journal: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
