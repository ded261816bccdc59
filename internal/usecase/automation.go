package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/ports"
)

// ErrAutomationRunning is returned when a run is requested while another is in progress.
var ErrAutomationRunning = errors.New("automation is already running")

// DefaultWebsiteDelay separates two websites of one automation run.
const DefaultWebsiteDelay = 3 * time.Second

// AutomationDeps wires the automation runner.
type AutomationDeps struct {
	Websites func() []domain.Website
	Keywords ports.KeywordGenerator
	Exporter ports.Exporter
	Ingestor *Ingestor
	Logger   *slog.Logger
	Delay    time.Duration
	Sleep    func(ctx context.Context, d time.Duration) error
}

// AutomationOptions narrows a run.
type AutomationOptions struct {
	// Domains restricts the run to these websites; empty means all active websites.
	Domains []string
	// Prompt is the theme prompt; empty selects rotation mode.
	Prompt string
}

// Automation runs keyword, export and ingest for every active website.
type Automation struct {
	websites func() []domain.Website
	keywords ports.KeywordGenerator
	exporter ports.Exporter
	ingestor *Ingestor
	logger   *slog.Logger
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time

	mu     sync.Mutex
	status domain.AutomationStatus
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutomation builds an idle runner.
func NewAutomation(deps AutomationDeps) *Automation {
	a := &Automation{
		websites: deps.Websites,
		keywords: deps.Keywords,
		exporter: deps.Exporter,
		ingestor: deps.Ingestor,
		logger:   deps.Logger,
		delay:    deps.Delay,
		sleep:    deps.Sleep,
		now:      time.Now,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("component", "automation")
	if a.delay < 0 {
		a.delay = 0
	}
	if a.sleep == nil {
		a.sleep = sleepContext
	}
	return a
}

// Status returns a snapshot of the current or last run.
func (a *Automation) Status() domain.AutomationStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Start launches a run in the background.
func (a *Automation) Start(ctx context.Context, opts AutomationOptions) error {
	runCtx, err := a.begin(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	go func() {
		_, _ = a.execute(runCtx, opts)
	}()
	return nil
}

// Run executes a run and blocks until it finishes or is stopped.
func (a *Automation) Run(ctx context.Context, opts AutomationOptions) (domain.RunSummary, error) {
	runCtx, err := a.begin(ctx)
	if err != nil {
		return domain.RunSummary{}, err
	}
	return a.execute(runCtx, opts)
}

// Stop requests cancellation and waits for the run to wind down or ctx to expire.
func (a *Automation) Stop(ctx context.Context) error {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Automation) begin(ctx context.Context) (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status.IsRunning {
		return nil, ErrAutomationRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	started := a.now()
	a.cancel = cancel
	a.done = make(chan struct{})
	a.status = domain.AutomationStatus{IsRunning: true, StartedAt: &started}
	return runCtx, nil
}

func (a *Automation) finish(lastErr error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	finished := a.now()
	a.status.IsRunning = false
	a.status.CurrentWebsite = ""
	a.status.FinishedAt = &finished
	if lastErr != nil {
		a.status.LastError = lastErr.Error()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = nil
	close(a.done)
}

func (a *Automation) execute(ctx context.Context, opts AutomationOptions) (summary domain.RunSummary, err error) {
	defer func() { a.finish(err) }()

	sites := a.selectWebsites(opts.Domains)
	if len(sites) == 0 {
		return domain.RunSummary{}, fmt.Errorf("no active websites to process")
	}
	if a.ingestor == nil || a.exporter == nil {
		return domain.RunSummary{}, fmt.Errorf("automation is not fully configured")
	}

	summary = a.ingestor.NewSummary()
	a.logger.Info("automation started", "run_id", summary.ID, "websites", len(sites))

	for idx, site := range sites {
		if idx > 0 {
			if err = a.sleep(ctx, a.delay); err != nil {
				break
			}
		}
		a.update(func(s *domain.AutomationStatus) {
			s.CurrentWebsite = site.Domain
			s.Progress = idx * 100 / len(sites)
		})

		report := a.processWebsite(ctx, site, opts.Prompt)
		summary.Add(report)
		a.update(func(s *domain.AutomationStatus) {
			s.RecipesCollected += report.Upsert.Succeeded
			s.Progress = (idx + 1) * 100 / len(sites)
			if len(report.Errors) > 0 {
				s.LastError = report.Errors[len(report.Errors)-1]
			}
		})

		if err = ctx.Err(); err != nil {
			break
		}
	}

	a.ingestor.Complete(ctx, &summary)
	if err != nil {
		a.logger.Warn("automation stopped", "run_id", summary.ID, "error", err)
		return summary, err
	}
	a.logger.Info("automation finished", "run_id", summary.ID, "summary", summary.String())
	return summary, nil
}

func (a *Automation) processWebsite(ctx context.Context, site domain.Website, prompt string) domain.IngestReport {
	keyword := "recipes"
	if a.keywords != nil {
		if vars := a.keywords.Generate(site.Domain, prompt, 1); len(vars) > 0 && vars[0].Keyword != "" {
			keyword = vars[0].Keyword
		}
	}
	a.logger.Info("processing website", "domain", site.Domain, "keyword", keyword)

	path, err := a.exporter.Export(ctx, site, keyword)
	if err != nil {
		a.logger.Error("export failed", "domain", site.Domain, "error", err)
		return domain.IngestReport{Website: site, Errors: []string{fmt.Sprintf("export %q: %v", keyword, err)}}
	}

	report, err := a.ingestor.IngestFile(ctx, path, site)
	if err != nil {
		a.logger.Error("ingest failed", "domain", site.Domain, "file", path, "error", err)
	}
	if a.keywords != nil {
		a.keywords.RecordUsage(site.Domain, []string{keyword}, prompt, report.Upsert.Succeeded)
	}
	return report
}

func (a *Automation) selectWebsites(domains []string) []domain.Website {
	if a.websites == nil {
		return nil
	}
	all := a.websites()
	if len(domains) == 0 {
		active := make([]domain.Website, 0, len(all))
		for _, w := range all {
			if w.Active {
				active = append(active, w)
			}
		}
		return active
	}

	known := make(map[string]domain.Website, len(all))
	for _, w := range all {
		known[strings.ToLower(w.Domain)] = w
	}
	selected := make([]domain.Website, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if w, ok := known[d]; ok {
			selected = append(selected, w)
			continue
		}
		selected = append(selected, domain.Website{Domain: d, Active: true})
	}
	return selected
}

func (a *Automation) update(fn func(*domain.AutomationStatus)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.status)
}
