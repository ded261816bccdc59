package ports

import (
	"context"
	"io"
	"time"

	"RecipeScanner/internal/domain"
)

// RowSource turns export files or streams into raw rows.
type RowSource interface {
	ReadFile(ctx context.Context, path string) ([]domain.RawRow, error)
	ReadStream(ctx context.Context, r io.Reader, format string) ([]domain.RawRow, error)
}

// RecipeStore writes recipe pages into the remote store.
type RecipeStore interface {
	Ping(ctx context.Context) error
	CreateRecipe(ctx context.Context, recipe domain.Recipe, websiteID string) error
}

// WebsiteStore reads and mutates website pages in the remote store.
type WebsiteStore interface {
	FindWebsite(ctx context.Context, domain string) (id string, found bool, err error)
	CreateWebsite(ctx context.Context, site domain.Website) (string, error)
	WebsiteStats(ctx context.Context, id string) (domain.WebsiteStats, error)
	UpdateWebsiteStats(ctx context.Context, id string, stats domain.WebsiteStats) error
}

// RunRepository keeps a journal of ingest runs.
type RunRepository interface {
	SaveRun(ctx context.Context, summary domain.RunSummary) error
	RecentRuns(ctx context.Context, websiteDomain string, limit uint64) ([]domain.RunRecord, error)
}

// Notifier pushes run summaries to an operator channel.
type Notifier interface {
	PublishReport(ctx context.Context, message string) error
}

// Exporter produces an export file of pins matching keyword for a website.
type Exporter interface {
	Export(ctx context.Context, site domain.Website, keyword string) (string, error)
}

// KeywordGenerator decides which search term to export with.
type KeywordGenerator interface {
	Generate(websiteDomain, themePrompt string, count int) []domain.KeywordVariation
	RecordUsage(websiteDomain string, keywords []string, prompt string, resultsCount int)
}

// ContextStore mirrors custom keyword contexts to durable storage.
type ContextStore interface {
	Load() (map[string]domain.CustomContext, error)
	Save(contexts map[string]domain.CustomContext) error
}

// Scheduler controls when automation runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
