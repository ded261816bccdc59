package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/extractor"
	"RecipeScanner/internal/metrics"
	"RecipeScanner/internal/ports"
)

// ErrNoRecipes is reported for an export that parsed but held no usable rows.
var ErrNoRecipes = errors.New("no valid recipes found in export")

// IngestorDeps wires all driven adapters into the ingest workflow.
type IngestorDeps struct {
	Source    ports.RowSource
	Extractor *extractor.Extractor
	Upserter  *Upserter
	Runs      ports.RunRepository
	Notifier  ports.Notifier
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Ingestor implements the export-to-store workflow.
type Ingestor struct {
	source    ports.RowSource
	extractor *extractor.Extractor
	upserter  *Upserter
	runs      ports.RunRepository
	notifier  ports.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// FileJob pairs an export file with the website it belongs to.
type FileJob struct {
	Path    string
	Website domain.Website
}

// NewIngestor constructs the orchestration component.
func NewIngestor(deps IngestorDeps) *Ingestor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ext := deps.Extractor
	if ext == nil {
		ext = extractor.New()
	}
	return &Ingestor{
		source:    deps.Source,
		extractor: ext,
		upserter:  deps.Upserter,
		runs:      deps.Runs,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    logger.With("component", "ingest"),
		now:       time.Now,
	}
}

// IngestFile parses one export file and upserts its recipes.
// The returned error is non-nil only for failures fatal to the file.
func (i *Ingestor) IngestFile(ctx context.Context, path string, site domain.Website) (domain.IngestReport, error) {
	report := domain.IngestReport{File: filepath.Base(path), Website: site}
	if i.source == nil {
		return i.fail(report, fmt.Errorf("row source is not configured"))
	}
	rows, err := i.source.ReadFile(ctx, path)
	if err != nil {
		return i.fail(report, err)
	}
	return i.ingestRows(ctx, report, rows)
}

// IngestReader does the same for an already opened stream such as an upload.
func (i *Ingestor) IngestReader(ctx context.Context, r io.Reader, format, name string, site domain.Website) (domain.IngestReport, error) {
	report := domain.IngestReport{File: name, Website: site}
	if i.source == nil {
		return i.fail(report, fmt.Errorf("row source is not configured"))
	}
	rows, err := i.source.ReadStream(ctx, r, format)
	if err != nil {
		var parseErr *domain.FileParseError
		if errors.As(err, &parseErr) && parseErr.File == "" {
			parseErr.File = name
		}
		return i.fail(report, err)
	}
	return i.ingestRows(ctx, report, rows)
}

// IngestFiles processes files sequentially and completes the run summary.
func (i *Ingestor) IngestFiles(ctx context.Context, jobs []FileJob) domain.RunSummary {
	summary := i.NewSummary()
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		report, err := i.IngestFile(ctx, job.Path, job.Website)
		if err != nil {
			i.logger.Error("file failed", "file", job.Path, "error", err)
		}
		summary.Add(report)
	}
	i.Complete(ctx, &summary)
	return summary
}

// NewSummary starts an empty run summary with a fresh id.
func (i *Ingestor) NewSummary() domain.RunSummary {
	return domain.RunSummary{ID: uuid.NewString(), StartedAt: i.now().UTC()}
}

// Complete stamps the summary, journals it and notifies the operator; both are best effort.
func (i *Ingestor) Complete(ctx context.Context, summary *domain.RunSummary) {
	summary.FinishedAt = i.now().UTC()
	i.logger.Info("run finished", "run_id", summary.ID, "summary", summary.String())

	ctx = context.WithoutCancel(ctx)
	if i.runs != nil {
		if err := i.runs.SaveRun(ctx, *summary); err != nil {
			i.logger.Warn("journal run failed", "run_id", summary.ID, "error", err)
		}
	}
	if i.notifier != nil && summary.Files > 0 {
		if err := i.notifier.PublishReport(ctx, BuildReportMessage(*summary)); err != nil {
			i.logger.Warn("publish report failed", "run_id", summary.ID, "error", err)
		}
	}
}

func (i *Ingestor) ingestRows(ctx context.Context, report domain.IngestReport, rows []domain.RawRow) (domain.IngestReport, error) {
	site := report.Website
	res := i.extractor.ExtractAll(rows, site)
	report.RowsProcessed = res.Rows
	report.TotalRecipes = len(res.Recipes)
	report.Skipped = len(res.Skipped)
	i.metrics.ObserveSkipped(site.Domain, report.Skipped)
	if report.Skipped > 0 {
		i.logger.Debug("rows skipped", "file", report.File, "rows", res.Skipped)
	}

	if len(res.Recipes) == 0 {
		report.Errors = append(report.Errors, ErrNoRecipes.Error())
		i.metrics.ObserveFile(false)
		return report, nil
	}
	if i.upserter == nil {
		return i.fail(report, fmt.Errorf("upserter is not configured"))
	}

	result, err := i.upserter.Upsert(ctx, res.Recipes, site)
	report.Upsert = result
	if err != nil {
		return i.fail(report, err)
	}

	report.Success = true
	i.metrics.ObserveFile(true)
	i.logger.Info("file ingested", "file", report.File, "domain", site.Domain,
		"rows", report.RowsProcessed, "recipes", report.TotalRecipes,
		"succeeded", result.Succeeded, "failed", result.Failed)
	return report, nil
}

func (i *Ingestor) fail(report domain.IngestReport, err error) (domain.IngestReport, error) {
	report.Success = false
	report.Errors = append(report.Errors, err.Error())
	i.metrics.ObserveFile(false)
	return report, err
}

// BuildReportMessage renders the operator notification for a run.
func BuildReportMessage(summary domain.RunSummary) string {
	var b strings.Builder
	b.WriteString("Recipe run ")
	b.WriteString(summary.ID)
	b.WriteString("\n")
	b.WriteString(summary.String())
	b.WriteString("\n\n")
	for _, r := range summary.Reports {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Fprintf(&b, "- %s (%s): %s, %d stored, %d failed, %d skipped\n",
			r.Website.Domain, r.File, status, r.Upsert.Succeeded, r.Upsert.Failed, r.Skipped)
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	return b.String()
}
