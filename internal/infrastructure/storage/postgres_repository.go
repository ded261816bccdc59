package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/ports"
)

const runsTable = "ingest_runs"

const createRunsTable = `CREATE TABLE IF NOT EXISTS ingest_runs (
    id             BIGSERIAL PRIMARY KEY,
    run_id         TEXT        NOT NULL,
    domain         TEXT        NOT NULL,
    file           TEXT        NOT NULL,
    rows_processed INTEGER     NOT NULL,
    recipes        INTEGER     NOT NULL,
    succeeded      INTEGER     NOT NULL,
    failed         INTEGER     NOT NULL,
    skipped        INTEGER     NOT NULL,
    errors         TEXT[]      NOT NULL DEFAULT '{}',
    started_at     TIMESTAMPTZ NOT NULL,
    finished_at    TIMESTAMPTZ NOT NULL
)`

var runColumns = []string{
	"run_id", "domain", "file", "rows_processed", "recipes",
	"succeeded", "failed", "skipped", "errors", "started_at", "finished_at",
}

// PostgresRepository journals ingest runs into Postgres, one row per file.
type PostgresRepository struct {
	db  *sql.DB
	sql sq.StatementBuilderType
}

var _ ports.RunRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation. A nil db turns every call into a no-op.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, sql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// Init creates the journal table when missing.
func (r *PostgresRepository) Init(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create %s: %w", runsTable, err)
	}
	return nil
}

// SaveRun inserts every file report of a run in one statement.
func (r *PostgresRepository) SaveRun(ctx context.Context, summary domain.RunSummary) error {
	if r.db == nil || len(summary.Reports) == 0 {
		return nil
	}

	q := r.sql.Insert(runsTable).Columns(runColumns...)
	for _, rep := range summary.Reports {
		q = q.Values(
			summary.ID,
			strings.ToLower(rep.Website.Domain),
			rep.File,
			rep.RowsProcessed,
			rep.TotalRecipes,
			rep.Upsert.Succeeded,
			rep.Upsert.Failed,
			rep.Skipped,
			pq.StringArray(nonNil(rep.Errors)),
			summary.StartedAt,
			summary.FinishedAt,
		)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert runs: %w", err)
	}
	return nil
}

// RecentRuns returns the latest journaled files, newest first. An empty domain lists all websites.
func (r *PostgresRepository) RecentRuns(ctx context.Context, websiteDomain string, limit uint64) ([]domain.RunRecord, error) {
	if r.db == nil {
		return nil, nil
	}
	if limit == 0 {
		limit = 20
	}

	q := r.sql.Select(
		"run_id", "domain", "file", "rows_processed", "recipes",
		"succeeded", "failed", "skipped", "cardinality(errors)", "started_at", "finished_at",
	).From(runsTable).OrderBy("finished_at DESC", "id DESC").Limit(limit)
	if websiteDomain != "" {
		q = q.Where(sq.Eq{"domain": strings.ToLower(websiteDomain)})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var out []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		if err := rows.Scan(&rec.RunID, &rec.Domain, &rec.File, &rec.Rows, &rec.Recipes,
			&rec.Succeeded, &rec.Failed, &rec.Skipped, &rec.Errors, &rec.StartedAt, &rec.FinishedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
