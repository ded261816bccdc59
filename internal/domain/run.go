package domain

import (
	"fmt"
	"time"
)

// IngestReport is returned for one processed export file.
type IngestReport struct {
	File          string       `json:"file"`
	Website       Website      `json:"website"`
	Success       bool         `json:"success"`
	TotalRecipes  int          `json:"totalRecipes"`
	RowsProcessed int          `json:"rowsProcessed"`
	Skipped       int          `json:"skipped"`
	Upsert        UpsertResult `json:"notionSync"`
	Errors        []string     `json:"errors,omitempty"`
}

// RunSummary aggregates the reports of one multi-file run.
type RunSummary struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Files      int            `json:"files"`
	Processed  int            `json:"processed"`
	Recipes    int            `json:"recipes"`
	Rows       int            `json:"rows"`
	Errors     int            `json:"errors"`
	Reports    []IngestReport `json:"reports"`
}

// Add folds a file report into the summary.
func (s *RunSummary) Add(report IngestReport) {
	s.Files++
	if report.Success {
		s.Processed++
	}
	s.Recipes += report.TotalRecipes
	s.Rows += report.RowsProcessed
	s.Errors += len(report.Errors) + report.Upsert.Failed
	s.Reports = append(s.Reports, report)
}

// String renders the operator-facing one line summary.
func (s RunSummary) String() string {
	return fmt.Sprintf("%d of %d files processed, %d recipes from %d rows, %d errors",
		s.Processed, s.Files, s.Recipes, s.Rows, s.Errors)
}

// AutomationStatus is the observable state of an automation run.
type AutomationStatus struct {
	IsRunning        bool       `json:"isRunning"`
	CurrentWebsite   string     `json:"currentWebsite,omitempty"`
	Progress         int        `json:"progress"`
	RecipesCollected int        `json:"recipesCollected"`
	StartedAt        *time.Time `json:"startTime,omitempty"`
	FinishedAt       *time.Time `json:"endTime,omitempty"`
	LastError        string     `json:"lastError,omitempty"`
}

// RunRecord is one journaled file ingest.
type RunRecord struct {
	RunID      string
	Domain     string
	File       string
	Rows       int
	Recipes    int
	Succeeded  int
	Failed     int
	Skipped    int
	Errors     int
	StartedAt  time.Time
	FinishedAt time.Time
}
