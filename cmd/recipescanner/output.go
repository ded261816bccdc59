package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"RecipeScanner/internal/domain"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderSummary(w io.Writer, summary domain.RunSummary) {
	if summary.Files == 0 {
		fmt.Fprintln(w, "no files processed")
		return
	}
	t := newTable(w)
	t.SetTitle("Run " + summary.ID)
	t.AppendHeader(table.Row{"File", "Website", "Status", "Rows", "Recipes", "Stored", "Failed", "Skipped", "Errors"})
	for _, r := range summary.Reports {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		t.AppendRow(table.Row{
			r.File, r.Website.Domain, status, r.RowsProcessed, r.TotalRecipes,
			r.Upsert.Succeeded, r.Upsert.Failed, r.Skipped, strings.Join(r.Errors, "; "),
		})
	}
	t.AppendFooter(table.Row{"", "", "", summary.Rows, summary.Recipes, "", "", "", summary.Errors})
	t.Render()
	fmt.Fprintln(w, summary.String())
}

func renderKeywords(w io.Writer, domains []string, results map[string][]domain.KeywordVariation) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Domain", "Keyword", "Confidence", "Category", "Reasoning"})
	for _, d := range domains {
		for _, v := range results[d] {
			t.AppendRow(table.Row{d, v.Keyword, fmt.Sprintf("%.2f", v.Confidence), v.Category, v.Reasoning})
		}
		t.AppendSeparator()
	}
	t.Render()
}

func renderRuns(w io.Writer, records []domain.RunRecord) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Finished", "Run", "Domain", "File", "Rows", "Recipes", "Stored", "Failed", "Skipped", "Errors"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.FinishedAt.Format("2006-01-02 15:04"), r.RunID, r.Domain, r.File,
			r.Rows, r.Recipes, r.Succeeded, r.Failed, r.Skipped, r.Errors,
		})
	}
	t.Render()
}
