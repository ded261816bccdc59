package domain

import (
	"strings"
	"time"
)

// PinPathMarker identifies a canonical Pinterest pin URL.
const PinPathMarker = "pinterest.com/pin/"

// RawRow is a single tabular export row keyed by its header cells.
type RawRow map[string]string

// Website is the run context a batch of recipes belongs to.
type Website struct {
	Domain string `json:"domain" yaml:"domain"`
	Name   string `json:"name" yaml:"name"`
	Active bool   `json:"active" yaml:"active"`
}

// DisplayName falls back to the domain when no name is configured.
func (w Website) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.Domain
}

// Recipe is a normalized record extracted from one export row.
type Recipe struct {
	Name          string
	SourceURL     string
	ImageURL      string
	Description   string
	WebsiteDomain string
	WebsiteName   string
	CreatedAt     time.Time
}

// WebsiteStats mirrors the cumulative counters kept on a website page.
type WebsiteStats struct {
	TotalRecords  int
	TotalRuns     int
	LastRunCount  int
	AveragePerRun int
	LastRunAt     time.Time
}

// UpsertResult counts per-record outcomes of one upsert batch.
type UpsertResult struct {
	Succeeded int `json:"success"`
	Failed    int `json:"failed"`
}

// ModelImageURL picks the link stored on the recipe page: the canonical pin URL,
// then any http(s) source that is not a pinimg asset, then an http(s) image URL.
func (r Recipe) ModelImageURL() string {
	switch {
	case strings.Contains(r.SourceURL, PinPathMarker):
		return r.SourceURL
	case isHTTPURL(r.SourceURL) && !strings.Contains(r.SourceURL, "pinimg.com"):
		return r.SourceURL
	case isHTTPURL(r.ImageURL):
		return r.ImageURL
	default:
		return ""
	}
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
