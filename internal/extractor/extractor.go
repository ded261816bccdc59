// Package extractor turns loosely structured export rows into recipes.
package extractor

import (
	"strings"
	"time"

	"RecipeScanner/internal/domain"
)

// Column aliases in priority order, as seen across PinClicks exports.
var (
	SourceURLColumns   = []string{"Pinterest URL", "Pin URL", "URL", "Link", "pinterest_url", "Pin Link"}
	NameColumns        = []string{"Title", "Recipe Name", "Name", "Pin Title", "title", "recipe_name", "Pin Name"}
	ImageURLColumns    = []string{"Image URL", "Image", "Thumbnail", "image_url", "thumbnail_url", "Pin Image"}
	DescriptionColumns = []string{"Description", "Pin Description", "description", "desc"}
)

// Extractor builds normalized recipes from raw rows.
type Extractor struct {
	now func() time.Time
}

// New returns an extractor stamping records with the wall clock.
func New() *Extractor {
	return &Extractor{now: time.Now}
}

// NewWithClock is used where a deterministic CreatedAt is needed.
func NewWithClock(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

// Extract returns the recipe for row, or false when the row lacks a pin URL or a name.
func (e *Extractor) Extract(row domain.RawRow, site domain.Website) (domain.Recipe, bool) {
	sourceURL := firstMatch(row, SourceURLColumns, isPinURL)
	name := firstMatch(row, NameColumns, nil)
	if sourceURL == "" || name == "" {
		return domain.Recipe{}, false
	}

	imageURL := firstMatch(row, ImageURLColumns, nil)
	if imageURL == "" {
		imageURL = sourceURL
	}

	return domain.Recipe{
		Name:          name,
		SourceURL:     sourceURL,
		ImageURL:      imageURL,
		Description:   firstMatch(row, DescriptionColumns, nil),
		WebsiteDomain: site.Domain,
		WebsiteName:   site.DisplayName(),
		CreatedAt:     e.now().UTC(),
	}, true
}

// Result is the outcome of extracting a whole export.
type Result struct {
	Recipes []domain.Recipe
	Rows    int
	Skipped []int
}

// ExtractAll runs Extract over rows; skipped rows are reported by 1-based data row number.
func (e *Extractor) ExtractAll(rows []domain.RawRow, site domain.Website) Result {
	res := Result{Rows: len(rows), Recipes: make([]domain.Recipe, 0, len(rows))}
	for i, row := range rows {
		recipe, ok := e.Extract(row, site)
		if !ok {
			res.Skipped = append(res.Skipped, i+1)
			continue
		}
		res.Recipes = append(res.Recipes, recipe)
	}
	return res
}

func firstMatch(row domain.RawRow, columns []string, accept func(string) bool) string {
	for _, col := range columns {
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		if accept != nil && !accept(value) {
			continue
		}
		return value
	}
	return ""
}

func isPinURL(value string) bool {
	return strings.Contains(value, domain.PinPathMarker)
}
