package notion

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/ports"
)

// Property names of the recipes and websites databases.
const (
	PropRecipeName    = "Name Keyword"
	PropModelImageURL = "Model Image URL"
	PropWebsite       = "Website"
	PropDescription   = "Description"

	PropWebsiteName  = "Name"
	PropActive       = "Active"
	PropTotalRecipes = "Total Recipes"
	PropTotalRuns    = "Total Runs"
	PropLastRun      = "Last Run"
	PropLastCount    = "Last Recipes Count"
	PropAveragePer   = "Average Per Run"
)

// MaxRichTextLength is the API limit for a single rich text content.
const MaxRichTextLength = 2000

// StoreDeps groups the collaborators of a Store.
type StoreDeps struct {
	Client     *Client
	RecipesDB  string
	WebsitesDB string
	Logger     *slog.Logger
}

// Store maps recipes and websites onto Notion databases.
type Store struct {
	client     *Client
	recipesDB  string
	websitesDB string
	logger     *slog.Logger
}

var _ ports.RecipeStore = (*Store)(nil)
var _ ports.WebsiteStore = (*Store)(nil)

// NewStore wires the client with the two database ids.
func NewStore(deps StoreDeps) *Store {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:     deps.Client,
		recipesDB:  deps.RecipesDB,
		websitesDB: deps.WebsitesDB,
		logger:     logger.With("component", "notion"),
	}
}

// Ping checks the recipes database is reachable with the configured token.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.client.RetrieveDatabase(ctx, s.recipesDB)
	if err != nil {
		return err
	}
	s.logger.Debug("connected to recipes database", "title", db.Name())
	return nil
}

// CreateRecipe writes one recipe page related to websiteID.
func (s *Store) CreateRecipe(ctx context.Context, recipe domain.Recipe, websiteID string) error {
	props := Properties{
		PropRecipeName: TitleProperty(recipe.Name),
		PropWebsite:    RelationProperty(websiteID),
	}
	if link := recipe.ModelImageURL(); link != "" {
		props[PropModelImageURL] = URLProperty(link)
	}
	if recipe.Description != "" {
		props[PropDescription] = RichTextProperty(truncate(recipe.Description, MaxRichTextLength))
	}

	_, err := s.client.CreatePage(ctx, CreatePageRequest{
		Parent:     Parent{DatabaseID: s.recipesDB},
		Properties: props,
	})
	return err
}

// FindWebsite looks a website up by exact title match; the first match wins.
func (s *Store) FindWebsite(ctx context.Context, websiteDomain string) (string, bool, error) {
	resp, err := s.client.QueryDatabase(ctx, s.websitesDB, QueryRequest{
		Filter: &Filter{Property: PropWebsiteName, Title: &TextFilter{Equals: websiteDomain}},
	})
	if err != nil {
		return "", false, err
	}
	if len(resp.Results) == 0 {
		return "", false, nil
	}
	return resp.Results[0].ID, true, nil
}

// CreateWebsite adds an active website page titled by its domain.
func (s *Store) CreateWebsite(ctx context.Context, site domain.Website) (string, error) {
	page, err := s.client.CreatePage(ctx, CreatePageRequest{
		Parent: Parent{DatabaseID: s.websitesDB},
		Properties: Properties{
			PropWebsiteName: TitleProperty(site.Domain),
			PropActive:      CheckboxProperty(true),
		},
	})
	if err != nil {
		return "", err
	}
	if page.ID == "" {
		return "", &domain.RemoteStoreError{Op: "create page", Message: "response carried no page id"}
	}
	s.logger.Info("website created", "domain", site.Domain, "id", page.ID)
	return page.ID, nil
}

// WebsiteStats reads the cumulative counters of a website page.
func (s *Store) WebsiteStats(ctx context.Context, id string) (domain.WebsiteStats, error) {
	page, err := s.client.RetrievePage(ctx, id)
	if err != nil {
		return domain.WebsiteStats{}, err
	}
	props := page.Properties
	return domain.WebsiteStats{
		TotalRecords:  int(props.NumberValue(PropTotalRecipes)),
		TotalRuns:     int(props.NumberValue(PropTotalRuns)),
		LastRunCount:  int(props.NumberValue(PropLastCount)),
		AveragePerRun: int(math.Round(props.NumberValue(PropAveragePer))),
		LastRunAt:     props.DateValue(PropLastRun),
	}, nil
}

// UpdateWebsiteStats writes all counters in one update.
func (s *Store) UpdateWebsiteStats(ctx context.Context, id string, stats domain.WebsiteStats) error {
	lastRun := stats.LastRunAt
	if lastRun.IsZero() {
		lastRun = time.Now()
	}
	_, err := s.client.UpdatePage(ctx, id, Properties{
		PropTotalRecipes: NumberProperty(float64(stats.TotalRecords)),
		PropTotalRuns:    NumberProperty(float64(stats.TotalRuns)),
		PropLastRun:      DateProperty(lastRun),
		PropLastCount:    NumberProperty(float64(stats.LastRunCount)),
		PropAveragePer:   NumberProperty(float64(stats.AveragePerRun)),
	})
	if err != nil {
		return fmt.Errorf("update stats of %s: %w", id, err)
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
