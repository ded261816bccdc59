package domain

// VariationCategory groups generated keywords by how they were produced.
type VariationCategory string

const (
	CategoryPrimary   VariationCategory = "primary"
	CategorySecondary VariationCategory = "secondary"
	CategorySeasonal  VariationCategory = "seasonal"
	CategoryTrending  VariationCategory = "trending"
)

// KeywordVariation is one candidate search term for a website.
type KeywordVariation struct {
	Keyword    string            `json:"keyword"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
	Category   VariationCategory `json:"category"`
}

// SeasonalModifiers lists operator-chosen words per season.
type SeasonalModifiers struct {
	Fall   []string `json:"fall" yaml:"fall,omitempty"`
	Winter []string `json:"winter" yaml:"winter,omitempty"`
	Summer []string `json:"summer" yaml:"summer,omitempty"`
	Spring []string `json:"spring" yaml:"spring,omitempty"`
}

// CustomContext overrides automatic theme detection for a domain.
type CustomContext struct {
	PrimaryTheme      string            `json:"primaryTheme" yaml:"primaryTheme"`
	CustomKeywords    []string          `json:"customKeywords" yaml:"customKeywords,omitempty"`
	SeasonalModifiers SeasonalModifiers `json:"seasonalModifiers" yaml:"seasonalModifiers,omitempty"`
	Notes             string            `json:"notes" yaml:"notes,omitempty"`
}

// WebsiteTheme describes what a website publishes.
type WebsiteTheme struct {
	Domain          string   `yaml:"domain"`
	Name            string   `yaml:"name"`
	PrimaryTheme    string   `yaml:"primaryTheme"`
	SecondaryThemes []string `yaml:"secondaryThemes"`
	CuisineType     string   `yaml:"cuisineType"`
	DietaryFocus    string   `yaml:"dietaryFocus"`
	CookingMethod   string   `yaml:"cookingMethod"`
	TargetAudience  string   `yaml:"targetAudience"`
}

// KeywordCount is one row of the analytics top-keyword table.
type KeywordCount struct {
	Keyword    string  `json:"keyword"`
	Count      int     `json:"count"`
	AvgResults float64 `json:"avgResults"`
}

// PromptCount is one row of the analytics prompt breakdown.
type PromptCount struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

// KeywordAnalytics summarizes recorded keyword usage for a domain.
type KeywordAnalytics struct {
	TotalSearches   int            `json:"totalSearches"`
	AverageResults  float64        `json:"averageResults"`
	TopKeywords     []KeywordCount `json:"topKeywords"`
	PromptBreakdown []PromptCount  `json:"promptBreakdown"`
}
