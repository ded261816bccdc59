package keywords

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RecipeScanner/internal/domain"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestGenerator(t *testing.T, at time.Time) (*Generator, *clock) {
	t.Helper()
	c := &clock{t: at}
	g := New(Deps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Now: c.now})
	return g, c
}

func keywordsOf(vs []domain.KeywordVariation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Keyword
	}
	return out
}

var nov25 = time.Date(2025, time.November, 25, 12, 0, 0, 0, time.UTC)

func TestRotationGivesDistinctKeywords(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		vs := g.Generate("airfryerauthority.com", "recipes", 1)
		require.Len(t, vs, 1)
		assert.False(t, seen[vs[0].Keyword], "repeated %q", vs[0].Keyword)
		seen[vs[0].Keyword] = true
	}
	assert.True(t, seen["air fryer recipes"])
}

func TestCandyDomainNeverGetsMeat(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)

	for _, prompt := range []string{"recipes", "", "chicken", "thanksgiving"} {
		for i := 0; i < 4; i++ {
			for _, kw := range keywordsOf(g.Generate("crunchcloudcandy.com", prompt, 3)) {
				for _, meat := range []string{"beef", "pork", "chicken", "meat"} {
					assert.NotContains(t, kw, meat, "prompt %q", prompt)
				}
			}
		}
	}
}

func TestCandyRotationStaysOnSweets(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)

	got := keywordsOf(g.Generate("crunchcloudcandy.com", "recipes", 3))
	assert.Equal(t, []string{"dessert recipes", "sweet treats", "homemade candy"}, got)
}

func TestCandySafetyOverridesCustomKeywords(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)
	require.NoError(t, g.SetCustomContext("crunchcloudcandy.com", domain.CustomContext{
		PrimaryTheme:   "beef jerky candy",
		CustomKeywords: []string{"beef jerky candy"},
	}))

	vs := g.Generate("crunchcloudcandy.com", "", 3)
	assert.Equal(t, []string{"candy recipes", "sweet treats", "homemade candy"}, keywordsOf(vs))
	assert.InDelta(t, 0.95, vs[0].Confidence, 1e-9)

	vs = g.Generate("crunchcloudcandy.com", "halloween", 1)
	assert.Equal(t, "halloween candy recipes", vs[0].Keyword)
}

func TestRedundantWordsCollapse(t *testing.T) {
	assert.Equal(t, "recipes", Collapse("recipes recipes"))
	assert.Equal(t, "holiday recipes dessert", Collapse("Holiday  Recipes dessert recipes"))

	g, _ := newTestGenerator(t, nov25)
	require.NoError(t, g.SetCustomContext("mysite.com", domain.CustomContext{PrimaryTheme: "dessert recipes"}))

	vs := g.Generate("mysite.com", "holiday recipes", 1)
	require.Len(t, vs, 1)
	assert.Equal(t, "holiday recipes dessert", vs[0].Keyword)
}

func TestGeneralRotationCombinesPrimaryTheme(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)

	got := keywordsOf(g.Generate("soupandstewhq.com", "", 2))
	assert.Equal(t, []string{"chicken soup and stew recipes", "beef soup and stew recipes"}, got)

	got = keywordsOf(g.Generate("soupandstewhq.com", "", 1))
	assert.Equal(t, []string{"pork soup and stew recipes"}, got)
}

func TestUnknownDomainUsesGenericCategories(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)

	vs := g.Generate("example.com", "recipes", 2)
	assert.Equal(t, []string{"chicken recipes", "beef recipes"}, keywordsOf(vs))
}

func TestRotationClearsRecentWhenExhausted(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)
	require.NoError(t, g.SetCustomContext("mysite.com", domain.CustomContext{
		PrimaryTheme:   "pies",
		CustomKeywords: []string{"apple pie", "pumpkin pie"},
	}))

	assert.Equal(t, []string{"apple pie", "pumpkin pie"}, keywordsOf(g.Generate("mysite.com", "", 2)))
	assert.Equal(t, []string{"apple pie"}, keywordsOf(g.Generate("mysite.com", "", 1)))
}

func TestThemedModeFusesPrompt(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)

	vs := g.Generate("airfryerauthority.com", "Thanksgiving", 5)
	require.Len(t, vs, 5)
	assert.Equal(t, "thanksgiving air fryer recipes", vs[0].Keyword)
	assert.Equal(t, domain.CategoryPrimary, vs[0].Category)
	assert.InDelta(t, 0.95, vs[0].Confidence, 1e-9)
	assert.Contains(t, keywordsOf(vs), "thanksgiving healthy cooking")
	for i := 1; i < len(vs); i++ {
		assert.GreaterOrEqual(t, vs[i-1].Confidence, vs[i].Confidence)
	}

	again := g.Generate("airfryerauthority.com", "thanksgiving", 5)
	assert.Len(t, again, 5, "falls back to unfiltered variations")
}

func TestThemedModeForUnknownDomain(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)

	vs := g.Generate("example.com", "christmas", 3)
	require.NotEmpty(t, vs)
	assert.Equal(t, "christmas recipes", vs[0].Keyword)
}

func TestSeasonalVariations(t *testing.T) {
	vs := seasonalVariations(nov25, "thanksgiving", "air fryer cooking", nil)
	require.GreaterOrEqual(t, len(vs), 3)
	assert.Equal(t, "thanksgiving air fryer cooking", vs[0].Keyword)
	assert.Equal(t, "thanksgiving dinner air fryer cooking", vs[1].Keyword)
	assert.InDelta(t, 0.85, vs[0].Confidence, 1e-9)
	assert.Equal(t, "fall thanksgiving air fryer cooking", vs[2].Keyword)
	assert.Equal(t, domain.CategorySeasonal, vs[2].Category)

	early := seasonalVariations(time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC), "thanksgiving", "pies", nil)
	assert.Equal(t, "fall thanksgiving pies", early[0].Keyword)

	custom := seasonalVariations(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), "soup", "stew",
		&domain.SeasonalModifiers{Winter: []string{"snowy"}})
	assert.Equal(t, []string{"snowy soup stew"}, keywordsOf(custom))
}

func TestHolidaysAndSeasons(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }

	assert.Contains(t, Holidays(day(time.December, 1)), "christmas")
	assert.Empty(t, Holidays(day(time.November, 19)))
	assert.Contains(t, Holidays(day(time.November, 20)), "thanksgiving")
	assert.Empty(t, Holidays(day(time.March, 14)))
	assert.Contains(t, Holidays(day(time.March, 15)), "easter")
	assert.Contains(t, Holidays(day(time.July, 4)), "4th of july")
	assert.Empty(t, Holidays(day(time.May, 4)))

	assert.Equal(t, "winter", Season(time.January))
	assert.Equal(t, "spring", Season(time.April))
	assert.Equal(t, "summer", Season(time.August))
	assert.Equal(t, "fall", Season(time.October))
}

func TestGenerateDefaultsCountAndOrders(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)

	vs := g.Generate("thesipspot.com", "", 0)
	assert.Len(t, vs, DefaultCount)
	for _, v := range vs {
		assert.Equal(t, strings.ToLower(v.Keyword), v.Keyword)
	}
}

func TestGenerateBatchIsolatesFailures(t *testing.T) {
	g, _ := newTestGenerator(t, nov25)
	g.beforeGenerate = func(d string) {
		if d == "broken.com" || d == "thesipspot.com" {
			panic("boom")
		}
	}

	results, errs := g.GenerateBatch([]string{"airfryerauthority.com", "broken.com", "thesipspot.com", "example.com"}, "summer", 2)
	require.Len(t, errs, 2)
	var genErr *domain.GenerationError
	require.True(t, errors.As(errs[0], &genErr))
	assert.Equal(t, "broken.com", genErr.Domain)

	assert.Equal(t, []domain.KeywordVariation{{Keyword: "recipes", Confidence: 0.5, Category: domain.CategoryPrimary, Reasoning: "fallback"}}, results["broken.com"])
	assert.Equal(t, "summer drink recipes", results["thesipspot.com"][0].Keyword)
	assert.Len(t, results["airfryerauthority.com"], 2)
	assert.Len(t, results["example.com"], 2, "siblings after a failure still generate")
}

type memoryContexts struct {
	loaded  map[string]domain.CustomContext
	saved   []map[string]domain.CustomContext
	saveErr error
}

func (m *memoryContexts) Load() (map[string]domain.CustomContext, error) { return m.loaded, nil }

func (m *memoryContexts) Save(c map[string]domain.CustomContext) error {
	m.saved = append(m.saved, c)
	return m.saveErr
}

func TestCustomContextLifecycle(t *testing.T) {
	store := &memoryContexts{loaded: map[string]domain.CustomContext{
		"Pies.com": {PrimaryTheme: "pie recipes"},
	}}
	g := New(Deps{Store: store, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	c, ok := g.CustomContext("pies.com")
	require.True(t, ok)
	assert.Equal(t, "pie recipes", c.PrimaryTheme)

	assert.ErrorIs(t, g.SetCustomContext("x.com", domain.CustomContext{}), ErrEmptyContext)

	require.NoError(t, g.SetCustomContext("x.com", domain.CustomContext{PrimaryTheme: "tacos"}))
	require.Len(t, store.saved, 1)
	assert.Len(t, store.saved[0], 2)
	assert.Equal(t, []string{"tacos"}, keywordsOf(g.Generate("x.com", "", 1)))

	removed, err := g.RemoveCustomContext("x.com")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = g.RemoveCustomContext("x.com")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, g.CustomContexts(), 1)

	store.saveErr = errors.New("disk full")
	require.Error(t, g.SetCustomContext("y.com", domain.CustomContext{PrimaryTheme: "soup"}))
	_, ok = g.CustomContext("y.com")
	assert.True(t, ok, "memory stays authoritative")
}
