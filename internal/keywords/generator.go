// Package keywords picks search keywords for recipe websites from their domain names.
package keywords

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/metrics"
	"RecipeScanner/internal/ports"
)

const (
	// DefaultCount is used when a caller asks for zero keywords.
	DefaultCount = 3

	maxRecent         = 10
	fallbackKeyword   = "recipes"
	fallbackConfident = 0.5
)

// ErrEmptyContext is returned for a custom context without a theme or keywords.
var ErrEmptyContext = errors.New("custom context needs a primary theme or custom keywords")

var (
	sweetsIdentity = []string{"candy", "sweets", "sweet", "crunch"}
	meatTerms      = []string{"pork", "beef", "chicken", "meat", "protein"}
)

var _ ports.KeywordGenerator = (*Generator)(nil)

// Deps configures a Generator. Every field is optional.
type Deps struct {
	Themes  []domain.WebsiteTheme
	Store   ports.ContextStore
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

type domainState struct {
	recent []string
	cursor int
}

// Generator keeps per-domain rotation state, custom contexts and usage history.
// All methods are safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	themes   map[string]domain.WebsiteTheme
	contexts map[string]domain.CustomContext
	states   map[string]*domainState
	history  map[string][]usage
	next     map[string]int

	store   ports.ContextStore
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	// beforeGenerate runs inside Generate; tests use it to inject failures.
	beforeGenerate func(websiteDomain string)
}

// New builds a generator with the built-in themes plus deps.Themes, which win on conflict.
// Custom contexts are loaded from deps.Store when one is given.
func New(deps Deps) *Generator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	g := &Generator{
		themes:   map[string]domain.WebsiteTheme{},
		contexts: map[string]domain.CustomContext{},
		states:   map[string]*domainState{},
		history:  map[string][]usage{},
		next:     map[string]int{},
		store:    deps.Store,
		metrics:  deps.Metrics,
		logger:   logger.With("component", "keywords"),
		now:      now,
	}
	for _, t := range BuiltinThemes {
		g.themes[normalize(t.Domain)] = t
	}
	for _, t := range deps.Themes {
		g.themes[normalize(t.Domain)] = t
	}

	if g.store != nil {
		loaded, err := g.store.Load()
		if err != nil {
			g.logger.Warn("load custom contexts", "err", err)
		}
		for d, c := range loaded {
			g.contexts[normalize(d)] = c
		}
	}
	return g
}

func normalize(websiteDomain string) string {
	d := strings.ToLower(strings.TrimSpace(websiteDomain))
	return strings.TrimPrefix(d, "www.")
}

// Theme returns the registered theme for a domain.
func (g *Generator) Theme(websiteDomain string) (domain.WebsiteTheme, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.themes[normalize(websiteDomain)]
	return t, ok
}

// profile is everything generation needs to know about one domain.
type profile struct {
	key      string
	theme    domain.WebsiteTheme
	info     Intelligence
	custom   *domain.CustomContext
	list     []string
	listName string
	narrowed bool
}

func (g *Generator) profile(key string) profile {
	p := profile{key: key, info: Analyze(key)}

	if c, ok := g.contexts[key]; ok {
		primary := strings.TrimSpace(c.PrimaryTheme)
		if primary == "" {
			primary = fallbackKeyword
		}
		p.custom = &c
		p.theme = domain.WebsiteTheme{Domain: key, PrimaryTheme: primary, SecondaryThemes: c.CustomKeywords}
		p.list = c.CustomKeywords
		if len(p.list) == 0 {
			p.list = []string{primary}
		}
		p.listName, p.narrowed = "custom", true
		return p
	}

	if t, ok := g.themes[key]; ok {
		p.theme = t
	} else {
		p.theme = derivedTheme(key, p.info)
	}
	rot, narrowed := rotationFor(p.info.Tokens)
	p.list, p.listName, p.narrowed = rot.Categories, rot.Name, narrowed
	return p
}

func derivedTheme(key string, info Intelligence) domain.WebsiteTheme {
	t := domain.WebsiteTheme{Domain: key, Name: key, PrimaryTheme: info.Focus}
	for i := range taxonomy {
		c := taxonomy[i]
		p, ok := matchAny(info.Tokens, c.Patterns)
		if !ok {
			continue
		}
		switch c.ID {
		case "dietary":
			if t.DietaryFocus == "" {
				t.DietaryFocus = p
			}
		case "cuisine":
			if t.CuisineType == "" {
				t.CuisineType = p
			}
		case "cookingMethods":
			if t.CookingMethod == "" {
				t.CookingMethod = p
			}
		}
	}
	return t
}

func (g *Generator) state(key string) *domainState {
	st, ok := g.states[key]
	if !ok {
		st = &domainState{}
		g.states[key] = st
	}
	return st
}

func isGenericPrompt(prompt string) bool {
	return prompt == "" || prompt == fallbackKeyword
}

// Generate returns up to count keyword variations for a domain, best first.
// An empty prompt or "recipes" rotates through the domain's category list;
// any other prompt is fused with the domain's theme.
func (g *Generator) Generate(websiteDomain, themePrompt string, count int) []domain.KeywordVariation {
	if count <= 0 {
		count = DefaultCount
	}
	prompt := strings.ToLower(strings.TrimSpace(themePrompt))

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.beforeGenerate != nil {
		g.beforeGenerate(websiteDomain)
	}

	key := normalize(websiteDomain)
	p := g.profile(key)
	st := g.state(key)

	mode := "themed"
	var vars []domain.KeywordVariation
	if isGenericPrompt(prompt) {
		mode = "rotation"
		vars = g.rotate(p, st, count)
	} else {
		vars = g.themed(p, st, prompt, count)
	}
	vars = g.finish(p, st, prompt, vars, count)

	g.metrics.ObserveKeywords(mode, len(vars))
	g.logger.Debug("keywords generated", "domain", key, "mode", mode, "focus", p.info.Focus, "count", len(vars))
	return vars
}

func (g *Generator) rotate(p profile, st *domainState, count int) []domain.KeywordVariation {
	n := len(p.list)
	if n == 0 {
		return nil
	}
	if st.cursor >= n {
		st.cursor = 0
	}

	for attempt := 0; attempt < 2; attempt++ {
		var out []domain.KeywordVariation
		seen := map[string]bool{}
		examined := 0
		for examined < n && len(out) < count {
			category := p.list[(st.cursor+examined)%n]
			examined++
			kw := g.combine(p, category)
			if seen[kw] || overlapsAny(kw, st.recent) {
				continue
			}
			seen[kw] = true
			out = append(out, domain.KeywordVariation{
				Keyword:    kw,
				Confidence: 0.95,
				Category:   domain.CategoryPrimary,
				Reasoning:  fmt.Sprintf("%s rotation: %s", p.listName, category),
			})
		}
		st.cursor = (st.cursor + examined) % n
		if len(out) > 0 {
			return out
		}
		g.logger.Debug("rotation exhausted, clearing recent keywords", "domain", p.key)
		st.recent = nil
	}
	return nil
}

// combine merges a rotation category with the site's primary theme. Narrowed and
// custom lists already carry the theme and are used as they are.
func (g *Generator) combine(p profile, category string) string {
	category = strings.TrimSpace(category)
	primary := strings.TrimSpace(p.theme.PrimaryTheme)
	if p.narrowed || primary == "" || primary == fallbackKeyword {
		return category
	}
	head := strings.TrimSpace(strings.TrimSuffix(category, fallbackKeyword))
	if head == "" {
		return primary
	}
	return head + " " + primary
}

func (g *Generator) themed(p profile, st *domainState, prompt string, count int) []domain.KeywordVariation {
	primary := p.theme.PrimaryTheme
	noun := p.info.Noun
	if p.custom != nil || p.info.Generic() {
		noun = primary
	}

	all := []domain.KeywordVariation{{
		Keyword:    prompt + " " + noun,
		Confidence: 0.95,
		Category:   domain.CategoryPrimary,
		Reasoning:  "prompt fused with " + p.info.Focus,
	}}
	all = append(all, take(primaryVariations(p.theme, prompt), ratio(count, 0.4))...)
	all = append(all, take(secondaryVariations(prompt, primary), ratio(count, 0.3))...)

	var custom *domain.SeasonalModifiers
	if p.custom != nil {
		custom = &p.custom.SeasonalModifiers
	}
	all = append(all, take(seasonalVariations(g.now(), prompt, primary, custom), ratio(count, 0.1))...)

	var fresh []domain.KeywordVariation
	for _, v := range all {
		if !overlapsAny(v.Keyword, st.recent) {
			fresh = append(fresh, v)
		}
	}
	if len(fresh) == 0 {
		return all
	}
	return fresh
}

func primaryVariations(t domain.WebsiteTheme, prompt string) []domain.KeywordVariation {
	out := []domain.KeywordVariation{variation(prompt+" "+t.PrimaryTheme, 0.95, domain.CategoryPrimary, "primary theme")}
	for _, s := range t.SecondaryThemes {
		out = append(out, variation(prompt+" "+s, 0.85, domain.CategoryPrimary, "secondary theme "+s))
	}
	if t.DietaryFocus != "" {
		out = append(out, variation(prompt+" "+t.DietaryFocus, 0.9, domain.CategoryPrimary, "dietary focus"))
	}
	if t.CookingMethod != "" {
		out = append(out, variation(t.CookingMethod+" "+prompt, 0.88, domain.CategoryPrimary, "cooking method"))
	}
	return out
}

func secondaryVariations(prompt, primary string) []domain.KeywordVariation {
	var out []domain.KeywordVariation
	for _, a := range secondaryAdjectives {
		out = append(out, variation(a+" "+prompt+" "+primary, 0.75, domain.CategorySecondary, "adjective "+a))
	}
	for _, m := range secondaryMealTypes {
		out = append(out, variation(prompt+" "+m+" "+primary, 0.8, domain.CategorySecondary, "meal type "+m))
	}
	for _, s := range secondaryPrepStyles {
		out = append(out, variation(s+" "+prompt+" "+primary, 0.7, domain.CategorySecondary, "prep style "+s))
	}
	return out
}

// seasonalVariations puts matching holidays ahead of the plain season words.
func seasonalVariations(now time.Time, prompt, primary string, custom *domain.SeasonalModifiers) []domain.KeywordVariation {
	var out []domain.KeywordVariation
	for _, h := range Holidays(now) {
		if strings.Contains(prompt, h) || strings.Contains(h, prompt) {
			out = append(out, variation(h+" "+primary, 0.85, domain.CategorySeasonal, "holiday "+h))
		}
	}
	season := Season(now.Month())
	for _, w := range seasonWords(season, custom) {
		out = append(out, variation(w+" "+prompt+" "+primary, 0.65, domain.CategorySeasonal, season+" modifier"))
	}
	return out
}

func variation(kw string, confidence float64, c domain.VariationCategory, reason string) domain.KeywordVariation {
	return domain.KeywordVariation{Keyword: kw, Confidence: confidence, Category: c, Reasoning: reason}
}

func ratio(count int, share float64) int {
	return int(math.Ceil(float64(count)*share - 1e-9))
}

func take(vs []domain.KeywordVariation, n int) []domain.KeywordVariation {
	if n < len(vs) {
		return vs[:n]
	}
	return vs
}

// finish applies redundancy collapse, the candy safety override, de-duplication,
// ordering and truncation, then remembers what was emitted.
func (g *Generator) finish(p profile, st *domainState, prompt string, vars []domain.KeywordVariation, count int) []domain.KeywordVariation {
	for i := range vars {
		vars[i].Keyword = Collapse(vars[i].Keyword)
	}

	if isSweetsDomain(p.info.Tokens) && mentionsMeat(vars) {
		g.logger.Info("replacing meat keywords for sweets domain", "domain", p.key)
		vars = candySet(prompt)
	}

	sort.SliceStable(vars, func(i, j int) bool { return vars[i].Confidence > vars[j].Confidence })

	seen := map[string]bool{}
	out := make([]domain.KeywordVariation, 0, count)
	for _, v := range vars {
		if v.Keyword == "" || seen[v.Keyword] {
			continue
		}
		seen[v.Keyword] = true
		out = append(out, v)
		if len(out) == count {
			break
		}
	}

	for _, v := range out {
		st.recent = append(st.recent, v.Keyword)
	}
	if len(st.recent) > maxRecent {
		st.recent = st.recent[len(st.recent)-maxRecent:]
	}
	return out
}

// Collapse lowercases a keyword and drops repeated words, keeping the first.
func Collapse(keyword string) string {
	seen := map[string]bool{}
	var words []string
	for _, w := range strings.Fields(strings.ToLower(keyword)) {
		if seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

func isSweetsDomain(tokens []string) bool {
	_, ok := matchAny(tokens, sweetsIdentity)
	return ok
}

func mentionsMeat(vars []domain.KeywordVariation) bool {
	for _, v := range vars {
		if containsMeat(v.Keyword) {
			return true
		}
	}
	return false
}

func containsMeat(s string) bool {
	for _, m := range meatTerms {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func candySet(prompt string) []domain.KeywordVariation {
	prefix := ""
	if !isGenericPrompt(prompt) && !containsMeat(prompt) {
		prefix = prompt + " "
	}
	return []domain.KeywordVariation{
		variation(Collapse(prefix+"candy recipes"), 0.95, domain.CategoryPrimary, "sweets site"),
		variation("sweet treats", 0.9, domain.CategorySecondary, "sweets site"),
		variation("homemade candy", 0.85, domain.CategorySecondary, "sweets site"),
	}
}

// overlapsAny reports whether kw contains or is contained by any recent keyword.
func overlapsAny(kw string, recent []string) bool {
	k := strings.ToLower(kw)
	for _, r := range recent {
		r = strings.ToLower(r)
		if r == "" {
			continue
		}
		if strings.Contains(k, r) || strings.Contains(r, k) {
			return true
		}
	}
	return false
}

// GenerateBatch generates keywords for each domain in turn. A failure for one domain
// yields a single low-confidence fallback keyword and a *domain.GenerationError.
func (g *Generator) GenerateBatch(domains []string, themePrompt string, count int) (map[string][]domain.KeywordVariation, []error) {
	results := make(map[string][]domain.KeywordVariation, len(domains))
	var errs []error
	for _, d := range domains {
		vars, err := g.safeGenerate(d, themePrompt, count)
		if err != nil {
			g.logger.Warn("keyword generation failed, using fallback", "domain", d, "err", err)
			errs = append(errs, err)
			vars = []domain.KeywordVariation{g.fallback(d, themePrompt)}
		}
		results[d] = vars
	}
	return results, errs
}

func (g *Generator) safeGenerate(websiteDomain, prompt string, count int) (vars []domain.KeywordVariation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.GenerationError{Domain: websiteDomain, Cause: r}
		}
	}()
	return g.Generate(websiteDomain, prompt, count), nil
}

func (g *Generator) fallback(websiteDomain, themePrompt string) domain.KeywordVariation {
	return variation(g.NextKeywordFallback(websiteDomain, themePrompt), fallbackConfident, domain.CategoryPrimary, "fallback")
}

// NextKeywordFallback is the keyword used when nothing has been generated for a domain:
// the prompt joined with the registered primary theme, or "recipes".
func (g *Generator) NextKeywordFallback(websiteDomain, themePrompt string) string {
	prompt := strings.ToLower(strings.TrimSpace(themePrompt))

	g.mu.Lock()
	key := normalize(websiteDomain)
	primary := ""
	if c, ok := g.contexts[key]; ok {
		primary = c.PrimaryTheme
	} else if t, ok := g.themes[key]; ok {
		primary = t.PrimaryTheme
	}
	g.mu.Unlock()

	switch {
	case primary == "":
		return fallbackKeyword
	case isGenericPrompt(prompt):
		return Collapse(primary)
	default:
		return Collapse(prompt + " " + primary)
	}
}

// SetCustomContext overrides theme detection for a domain and mirrors the change to
// the context store. The in-memory override is kept even when saving fails.
func (g *Generator) SetCustomContext(websiteDomain string, c domain.CustomContext) error {
	if strings.TrimSpace(c.PrimaryTheme) == "" && len(c.CustomKeywords) == 0 {
		return ErrEmptyContext
	}
	key := normalize(websiteDomain)

	g.mu.Lock()
	g.contexts[key] = c
	delete(g.states, key)
	snapshot := g.snapshotLocked()
	g.mu.Unlock()

	return g.save(snapshot)
}

// CustomContext returns the override registered for a domain.
func (g *Generator) CustomContext(websiteDomain string) (domain.CustomContext, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.contexts[normalize(websiteDomain)]
	return c, ok
}

// CustomContexts returns a copy of every override.
func (g *Generator) CustomContexts() map[string]domain.CustomContext {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// RemoveCustomContext drops a domain's override. It reports whether one existed.
func (g *Generator) RemoveCustomContext(websiteDomain string) (bool, error) {
	key := normalize(websiteDomain)

	g.mu.Lock()
	_, ok := g.contexts[key]
	delete(g.contexts, key)
	delete(g.states, key)
	snapshot := g.snapshotLocked()
	g.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, g.save(snapshot)
}

func (g *Generator) snapshotLocked() map[string]domain.CustomContext {
	out := make(map[string]domain.CustomContext, len(g.contexts))
	for k, v := range g.contexts {
		out[k] = v
	}
	return out
}

func (g *Generator) save(snapshot map[string]domain.CustomContext) error {
	if g.store == nil {
		return nil
	}
	if err := g.store.Save(snapshot); err != nil {
		return fmt.Errorf("save custom contexts: %w", err)
	}
	return nil
}
