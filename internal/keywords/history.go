package keywords

import (
	"sort"
	"strings"
	"time"

	"RecipeScanner/internal/domain"
)

const (
	maxHistory  = 100
	topKeywords = 10
)

type usage struct {
	keywords []string
	prompt   string
	results  int
	at       time.Time
}

// RecordUsage remembers which keywords were searched for a domain and how many
// recipes they produced. Only the latest 100 entries per domain are kept.
func (g *Generator) RecordUsage(websiteDomain string, keywords []string, prompt string, resultsCount int) {
	key := normalize(websiteDomain)
	entry := usage{
		keywords: append([]string(nil), keywords...),
		prompt:   strings.TrimSpace(prompt),
		results:  resultsCount,
		at:       g.now(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	h := append(g.history[key], entry)
	if len(h) > maxHistory {
		h = h[len(h)-maxHistory:]
	}
	g.history[key] = h
}

// NextKeyword cycles through the keywords most recently recorded for a domain and
// prompt. Without history it falls back to the domain's primary theme.
func (g *Generator) NextKeyword(websiteDomain, prompt string) string {
	key := normalize(websiteDomain)
	prompt = strings.TrimSpace(prompt)

	g.mu.Lock()
	var latest []string
	h := g.history[key]
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].prompt == prompt && len(h[i].keywords) > 0 {
			latest = h[i].keywords
			break
		}
	}
	if len(latest) == 0 {
		g.mu.Unlock()
		return g.NextKeywordFallback(websiteDomain, prompt)
	}
	cursor := key + "|" + prompt
	idx := g.next[cursor] % len(latest)
	g.next[cursor] = idx + 1
	g.mu.Unlock()

	return latest[idx]
}

// Analytics summarizes the usage recorded for a domain over the last days days.
// A non-positive days covers the whole history.
func (g *Generator) Analytics(websiteDomain string, days int) domain.KeywordAnalytics {
	key := normalize(websiteDomain)

	g.mu.Lock()
	entries := append([]usage(nil), g.history[key]...)
	now := g.now()
	g.mu.Unlock()

	var cutoff time.Time
	if days > 0 {
		cutoff = now.AddDate(0, 0, -days)
	}

	type tally struct {
		count   int
		results int
		order   int
	}
	kwTally := map[string]*tally{}
	promptTally := map[string]*tally{}

	var out domain.KeywordAnalytics
	totalResults := 0
	for _, e := range entries {
		if e.at.Before(cutoff) {
			continue
		}
		out.TotalSearches++
		totalResults += e.results
		for _, kw := range e.keywords {
			t, ok := kwTally[kw]
			if !ok {
				t = &tally{order: len(kwTally)}
				kwTally[kw] = t
			}
			t.count++
			t.results += e.results
		}
		if e.prompt != "" {
			t, ok := promptTally[e.prompt]
			if !ok {
				t = &tally{order: len(promptTally)}
				promptTally[e.prompt] = t
			}
			t.count++
		}
	}
	if out.TotalSearches > 0 {
		out.AverageResults = float64(totalResults) / float64(out.TotalSearches)
	}

	out.TopKeywords = make([]domain.KeywordCount, 0, len(kwTally))
	for kw, t := range kwTally {
		out.TopKeywords = append(out.TopKeywords, domain.KeywordCount{
			Keyword:    kw,
			Count:      t.count,
			AvgResults: float64(t.results) / float64(t.count),
		})
	}
	sort.Slice(out.TopKeywords, func(i, j int) bool {
		a, b := out.TopKeywords[i], out.TopKeywords[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return kwTally[a.Keyword].order < kwTally[b.Keyword].order
	})
	if len(out.TopKeywords) > topKeywords {
		out.TopKeywords = out.TopKeywords[:topKeywords]
	}

	out.PromptBreakdown = make([]domain.PromptCount, 0, len(promptTally))
	for p, t := range promptTally {
		out.PromptBreakdown = append(out.PromptBreakdown, domain.PromptCount{Prompt: p, Count: t.count})
	}
	sort.Slice(out.PromptBreakdown, func(i, j int) bool {
		a, b := out.PromptBreakdown[i], out.PromptBreakdown[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return promptTally[a.Prompt].order < promptTally[b.Prompt].order
	})
	return out
}
