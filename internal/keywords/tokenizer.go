package keywords

import (
	"regexp"
	"sort"
	"strings"
)

var (
	tldPattern       = regexp.MustCompile(`\.(com|org|net|co|io|blog|kitchen|recipes)$`)
	separatorPattern = regexp.MustCompile(`[-_.\s]+`)
)

// vocabulary holds the cooking words recognized inside concatenated domain names.
var vocabulary = []string{
	"kitchen", "cook", "cooking", "cookie", "cookies", "recipe", "recipes", "food", "foods",
	"meal", "meals", "mealhq", "mealprep", "prep", "dinner", "lunch", "breakfast", "brunch",
	"snack", "snacks", "dessert", "desserts", "appetizer", "side",
	"harvest", "garden", "farm", "fresh", "organic", "homegrown", "seasonal", "season",
	"spring", "summer", "fall", "autumn", "winter",
	"balcony", "backyard", "patio", "indoor", "outdoor", "home", "homemade",
	"comfort", "cozy", "hearty", "warm", "comforting",
	"budget", "cheap", "affordable", "frugal", "economical",
	"bite", "bites", "mini", "small", "spot", "corner", "hub", "hq",
	"quick", "fast", "easy", "simple", "rapid", "speedy", "instant",
	"frozen", "freeze", "freezer",
	"airfryer", "air", "fryer", "grill", "grilling", "bake", "baking", "baked", "bakery",
	"fry", "roast", "smoker", "pressure", "slow", "slowcook", "slowcooker", "crockpot",
	"onepot", "sheetpan", "skillet", "pan", "tray",
	"keto", "paleo", "vegan", "vegetarian", "veggie", "veg", "plant", "protein", "healthy",
	"sugarfree", "lowcarb", "glutenfree", "dairyfree",
	"sugar", "sweet", "sweets", "cake", "chocolate", "candy", "treat", "treats", "crunch", "cloud",
	"beverage", "beverages", "drink", "drinks", "cocktail", "cocktails", "mocktail", "mocktails",
	"mock", "juice", "brew", "sip", "spritz", "float", "smoothie", "coffee",
	"authority", "master", "expert", "table", "feast", "olive", "dough", "bread", "pastry", "flour",
	"soup", "stew", "salad", "chill",
	"italian", "mexican", "asian", "indian", "mediterranean", "french", "chinese", "japanese",
	"premium", "artisan", "gourmet", "handcrafted", "authentic", "traditional", "scratch", "chef",
	"meat", "chicken", "beef", "pork", "fish", "seafood", "pasta", "rice",
}

var stopWords = map[string]bool{"the": true, "and": true, "for": true, "with": true, "our": true, "your": true}

// segmenter splits concatenated words by longest vocabulary match.
type segmenter struct {
	words map[string]bool
	byLen []string
}

var defaultSegmenter = newSegmenter(vocabulary)

func newSegmenter(words []string) *segmenter {
	s := &segmenter{words: make(map[string]bool, len(words))}
	for _, w := range words {
		if !s.words[w] {
			s.words[w] = true
			s.byLen = append(s.byLen, w)
		}
	}
	sort.SliceStable(s.byLen, func(i, j int) bool { return len(s.byLen[i]) > len(s.byLen[j]) })
	return s
}

// split walks left to right taking the longest known word at each position.
// Unknown runs between known words are kept when longer than two letters.
func (s *segmenter) split(part string) []string {
	var out []string
	var unknown strings.Builder
	flush := func() {
		if unknown.Len() > 2 {
			out = append(out, unknown.String())
		}
		unknown.Reset()
	}

	for i := 0; i < len(part); {
		match := ""
		for _, w := range s.byLen {
			if strings.HasPrefix(part[i:], w) {
				match = w
				break
			}
		}
		if match == "" {
			unknown.WriteByte(part[i])
			i++
			continue
		}
		flush()
		out = append(out, match)
		i += len(match)
	}
	flush()
	return out
}

// Tokenize lowercases a domain, strips the TLD and splits it into vocabulary tokens.
// Adjacent parts that join into a known word (air-fryer) also yield the joined token.
func Tokenize(websiteDomain string) []string {
	name := strings.ToLower(strings.TrimSpace(websiteDomain))
	name = strings.TrimPrefix(name, "www.")
	name = tldPattern.ReplaceAllString(name, "")

	var parts []string
	for _, p := range separatorPattern.Split(name, -1) {
		if p != "" {
			parts = append(parts, p)
		}
	}

	seen := map[string]bool{}
	var tokens []string
	add := func(t string) {
		if t == "" || stopWords[t] || seen[t] {
			return
		}
		seen[t] = true
		tokens = append(tokens, t)
	}

	for i, p := range parts {
		for _, t := range defaultSegmenter.split(p) {
			add(t)
		}
		if i > 0 && defaultSegmenter.words[parts[i-1]+p] {
			add(parts[i-1] + p)
		}
	}
	return tokens
}

// matches reports whether a token satisfies a taxonomy pattern. Patterns of four or
// more letters also match as a prefix, so "cookie" matches "cookies".
func matches(token, pattern string) bool {
	if token == pattern {
		return true
	}
	return len(pattern) >= 4 && strings.HasPrefix(token, pattern)
}

func matchAny(tokens, patterns []string) (string, bool) {
	for _, p := range patterns {
		for _, t := range tokens {
			if matches(t, p) {
				return p, true
			}
		}
	}
	return "", false
}
