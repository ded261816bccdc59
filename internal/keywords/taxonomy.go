package keywords

import (
	"fmt"
	"strings"
)

// Category is one entry of the theme taxonomy. Focus and Noun may hold a %s verb
// that is filled with the pattern that matched.
type Category struct {
	ID         string
	Patterns   []string
	Focus      string
	Noun       string
	Confidence float64
}

func (c Category) focus(matched string) string { return expand(c.Focus, matched) }

func (c Category) noun(matched string) string {
	if c.Noun == "" {
		return c.focus(matched)
	}
	return expand(c.Noun, matched)
}

func expand(format, matched string) string {
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, matched)
	}
	return format
}

// taxonomy lists every category in single-category priority order.
var taxonomy = []Category{
	{ID: "candy", Patterns: []string{"candy", "sweets", "sweet", "treats", "crunch", "cloud"}, Focus: "candy recipes", Confidence: 0.95},
	{ID: "desserts", Patterns: []string{"dessert", "sugar", "sweet", "cake", "cookie", "chocolate"}, Focus: "dessert recipes", Confidence: 0.9},
	{ID: "beverages", Patterns: []string{"sip", "drink", "float", "spritz", "cocktail", "mocktail", "brew", "juice", "beverage", "liquid", "smoothie", "coffee"}, Focus: "drinks beverages", Noun: "drinks", Confidence: 0.9},
	{ID: "frozen", Patterns: []string{"frozen", "freeze", "freezer"}, Focus: "frozen meals", Confidence: 0.9},
	{ID: "onePot", Patterns: []string{"onepot", "skillet", "pan"}, Focus: "one pot meals", Confidence: 0.85},
	{ID: "sheetPan", Patterns: []string{"sheetpan", "tray"}, Focus: "sheet pan recipes", Confidence: 0.85},
	{ID: "slowCooker", Patterns: []string{"slowcooker", "crockpot"}, Focus: "slow cooker recipes", Confidence: 0.85},
	{ID: "slow", Patterns: []string{"slow", "slowcook"}, Focus: "slow cooker recipes", Confidence: 0.85},
	{ID: "garden", Patterns: []string{"balcony", "harvest", "garden", "farm", "homegrown", "organic", "fresh", "grow"}, Focus: "garden recipes", Confidence: 0.9},
	{ID: "seasonal", Patterns: []string{"harvest", "seasonal", "fresh", "spring", "summer", "fall", "autumn", "winter"}, Focus: "seasonal recipes", Confidence: 0.85},
	{ID: "cookingMethods", Patterns: []string{"airfryer", "slowcook", "crockpot", "grill", "pressure", "smoker", "bake", "fry", "roast"}, Focus: "%s cooking", Noun: "%s recipes", Confidence: 0.85},
	{ID: "dietary", Patterns: []string{"keto", "paleo", "vegan", "healthy", "sugarfree", "lowcarb", "glutenfree", "dairyfree"}, Focus: "%s recipes", Confidence: 0.9},
	{ID: "vegetarian", Patterns: []string{"vegetarian", "veggie", "veg", "plant"}, Focus: "vegetarian recipes", Confidence: 0.85},
	{ID: "protein", Patterns: []string{"protein", "meat", "chicken", "beef", "pork"}, Focus: "protein recipes", Confidence: 0.85},
	{ID: "baking", Patterns: []string{"dough", "bake", "bread", "pastry", "flour"}, Focus: "baking recipes", Confidence: 0.85},
	{ID: "cuisine", Patterns: []string{"italian", "mexican", "asian", "indian", "mediterranean", "french", "chinese", "japanese"}, Focus: "%s recipes", Confidence: 0.8},
	{ID: "mealTypes", Patterns: []string{"breakfast", "dinner", "lunch", "snack", "brunch", "appetizer", "side"}, Focus: "%s recipes", Confidence: 0.8},
	{ID: "mealPrep", Patterns: []string{"mealprep", "meal", "prep"}, Focus: "meal prep recipes", Noun: "meals", Confidence: 0.85},
	{ID: "comfort", Patterns: []string{"comfort", "cozy", "hearty", "warm"}, Focus: "comfort food", Confidence: 0.8},
	{ID: "budget", Patterns: []string{"budget", "cheap", "affordable", "frugal", "economical"}, Focus: "budget-friendly recipes", Confidence: 0.8},
	{ID: "quick", Patterns: []string{"quick", "fast", "easy", "simple", "rapid", "speedy"}, Focus: "quick easy recipes", Noun: "quick recipes", Confidence: 0.8},
	{ID: "instant", Patterns: []string{"instant", "pressure"}, Focus: "quick easy recipes", Noun: "quick recipes", Confidence: 0.8},
	{ID: "quality", Patterns: []string{"premium", "artisan", "gourmet", "handcrafted", "authentic", "traditional"}, Focus: "gourmet recipes", Confidence: 0.85},
	{ID: "location", Patterns: []string{"balcony", "backyard", "patio", "indoor", "outdoor", "home"}, Focus: "home cooking", Confidence: 0.8},
	{ID: "kitchen", Patterns: []string{"kitchen", "cook", "chef", "homemade", "scratch"}, Focus: "kitchen recipes", Confidence: 0.8},
	{ID: "size", Patterns: []string{"mini", "small", "bites", "bite", "hq", "hub", "spot", "corner"}, Focus: "bite-sized recipes", Confidence: 0.8},
}

// signatureRules override every other rule when a domain carries one of their tokens.
var signatureRules = []Category{
	{ID: "mocktails", Patterns: []string{"mocktail", "mock"}, Focus: "mocktails alcohol-free cocktails", Noun: "mocktails", Confidence: 0.95},
	{ID: "sip", Patterns: []string{"sip"}, Focus: "drinks beverages", Noun: "drinks", Confidence: 0.9},
	{ID: "airfryer", Patterns: []string{"airfryer"}, Focus: "air fryer recipes", Confidence: 0.95},
	{ID: "candy", Patterns: []string{"candy", "crunch", "cloud"}, Focus: "candy recipes", Confidence: 0.95},
}

// compoundRule fires when every listed category was detected. First match wins.
type compoundRule struct {
	Requires   []string
	Focus      string
	Confidence float64
}

var compoundRules = []compoundRule{
	{Requires: []string{"frozen", "mealPrep"}, Focus: "frozen meals", Confidence: 0.95},
	{Requires: []string{"onePot", "mealPrep"}, Focus: "one pot meals", Confidence: 0.95},
	{Requires: []string{"sheetPan", "mealTypes"}, Focus: "sheet pan meals", Confidence: 0.95},
	{Requires: []string{"garden", "seasonal"}, Focus: "harvest recipes", Confidence: 0.95},
	{Requires: []string{"garden", "kitchen"}, Focus: "garden kitchen recipes", Confidence: 0.95},
	{Requires: []string{"location", "garden"}, Focus: "home garden recipes", Confidence: 0.9},
}

const (
	genericFocus      = "recipes"
	genericConfidence = 0.5
)

// Intelligence is what a domain name reveals about a site's cooking theme.
type Intelligence struct {
	Tokens     []string
	Categories []string
	Focus      string
	Noun       string
	Confidence float64
	Reasoning  string
}

// Generic reports whether no category matched the domain.
func (i Intelligence) Generic() bool { return i.Focus == genericFocus }

// Analyze tokenizes a domain and resolves its theme focus: signature tokens first,
// then compound rules, then the highest priority single category.
func Analyze(websiteDomain string) Intelligence {
	tokens := Tokenize(websiteDomain)
	info := Intelligence{Tokens: tokens}

	detected := map[string]string{}
	var first *Category
	var firstMatch string
	for i := range taxonomy {
		c := &taxonomy[i]
		if p, ok := matchAny(tokens, c.Patterns); ok {
			detected[c.ID] = p
			info.Categories = append(info.Categories, c.ID)
			if first == nil {
				first, firstMatch = c, p
			}
		}
	}

	for _, sig := range signatureRules {
		if p, ok := matchAny(tokens, sig.Patterns); ok {
			info.Focus, info.Noun, info.Confidence = sig.focus(p), sig.noun(p), sig.Confidence
			info.Reasoning = fmt.Sprintf("signature token %q", p)
			return info
		}
	}

	for _, rule := range compoundRules {
		if hasAll(detected, rule.Requires) {
			info.Focus, info.Noun, info.Confidence = rule.Focus, rule.Focus, rule.Confidence
			info.Reasoning = "combined " + strings.Join(rule.Requires, " and ")
			return info
		}
	}

	if first != nil {
		info.Focus, info.Noun, info.Confidence = first.focus(firstMatch), first.noun(firstMatch), first.Confidence
		info.Reasoning = fmt.Sprintf("%s category from %q", first.ID, firstMatch)
		return info
	}

	info.Focus, info.Noun, info.Confidence = genericFocus, genericFocus, genericConfidence
	info.Reasoning = "no theme detected"
	return info
}

func hasAll(detected map[string]string, ids []string) bool {
	for _, id := range ids {
		if _, ok := detected[id]; !ok {
			return false
		}
	}
	return true
}

func (i Intelligence) has(id string) bool {
	for _, c := range i.Categories {
		if c == id {
			return true
		}
	}
	return false
}
