package keywords

import (
	"time"

	"RecipeScanner/internal/domain"
)

// BuiltinThemes are the website themes known without configuration.
var BuiltinThemes = []domain.WebsiteTheme{
	{Domain: "airfryerauthority.com", Name: "Air Fryer Authority", PrimaryTheme: "air fryer cooking",
		SecondaryThemes: []string{"healthy cooking", "quick meals", "crispy foods"}, CookingMethod: "air frying", TargetAudience: "health-conscious home cooks"},
	{Domain: "antiinflammatorytable.com", Name: "Anti-Inflammatory Table", PrimaryTheme: "anti-inflammatory foods",
		SecondaryThemes: []string{"healing foods", "wellness", "chronic pain relief"}, DietaryFocus: "anti-inflammatory", TargetAudience: "people managing inflammation"},
	{Domain: "bluezonefeast.com", Name: "Blue Zone Feast", PrimaryTheme: "longevity foods",
		SecondaryThemes: []string{"Mediterranean diet", "plant-based", "healthy aging"}, DietaryFocus: "longevity", TargetAudience: "longevity seekers"},
	{Domain: "ketoterraneantable.com", Name: "Keto-terranean Table", PrimaryTheme: "keto Mediterranean",
		SecondaryThemes: []string{"low-carb", "Mediterranean flavors", "healthy fats"}, DietaryFocus: "keto", CuisineType: "Mediterranean", TargetAudience: "keto dieters"},
	{Domain: "oliveketokitchen.com", Name: "Olive Keto Kitchen", PrimaryTheme: "keto recipes",
		SecondaryThemes: []string{"low-carb", "high-fat", "ketogenic"}, DietaryFocus: "keto", TargetAudience: "keto dieters"},
	{Domain: "primalfeastkitchen.com", Name: "Primal Feast Kitchen", PrimaryTheme: "paleo recipes",
		SecondaryThemes: []string{"ancestral eating", "whole foods", "grain-free"}, DietaryFocus: "paleo", TargetAudience: "paleo followers"},
	{Domain: "budgertbiteshq.com", Name: "Budget Bites HQ", PrimaryTheme: "budget-friendly meals",
		SecondaryThemes: []string{"affordable cooking", "meal planning", "frugal living"}, TargetAudience: "budget-conscious families"},
	{Domain: "quickdinnerhub.com", Name: "Quick Dinner Hub", PrimaryTheme: "quick dinner recipes",
		SecondaryThemes: []string{"30-minute meals", "weeknight dinners", "time-saving"}, CookingMethod: "quick cooking", TargetAudience: "busy families"},
	{Domain: "comfortfoodcozy.com", Name: "Comfort Food Cozy", PrimaryTheme: "comfort food",
		SecondaryThemes: []string{"hearty meals", "family favorites", "cozy cooking"}, TargetAudience: "home cooks"},
	{Domain: "grillandchillkitchen.com", Name: "Grill and Chill Kitchen", PrimaryTheme: "grilling recipes",
		SecondaryThemes: []string{"outdoor cooking", "BBQ", "summer foods"}, CookingMethod: "grilling", TargetAudience: "grill enthusiasts"},
	{Domain: "soupandstewhq.com", Name: "Soup and Stew HQ", PrimaryTheme: "soup and stew recipes",
		SecondaryThemes: []string{"one-pot meals", "hearty soups", "comfort food"}, CookingMethod: "simmering", TargetAudience: "home cooks"},
	{Domain: "saladsavy.com", Name: "Salad Savy", PrimaryTheme: "salad recipes",
		SecondaryThemes: []string{"healthy eating", "fresh ingredients", "light meals"}, DietaryFocus: "healthy", TargetAudience: "health-conscious eaters"},
	{Domain: "doughwhisperer.com", Name: "Dough Whisperer", PrimaryTheme: "bread and baking",
		SecondaryThemes: []string{"artisan bread", "homemade baking", "yeast recipes"}, CookingMethod: "baking", TargetAudience: "home bakers"},
	{Domain: "sugarrushkitchen.com", Name: "Sugar Rush Kitchen", PrimaryTheme: "dessert recipes",
		SecondaryThemes: []string{"sweet treats", "baking", "indulgent desserts"}, CookingMethod: "baking", TargetAudience: "dessert lovers"},
	{Domain: "thesipspot.com", Name: "The Sip Spot", PrimaryTheme: "drink recipes",
		SecondaryThemes: []string{"beverages", "cocktails", "mocktails"}, TargetAudience: "drink enthusiasts"},
	{Domain: "crunchcloudcandy.com", Name: "Crunch Cloud Candy", PrimaryTheme: "candy recipes",
		SecondaryThemes: []string{"sweet treats", "homemade candy", "desserts"}, TargetAudience: "candy makers"},
	{Domain: "balconyharvestkitchen.com", Name: "Balcony Harvest Kitchen", PrimaryTheme: "garden recipes",
		SecondaryThemes: []string{"harvest cooking", "fresh vegetable recipes", "homegrown meals"}, TargetAudience: "urban gardeners"},
}

// rotationList narrows the search categories for domains carrying one of its triggers.
type rotationList struct {
	Name       string
	Triggers   []string
	Categories []string
}

var rotationLists = []rotationList{
	{Name: "candy", Triggers: []string{"candy", "sweet", "crunch", "cloud"}, Categories: []string{
		"dessert recipes", "sweet treats", "homemade candy", "chocolate recipes",
		"baking recipes", "sugar recipes", "candy recipes", "treat recipes"}},
	{Name: "garden", Triggers: []string{"garden", "harvest", "balcony", "farm"}, Categories: []string{
		"vegetable recipes", "garden recipes", "harvest recipes", "fresh produce recipes",
		"plant-based recipes", "organic recipes", "homegrown recipes", "seasonal recipes"}},
	{Name: "beverages", Triggers: []string{"sip", "drink", "beverage", "mocktail"}, Categories: []string{
		"drink recipes", "beverage recipes", "cocktail recipes", "mocktail recipes",
		"juice recipes", "smoothie recipes", "tea recipes", "coffee recipes"}},
	{Name: "airfryer", Triggers: []string{"airfryer"}, Categories: []string{
		"air fryer recipes", "crispy recipes", "healthy fried recipes", "quick air fryer meals",
		"air fryer chicken", "air fryer vegetables", "air fryer snacks", "air fryer desserts"}},
	{Name: "keto", Triggers: []string{"keto"}, Categories: []string{
		"keto recipes", "low-carb recipes", "keto meals", "keto snacks",
		"keto desserts", "keto breakfast", "keto dinner", "keto lunch"}},
	{Name: "vegetarian", Triggers: []string{"vegetarian", "veggie", "veg", "plant"}, Categories: []string{
		"vegetarian recipes", "plant-based recipes", "veggie recipes", "meatless recipes",
		"vegetable recipes", "vegan recipes", "plant protein recipes", "green recipes"}},
	{Name: "budget", Triggers: []string{"budget", "cheap", "affordable"}, Categories: []string{
		"budget recipes", "cheap meals", "affordable recipes", "frugal recipes",
		"budget-friendly recipes", "economical recipes", "low-cost recipes", "value recipes"}},
	{Name: "quick", Triggers: []string{"quick", "fast", "easy"}, Categories: []string{
		"quick recipes", "fast meals", "easy recipes", "30-minute recipes",
		"quick dinner", "fast lunch", "easy breakfast", "speedy recipes"}},
	{Name: "brunch", Triggers: []string{"brunch", "bright"}, Categories: []string{
		"brunch recipes", "breakfast recipes", "morning recipes", "brunch ideas",
		"breakfast casseroles", "pancake recipes", "waffle recipes", "egg recipes",
		"brunch cocktails", "morning smoothies", "breakfast pastries", "brunch sides"}},
	{Name: "comfort", Triggers: []string{"comfort", "cozy", "hearty"}, Categories: []string{
		"comfort food", "hearty recipes", "cozy recipes", "comforting meals",
		"warm recipes", "soul food", "comforting dishes", "homey recipes"}},
}

// generalCategories is used when no rotation list fits a domain.
var generalCategories = []string{
	"chicken recipes", "beef recipes", "pork recipes", "fish recipes", "seafood recipes",
	"vegetable recipes", "pasta recipes", "rice recipes", "soup recipes", "salad recipes",
	"dessert recipes", "breakfast recipes", "lunch recipes", "dinner recipes", "snack recipes",
	"appetizer recipes", "side dish recipes", "main course recipes", "healthy recipes",
	"quick recipes", "easy recipes", "one-pot recipes", "sheet pan recipes", "slow cooker recipes",
	"grilled recipes", "baked recipes", "fried recipes", "steamed recipes", "roasted recipes",
}

// rotationFor picks the first rotation list whose trigger appears in the tokens.
func rotationFor(tokens []string) (rotationList, bool) {
	for _, l := range rotationLists {
		if _, ok := matchAny(tokens, l.Triggers); ok {
			return l, true
		}
	}
	return rotationList{Name: "general", Categories: generalCategories}, false
}

var (
	secondaryAdjectives = []string{"easy", "quick", "healthy", "delicious", "best", "simple", "amazing"}
	secondaryMealTypes  = []string{"recipes", "ideas", "dishes", "meals", "food"}
	secondaryPrepStyles = []string{"homemade", "quick", "easy", "healthy", "traditional"}
)

// Season names the meteorological season of a month.
func Season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}

var defaultSeasonWords = map[string][]string{
	"winter": {"winter", "cozy", "warming", "comforting"},
	"spring": {"spring", "fresh", "light", "renewing"},
	"summer": {"summer", "refreshing", "cool", "bright"},
	"fall":   {"fall", "autumn", "harvest", "warming"},
}

func seasonWords(season string, custom *domain.SeasonalModifiers) []string {
	if custom != nil {
		var words []string
		switch season {
		case "winter":
			words = custom.Winter
		case "spring":
			words = custom.Spring
		case "summer":
			words = custom.Summer
		case "fall":
			words = custom.Fall
		}
		if len(words) > 0 {
			return words
		}
	}
	return defaultSeasonWords[season]
}

// Holidays returns the holiday words in effect on a date.
func Holidays(t time.Time) []string {
	switch t.Month() {
	case time.December:
		return []string{"christmas", "holiday", "festive"}
	case time.November:
		if t.Day() >= 20 {
			return []string{"thanksgiving", "thanksgiving dinner"}
		}
	case time.October:
		return []string{"halloween", "spooky"}
	case time.February:
		return []string{"valentine", "valentines day"}
	case time.July:
		return []string{"4th of july", "independence day"}
	case time.March:
		if t.Day() >= 15 {
			return []string{"easter", "spring celebration"}
		}
	}
	return nil
}
