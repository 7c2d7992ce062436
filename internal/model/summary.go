package model

// AISummary is the structured, AI-generated description stored on a place.
type AISummary struct {
	PlaceName             string         `json:"place_name,omitempty"`
	SummaryForDisplay     string         `json:"summary_for_display"`
	ChatGPTRating         string         `json:"chatgpt_rating,omitempty"`
	OngoingEvents         string         `json:"ongoing_events,omitempty"`
	SentimentAnalysis     string         `json:"sentiment_analysis,omitempty"`
	SpecialFeatures       string         `json:"special_features,omitempty"`
	Atmosphere            *Atmosphere    `json:"atmosphere,omitempty"`
	CoffeeProgram         *CoffeeProgram `json:"coffee_program,omitempty"`
	FoodOfferings         *FoodOfferings `json:"food_offerings,omitempty"`
	KeySellingPoints      []string       `json:"key_selling_points,omitempty"`
	PrimaryTargetAudience []string       `json:"primary_target_audience,omitempty"`
	Error                 string         `json:"error,omitempty"`
}

// Atmosphere describes the feel of a place.
type Atmosphere struct {
	Vibe             string `json:"vibe,omitempty"`
	DecorStyle       string `json:"decor_style,omitempty"`
	GoodForWorkStudy *bool  `json:"good_for_work_study,omitempty"`
}

// CoffeeProgram describes what a place brews and serves.
type CoffeeProgram struct {
	BeanSourceQuality       string   `json:"bean_source_quality,omitempty"`
	BrewingMethodsAvailable []string `json:"brewing_methods_available,omitempty"`
	SignatureDrinks         []string `json:"signature_drinks,omitempty"`
	MilkAlternativesOffered []string `json:"milk_alternatives_offered,omitempty"`
}

// FoodOfferings describes the food menu.
type FoodOfferings struct {
	TypesAvailable       []string `json:"types_available,omitempty"`
	SpecificPopularItems []string `json:"specific_popular_items,omitempty"`
}

// MissingRequired returns the names of required summary fields that are empty.
func (s AISummary) MissingRequired() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"place_name", s.PlaceName},
		{"summary_for_display", s.SummaryForDisplay},
		{"chatgpt_rating", s.ChatGPTRating},
		{"ongoing_events", s.OngoingEvents},
		{"sentiment_analysis", s.SentimentAnalysis},
		{"special_features", s.SpecialFeatures},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
