package enrich

import (
	"fmt"
	"strings"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
)

// Prompt is the message pair sent to a text-generation provider.
type Prompt struct {
	System string
	User   string
}

const city = "Vilnius, Lithuania"

const systemPrompt = `You are a coffee expert writing for a guide to the coffee shops of ` + city + `.
Respond with a single JSON object and nothing else. Use this schema:

{
  "place_name": string,                  // required
  "summary_for_display": string,         // required, 2-4 engaging sentences
  "chatgpt_rating": string,              // required, one of "Excellent", "Very Good", "Good", "Average", "Below Average"
  "ongoing_events": string,              // required, "None known" when unsure
  "sentiment_analysis": string,          // required, overall customer sentiment in one sentence
  "special_features": string,            // required, what sets the place apart
  "atmosphere": {"vibe": string, "decor_style": string, "good_for_work_study": boolean},
  "coffee_program": {
    "bean_source_quality": string,
    "brewing_methods_available": [string],
    "signature_drinks": [string],
    "milk_alternatives_offered": [string]
  },
  "food_offerings": {"types_available": [string], "specific_popular_items": [string]},
  "key_selling_points": [string],
  "primary_target_audience": [string]
}

Only include optional objects you have information for. If you do not know
something, say so rather than inventing details.`

// BuildPrompt describes p and, when it has any, its review texts.
func BuildPrompt(p *model.Place) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Coffee shop: %s\n", p.Name)
	if p.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", p.Address)
	}
	fmt.Fprintf(&b, "City: %s\n", city)

	if reviews := reviewText(p.Reviews); reviews != "" {
		b.WriteString("\nCustomer reviews:\n")
		b.WriteString(reviews)
		b.WriteString("\n")
	}

	b.WriteString("\nDescribe this coffee shop using the JSON schema.")
	return Prompt{System: systemPrompt, User: b.String()}
}

func reviewText(reviews []model.Review) string {
	texts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if t := strings.TrimSpace(r.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n")
}
