package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(&model.Place{
		Name:    "Vero Café",
		Address: "Gedimino pr. 10, Vilnius",
		Reviews: []model.Review{
			{Text: "Great flat white"},
			{Text: "   "},
			{Text: "Too crowded at noon"},
		},
	})

	assert.Contains(t, p.System, "summary_for_display")
	assert.Contains(t, p.System, "JSON")
	assert.Contains(t, p.User, "Coffee shop: Vero Café")
	assert.Contains(t, p.User, "Address: Gedimino pr. 10, Vilnius")
	assert.Contains(t, p.User, "City: Vilnius, Lithuania")
	assert.Contains(t, p.User, "Great flat white\nToo crowded at noon")
}

func TestBuildPrompt_NoReviews(t *testing.T) {
	p := BuildPrompt(&model.Place{Name: "Vero Café"})
	assert.NotContains(t, p.User, "Customer reviews")
	assert.NotContains(t, p.User, "Address:")
}
