package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEnrichedRecipe(t *testing.T) {
	summary := RecipeSummary{
		ID:             42,
		Title:          "Pad Thai",
		ReadyInMinutes: 35,
		Ingredients:    []Ingredient{{Amount: 200, Unit: "g", Name: "rice noodles"}},
	}

	r := NewEnrichedRecipe(summary)

	assert.Equal(t, 42, r.ID)
	assert.Equal(t, "Pad Thai", r.Title)
	assert.Equal(t, 35, r.ReadyInMinutes)
	assert.Equal(t, summary.Ingredients, r.Ingredients)
	assert.Equal(t, []string{}, r.Instructions)
	assert.False(t, r.HasNutrition())
	assert.Empty(t, r.ImageURL)
	assert.Empty(t, r.VideoURL)

	r.Ingredients[0].Name = "changed"
	assert.Equal(t, "rice noodles", summary.Ingredients[0].Name, "summary must not share ingredient storage")
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "understood", Understood(nil).Outcome.String())
	assert.Equal(t, "not_understood", NotUnderstood().Outcome.String())
	assert.Equal(t, "no_matches", NoMatches().Outcome.String())
	assert.Equal(t, "provider_error", ProviderError("down").Outcome.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}

func TestImagePrompt(t *testing.T) {
	assert.Equal(t,
		"A professional food photography of Pad Thai, on a beautiful plate, restaurant style",
		ImagePrompt("Pad Thai"))
}
