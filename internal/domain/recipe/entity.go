package recipe

import "fmt"

// RecipeSummary is one search hit as reported by the recipe provider.
type RecipeSummary struct {
	ID             int
	Title          string
	ReadyInMinutes int
	Ingredients    []Ingredient
}

// EnrichedRecipe is a summary merged with the outcome of the enrichment calls.
// Any enrichment field may be absent; absence degrades the record, it is not an error.
type EnrichedRecipe struct {
	ID             int
	Title          string
	ReadyInMinutes int
	Ingredients    []Ingredient
	Instructions   []string
	Nutrition      *Nutrition
	ImageURL       string
	VideoURL       string
}

// NewEnrichedRecipe starts an enriched record from a summary with every
// enrichment field absent.
func NewEnrichedRecipe(s RecipeSummary) EnrichedRecipe {
	ingredients := make([]Ingredient, len(s.Ingredients))
	copy(ingredients, s.Ingredients)

	return EnrichedRecipe{
		ID:             s.ID,
		Title:          s.Title,
		ReadyInMinutes: s.ReadyInMinutes,
		Ingredients:    ingredients,
		Instructions:   []string{},
	}
}

// HasNutrition reports whether nutrition data was fetched
func (r EnrichedRecipe) HasNutrition() bool {
	return r.Nutrition != nil
}

// ImagePrompt builds the image generation prompt for a recipe title.
func ImagePrompt(title string) string {
	return fmt.Sprintf("A professional food photography of %s, on a beautiful plate, restaurant style", title)
}
