// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"math"
	"time"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/brianvoe/gofakeit/v6"
)

var units = []string{"cup", "cups", "g", "tbsp", "tsp", "lb", "oz", "ml", ""}

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// NewRandomRecipeFactory creates a factory seeded from the clock
func NewRandomRecipeFactory() *RecipeFactory {
	return NewRecipeFactory(time.Now().UnixNano())
}

// Ingredient creates one ingredient line
func (f *RecipeFactory) Ingredient() recipe.Ingredient {
	return recipe.Ingredient{
		Amount: math.Round(f.faker.Float64Range(0.25, 4)*4) / 4,
		Unit:   f.faker.RandomString(units),
		Name:   f.faker.Vegetable(),
	}
}

// Summary creates a search result with a few ingredients
func (f *RecipeFactory) Summary() recipe.RecipeSummary {
	ingredients := make([]recipe.Ingredient, f.faker.Number(1, 5))
	for i := range ingredients {
		ingredients[i] = f.Ingredient()
	}

	return recipe.RecipeSummary{
		ID:             f.faker.Number(100000, 999999),
		Title:          f.faker.Dinner(),
		ReadyInMinutes: f.faker.Number(10, 90),
		Ingredients:    ingredients,
	}
}

// Summaries creates n search results with distinct IDs and titles
func (f *RecipeFactory) Summaries(n int) []recipe.RecipeSummary {
	out := make([]recipe.RecipeSummary, n)
	for i := range out {
		out[i] = f.Summary()
		out[i].ID = 1000 + i
		out[i].Title = fmt.Sprintf("%s No. %d", out[i].Title, i+1)
	}
	return out
}

// Nutrition creates provider-style nutrition strings
func (f *RecipeFactory) Nutrition() *recipe.Nutrition {
	return &recipe.Nutrition{
		Calories: fmt.Sprintf("%d", f.faker.Number(150, 900)),
		Protein:  fmt.Sprintf("%dg", f.faker.Number(1, 60)),
		Fat:      fmt.Sprintf("%dg", f.faker.Number(1, 50)),
		Carbs:    fmt.Sprintf("%dg", f.faker.Number(1, 120)),
	}
}

// Instructions creates n ordered steps
func (f *RecipeFactory) Instructions(n int) []string {
	steps := make([]string, n)
	for i := range steps {
		steps[i] = f.faker.Sentence(8)
	}
	return steps
}

// Criteria creates search criteria from a few vegetables
func (f *RecipeFactory) Criteria() recipe.SearchCriteria {
	ingredients := make([]string, f.faker.Number(1, 4))
	for i := range ingredients {
		ingredients[i] = f.faker.Vegetable()
	}
	return recipe.SearchCriteria{
		Ingredients:     ingredients,
		MaxReadyMinutes: f.faker.Number(0, 60),
	}
}

// EnrichedRecipe creates a fully populated enriched recipe
func (f *RecipeFactory) EnrichedRecipe() recipe.EnrichedRecipe {
	r := recipe.NewEnrichedRecipe(f.Summary())
	r.Instructions = f.Instructions(f.faker.Number(1, 6))
	r.Nutrition = f.Nutrition()
	r.ImageURL = f.faker.URL()
	r.VideoURL = "https://www.youtube.com/watch?v=" + f.faker.LetterN(11)
	return r
}
