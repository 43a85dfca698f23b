// Package presenter renders pipeline results for API and console clients.
package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
)

const separator = "=================================================="

// IngredientPayload is one ingredient line in API responses
type IngredientPayload struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Name   string  `json:"name"`
}

// NutritionPayload carries the provider's nutrition strings
type NutritionPayload struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Fat      string `json:"fat"`
	Carbs    string `json:"carbs"`
}

// NutritionSummaryPayload carries the parsed nutrition numbers
type NutritionSummaryPayload struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// RecipePayload is the API representation of an enriched recipe
type RecipePayload struct {
	ID               int                      `json:"id"`
	Title            string                   `json:"title"`
	ReadyInMinutes   int                      `json:"readyInMinutes,omitempty"`
	Ingredients      []IngredientPayload      `json:"ingredients"`
	Instructions     []string                 `json:"instructions"`
	Nutrition        *NutritionPayload        `json:"nutrition,omitempty"`
	NutritionSummary *NutritionSummaryPayload `json:"nutritionSummary,omitempty"`
	ImageURL         string                   `json:"imageUrl,omitempty"`
	VideoURL         string                   `json:"videoUrl,omitempty"`
}

// ToJSON converts enriched recipes into API payloads, one per recipe and in order
func ToJSON(records []recipe.EnrichedRecipe) []RecipePayload {
	out := make([]RecipePayload, 0, len(records))
	for _, r := range records {
		payload := RecipePayload{
			ID:             r.ID,
			Title:          r.Title,
			ReadyInMinutes: r.ReadyInMinutes,
			Ingredients:    make([]IngredientPayload, 0, len(r.Ingredients)),
			Instructions:   r.Instructions,
			ImageURL:       r.ImageURL,
			VideoURL:       r.VideoURL,
		}
		if payload.Instructions == nil {
			payload.Instructions = []string{}
		}
		for _, ing := range r.Ingredients {
			payload.Ingredients = append(payload.Ingredients, IngredientPayload{
				Amount: ing.Amount,
				Unit:   ing.Unit,
				Name:   ing.Name,
			})
		}
		if r.HasNutrition() {
			payload.Nutrition = &NutritionPayload{
				Calories: r.Nutrition.Calories,
				Protein:  r.Nutrition.Protein,
				Fat:      r.Nutrition.Fat,
				Carbs:    r.Nutrition.Carbs,
			}
			summary := recipe.SummarizeNutrition(*r.Nutrition)
			payload.NutritionSummary = &NutritionSummaryPayload{
				Calories: summary.Calories,
				Protein:  summary.Protein,
				Fat:      summary.Fat,
				Carbs:    summary.Carbs,
			}
		}
		out = append(out, payload)
	}
	return out
}

// ToText renders enriched recipes as a human-readable report
func ToText(records []recipe.EnrichedRecipe) string {
	lines := make([]string, 0, len(records)*16)
	for _, r := range records {
		lines = append(lines, "\n"+separator)
		lines = append(lines, "Recipe: "+r.Title)
		lines = append(lines, fmt.Sprintf("Recipe ID: %d", r.ID))

		if r.ReadyInMinutes > 0 {
			lines = append(lines, fmt.Sprintf("Preparation Time: %d minutes", r.ReadyInMinutes))
		}
		if r.ImageURL != "" {
			lines = append(lines, "\nRecipe Image: "+r.ImageURL)
		}
		if len(r.Ingredients) > 0 {
			lines = append(lines, "\nIngredients:")
			for _, ing := range r.Ingredients {
				lines = append(lines, "- "+ing.String())
			}
		}
		if len(r.Instructions) > 0 {
			lines = append(lines, "\nCooking Instructions:")
			for i, step := range r.Instructions {
				lines = append(lines, fmt.Sprintf("Step %d: %s", i+1, step))
			}
		}
		if r.HasNutrition() {
			summary := recipe.SummarizeNutrition(*r.Nutrition)
			lines = append(lines,
				"\nNutritional Information:",
				"- Calories: "+formatAmount(summary.Calories)+" kcal",
				"- Protein: "+formatAmount(summary.Protein)+" g",
				"- Fat: "+formatAmount(summary.Fat)+" g",
				"- Carbs: "+formatAmount(summary.Carbs)+" g",
			)
		}
		if r.VideoURL != "" {
			lines = append(lines, "\nFind Tutorial Videos: "+r.VideoURL)
		}

		lines = append(lines, "\n"+separator)
	}
	return strings.Join(lines, "\n")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
