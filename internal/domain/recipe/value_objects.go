package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Value Objects - Immutable objects that describe aspects of the domain

// Ingredient represents one ingredient line of a recipe
type Ingredient struct {
	Amount float64
	Unit   string
	Name   string
}

// String renders the ingredient as "amount unit name", skipping empty parts
func (i Ingredient) String() string {
	parts := make([]string, 0, 3)
	if i.Amount != 0 {
		parts = append(parts, strconv.FormatFloat(i.Amount, 'f', -1, 64))
	}
	if i.Unit != "" {
		parts = append(parts, i.Unit)
	}
	if i.Name != "" {
		parts = append(parts, i.Name)
	}
	return strings.Join(parts, " ")
}

// Nutrition is the raw nutrition data reported by the provider, with unit
// suffixed values such as "250 kcal" or "12g".
type Nutrition struct {
	Calories string
	Protein  string
	Fat      string
	Carbs    string
}

// NutritionSummary is the numeric view of Nutrition
type NutritionSummary struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// quantityPattern matches a number with an optional known unit suffix.
var quantityPattern = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*(kcal|mg|g)?$`)

// ParseQuantity extracts the numeric prefix of a unit suffixed value.
// An empty value is 0 with no error; anything else that does not match
// returns ErrNutritionParse.
func ParseQuantity(raw string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, nil
	}

	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrNutritionParse, raw)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNutritionParse, raw)
	}
	return v, nil
}

// SummarizeNutrition parses every nutrient, substituting 0 for missing or
// malformed values.
func SummarizeNutrition(n Nutrition) NutritionSummary {
	return NutritionSummary{
		Calories: quantityOrZero(n.Calories),
		Protein:  quantityOrZero(n.Protein),
		Fat:      quantityOrZero(n.Fat),
		Carbs:    quantityOrZero(n.Carbs),
	}
}

func quantityOrZero(raw string) float64 {
	v, err := ParseQuantity(raw)
	if err != nil {
		return 0
	}
	return v
}
