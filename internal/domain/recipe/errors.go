package recipe

import "errors"

// Domain errors for recipe discovery

var (
	// Criteria validation errors
	ErrNoIngredients       = errors.New("search criteria must have at least one ingredient")
	ErrInvalidMaxReadyTime = errors.New("max ready time must not be negative")

	// Provider errors
	ErrProviderUnavailable = errors.New("recipe provider unavailable")

	// Language model errors
	ErrNoImage = errors.New("language model returned no image")

	// Nutrition parsing
	ErrNutritionParse = errors.New("malformed nutrition value")
)
