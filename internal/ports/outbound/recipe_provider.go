// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
)

// RecipeProvider defines the lookups against the third-party recipe catalog
type RecipeProvider interface {
	// Search returns at most limit summaries in the provider's ranking order.
	// Zero matches is an empty slice, not an error. Provider failures wrap
	// recipe.ErrProviderUnavailable.
	Search(ctx context.Context, criteria recipe.SearchCriteria, limit int) ([]recipe.RecipeSummary, error)

	// Instructions returns the ordered steps, empty when none are analyzed.
	Instructions(ctx context.Context, recipeID int) ([]string, error)

	// Nutrition returns the raw nutrition values.
	Nutrition(ctx context.Context, recipeID int) (*recipe.Nutrition, error)

	// Video returns a link to a cooking video for the recipe title.
	Video(ctx context.Context, title string) (string, error)
}
