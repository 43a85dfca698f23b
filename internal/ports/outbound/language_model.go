package outbound

import (
	"context"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
)

// LanguageModel defines the generative capabilities used by the finder
type LanguageModel interface {
	// ExtractCriteria maps free text to search criteria. It returns nil
	// criteria and a nil error when the model could not map the text.
	ExtractCriteria(ctx context.Context, text string) (*recipe.SearchCriteria, error)

	// GenerateImage returns the URL of one image generated for prompt.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
