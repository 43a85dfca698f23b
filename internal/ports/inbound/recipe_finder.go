// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
)

// RecipeFinder turns a natural-language cooking request into enriched recipes.
// This is the primary port that the HTTP handlers and the console bot use.
//
// A non-nil error is only returned for unexpected failures; "not understood",
// "no matches" and provider failures are reported through Result.Outcome.
type RecipeFinder interface {
	Handle(ctx context.Context, query string) (*recipe.Result, error)
}
