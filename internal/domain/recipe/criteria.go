package recipe

import (
	"strings"
)

// SearchCriteria holds the structured search parameters extracted from a
// user's request. Empty Diet and zero MaxReadyMinutes mean "not set".
type SearchCriteria struct {
	Ingredients     []string
	Diet            string
	MaxReadyMinutes int
}

// NewSearchCriteria builds criteria from the raw extraction arguments.
// The ingredient string is comma separated; entries are trimmed and blanks dropped.
func NewSearchCriteria(ingredients, diet string, maxReadyMinutes int) SearchCriteria {
	return SearchCriteria{
		Ingredients:     SplitIngredients(ingredients),
		Diet:            strings.TrimSpace(diet),
		MaxReadyMinutes: maxReadyMinutes,
	}
}

// SplitIngredients splits a comma separated ingredient list, preserving order.
func SplitIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the criteria are usable for a search
func (c SearchCriteria) Validate() error {
	if len(c.Ingredients) == 0 {
		return ErrNoIngredients
	}
	for _, ing := range c.Ingredients {
		if strings.TrimSpace(ing) == "" {
			return ErrNoIngredients
		}
	}
	if c.MaxReadyMinutes < 0 {
		return ErrInvalidMaxReadyTime
	}
	return nil
}

// HasDiet reports whether a diet filter was requested
func (c SearchCriteria) HasDiet() bool {
	return c.Diet != ""
}

// HasMaxReadyTime reports whether a time limit was requested
func (c SearchCriteria) HasMaxReadyTime() bool {
	return c.MaxReadyMinutes > 0
}

// Query renders the ingredient list as the free-text search query.
func (c SearchCriteria) Query() string {
	return strings.Join(c.Ingredients, ", ")
}
