package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alchemorsel/recipefinder/internal/application/presenter"
	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/http/handlers"
)

const messageProviderUnavailable = "Recipe provider unavailable"

// render writes one pipeline result the way the HTTP API would word it
func render(w io.Writer, res *recipe.Result, asJSON bool) error {
	switch res.Outcome {
	case recipe.OutcomeUnderstood:
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(presenter.ToJSON(res.Recipes))
		}
		_, err := fmt.Fprintln(w, presenter.ToText(res.Recipes))
		return err
	case recipe.OutcomeNotUnderstood:
		_, err := fmt.Fprintln(w, handlers.MessageNotUnderstood)
		return err
	case recipe.OutcomeNoMatches:
		_, err := fmt.Fprintln(w, handlers.MessageNoMatches)
		return err
	case recipe.OutcomeProviderError:
		_, err := fmt.Fprintf(w, "%s: %s\n", messageProviderUnavailable, res.Reason)
		return err
	default:
		return fmt.Errorf("unexpected outcome %s", res.Outcome)
	}
}
