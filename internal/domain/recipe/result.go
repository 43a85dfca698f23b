package recipe

// Outcome classifies the result of handling one user request
type Outcome int

const (
	OutcomeUnderstood Outcome = iota
	OutcomeNotUnderstood
	OutcomeNoMatches
	OutcomeProviderError
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeUnderstood:
		return "understood"
	case OutcomeNotUnderstood:
		return "not_understood"
	case OutcomeNoMatches:
		return "no_matches"
	case OutcomeProviderError:
		return "provider_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one pipeline invocation. Recipes is only set for
// OutcomeUnderstood and Reason only for OutcomeProviderError.
type Result struct {
	Outcome Outcome
	Recipes []EnrichedRecipe
	Reason  string
}

// Understood wraps the enriched recipes
func Understood(recipes []EnrichedRecipe) *Result {
	return &Result{Outcome: OutcomeUnderstood, Recipes: recipes}
}

// NotUnderstood signals that the request could not be mapped to search criteria
func NotUnderstood() *Result {
	return &Result{Outcome: OutcomeNotUnderstood}
}

// NoMatches signals that the provider found nothing
func NoMatches() *Result {
	return &Result{Outcome: OutcomeNoMatches}
}

// ProviderError signals that the primary search failed
func ProviderError(reason string) *Result {
	return &Result{Outcome: OutcomeProviderError, Reason: reason}
}
