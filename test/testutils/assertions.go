// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RecipeAssertions provides recipe-specific assertion methods
type RecipeAssertions struct {
	t *testing.T
}

// NewRecipeAssertions creates a new recipe assertions helper
func NewRecipeAssertions(t *testing.T) *RecipeAssertions {
	return &RecipeAssertions{t: t}
}

// MatchesSummary asserts the enriched recipe carries the summary fields unchanged
func (ra *RecipeAssertions) MatchesSummary(r recipe.EnrichedRecipe, s recipe.RecipeSummary, msgAndArgs ...interface{}) {
	assert.Equal(ra.t, s.ID, r.ID, msgAndArgs...)
	assert.Equal(ra.t, s.Title, r.Title, msgAndArgs...)
	assert.Equal(ra.t, s.ReadyInMinutes, r.ReadyInMinutes, msgAndArgs...)
	assert.Equal(ra.t, s.Ingredients, r.Ingredients, msgAndArgs...)
}

// NotEnriched asserts every best-effort field is absent
func (ra *RecipeAssertions) NotEnriched(r recipe.EnrichedRecipe, msgAndArgs ...interface{}) {
	assert.Empty(ra.t, r.Instructions, msgAndArgs...)
	assert.NotNil(ra.t, r.Instructions, "instructions default to an empty list")
	assert.Nil(ra.t, r.Nutrition, msgAndArgs...)
	assert.Empty(ra.t, r.ImageURL, msgAndArgs...)
	assert.Empty(ra.t, r.VideoURL, msgAndArgs...)
}

// OrderedIDs asserts the recipes appear in the given ID order
func (ra *RecipeAssertions) OrderedIDs(recipes []recipe.EnrichedRecipe, ids ...int) {
	got := make([]int, len(recipes))
	for i, r := range recipes {
		got[i] = r.ID
	}
	assert.Equal(ra.t, ids, got, "recipe order")
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(resp *http.Response, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, resp.StatusCode, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(resp *http.Response, target interface{}, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")

	contentType := resp.Header.Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	err := json.NewDecoder(resp.Body).Decode(target)
	assert.NoError(ha.t, err, append([]interface{}{"Response should be valid JSON"}, msgAndArgs...)...)
}

// ErrorResponse asserts that the response body is {"error": expectedMessage}
func (ha *HTTPAssertions) ErrorResponse(resp *http.Response, expectedMessage string, msgAndArgs ...interface{}) {
	var body map[string]interface{}
	ha.JSONResponse(resp, &body)

	errorMsg, exists := body["error"]
	assert.True(ha.t, exists, "Response should contain error field")
	assert.Equal(ha.t, expectedMessage, errorMsg, msgAndArgs...)
}

// Header asserts that a header exists with expected value
func (ha *HTTPAssertions) Header(resp *http.Response, headerName, expectedValue string, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedValue, resp.Header.Get(headerName), msgAndArgs...)
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(resp *http.Response) {
	require.NotNil(ha.t, resp, "Response should not be nil")

	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		assert.NotEmpty(ha.t, resp.Header.Get(header), "Security header %s should be present", header)
	}
}
