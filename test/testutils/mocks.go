// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/alchemorsel/recipefinder/internal/ports/inbound"
	"github.com/alchemorsel/recipefinder/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockRecipeProvider provides a mock implementation of RecipeProvider
type MockRecipeProvider struct {
	mock.Mock
}

var _ outbound.RecipeProvider = (*MockRecipeProvider)(nil)

// Search mocks the recipe search
func (m *MockRecipeProvider) Search(ctx context.Context, criteria recipe.SearchCriteria, limit int) ([]recipe.RecipeSummary, error) {
	args := m.Called(ctx, criteria, limit)
	if v := args.Get(0); v != nil {
		return v.([]recipe.RecipeSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

// Instructions mocks the instruction lookup
func (m *MockRecipeProvider) Instructions(ctx context.Context, recipeID int) ([]string, error) {
	args := m.Called(ctx, recipeID)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// Nutrition mocks the nutrition lookup
func (m *MockRecipeProvider) Nutrition(ctx context.Context, recipeID int) (*recipe.Nutrition, error) {
	args := m.Called(ctx, recipeID)
	if v := args.Get(0); v != nil {
		return v.(*recipe.Nutrition), args.Error(1)
	}
	return nil, args.Error(1)
}

// Video mocks the video lookup
func (m *MockRecipeProvider) Video(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

// MockLanguageModel provides a mock implementation of LanguageModel
type MockLanguageModel struct {
	mock.Mock
}

var _ outbound.LanguageModel = (*MockLanguageModel)(nil)

// ExtractCriteria mocks criteria extraction
func (m *MockLanguageModel) ExtractCriteria(ctx context.Context, text string) (*recipe.SearchCriteria, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.(*recipe.SearchCriteria), args.Error(1)
	}
	return nil, args.Error(1)
}

// GenerateImage mocks image generation
func (m *MockLanguageModel) GenerateImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MetricsSpy records metric calls in memory
type MetricsSpy struct {
	mu        sync.Mutex
	outcomes  map[string]int
	failures  map[string]int
	upstreams map[string]int
}

var _ outbound.MetricsRecorder = (*MetricsSpy)(nil)

// NewMetricsSpy creates an empty spy
func NewMetricsSpy() *MetricsSpy {
	return &MetricsSpy{
		outcomes:  make(map[string]int),
		failures:  make(map[string]int),
		upstreams: make(map[string]int),
	}
}

// RecordOutcome counts one pipeline outcome
func (s *MetricsSpy) RecordOutcome(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[outcome]++
}

// EnrichmentFailed counts one failed enrichment call
func (s *MetricsSpy) EnrichmentFailed(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[field]++
}

// UpstreamCall counts one upstream call
func (s *MetricsSpy) UpstreamCall(service, operation, status string, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upstreams[service+"."+operation+"."+status]++
}

// Outcomes returns how often outcome was recorded
func (s *MetricsSpy) Outcomes(outcome string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcomes[outcome]
}

// Failures returns how often field failed
func (s *MetricsSpy) Failures(field string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[field]
}

// TotalFailures returns the number of failed enrichment calls
func (s *MetricsSpy) TotalFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.failures {
		total += n
	}
	return total
}

// MockRecipeFinder provides a mock implementation of RecipeFinder
type MockRecipeFinder struct {
	mock.Mock
}

var _ inbound.RecipeFinder = (*MockRecipeFinder)(nil)

// Handle mocks one pipeline invocation
func (m *MockRecipeFinder) Handle(ctx context.Context, query string) (*recipe.Result, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.(*recipe.Result), args.Error(1)
	}
	return nil, args.Error(1)
}
