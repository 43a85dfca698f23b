package recipe

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	apperrors "github.com/alchemorsel/recipefinder/pkg/errors"
	"github.com/alchemorsel/recipefinder/pkg/healthcheck"
	"github.com/alchemorsel/recipefinder/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"
)

var errUpstream = errors.New("upstream exploded")

// FinderServiceTestSuite exercises the enrichment pipeline against mocks
type FinderServiceTestSuite struct {
	suite.Suite
	llm      *testutils.MockLanguageModel
	provider *testutils.MockRecipeProvider
	metrics  *testutils.MetricsSpy
	factory  *testutils.RecipeFactory
	service  *FinderService
}

func (s *FinderServiceTestSuite) SetupTest() {
	s.llm = new(testutils.MockLanguageModel)
	s.provider = new(testutils.MockRecipeProvider)
	s.metrics = testutils.NewMetricsSpy()
	s.factory = testutils.NewRecipeFactory(42)
	s.service = s.newService(DefaultConfig())
}

func (s *FinderServiceTestSuite) newService(cfg Config) *FinderService {
	return NewFinderService(s.llm, s.provider, s.metrics,
		noop.NewTracerProvider().Tracer("test"), cfg, zaptest.NewLogger(s.T()))
}

// expectEnrichment stubs all four enrichment calls of r as successful
func (s *FinderServiceTestSuite) expectEnrichment(r recipe.RecipeSummary, steps []string, n *recipe.Nutrition) {
	s.provider.On("Instructions", mock.Anything, r.ID).Return(steps, nil)
	s.provider.On("Nutrition", mock.Anything, r.ID).Return(n, nil)
	s.provider.On("Video", mock.Anything, r.Title).Return(videoURL(r.ID), nil)
	s.llm.On("GenerateImage", mock.Anything, recipe.ImagePrompt(r.Title)).Return(imageURL(r.ID), nil)
}

// expectFailedEnrichment stubs all four enrichment calls of r as failing
func (s *FinderServiceTestSuite) expectFailedEnrichment(r recipe.RecipeSummary) {
	s.provider.On("Instructions", mock.Anything, r.ID).Return(nil, errUpstream)
	s.provider.On("Nutrition", mock.Anything, r.ID).Return(nil, errUpstream)
	s.provider.On("Video", mock.Anything, r.Title).Return("", errUpstream)
	s.llm.On("GenerateImage", mock.Anything, recipe.ImagePrompt(r.Title)).Return("", errUpstream)
}

func videoURL(id int) string { return fmt.Sprintf("https://www.youtube.com/watch?v=v%d", id) }
func imageURL(id int) string { return fmt.Sprintf("https://images.example.com/%d.png", id) }

func (s *FinderServiceTestSuite) TestHandle_EndToEndWithFailingEnrichment() {
	// Arrange
	query := "chicken and rice, under 30 minutes"
	criteria := recipe.NewSearchCriteria("chicken, rice", "", 30)
	summaries := s.factory.Summaries(2)

	s.llm.On("ExtractCriteria", mock.Anything, query).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).Return(summaries, nil)
	for _, r := range summaries {
		s.expectFailedEnrichment(r)
	}

	// Act
	result, err := s.service.Handle(context.Background(), query)

	// Assert
	s.Require().NoError(err)
	s.Equal(recipe.OutcomeUnderstood, result.Outcome)
	s.Require().Len(result.Recipes, 2)

	assertions := testutils.NewRecipeAssertions(s.T())
	assertions.OrderedIDs(result.Recipes, summaries[0].ID, summaries[1].ID)
	for i, r := range result.Recipes {
		assertions.MatchesSummary(r, summaries[i])
		assertions.NotEnriched(r)
	}

	s.Equal(8, s.metrics.TotalFailures())
	s.Equal(1, s.metrics.Outcomes("understood"))
}

func (s *FinderServiceTestSuite) TestHandle_FullyEnriched() {
	criteria := recipe.NewSearchCriteria("tofu", "vegan", 0)
	summaries := s.factory.Summaries(1)
	steps := []string{"Press the tofu.", "Fry it."}
	nutrition := &recipe.Nutrition{Calories: "250", Protein: "10g", Fat: "5g", Carbs: "30g"}

	s.llm.On("ExtractCriteria", mock.Anything, "vegan tofu").Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).Return(summaries, nil)
	s.expectEnrichment(summaries[0], steps, nutrition)

	result, err := s.service.Handle(context.Background(), "vegan tofu")

	s.Require().NoError(err)
	s.Require().Len(result.Recipes, 1)
	got := result.Recipes[0]
	s.Equal(steps, got.Instructions)
	s.Equal(nutrition, got.Nutrition)
	s.Equal(videoURL(summaries[0].ID), got.VideoURL)
	s.Equal(imageURL(summaries[0].ID), got.ImageURL)
	s.Zero(s.metrics.TotalFailures())
}

func (s *FinderServiceTestSuite) TestHandle_IngredientsPreservedInOrder() {
	criteria := recipe.NewSearchCriteria(" basil ,tomato, mozzarella ,, olive oil", "", 0)
	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, mock.MatchedBy(func(c recipe.SearchCriteria) bool {
		return assert.ObjectsAreEqual([]string{"basil", "tomato", "mozzarella", "olive oil"}, c.Ingredients)
	}), 3).Return([]recipe.RecipeSummary{}, nil)

	result, err := s.service.Handle(context.Background(), "caprese")

	s.Require().NoError(err)
	s.Equal(recipe.OutcomeNoMatches, result.Outcome)
	s.provider.AssertExpectations(s.T())
}

func (s *FinderServiceTestSuite) TestHandle_NoMatchesSkipsEnrichment() {
	criteria := recipe.NewSearchCriteria("dragonfruit, anchovies", "", 0)
	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).Return([]recipe.RecipeSummary{}, nil)

	result, err := s.service.Handle(context.Background(), "dragonfruit with anchovies")

	s.Require().NoError(err)
	s.Equal(recipe.OutcomeNoMatches, result.Outcome)
	s.Empty(result.Recipes)
	s.provider.AssertNotCalled(s.T(), "Instructions", mock.Anything, mock.Anything)
	s.provider.AssertNotCalled(s.T(), "Nutrition", mock.Anything, mock.Anything)
	s.provider.AssertNotCalled(s.T(), "Video", mock.Anything, mock.Anything)
	s.llm.AssertNotCalled(s.T(), "GenerateImage", mock.Anything, mock.Anything)
	s.Equal(1, s.metrics.Outcomes("no_matches"))
}

func (s *FinderServiceTestSuite) TestHandle_NotUnderstood() {
	s.llm.On("ExtractCriteria", mock.Anything, "hello").Return(nil, nil)

	result, err := s.service.Handle(context.Background(), "hello")

	s.Require().NoError(err)
	s.Equal(recipe.OutcomeNotUnderstood, result.Outcome)
	s.provider.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything, mock.Anything)
	s.Equal(1, s.metrics.Outcomes("not_understood"))
}

func (s *FinderServiceTestSuite) TestHandle_BlankIngredientsNotUnderstood() {
	criteria := recipe.NewSearchCriteria(" , ,", "vegan", 0)
	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)

	result, err := s.service.Handle(context.Background(), "something vegan")

	s.Require().NoError(err)
	s.Equal(recipe.OutcomeNotUnderstood, result.Outcome)
	s.provider.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything, mock.Anything)
}

func (s *FinderServiceTestSuite) TestHandle_ExtractionErrorIsUnexpected() {
	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewExternalServiceError("language-model", errUpstream))

	result, err := s.service.Handle(context.Background(), "pasta")

	s.Nil(result)
	s.Require().Error(err)
	s.True(apperrors.Is(err, apperrors.CodeInternal))
	s.ErrorIs(err, errUpstream)
	s.Equal(1, s.metrics.Outcomes("error"))
}

func (s *FinderServiceTestSuite) TestHandle_ProviderError() {
	criteria := recipe.NewSearchCriteria("beef", "", 0)
	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).
		Return(nil, fmt.Errorf("%w: %w", recipe.ErrProviderUnavailable, errUpstream))

	result, err := s.service.Handle(context.Background(), "beef")

	s.Require().NoError(err)
	s.Equal(recipe.OutcomeProviderError, result.Outcome)
	s.Equal("recipe search failed", result.Reason)
	s.Equal(1, s.metrics.Outcomes("provider_error"))
}

func (s *FinderServiceTestSuite) TestHandle_ProviderCircuitOpen() {
	criteria := recipe.NewSearchCriteria("beef", "", 0)
	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).
		Return(nil, fmt.Errorf("%w: %w", recipe.ErrProviderUnavailable,
			fmt.Errorf("%w: spoonacular", healthcheck.ErrCircuitOpen)))

	result, err := s.service.Handle(context.Background(), "beef")

	s.Require().NoError(err)
	s.Equal(recipe.OutcomeProviderError, result.Outcome)
	s.Equal("recipe provider circuit open", result.Reason)
}

func (s *FinderServiceTestSuite) TestHandle_TruncatesToLimit() {
	s.service = s.newService(Config{Limit: 2, CallTimeout: time.Second})
	criteria := recipe.NewSearchCriteria("eggs", "", 0)
	summaries := s.factory.Summaries(4)

	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 2).Return(summaries, nil)
	for _, r := range summaries[:2] {
		s.expectFailedEnrichment(r)
	}

	result, err := s.service.Handle(context.Background(), "eggs")

	s.Require().NoError(err)
	testutils.NewRecipeAssertions(s.T()).OrderedIDs(result.Recipes, summaries[0].ID, summaries[1].ID)
	s.provider.AssertNotCalled(s.T(), "Instructions", mock.Anything, summaries[2].ID)
}

func (s *FinderServiceTestSuite) TestHandle_OrderPreservedWhenEarlierRecipesAreSlower() {
	criteria := recipe.NewSearchCriteria("rice", "", 0)
	summaries := s.factory.Summaries(3)
	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).Return(summaries, nil)

	for i, r := range summaries {
		delay := time.Duration(len(summaries)-i) * 20 * time.Millisecond
		s.provider.On("Instructions", mock.Anything, r.ID).After(delay).Return([]string{r.Title}, nil)
		s.provider.On("Nutrition", mock.Anything, r.ID).Return(nil, errUpstream)
		s.provider.On("Video", mock.Anything, r.Title).Return("", errUpstream)
		s.llm.On("GenerateImage", mock.Anything, mock.Anything).Return("", errUpstream)
	}

	result, err := s.service.Handle(context.Background(), "rice")

	s.Require().NoError(err)
	testutils.NewRecipeAssertions(s.T()).OrderedIDs(result.Recipes, summaries[0].ID, summaries[1].ID, summaries[2].ID)
	for i, r := range result.Recipes {
		s.Equal([]string{summaries[i].Title}, r.Instructions)
	}
}

func (s *FinderServiceTestSuite) TestHandle_SlowCallIsCutOffByCallTimeout() {
	s.service = s.newService(Config{Limit: 3, CallTimeout: 30 * time.Millisecond, RequestTimeout: 5 * time.Second})
	criteria := recipe.NewSearchCriteria("lamb", "", 0)
	summaries := s.factory.Summaries(1)
	r := summaries[0]

	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).Return(summaries, nil)
	s.provider.On("Instructions", mock.Anything, r.ID).Return([]string{"Roast."}, nil)
	s.provider.On("Nutrition", mock.Anything, r.ID).Return(&recipe.Nutrition{Calories: "400"}, nil)
	s.provider.On("Video", mock.Anything, r.Title).Return(videoURL(r.ID), nil)
	s.llm.On("GenerateImage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded)

	start := time.Now()
	result, err := s.service.Handle(context.Background(), "lamb")

	s.Require().NoError(err)
	s.Less(time.Since(start), 2*time.Second)
	s.Require().Len(result.Recipes, 1)
	s.Empty(result.Recipes[0].ImageURL)
	s.Equal([]string{"Roast."}, result.Recipes[0].Instructions)
	s.Equal(1, s.metrics.Failures(FieldImage))
}

// expectBlockingEnrichment stubs all four enrichment calls of r to hang
// until their context is done.
func (s *FinderServiceTestSuite) expectBlockingEnrichment(r recipe.RecipeSummary) {
	block := func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}
	s.provider.On("Instructions", mock.Anything, r.ID).Run(block).Return(nil, context.DeadlineExceeded)
	s.provider.On("Nutrition", mock.Anything, r.ID).Run(block).Return(nil, context.DeadlineExceeded)
	s.provider.On("Video", mock.Anything, r.Title).Run(block).Return("", context.DeadlineExceeded)
	s.llm.On("GenerateImage", mock.Anything, recipe.ImagePrompt(r.Title)).Run(block).Return("", context.DeadlineExceeded)
}

func (s *FinderServiceTestSuite) TestHandle_RequestTimeoutAbandonsEnrichment() {
	s.service = s.newService(Config{Limit: 3, CallTimeout: 10 * time.Second, RequestTimeout: 50 * time.Millisecond})
	criteria := recipe.NewSearchCriteria("beef", "", 0)
	summaries := s.factory.Summaries(2)

	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).Return(summaries, nil)
	for _, r := range summaries {
		s.expectBlockingEnrichment(r)
	}

	start := time.Now()
	result, err := s.service.Handle(context.Background(), "beef")

	s.Require().NoError(err)
	s.Less(time.Since(start), 2*time.Second)
	s.Equal(recipe.OutcomeUnderstood, result.Outcome)
	s.Require().Len(result.Recipes, 2)

	ra := testutils.NewRecipeAssertions(s.T())
	for i, r := range result.Recipes {
		ra.MatchesSummary(r, summaries[i])
		ra.NotEnriched(r)
	}
	s.Equal(8, s.metrics.TotalFailures())
}

func (s *FinderServiceTestSuite) TestHandle_CallerCancellationAbandonsEnrichment() {
	criteria := recipe.NewSearchCriteria("tofu", "", 0)
	summaries := s.factory.Summaries(1)

	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).Return(summaries, nil)
	s.expectBlockingEnrichment(summaries[0])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	result, err := s.service.Handle(ctx, "tofu")

	s.Require().NoError(err)
	s.Less(time.Since(start), 2*time.Second)
	s.Require().Len(result.Recipes, 1)
	s.Equal(summaries[0].ID, result.Recipes[0].ID)
	s.Equal(summaries[0].Title, result.Recipes[0].Title)
	testutils.NewRecipeAssertions(s.T()).NotEnriched(result.Recipes[0])
}

func (s *FinderServiceTestSuite) TestHandle_Idempotent() {
	criteria := recipe.NewSearchCriteria("chicken, rice", "", 30)
	summaries := s.factory.Summaries(2)
	s.llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
	s.provider.On("Search", mock.Anything, criteria, 3).Return(summaries, nil)
	s.expectEnrichment(summaries[0], []string{"Cook."}, &recipe.Nutrition{Calories: "300"})
	s.expectFailedEnrichment(summaries[1])

	first, err := s.service.Handle(context.Background(), "chicken and rice")
	s.Require().NoError(err)
	second, err := s.service.Handle(context.Background(), "chicken and rice")
	s.Require().NoError(err)

	s.Equal(first, second)
}

func TestFinderServiceSuite(t *testing.T) {
	suite.Run(t, new(FinderServiceTestSuite))
}

// TestHandle_FaultIsolation fails exactly one enrichment call and checks the
// other three fields are unaffected.
func TestHandle_FaultIsolation(t *testing.T) {
	summary := recipe.RecipeSummary{
		ID:             715415,
		Title:          "Chicken Fried Rice",
		ReadyInMinutes: 25,
		Ingredients:    []recipe.Ingredient{{Amount: 2, Unit: "cups", Name: "rice"}},
	}
	steps := []string{"Cook the rice.", "Fry everything."}
	nutrition := &recipe.Nutrition{Calories: "520", Protein: "31g", Fat: "14g", Carbs: "62g"}
	criteria := recipe.NewSearchCriteria("chicken, rice", "", 0)

	tests := []struct {
		failing string
		check   func(t *testing.T, r recipe.EnrichedRecipe)
	}{
		{FieldInstructions, func(t *testing.T, r recipe.EnrichedRecipe) {
			assert.Equal(t, []string{}, r.Instructions)
			assert.Equal(t, nutrition, r.Nutrition)
			assert.Equal(t, videoURL(summary.ID), r.VideoURL)
			assert.Equal(t, imageURL(summary.ID), r.ImageURL)
		}},
		{FieldNutrition, func(t *testing.T, r recipe.EnrichedRecipe) {
			assert.Equal(t, steps, r.Instructions)
			assert.Nil(t, r.Nutrition)
			assert.Equal(t, videoURL(summary.ID), r.VideoURL)
			assert.Equal(t, imageURL(summary.ID), r.ImageURL)
		}},
		{FieldVideo, func(t *testing.T, r recipe.EnrichedRecipe) {
			assert.Equal(t, steps, r.Instructions)
			assert.Equal(t, nutrition, r.Nutrition)
			assert.Empty(t, r.VideoURL)
			assert.Equal(t, imageURL(summary.ID), r.ImageURL)
		}},
		{FieldImage, func(t *testing.T, r recipe.EnrichedRecipe) {
			assert.Equal(t, steps, r.Instructions)
			assert.Equal(t, nutrition, r.Nutrition)
			assert.Equal(t, videoURL(summary.ID), r.VideoURL)
			assert.Empty(t, r.ImageURL)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.failing, func(t *testing.T) {
			llm := new(testutils.MockLanguageModel)
			provider := new(testutils.MockRecipeProvider)
			metrics := testutils.NewMetricsSpy()

			errFor := func(field string) error {
				if field == tt.failing {
					return errUpstream
				}
				return nil
			}
			valueOr := func(field string, v interface{}) interface{} {
				if field == tt.failing {
					return nil
				}
				return v
			}
			stringOr := func(field, v string) string {
				if field == tt.failing {
					return ""
				}
				return v
			}

			llm.On("ExtractCriteria", mock.Anything, mock.Anything).Return(&criteria, nil)
			provider.On("Search", mock.Anything, criteria, 3).Return([]recipe.RecipeSummary{summary}, nil)
			provider.On("Instructions", mock.Anything, summary.ID).
				Return(valueOr(FieldInstructions, steps), errFor(FieldInstructions))
			provider.On("Nutrition", mock.Anything, summary.ID).
				Return(valueOr(FieldNutrition, nutrition), errFor(FieldNutrition))
			provider.On("Video", mock.Anything, summary.Title).
				Return(stringOr(FieldVideo, videoURL(summary.ID)), errFor(FieldVideo))
			llm.On("GenerateImage", mock.Anything, recipe.ImagePrompt(summary.Title)).
				Return(stringOr(FieldImage, imageURL(summary.ID)), errFor(FieldImage))

			service := NewFinderService(llm, provider, metrics,
				noop.NewTracerProvider().Tracer("test"), DefaultConfig(), zaptest.NewLogger(t))

			result, err := service.Handle(context.Background(), "chicken and rice")

			require.NoError(t, err)
			require.Len(t, result.Recipes, 1)
			r := result.Recipes[0]
			assert.Equal(t, summary.ID, r.ID)
			assert.Equal(t, summary.Title, r.Title)
			assert.Equal(t, summary.Ingredients, r.Ingredients)
			tt.check(t, r)
			assert.Equal(t, 1, metrics.Failures(tt.failing))
			assert.Equal(t, 1, metrics.TotalFailures())
		})
	}
}

func TestNewFinderService_Defaults(t *testing.T) {
	service := NewFinderService(nil, nil, testutils.NewMetricsSpy(),
		noop.NewTracerProvider().Tracer("test"), Config{}, zaptest.NewLogger(t))

	assert.Equal(t, 3, service.config.Limit)
	assert.Equal(t, 3, service.config.Concurrency)
}
