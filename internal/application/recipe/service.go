// Package recipe provides the application layer for recipe discovery.
// It implements the inbound RecipeFinder port on top of the language model
// and recipe provider ports.
package recipe

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipefinder/internal/ports/inbound"
	"github.com/alchemorsel/recipefinder/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipefinder/pkg/errors"
	"github.com/alchemorsel/recipefinder/pkg/healthcheck"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Enrichment field names used in logs and metrics
const (
	FieldInstructions = "instructions"
	FieldNutrition    = "nutrition"
	FieldVideo        = "video"
	FieldImage        = "image"
)

// Config tunes the pipeline
type Config struct {
	// Limit caps the number of recipes requested and returned.
	Limit int
	// Concurrency bounds how many recipes are enriched at once. Zero means Limit.
	Concurrency    int
	CallTimeout    time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns the pipeline defaults
func DefaultConfig() Config {
	return Config{
		Limit:          3,
		CallTimeout:    10 * time.Second,
		RequestTimeout: 60 * time.Second,
	}
}

// FinderService implements the recipe discovery use case
type FinderService struct {
	llm      outbound.LanguageModel
	provider outbound.RecipeProvider
	metrics  outbound.MetricsRecorder
	tracer   trace.Tracer
	config   Config
	logger   *zap.Logger
}

var _ inbound.RecipeFinder = (*FinderService)(nil)

// NewFinderService creates a new finder service
func NewFinderService(
	llm outbound.LanguageModel,
	provider outbound.RecipeProvider,
	metrics outbound.MetricsRecorder,
	tracer trace.Tracer,
	cfg Config,
	logger *zap.Logger,
) *FinderService {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = cfg.Limit
	}

	return &FinderService{
		llm:      llm,
		provider: provider,
		metrics:  metrics,
		tracer:   tracer,
		config:   cfg,
		logger:   logger.Named("recipe-finder"),
	}
}

// Handle turns one free-text request into enriched recipes. Business
// outcomes are reported through the Result; a non-nil error means the
// request failed unexpectedly.
func (s *FinderService) Handle(ctx context.Context, query string) (*recipe.Result, error) {
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", requestID))

	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "recipe_finder.handle",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	start := time.Now()
	result, err := s.handle(ctx, query, logger)
	if err != nil {
		monitoring.RecordError(span, err)
		s.metrics.RecordOutcome("error")
		logger.Error("Recipe request failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("recipe.outcome", result.Outcome.String()),
		attribute.Int("recipe.count", len(result.Recipes)),
	)
	s.metrics.RecordOutcome(result.Outcome.String())
	logger.Info("Recipe request handled",
		zap.String("outcome", result.Outcome.String()),
		zap.Int("recipes", len(result.Recipes)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (s *FinderService) handle(ctx context.Context, query string, logger *zap.Logger) (*recipe.Result, error) {
	criteria, err := s.llm.ExtractCriteria(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to interpret request").WithCause(err)
	}
	if criteria == nil {
		logger.Info("Request not understood")
		return recipe.NotUnderstood(), nil
	}
	if err := criteria.Validate(); err != nil {
		logger.Info("Extracted criteria rejected", zap.Error(err))
		return recipe.NotUnderstood(), nil
	}

	logger.Debug("Extracted search criteria",
		zap.Strings("ingredients", criteria.Ingredients),
		zap.String("diet", criteria.Diet),
		zap.Int("max_ready_minutes", criteria.MaxReadyMinutes),
	)

	summaries, err := s.provider.Search(ctx, *criteria, s.config.Limit)
	if err != nil {
		logger.Warn("Recipe search failed", zap.Error(err))
		return recipe.ProviderError(providerReason(err)), nil
	}
	if len(summaries) == 0 {
		return recipe.NoMatches(), nil
	}
	if len(summaries) > s.config.Limit {
		summaries = summaries[:s.config.Limit]
	}

	return recipe.Understood(s.enrichAll(ctx, summaries, logger)), nil
}

// enrichAll enriches every summary and keeps the provider order
func (s *FinderService) enrichAll(ctx context.Context, summaries []recipe.RecipeSummary, logger *zap.Logger) []recipe.EnrichedRecipe {
	enriched := make([]recipe.EnrichedRecipe, len(summaries))

	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)
	for i, summary := range summaries {
		g.Go(func() error {
			enriched[i] = s.enrich(ctx, summary, logger)
			return nil
		})
	}
	_ = g.Wait()

	return enriched
}

// enrich runs the four enrichment calls of one recipe concurrently and
// merges whatever succeeded.
func (s *FinderService) enrich(ctx context.Context, summary recipe.RecipeSummary, logger *zap.Logger) recipe.EnrichedRecipe {
	ctx, span := s.tracer.Start(ctx, "recipe_finder.enrich",
		trace.WithAttributes(attribute.Int("recipe.id", summary.ID)),
	)
	defer span.End()

	logger = logger.With(zap.Int("recipe_id", summary.ID))

	var (
		instructions optional[[]string]
		nutrition    optional[*recipe.Nutrition]
		video        optional[string]
		image        optional[string]
	)

	var g errgroup.Group
	g.Go(func() error {
		instructions = attempt(ctx, s, FieldInstructions, logger, func(ctx context.Context) ([]string, error) {
			return s.provider.Instructions(ctx, summary.ID)
		})
		return nil
	})
	g.Go(func() error {
		nutrition = attempt(ctx, s, FieldNutrition, logger, func(ctx context.Context) (*recipe.Nutrition, error) {
			return s.provider.Nutrition(ctx, summary.ID)
		})
		return nil
	})
	g.Go(func() error {
		video = attempt(ctx, s, FieldVideo, logger, func(ctx context.Context) (string, error) {
			return s.provider.Video(ctx, summary.Title)
		})
		return nil
	})
	g.Go(func() error {
		image = attempt(ctx, s, FieldImage, logger, func(ctx context.Context) (string, error) {
			return s.llm.GenerateImage(ctx, recipe.ImagePrompt(summary.Title))
		})
		return nil
	})
	_ = g.Wait()

	return merge(summary, instructions, nutrition, video, image)
}

// merge builds the enriched record. Absent fields keep their zero value
// and instructions default to an empty list.
func merge(
	summary recipe.RecipeSummary,
	instructions optional[[]string],
	nutrition optional[*recipe.Nutrition],
	video optional[string],
	image optional[string],
) recipe.EnrichedRecipe {
	out := recipe.NewEnrichedRecipe(summary)
	if steps, ok := instructions.Get(); ok && steps != nil {
		out.Instructions = steps
	}
	if n, ok := nutrition.Get(); ok {
		out.Nutrition = n
	}
	if url, ok := video.Get(); ok {
		out.VideoURL = url
	}
	if url, ok := image.Get(); ok {
		out.ImageURL = url
	}
	return out
}

func providerReason(err error) string {
	if errors.Is(err, healthcheck.ErrCircuitOpen) {
		return "recipe provider circuit open"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "recipe search timed out"
	}
	return "recipe search failed"
}
