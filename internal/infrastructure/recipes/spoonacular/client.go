// Package spoonacular implements the recipe provider port against the
// Spoonacular food API.
package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipefinder/internal/ports/outbound"
	"github.com/alchemorsel/recipefinder/pkg/healthcheck"
	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const serviceName = "spoonacular"

// Video lookup policies
const (
	VideoPolicyDirect    = "direct"
	VideoPolicySearchURL = "search_url"
)

// Config configures the client
type Config struct {
	BaseURL     string
	APIKey      string
	VideoPolicy string
	MaxRetries  int
	RetryDelay  time.Duration
}

// Client implements outbound.RecipeProvider
type Client struct {
	config  Config
	http    *http.Client
	breaker *healthcheck.CircuitBreaker
	metrics outbound.MetricsRecorder
	tracer  trace.Tracer
	logger  *zap.Logger
}

var _ outbound.RecipeProvider = (*Client)(nil)

// NewClient creates a Spoonacular client. The breaker guards Search only.
func NewClient(
	cfg Config,
	httpClient *http.Client,
	breaker *healthcheck.CircuitBreaker,
	metrics outbound.MetricsRecorder,
	tracer trace.Tracer,
	logger *zap.Logger,
) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.VideoPolicy == "" {
		cfg.VideoPolicy = VideoPolicyDirect
	}

	return &Client{
		config:  cfg,
		http:    httpClient,
		breaker: breaker,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger.Named("spoonacular"),
	}
}

// Search runs a complex search. Unset criteria fields are not sent.
func (c *Client) Search(ctx context.Context, criteria recipe.SearchCriteria, limit int) ([]recipe.RecipeSummary, error) {
	query := url.Values{}
	query.Set("query", criteria.Query())
	if criteria.HasDiet() {
		query.Set("diet", criteria.Diet)
	}
	if criteria.HasMaxReadyTime() {
		query.Set("maxReadyTime", strconv.Itoa(criteria.MaxReadyMinutes))
	}
	query.Set("number", strconv.Itoa(limit))
	query.Set("addRecipeInformation", "true")
	query.Set("fillIngredients", "true")

	var resp searchResponse
	err := c.breaker.Execute(func() error {
		return c.getJSON(ctx, "search", "/recipes/complexSearch", query, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", recipe.ErrProviderUnavailable, err)
	}

	results := resp.Results
	if len(results) > limit {
		results = results[:limit]
	}

	summaries := make([]recipe.RecipeSummary, 0, len(results))
	for _, r := range results {
		ingredients := make([]recipe.Ingredient, 0, len(r.ExtendedIngredients))
		for _, ing := range r.ExtendedIngredients {
			ingredients = append(ingredients, recipe.Ingredient{
				Amount: ing.Amount,
				Unit:   ing.Unit,
				Name:   ing.Name,
			})
		}
		summaries = append(summaries, recipe.RecipeSummary{
			ID:             r.ID,
			Title:          r.Title,
			ReadyInMinutes: r.ReadyInMinutes,
			Ingredients:    ingredients,
		})
	}

	c.logger.Debug("Search completed",
		zap.Strings("ingredients", criteria.Ingredients),
		zap.Int("results", len(summaries)),
		zap.Int("total_results", resp.TotalResults),
	)

	return summaries, nil
}

// Instructions returns the steps of the first analyzed instruction set
func (c *Client) Instructions(ctx context.Context, recipeID int) ([]string, error) {
	var resp []analyzedInstruction
	path := fmt.Sprintf("/recipes/%d/analyzedInstructions", recipeID)
	if err := c.getJSON(ctx, "instructions", path, url.Values{}, &resp); err != nil {
		return nil, err
	}

	if len(resp) == 0 {
		return []string{}, nil
	}

	steps := make([]string, 0, len(resp[0].Steps))
	for _, s := range resp[0].Steps {
		steps = append(steps, s.Step)
	}
	return steps, nil
}

// Nutrition returns the nutrition widget values
func (c *Client) Nutrition(ctx context.Context, recipeID int) (*recipe.Nutrition, error) {
	var resp nutritionWidget
	path := fmt.Sprintf("/recipes/%d/nutritionWidget.json", recipeID)
	if err := c.getJSON(ctx, "nutrition", path, url.Values{}, &resp); err != nil {
		return nil, err
	}

	return &recipe.Nutrition{
		Calories: string(resp.Calories),
		Protein:  string(resp.Protein),
		Fat:      string(resp.Fat),
		Carbs:    string(resp.Carbs),
	}, nil
}

// Video returns a video link for the title. With the direct policy the
// provider's video search is used and a missing hit falls back to a
// search URL; the search_url policy never calls the provider.
func (c *Client) Video(ctx context.Context, title string) (string, error) {
	if c.config.VideoPolicy == VideoPolicySearchURL {
		return VideoSearchURL(title), nil
	}

	query := url.Values{}
	query.Set("query", title)
	query.Set("number", "1")

	var resp videoSearchResponse
	if err := c.getJSON(ctx, "video", "/food/videos/search", query, &resp); err != nil {
		return "", err
	}

	for _, v := range resp.Videos {
		if v.YouTubeID != "" {
			return "https://www.youtube.com/watch?v=" + url.QueryEscape(v.YouTubeID), nil
		}
	}
	return VideoSearchURL(title), nil
}

// VideoSearchURL builds the fallback YouTube search link for a recipe title
func VideoSearchURL(title string) string {
	return "https://www.youtube.com/results?search_query=" +
		url.QueryEscape(title+" recipe tutorial how to cook")
}

// statusError is a non-2xx provider response
type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// isTransient reports whether one more attempt may succeed: transport
// failures and 5xx responses, never cancellation or 4xx.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}

// getJSON performs one GET with the API key and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, serviceName+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		monitoring.UpstreamAttributes(serviceName, operation),
	)
	defer span.End()

	query.Set("apiKey", c.config.APIKey)
	endpoint := c.config.BaseURL + path + "?" + query.Encode()

	attempts := uint(c.config.MaxRetries) + 1
	start := time.Now()

	err := retry.Do(
		func() error {
			return c.fetch(ctx, endpoint, out)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.config.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("Retrying provider call",
				zap.String("operation", operation),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	status := "ok"
	if err != nil {
		status = "error"
		monitoring.RecordError(span, err)
	}
	c.metrics.UpstreamCall(serviceName, operation, status, time.Since(start))

	if err != nil {
		return fmt.Errorf("spoonacular %s: %w", operation, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return stripURL(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// IsProviderFailure reports whether a search error counts against the
// provider circuit. Cancellation and deadlines of the caller's context
// say nothing about the provider and are ignored.
func IsProviderFailure(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// stripURL drops the request URL (it carries the API key) from transport errors.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
