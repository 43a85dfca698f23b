// Package openai implements the language model port on the OpenAI API,
// either directly or through an Azure OpenAI deployment.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipefinder/internal/ports/outbound"
	apperrors "github.com/alchemorsel/recipefinder/pkg/errors"
	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	serviceName = "language-model"

	extractionPrompt = "Extract recipe search parameters from user input."
)

// Supported backends
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// Config configures the client
type Config struct {
	Provider   string
	Endpoint   string
	APIKey     string
	APIVersion string
	ChatModel  string
	ImageModel string
	ImageSize  string
	MaxRetries int
}

// Client implements outbound.LanguageModel
type Client struct {
	config    Config
	api       openaisdk.Client
	validator *argumentValidator
	metrics   outbound.MetricsRecorder
	tracer    trace.Tracer
	logger    *zap.Logger
}

var _ outbound.LanguageModel = (*Client)(nil)

// NewClient creates a language model client. An empty API key is accepted
// so the process can start and report itself not ready.
func NewClient(
	cfg Config,
	httpClient *http.Client,
	metrics outbound.MetricsRecorder,
	tracer trace.Tracer,
	logger *zap.Logger,
) (*Client, error) {
	validator, err := newArgumentValidator()
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	switch cfg.Provider {
	case ProviderAzure:
		if cfg.Endpoint == "" {
			return nil, errors.New("azure endpoint is required")
		}
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	case ProviderOpenAI, "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
	default:
		return nil, fmt.Errorf("unsupported language model provider %q", cfg.Provider)
	}

	return &Client{
		config:    cfg,
		api:       openaisdk.NewClient(opts...),
		validator: validator,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger.Named("language-model"),
	}, nil
}

// ExtractCriteria asks the model to call get_recipe for text. A reply
// without a usable get_recipe call yields nil criteria and a nil error.
func (c *Client) ExtractCriteria(ctx context.Context, text string) (*recipe.SearchCriteria, error) {
	ctx, span := c.startSpan(ctx, "extract_criteria")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.config.ChatModel))

	start := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.config.ChatModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(extractionPrompt),
			openaisdk.UserMessage(text),
		},
		Tools: []openaisdk.ChatCompletionToolUnionParam{
			openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
				Name:        getRecipeToolName,
				Description: openaisdk.String("Search recipes by ingredients, diet and maximum preparation time"),
				Parameters:  openaisdk.FunctionParameters(toolParameters()),
			}),
		},
	})
	c.record(span, "extract_criteria", err, start)
	if err != nil {
		return nil, mapError(err)
	}

	if len(completion.Choices) == 0 {
		return nil, nil
	}
	for _, call := range completion.Choices[0].Message.ToolCalls {
		if call.Function.Name != getRecipeToolName {
			continue
		}
		criteria, err := c.validator.Parse(call.Function.Arguments)
		if err != nil {
			c.logger.Warn("Discarding malformed tool call", zap.Error(err))
			return nil, nil
		}
		return criteria, nil
	}
	return nil, nil
}

// GenerateImage renders one image for prompt and returns its URL. Models
// that only return inline data yield a data URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	ctx, span := c.startSpan(ctx, "generate_image")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.config.ImageModel))

	params := openaisdk.ImageGenerateParams{
		Prompt: prompt,
		Model:  openaisdk.ImageModel(c.config.ImageModel),
		N:      openaisdk.Int(1),
	}
	if c.config.ImageSize != "" {
		params.Size = openaisdk.ImageGenerateParamsSize(c.config.ImageSize)
	}

	start := time.Now()
	resp, err := c.api.Images.Generate(ctx, params)
	c.record(span, "generate_image", err, start)
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Data) == 0 {
		return "", recipe.ErrNoImage
	}
	image := resp.Data[0]
	switch {
	case image.URL != "":
		return image.URL, nil
	case image.B64JSON != "":
		return "data:image/png;base64," + image.B64JSON, nil
	default:
		return "", recipe.ErrNoImage
	}
}

func (c *Client) startSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, serviceName+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		monitoring.UpstreamAttributes(serviceName, operation),
	)
}

func (c *Client) record(span trace.Span, operation string, err error, start time.Time) {
	status := "ok"
	if err != nil {
		status = "error"
		monitoring.RecordError(span, err)
	}
	c.metrics.UpstreamCall(serviceName, operation, status, time.Since(start))
}

// mapError converts SDK errors into application errors
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return apperrors.NewExternalServiceError(serviceName,
			fmt.Errorf("status %d: %s", apiErr.StatusCode, msg))
	}
	return apperrors.NewExternalServiceError(serviceName, err)
}
