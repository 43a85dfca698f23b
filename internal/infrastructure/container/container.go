// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"net"
	"net/http"

	recipeapp "github.com/alchemorsel/recipefinder/internal/application/recipe"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/config"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/httpclient"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/recipes/spoonacular"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/security"
	"github.com/alchemorsel/recipefinder/internal/ports/inbound"
	"github.com/alchemorsel/recipefinder/internal/ports/outbound"
	"github.com/alchemorsel/recipefinder/pkg/healthcheck"
	"github.com/alchemorsel/recipefinder/pkg/logger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options controls how the core module loads its configuration
type Options struct {
	// ConfigPath is an explicit config file. Empty searches the default locations.
	ConfigPath string
	// RequireCredentials fails startup when an upstream API key is missing.
	RequireCredentials bool
	// LogLevel overrides app.log_level when set.
	LogLevel string
}

// Module provides the HTTP server application
func Module(opts Options) fx.Option {
	return fx.Options(
		CoreModule(opts),
		HTTPModule,
		LifecycleModule,
	)
}

// CoreModule provides everything needed to run the finder pipeline
func CoreModule(opts Options) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		ConfigModule,
		LoggerModule,
		MonitoringModule,
		AdapterModule,
		ServiceModule,
		fx.Invoke(registerTracingShutdown),
	)
}

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(opts Options) (*config.Config, error) {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if opts.LogLevel != "" {
			cfg.App.LogLevel = opts.LogLevel
		}
		if opts.RequireCredentials {
			if err := cfg.RequireCredentials(); err != nil {
				return nil, err
			}
		}
		return cfg, nil
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		log, err := logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
		if err != nil {
			return nil, err
		}
		log = log.With(zap.String("service", cfg.App.Name))
		log.Debug("Configuration loaded", zap.Any("config", cfg.Redacted()))
		return log, nil
	},
)

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.MetricsRecorder {
		return m
	},
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
	func(tp *monitoring.TracingProvider) trace.Tracer {
		return tp.Tracer()
	},
	NewHealthCheck,
)

// AdapterModule provides the upstream clients
var AdapterModule = fx.Provide(
	func(cfg *config.Config) *http.Client {
		return httpclient.New(cfg.Pipeline.CallTimeout)
	},
	NewProviderBreaker,
	NewRecipeProvider,
	NewLanguageModel,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	NewFinderService,
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	security.NewValidationService,
	handlers.NewRecipeHandlers,
	apiserver.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// NewProviderBreaker creates the circuit breaker guarding the recipe search
func NewProviderBreaker(cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) *healthcheck.CircuitBreaker {
	return healthcheck.NewCircuitBreaker("spoonacular", healthcheck.CircuitBreakerConfig{
		FailureThreshold: cfg.Circuit.FailureThreshold,
		SuccessThreshold: cfg.Circuit.SuccessThreshold,
		Timeout:          cfg.Circuit.Timeout,
		MaxRequests:      cfg.Circuit.MaxRequests,
		IsFailure:        spoonacular.IsProviderFailure,
		OnStateChange: func(name string, from, to healthcheck.CircuitBreakerState) {
			metrics.SetCircuitState(name, int(to))
			log.Warn("Circuit breaker state changed",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// NewRecipeProvider creates the Spoonacular adapter
func NewRecipeProvider(
	cfg *config.Config,
	client *http.Client,
	breaker *healthcheck.CircuitBreaker,
	metrics outbound.MetricsRecorder,
	tracer trace.Tracer,
	log *zap.Logger,
) outbound.RecipeProvider {
	return spoonacular.NewClient(spoonacular.Config{
		BaseURL:     cfg.Provider.BaseURL,
		APIKey:      cfg.Provider.APIKey,
		VideoPolicy: cfg.Provider.VideoPolicy,
		MaxRetries:  cfg.External.MaxRetries,
		RetryDelay:  cfg.External.RetryDelay,
	}, client, breaker, metrics, tracer, log)
}

// NewLanguageModel creates the OpenAI or Azure OpenAI adapter
func NewLanguageModel(
	cfg *config.Config,
	client *http.Client,
	metrics outbound.MetricsRecorder,
	tracer trace.Tracer,
	log *zap.Logger,
) (outbound.LanguageModel, error) {
	llm, err := openai.NewClient(openai.Config{
		Provider:   cfg.AI.Provider,
		Endpoint:   cfg.AI.Endpoint,
		APIKey:     cfg.AI.APIKey,
		APIVersion: cfg.AI.APIVersion,
		ChatModel:  cfg.AI.ChatModel,
		ImageModel: cfg.AI.ImageModel,
		ImageSize:  cfg.AI.ImageSize,
		MaxRetries: cfg.External.MaxRetries,
	}, client, metrics, tracer, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create language model client: %w", err)
	}
	return llm, nil
}

// NewFinderService creates the pipeline behind the inbound port
func NewFinderService(
	cfg *config.Config,
	llm outbound.LanguageModel,
	provider outbound.RecipeProvider,
	metrics outbound.MetricsRecorder,
	tracer trace.Tracer,
	log *zap.Logger,
) inbound.RecipeFinder {
	return recipeapp.NewFinderService(llm, provider, metrics, tracer, recipeapp.Config{
		Limit:          cfg.Pipeline.Limit,
		Concurrency:    cfg.EnrichmentConcurrency(),
		CallTimeout:    cfg.Pipeline.CallTimeout,
		RequestTimeout: cfg.Pipeline.RequestTimeout,
	}, log)
}

// NewHealthCheck registers the readiness checks
func NewHealthCheck(cfg *config.Config, breaker *healthcheck.CircuitBreaker, log *zap.Logger) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log)
	health.Register("spoonacular_circuit", breaker.Checker())
	health.Register("spoonacular_credentials", healthcheck.RequiredValueChecker("spoonacular_credentials", cfg.Provider.APIKey))
	health.Register("language_model_credentials", healthcheck.RequiredValueChecker("language_model_credentials", cfg.AI.APIKey))
	return health
}

func registerTracingShutdown(lc fx.Lifecycle, tp *monitoring.TracingProvider, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				log.Error("Failed to flush traces", zap.Error(err))
			}
			_ = log.Sync()
			return nil
		},
	})
}

// RegisterLifecycleHooks starts and stops the HTTP server with the app
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting recipefinder",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("video_policy", cfg.Provider.VideoPolicy),
				zap.String("ai_provider", cfg.AI.Provider),
			)
			if err := cfg.RequireCredentials(); err != nil {
				log.Warn("Serving without credentials, readiness will fail", zap.Error(err))
			}

			ln, err := net.Listen("tcp", server.Addr())
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", server.Addr(), err)
			}

			go func() {
				if err := server.Serve(ln); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(stopCtx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
