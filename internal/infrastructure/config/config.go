// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Video lookup policies
const (
	VideoPolicyDirect    = "direct"
	VideoPolicySearchURL = "search_url"
)

// Language model providers
const (
	AIProviderOpenAI = "openai"
	AIProviderAzure  = "azure"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	AI         AIConfig         `mapstructure:"ai"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	External   ExternalConfig   `mapstructure:"external"`
	Circuit    CircuitConfig    `mapstructure:"circuit"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS        bool          `mapstructure:"enable_cors"`
	EnableCompression bool          `mapstructure:"enable_compression"`
	EnableH2C         bool          `mapstructure:"enable_h2c"`
}

// AIConfig contains language model configuration
type AIConfig struct {
	Provider   string `mapstructure:"provider"`
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	APIKeyFile string `mapstructure:"api_key_file"`
	APIVersion string `mapstructure:"api_version"`
	ChatModel  string `mapstructure:"chat_model"`
	ImageModel string `mapstructure:"image_model"`
	ImageSize  string `mapstructure:"image_size"`
}

// ProviderConfig contains recipe provider configuration
type ProviderConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	APIKeyFile  string `mapstructure:"api_key_file"`
	VideoPolicy string `mapstructure:"video_policy"`
}

// PipelineConfig contains enrichment pipeline configuration
type PipelineConfig struct {
	Limit          int           `mapstructure:"limit"`
	Concurrency    int           `mapstructure:"concurrency"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ExternalConfig contains the retry policy for outbound calls
type ExternalConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// CircuitConfig configures the breaker around the provider search
type CircuitConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequests      int           `mapstructure:"max_requests"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics   bool    `mapstructure:"enable_metrics"`
	EnableTracing   bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	SamplingRate    float64 `mapstructure:"sampling_rate"`
	HealthCheckPath string  `mapstructure:"health_check_path"`
	ReadinessPath   string  `mapstructure:"readiness_path"`
	MetricsPath     string  `mapstructure:"metrics_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/recipefinder")
	}

	// RECIPEFINDER_PROVIDER_API_KEY overrides provider.api_key
	v.SetEnvPrefix("RECIPEFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.loadSecretFiles(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "recipefinder")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.enable_compression", true)
	v.SetDefault("server.enable_h2c", false)

	v.SetDefault("ai.provider", AIProviderOpenAI)
	v.SetDefault("ai.endpoint", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.api_key_file", "")
	v.SetDefault("ai.api_version", "2023-12-01-preview")
	v.SetDefault("ai.chat_model", "gpt-4")
	v.SetDefault("ai.image_model", "dall-e-3")
	v.SetDefault("ai.image_size", "1024x1024")

	v.SetDefault("provider.base_url", "https://api.spoonacular.com")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.api_key_file", "")
	v.SetDefault("provider.video_policy", VideoPolicyDirect)

	v.SetDefault("pipeline.limit", 3)
	v.SetDefault("pipeline.concurrency", 0)
	v.SetDefault("pipeline.call_timeout", "10s")
	v.SetDefault("pipeline.request_timeout", "60s")

	v.SetDefault("external.max_retries", 1)
	v.SetDefault("external.retry_delay", "200ms")

	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.success_threshold", 2)
	v.SetDefault("circuit.timeout", "30s")
	v.SetDefault("circuit.max_requests", 3)

	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.sampling_rate", 0.1)
	v.SetDefault("monitoring.health_check_path", "/health")
	v.SetDefault("monitoring.readiness_path", "/ready")
	v.SetDefault("monitoring.metrics_path", "/metrics")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.AI.Provider {
	case AIProviderOpenAI:
	case AIProviderAzure:
		if c.AI.Endpoint == "" {
			return fmt.Errorf("ai.endpoint is required for the azure provider")
		}
	default:
		return fmt.Errorf("ai.provider must be %q or %q", AIProviderOpenAI, AIProviderAzure)
	}

	switch c.Provider.VideoPolicy {
	case VideoPolicyDirect, VideoPolicySearchURL:
	default:
		return fmt.Errorf("provider.video_policy must be %q or %q", VideoPolicyDirect, VideoPolicySearchURL)
	}

	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}

	if c.Pipeline.Limit < 1 {
		return fmt.Errorf("pipeline.limit must be positive")
	}
	if c.Pipeline.Concurrency < 0 {
		return fmt.Errorf("pipeline.concurrency must not be negative")
	}
	if c.Pipeline.CallTimeout <= 0 || c.Pipeline.RequestTimeout <= 0 {
		return fmt.Errorf("pipeline timeouts must be positive")
	}

	if c.External.MaxRetries < 0 || c.External.MaxRetries > 1 {
		return fmt.Errorf("external.max_retries must be 0 or 1")
	}

	return nil
}

// RequireCredentials checks that both upstream API keys are present.
// The binaries call it before serving; tests and readiness probes do not.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.AI.APIKey == "" {
		missing = append(missing, "ai.api_key")
	}
	if c.Provider.APIKey == "" {
		missing = append(missing, "provider.api_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// EnrichmentConcurrency returns how many recipes are enriched at once
func (c *Config) EnrichmentConcurrency() int {
	if c.Pipeline.Concurrency == 0 {
		return c.Pipeline.Limit
	}
	return c.Pipeline.Concurrency
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
