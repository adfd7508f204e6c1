package config

import (
	"fmt"
	"strings"
	"time"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/types"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for every environment variable read by LoadConfig.
const EnvPrefix = "RESUMALYZER"

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMALYZER_AI_APIKEY, then GEMINI_API_KEY)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Prompts       PromptsConfig       `mapstructure:"prompts"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds provider settings shared by every task
type AIConfig struct {
	Provider       string                  `mapstructure:"provider"`
	Model          string                  `mapstructure:"model"`
	Timeout        time.Duration           `mapstructure:"timeout"`
	APIKey         string                  `mapstructure:"apiKey"`
	CircuitBreaker CircuitBreakerConfig    `mapstructure:"circuitBreaker"`
	Tasks          map[string]TaskAIConfig `mapstructure:"tasks"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// TaskAIConfig holds per-task overrides. Nil fields fall back to the
// global AI settings or to the task catalog defaults.
type TaskAIConfig struct {
	Model          string                `mapstructure:"model"`
	APIKey         string                `mapstructure:"apiKey"`
	Timeout        *time.Duration        `mapstructure:"timeout"`
	Temperature    *float32              `mapstructure:"temperature"`
	MaxTokens      *int32                `mapstructure:"maxTokens"`
	TopP           *float32              `mapstructure:"topP"`
	JSONMode       *bool                 `mapstructure:"jsonMode"`
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// TaskSettings is the resolved AI configuration for one task
type TaskSettings struct {
	Task           types.Task
	Provider       string
	Model          string
	APIKey         string
	Timeout        time.Duration
	Temperature    *float32
	MaxTokens      *int32
	TopP           *float32
	JSONMode       *bool
	CircuitBreaker CircuitBreakerConfig
}

// PromptsConfig holds prompt template overrides
type PromptsConfig struct {
	Dir           string                    `mapstructure:"dir"`           // Directory holding <task>.system.tmpl / <task>.user.tmpl
	Watch         bool                      `mapstructure:"watch"`         // Reload overrides when files in Dir change
	DebounceDelay time.Duration             `mapstructure:"debounceDelay"` // Debounce delay for file change events
	Overrides     map[string]PromptOverride `mapstructure:"overrides"`     // Keyed by task config key
}

// PromptOverride is an inline or file-backed override for one task
type PromptOverride struct {
	System     string `mapstructure:"system"`
	SystemFile string `mapstructure:"systemFile"`
	User       string `mapstructure:"user"`
	UserFile   string `mapstructure:"userFile"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"` // JSON body limit
	MaxUploadSize  int64         `mapstructure:"maxUploadSize"`  // Multipart resume upload limit

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`

	// Vault key refresh
	KeyRefresh KeyRefreshConfig `mapstructure:"keyRefresh"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	CallsPerMin   int  `mapstructure:"callsPerMin"`   // Model calls each caller may spend per minute
	BurstCapacity int  `mapstructure:"burstCapacity"` // Calls a caller may spend at once
	ByIP          bool `mapstructure:"byIP"`          // Enable per-IP rate limiting
	ByAPIKey      bool `mapstructure:"byAPIKey"`      // Enable per-API-key rate limiting
}

// KeyRefreshConfig controls polling Vault for rotated server API keys
type KeyRefreshConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
	MaxResumeChars   int      `mapstructure:"maxResumeChars"`
	StorePath        string   `mapstructure:"storePath"`
	StoreEnabled     bool     `mapstructure:"storeEnabled"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console exporter configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus exporter configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// taskOverrideFields are bound to environment variables for every task so
// RESUMALYZER_AI_TASKS_<TASK>_<FIELD> works without a config file.
var taskOverrideFields = []string{"model", "apiKey", "timeout", "temperature", "maxTokens", "topP", "jsonMode"}

// LoadConfig loads configuration from environment variables and a config file.
// A non-empty configFile bypasses the search paths.
func LoadConfig(configFile string, logger *errors.Logger) (*Config, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, task := range types.AllTasks {
		for _, field := range taskOverrideFields {
			_ = v.BindEnv(fmt.Sprintf("ai.tasks.%s.%s", task.ConfigKey(), field))
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumalyzer/")
		v.AddConfigPath("$HOME/.config/resumalyzer")
		v.AddConfigPath(".")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read config file", err)
		}
		logger.Debug("No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to unmarshal config", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed, logger)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.Provider != "gemini" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf("unsupported AI provider: %s", c.AI.Provider), nil)
	}

	if c.AI.Timeout <= 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "AI timeout must be positive", nil)
	}

	for key, override := range c.AI.Tasks {
		if !taskFromConfigKey(key).Valid() {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf("unknown task in ai.tasks: %s", key), nil)
		}
		if override.Temperature != nil && (*override.Temperature < 0 || *override.Temperature > 2) {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf("temperature for %s must be within [0, 2]", key), nil)
		}
		if override.TopP != nil && (*override.TopP <= 0 || *override.TopP > 1) {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf("topP for %s must be within (0, 1]", key), nil)
		}
		if override.MaxTokens != nil && *override.MaxTokens <= 0 {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf("maxTokens for %s must be positive", key), nil)
		}
	}

	for key := range c.Prompts.Overrides {
		if !taskFromConfigKey(key).Valid() {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf("unknown task in prompts.overrides: %s", key), nil)
		}
	}

	if c.Server.Port == "" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "server port is required", nil)
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf("invalid default format: %s", c.App.DefaultFormat), nil)
	}

	if c.App.StoreEnabled && c.App.StorePath == "" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "app.storePath is required when the store is enabled", nil)
	}

	return nil
}

// ValidateForProvider checks the settings needed before a provider client can be built.
func (c *Config) ValidateForProvider() error {
	if c.AI.APIKey == "" {
		return errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"AI API key is required (set RESUMALYZER_AI_APIKEY or GEMINI_API_KEY)", nil)
	}
	return nil
}

// TaskConfig returns the AI configuration for task with fallback to the global config
func (c *Config) TaskConfig(task types.Task) TaskSettings {
	override := c.AI.Tasks[task.ConfigKey()]

	settings := TaskSettings{
		Task:           task,
		Provider:       c.AI.Provider,
		Model:          c.AI.Model,
		APIKey:         c.AI.APIKey,
		Timeout:        c.AI.Timeout,
		Temperature:    override.Temperature,
		MaxTokens:      override.MaxTokens,
		TopP:           override.TopP,
		JSONMode:       override.JSONMode,
		CircuitBreaker: c.AI.CircuitBreaker,
	}
	if override.Model != "" {
		settings.Model = override.Model
	}
	if override.APIKey != "" {
		settings.APIKey = override.APIKey
	}
	if override.Timeout != nil {
		settings.Timeout = *override.Timeout
	}
	if override.CircuitBreaker != nil {
		settings.CircuitBreaker = *override.CircuitBreaker
	}
	return settings
}

func taskFromConfigKey(key string) types.Task {
	return types.Task(strings.ReplaceAll(strings.ToLower(key), "_", "-"))
}
