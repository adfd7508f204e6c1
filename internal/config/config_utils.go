package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"resumalyzer/internal/errors"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyAIKeyFallback()
	c.applyServerAPIKeyFallbacks()
	c.applyObservabilityDefaults()
}

// applyAIKeyFallback reads the conventional GEMINI_API_KEY when no key is configured
func (c *Config) applyAIKeyFallback() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables.
// Keys from any source are trimmed, since viper splits "a, b" without trimming.
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv(EnvPrefix + "_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitKeys(apiKeysEnv)
		}
	}
	c.Server.APIKeys = splitKeys(strings.Join(c.Server.APIKeys, ","))
}

// splitKeys splits a comma-separated key list, dropping blanks
func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string, logger *errors.Logger) {
	if configFileUsed == "" {
		configFileUsed = "none"
	}

	envVars := []string{
		EnvPrefix + "_AI_APIKEY",
		EnvPrefix + "_AI_MODEL",
		EnvPrefix + "_SERVER_PORT",
		EnvPrefix + "_SERVER_HOST",
		EnvPrefix + "_APP_LOGLEVEL",
		EnvPrefix + "_VAULT_ENABLED",
		"GEMINI_API_KEY",
	}
	var setVars []string
	for _, envVar := range envVars {
		if os.Getenv(envVar) != "" {
			setVars = append(setVars, envVar)
		}
	}

	overridden := make([]string, 0, len(c.AI.Tasks))
	for key := range c.AI.Tasks {
		overridden = append(overridden, key)
	}
	sort.Strings(overridden)

	logger.Debug("Configuration loaded",
		"config_file", configFileUsed,
		"env_vars", setVars,
		"ai_provider", c.AI.Provider,
		"ai_model", c.AI.Model,
		"ai_api_key_set", c.AI.APIKey != "",
		"task_overrides", overridden,
		"prompt_dir", c.Prompts.Dir,
		"server_addr", c.Server.Host+":"+c.Server.Port,
		"log_level", c.App.LogLevel,
		"store_enabled", c.App.StoreEnabled,
		"vault_enabled", c.Vault.Enabled,
		"observability_enabled", c.Observability.Enabled)
}
