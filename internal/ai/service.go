package ai

import (
	"context"
	"fmt"

	"resumalyzer/internal/config"
	"resumalyzer/internal/errors"
)

// NewProvider builds the configured provider
func NewProvider(ctx context.Context, cfg *config.Config, logger *errors.Logger) (Provider, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	logger.Debug("Initializing AI provider",
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"timeout", cfg.AI.Timeout,
		"task_overrides", len(cfg.AI.Tasks))

	switch cfg.AI.Provider {
	case "gemini":
		if err := cfg.ValidateForProvider(); err != nil {
			return nil, err
		}
		provider, err := NewGeminiInvoker(ctx, cfg, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create AI provider", err)
		}
		return provider, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.AI.Provider), nil)
	}
}
