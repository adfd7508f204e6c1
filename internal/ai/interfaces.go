// Package ai sends realized prompts to the LLM provider. Every Complete call
// is exactly one provider round trip; failures come back as provider
// AppErrors and are never retried here.
package ai

import (
	"context"
	"time"

	"resumalyzer/internal/prompts"
	"resumalyzer/internal/types"
)

// GenerationParams are the per-call sampling settings
type GenerationParams struct {
	Task        types.Task
	Model       string
	Temperature float32
	MaxTokens   int32
	TopP        float32 // 0 leaves the provider default
	JSONMode    bool
	Timeout     time.Duration // 0 uses the caller's context only
}

// CompletionInvoker sends one request to the provider and returns the raw text
type CompletionInvoker interface {
	Complete(ctx context.Context, req prompts.Request, params GenerationParams) (string, error)
}

// Provider is a CompletionInvoker that can also report its health
type Provider interface {
	CompletionInvoker
	ModelInfo(ctx context.Context) *ModelInfo
	BreakerStats() map[string]any
	Close() error
}

// TokenUsage holds token counts reported by the provider
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
