package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"testing"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/prompts"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"open breaker", gobreaker.ErrOpenState, errors.ErrCodeProviderCircuit},
		{"half-open saturated", gobreaker.ErrTooManyRequests, errors.ErrCodeProviderCircuit},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), errors.ErrCodeProviderCanceled},
		{"deadline", context.DeadlineExceeded, errors.ErrCodeProviderNetwork},
		{"genai unauthorized", genai.APIError{Code: 401, Message: "bad key"}, errors.ErrCodeProviderAuth},
		{"genai forbidden", genai.APIError{Code: 403}, errors.ErrCodeProviderAuth},
		{"genai rate limited", genai.APIError{Code: 429}, errors.ErrCodeProviderRateLimit},
		{"genai unavailable", genai.APIError{Code: 503}, errors.ErrCodeProviderServer},
		{"googleapi server", &googleapi.Error{Code: 500}, errors.ErrCodeProviderServer},
		{"googleapi bad request", &googleapi.Error{Code: 400}, errors.ErrCodeAIServiceFailed},
		{"network", &net.OpError{Op: "dial", Err: timeoutErr{}}, errors.ErrCodeProviderNetwork},
		{"unknown", stderrors.New("weird"), errors.ErrCodeAIServiceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := classifyError(tt.err)
			if appErr.Type != errors.ErrorTypeProvider {
				t.Errorf("Expected provider error type, got %s", appErr.Type)
			}
			if appErr.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, appErr.Code)
			}
			if !errors.IsProviderError(appErr) {
				t.Error("Expected IsProviderError to match")
			}
		})
	}
}

func TestClassifyErrorKeepsAppError(t *testing.T) {
	original := errors.NewProviderError(errors.ErrCodeProviderEmpty, "empty", nil)
	if got := classifyError(fmt.Errorf("wrapped: %w", original)); got != original {
		t.Errorf("Expected existing AppError to be returned, got %v", got)
	}
}

func TestBuildGenerateConfig(t *testing.T) {
	req := prompts.Request{System: "be strict", User: "rate this"}

	jsonCfg := buildGenerateConfig(req, GenerationParams{Temperature: 0.5, MaxTokens: 4096, TopP: 0.95, JSONMode: true})
	if jsonCfg.ResponseMIMEType != "application/json" {
		t.Errorf("Expected JSON mime type, got %s", jsonCfg.ResponseMIMEType)
	}
	if jsonCfg.Temperature == nil || *jsonCfg.Temperature != 0.5 {
		t.Errorf("Expected temperature 0.5, got %v", jsonCfg.Temperature)
	}
	if jsonCfg.MaxOutputTokens != 4096 {
		t.Errorf("Expected 4096 max tokens, got %d", jsonCfg.MaxOutputTokens)
	}
	if jsonCfg.TopP == nil || *jsonCfg.TopP != 0.95 {
		t.Errorf("Expected top-p 0.95, got %v", jsonCfg.TopP)
	}
	if jsonCfg.SystemInstruction == nil || jsonCfg.SystemInstruction.Parts[0].Text != "be strict" {
		t.Error("Expected system instruction to carry the system prompt")
	}

	textCfg := buildGenerateConfig(prompts.Request{User: "roast"}, GenerationParams{Temperature: 0.8, MaxTokens: 1024})
	if textCfg.ResponseMIMEType != "text/plain" {
		t.Errorf("Expected text mime type, got %s", textCfg.ResponseMIMEType)
	}
	if textCfg.TopP != nil {
		t.Error("Expected unset top-p to stay nil")
	}
	if textCfg.SystemInstruction != nil {
		t.Error("Expected no system instruction for empty system prompt")
	}
}

func TestExtractTokenUsage(t *testing.T) {
	if extractTokenUsage(nil) != nil {
		t.Error("Expected nil usage for nil response")
	}
	usage := extractTokenUsage(&genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 80,
			TotalTokenCount:      200,
		},
	})
	if usage == nil || usage.InputTokens != 120 || usage.OutputTokens != 80 || usage.TotalTokens != 200 {
		t.Errorf("Unexpected usage: %+v", usage)
	}
}
