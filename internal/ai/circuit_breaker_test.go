package ai

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"resumalyzer/internal/config"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/types"

	"google.golang.org/genai"
)

func breakerConfig(minRequests uint32, threshold float64) config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      minRequests,
		FailureThreshold: threshold,
	}
}

func TestTaskCircuitBreakerNames(t *testing.T) {
	critique := NewTaskCircuitBreaker(types.TaskCritique, breakerConfig(3, 0.6), nil)
	roast := NewTaskCircuitBreaker(types.TaskRoast, breakerConfig(2, 0.5), nil)

	tests := []struct {
		name string
		cb   *TaskCircuitBreaker
		want string
	}{
		{"critique", critique, "AI-critique"},
		{"roast", roast, "AI-roast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.cb.GetStats()
			if stats["name"] != tt.want {
				t.Errorf("Expected name %s, got %v", tt.want, stats["name"])
			}
			if stats["state"] != "closed" {
				t.Errorf("Expected closed state, got %v", stats["state"])
			}
			if !tt.cb.IsHealthy() {
				t.Error("Expected new breaker to be healthy")
			}
		})
	}
}

func TestDisabledCircuitBreakerPassesThrough(t *testing.T) {
	cb := NewTaskCircuitBreaker(types.TaskChat, config.CircuitBreakerConfig{Enabled: false}, nil)
	if cb != nil {
		t.Fatal("Expected nil breaker when disabled")
	}

	calls := 0
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		calls++
		return &genai.GenerateContentResponse{}, nil
	})
	if err != nil || calls != 1 {
		t.Errorf("Expected direct execution, got calls=%d err=%v", calls, err)
	}
	if cb.GetStats()["enabled"] != false {
		t.Error("Expected disabled stats")
	}
	if !cb.IsHealthy() {
		t.Error("Expected nil breaker to report healthy")
	}
}

func TestCircuitBreakerOpensAndFailsFast(t *testing.T) {
	cb := NewTaskCircuitBreaker(types.TaskJDMatch, breakerConfig(2, 0.5), errors.Discard())
	boom := stderrors.New("upstream down")

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (*genai.GenerateContentResponse, error) { return nil, boom }); err == nil {
			t.Fatal("Expected failure to propagate")
		}
	}
	if cb.IsHealthy() {
		t.Fatal("Expected breaker to open after failures")
	}

	calls := 0
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		calls++
		return nil, nil
	})
	if calls != 0 {
		t.Error("Expected open breaker not to invoke the provider")
	}
	appErr := classifyError(err)
	if appErr.Type != errors.ErrorTypeProvider || appErr.Code != errors.ErrCodeProviderCircuit {
		t.Errorf("Expected circuit-open provider error, got %s/%s", appErr.Type, appErr.Code)
	}
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	cb := NewTaskCircuitBreaker(types.TaskRoast, breakerConfig(1, 0.1), nil)
	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (*genai.GenerateContentResponse, error) { return nil, context.Canceled })
	}
	if !cb.IsHealthy() {
		t.Error("Expected canceled calls not to trip the breaker")
	}
}
