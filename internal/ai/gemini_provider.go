package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"resumalyzer/internal/config"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	instrumentationName = "resumalyzer.ai.gemini"
	modelCheckTimeout   = 10 * time.Second
)

// GeminiInvoker implements Provider for Google Gemini
type GeminiInvoker struct {
	clients      map[string]*genai.Client // keyed by API key
	cfg          *config.Config
	breakers     map[types.Task]*TaskCircuitBreaker
	modelBreaker *ModelCircuitBreaker
	metrics      invokerMetrics
	logger       *errors.Logger
}

type invokerMetrics struct {
	tokens   metric.Int64Counter
	duration metric.Float64Histogram
	failures metric.Int64Counter
}

// Ensure GeminiInvoker implements Provider
var _ Provider = (*GeminiInvoker)(nil)

// NewGeminiInvoker creates one client per distinct API key and one breaker per task
func NewGeminiInvoker(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*GeminiInvoker, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	g := &GeminiInvoker{
		clients:      make(map[string]*genai.Client),
		cfg:          cfg,
		breakers:     make(map[types.Task]*TaskCircuitBreaker, len(types.AllTasks)),
		modelBreaker: NewModelCircuitBreaker(cfg.AI.CircuitBreaker, logger),
		metrics:      newInvokerMetrics(logger),
		logger:       logger,
	}

	for _, task := range types.AllTasks {
		settings := cfg.TaskConfig(task)
		if settings.APIKey == "" {
			return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
				fmt.Sprintf("no API key configured for task %s", task), nil)
		}
		if _, ok := g.clients[settings.APIKey]; !ok {
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  settings.APIKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
			}
			g.clients[settings.APIKey] = client
		}
		g.breakers[task] = NewTaskCircuitBreaker(task, settings.CircuitBreaker, logger)
	}

	return g, nil
}

func newInvokerMetrics(logger *errors.Logger) invokerMetrics {
	meter := otel.Meter(instrumentationName)
	var m invokerMetrics
	var err error
	if m.tokens, err = meter.Int64Counter("resumalyzer_ai_tokens_total",
		metric.WithDescription("Tokens consumed by provider calls"),
		metric.WithUnit("{token}")); err != nil {
		logger.Warn("Failed to create token counter", "error", err)
	}
	if m.duration, err = meter.Float64Histogram("resumalyzer_ai_request_duration_seconds",
		metric.WithDescription("Provider round trip duration"),
		metric.WithUnit("s")); err != nil {
		logger.Warn("Failed to create duration histogram", "error", err)
	}
	if m.failures, err = meter.Int64Counter("resumalyzer_ai_failures_total",
		metric.WithDescription("Provider calls that returned an error")); err != nil {
		logger.Warn("Failed to create failure counter", "error", err)
	}
	return m
}

// Complete performs one GenerateContent call. It never retries.
func (g *GeminiInvoker) Complete(ctx context.Context, req prompts.Request, params GenerationParams) (string, error) {
	settings := g.cfg.TaskConfig(params.Task)
	model := params.Model
	if model == "" {
		model = settings.Model
	}
	client := g.clients[settings.APIKey]
	if client == nil {
		return "", errors.NewProviderError(errors.ErrCodeProviderAuth, "no provider client for task "+string(params.Task), nil)
	}

	tracer := otel.Tracer(instrumentationName)
	ctx, span := tracer.Start(ctx, "gemini.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.task", string(params.Task)),
		attribute.String("ai.model", model),
		attribute.Float64("ai.temperature", float64(params.Temperature)),
		attribute.Int("ai.max_tokens", int(params.MaxTokens)),
		attribute.Bool("ai.json_mode", params.JSONMode),
		attribute.Int("input.prompt_length", len(req.User)),
	)

	if params.Timeout == 0 {
		params.Timeout = settings.Timeout
	}
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	genaiConfig := buildGenerateConfig(req, params)

	start := time.Now()
	result, err := g.breakers[params.Task].Execute(func() (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(ctx, model, genai.Text(req.User), genaiConfig)
	})
	elapsed := time.Since(start).Seconds()
	taskAttr := metric.WithAttributes(attribute.String("task", string(params.Task)))
	if g.metrics.duration != nil {
		g.metrics.duration.Record(ctx, elapsed, taskAttr)
	}

	if err != nil {
		appErr := classifyError(err)
		span.RecordError(appErr)
		span.SetStatus(codes.Error, appErr.Code)
		span.SetAttributes(attribute.Bool("success", false), attribute.String("error.code", appErr.Code))
		if g.metrics.failures != nil {
			g.metrics.failures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("task", string(params.Task)),
				attribute.String("code", appErr.Code)))
		}
		return "", appErr
	}

	if usage := extractTokenUsage(result); usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
		if g.metrics.tokens != nil {
			g.metrics.tokens.Add(ctx, usage.InputTokens, metric.WithAttributes(
				attribute.String("task", string(params.Task)), attribute.String("direction", "input")))
			g.metrics.tokens.Add(ctx, usage.OutputTokens, metric.WithAttributes(
				attribute.String("task", string(params.Task)), attribute.String("direction", "output")))
		}
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		err := errors.NewProviderError(errors.ErrCodeProviderEmpty, "provider returned an empty response", nil).
			WithContext("task", string(params.Task))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false), attribute.String("error.code", err.Code))
		return "", err
	}

	span.SetAttributes(attribute.Bool("success", true), attribute.Int("output.length", len(text)))
	g.logger.Debug("Provider call completed",
		"task", string(params.Task),
		"model", model,
		"duration_seconds", elapsed,
		"output_length", len(text))
	return text, nil
}

// buildGenerateConfig maps params onto the genai request config
func buildGenerateConfig(req prompts.Request, params GenerationParams) *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(params.Temperature),
		MaxOutputTokens:  params.MaxTokens,
		ResponseMIMEType: "text/plain",
	}
	if params.JSONMode {
		genaiConfig.ResponseMIMEType = "application/json"
	}
	if params.TopP > 0 {
		genaiConfig.TopP = genai.Ptr(params.TopP)
	}
	if req.System != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	return genaiConfig
}

// classifyError turns a client error into a provider AppError
func classifyError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	if isBreakerRejection(err) {
		return errors.NewProviderError(errors.ErrCodeProviderCircuit, "circuit breaker rejected the call", err)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.NewProviderError(errors.ErrCodeProviderCanceled, "request canceled", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewProviderError(errors.ErrCodeProviderNetwork, "provider request timed out", err).
			WithContext("timeout", true)
	}

	if code, ok := statusCode(err); ok {
		return errors.NewProviderError(codeForStatus(code), fmt.Sprintf("provider returned HTTP %d", code), err).
			WithContext("status", code)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return errors.NewProviderError(errors.ErrCodeProviderNetwork, "provider unreachable", err).
			WithContext("timeout", netErr.Timeout())
	}

	return errors.NewProviderError(errors.ErrCodeAIServiceFailed, "provider call failed", err)
}

// statusCode extracts the HTTP status from genai or googleapi errors
func statusCode(err error) (int, bool) {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) && apiErr.Code != 0 {
		return apiErr.Code, true
	}
	var gErr *googleapi.Error
	if stderrors.As(err, &gErr) {
		return gErr.Code, true
	}
	return 0, false
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.ErrCodeProviderAuth
	case status == http.StatusTooManyRequests:
		return errors.ErrCodeProviderRateLimit
	case status >= http.StatusInternalServerError:
		return errors.ErrCodeProviderServer
	default:
		return errors.ErrCodeAIServiceFailed
	}
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// ModelInfo checks the readiness and availability of the configured model
func (g *GeminiInvoker) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.cfg.AI.Model}

	client := g.clients[g.cfg.AI.APIKey]
	if client == nil {
		info.Error = "no client for the global API key"
		return info
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return client.Models.Get(checkCtx, g.cfg.AI.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed", "model", g.cfg.AI.Model, "error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// BreakerStats returns the breaker state for every task
func (g *GeminiInvoker) BreakerStats() map[string]any {
	stats := make(map[string]any, len(g.breakers))
	for task, cb := range g.breakers {
		stats[string(task)] = cb.GetStats()
	}
	return stats
}

// Close releases provider resources. The genai client holds no closable state.
func (g *GeminiInvoker) Close() error {
	return nil
}
