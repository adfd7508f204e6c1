package tasks

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/normalize"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/schema"
	"resumalyzer/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "resumalyzer.tasks"

// FallbackObserver is told every time a task resolves to its fallback
type FallbackObserver interface {
	FallbackUsed(task types.Task, reason string)
}

// countingObserver forwards events and counts them for one invocation
type countingObserver struct {
	next  schema.Observer
	count atomic.Int64
}

func (c *countingObserver) DefaultApplied(ev schema.DefaultApplied) {
	c.count.Add(1)
	if c.next != nil {
		c.next.DefaultApplied(ev)
	}
}

// run drives one structured task through invoke, normalize, validate and
// decode. Every failure resolves to fallback().
func run[T any](ctx context.Context, a *Analyzer, task types.Task, req prompts.Request, fallback func() T) T {
	ctx, span := startSpan(ctx, task)
	defer span.End()

	spec, ok := a.catalog.Spec(task)
	if !ok {
		return fail(a, span, task, unknownTask(task), fallback)
	}

	start := time.Now()
	raw, err := a.invoker.Complete(ctx, req, spec.Params)
	if err != nil {
		return fail(a, span, task, err, fallback)
	}

	payload, err := normalize.Normalize(raw, spec.Shape)
	if err != nil {
		return fail(a, span, task, err, fallback)
	}

	obs := &countingObserver{next: a.contract}
	var validated any
	if spec.Shape == normalize.ShapeArray {
		validated = schema.ApplyEach(payload, spec.Schema, obs)
	} else {
		validated = schema.Apply(payload, spec.Schema, obs)
	}

	var out T
	if err := schema.Decode(validated, &out); err != nil {
		return fail(a, span, task,
			errors.NewInternalError(errors.ErrCodeDecodeFailed, "validated payload did not decode", err), fallback)
	}

	defaults := obs.count.Load()
	span.SetAttributes(attribute.Bool("fallback", false), attribute.Int64("schema.defaults", defaults))
	a.logger.Debug("Task completed",
		"task", string(task),
		"duration_seconds", time.Since(start).Seconds(),
		"defaults_applied", defaults)
	return out
}

// runText drives a plain-text task. The normalizer and validator do not apply.
func runText(ctx context.Context, a *Analyzer, task types.Task, req prompts.Request, fallback func() string) string {
	ctx, span := startSpan(ctx, task)
	defer span.End()

	spec, ok := a.catalog.Spec(task)
	if !ok {
		return fail(a, span, task, unknownTask(task), fallback)
	}

	raw, err := a.invoker.Complete(ctx, req, spec.Params)
	if err != nil {
		return fail(a, span, task, err, fallback)
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return fail(a, span, task,
			errors.NewProviderError(errors.ErrCodeProviderEmpty, "provider returned an empty response", nil), fallback)
	}

	span.SetAttributes(attribute.Bool("fallback", false), attribute.Int("output.length", len(text)))
	return text
}

// fail logs and counts err, then returns a fresh fallback. err never reaches the caller.
func fail[T any](a *Analyzer, span trace.Span, task types.Task, err error, fallback func() T) T {
	reason := fallbackReason(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	span.SetAttributes(attribute.Bool("fallback", true), attribute.String("fallback.reason", reason))

	switch {
	case errors.IsMalformedResponse(err):
		// model output quality, not an outage
		a.logger.Warn("Model reply was not usable JSON, using fallback", "task", string(task), "error", err.Error())
	case errors.IsProviderError(err):
		a.logger.LogError(err, "Provider call failed, using fallback", "task", string(task))
	default:
		a.logger.LogError(err, "Task resolved to fallback", "task", string(task), "reason", reason)
	}
	if a.fallbacks != nil {
		a.fallbacks.FallbackUsed(task, reason)
	}
	return fallback()
}

func fallbackReason(err error) string {
	if t := errors.TypeOf(err); t != "" {
		return string(t)
	}
	return string(errors.ErrorTypeInternal)
}

func unknownTask(task types.Task) error {
	return errors.NewInternalError(errors.ErrCodeInvalidRequest, "task is not in the catalog", nil).
		WithContext("task", string(task))
}

func startSpan(ctx context.Context, task types.Task) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "task."+string(task))
	span.SetAttributes(attribute.String("ai.task", string(task)))
	return ctx, span
}
