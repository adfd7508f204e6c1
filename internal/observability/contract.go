package observability

import (
	"context"
	"fmt"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/schema"
	"resumalyzer/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ContractMetrics counts schema repairs and fallback substitutions. It
// satisfies schema.Observer and the analyzer's fallback observer.
type ContractMetrics struct {
	defaults  metric.Int64Counter
	fallbacks metric.Int64Counter
	logger    *errors.Logger
}

var _ schema.Observer = (*ContractMetrics)(nil)

// NewContractMetrics registers the contract counters on meter
func NewContractMetrics(meter metric.Meter, logger *errors.Logger) (*ContractMetrics, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	c := &ContractMetrics{logger: logger}

	var err error
	if c.defaults, err = meter.Int64Counter(
		"resumalyzer_schema_defaults_total",
		metric.WithDescription("Fields defaulted or coerced by the contract validator"),
	); err != nil {
		return nil, fmt.Errorf("failed to create schema defaults metric: %w", err)
	}

	if c.fallbacks, err = meter.Int64Counter(
		"resumalyzer_fallbacks_total",
		metric.WithDescription("Task results replaced by their fallback"),
	); err != nil {
		return nil, fmt.Errorf("failed to create fallbacks metric: %w", err)
	}

	return c, nil
}

// DefaultApplied records one validator repair
func (c *ContractMetrics) DefaultApplied(ev schema.DefaultApplied) {
	c.logger.Debug("Schema default applied", "task", ev.Task, "field", ev.Field, "reason", ev.Reason)
	if c.defaults == nil {
		return
	}
	c.defaults.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("task", ev.Task),
		attribute.String("field", ev.Field),
		attribute.String("reason", ev.Reason),
	))
}

// FallbackUsed records that task answered with its fallback
func (c *ContractMetrics) FallbackUsed(task types.Task, reason string) {
	c.logger.Debug("Fallback used", "task", string(task), "reason", reason)
	if c.fallbacks == nil {
		return
	}
	c.fallbacks.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("task", string(task)),
		attribute.String("reason", reason),
	))
}
