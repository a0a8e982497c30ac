// Package telemetry wraps an inventory run in OpenTelemetry spans: one root
// span carrying the planned phases and one child span per executed step.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	PlanEventName  = "influxinv.plan"
	PlanJSONKey    = "influxinv.plan.json"
	ContainerKey   = "influxinv.container"
	MeasurementKey = "influxinv.measurement"

	tracerName = "influxinv"
)

type Phase struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Plan struct {
	Phases []Phase `json:"phases"`
}

// Run is one traced command invocation. A nil *Run is valid and runs steps
// without tracing.
type Run struct {
	ctx    context.Context
	tracer trace.Tracer
	span   trace.Span
}

// Start opens the root span for a run. A nil tracer falls back to the global
// provider, which is a no-op unless one was installed.
func Start(ctx context.Context, tracer trace.Tracer, command string, plan Plan, attrs ...attribute.KeyValue) (*Run, error) {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	if err := validatePlan(plan); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("start run: marshal plan: %w", err)
	}

	attrs = append(attrs, attribute.String(PlanJSONKey, string(planJSON)))
	runCtx, span := tracer.Start(ctx, strings.TrimSpace(command), trace.WithAttributes(attrs...))
	span.AddEvent(PlanEventName, trace.WithAttributes(attribute.Int("influxinv.plan.phases", len(plan.Phases))))

	return &Run{ctx: runCtx, tracer: tracer, span: span}, nil
}

func (r *Run) Context() context.Context {
	if r == nil || r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Step runs fn inside a child span named id. Nested steps use "parent/child"
// ids so progress output can group them.
func (r *Run) Step(ctx context.Context, id string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	if fn == nil {
		return nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("run step: step id is required")
	}
	if ctx == nil {
		ctx = r.Context()
	}
	if r == nil || r.tracer == nil {
		return fn(ctx)
	}

	stepCtx, span := r.tracer.Start(ctx, id, trace.WithAttributes(attrs...))
	defer span.End()

	if err := fn(stepCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
		return err
	}
	return nil
}

// Fail marks the current step span failed without aborting it. Inventory
// steps report item failures and keep going.
func Fail(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
}

func (r *Run) End(err error) {
	if r == nil || r.span == nil {
		return
	}
	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
	}
	r.span.End()
}

func validatePlan(plan Plan) error {
	seen := make(map[string]struct{}, len(plan.Phases))
	for i, p := range plan.Phases {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("phase %d has empty id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate phase id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
