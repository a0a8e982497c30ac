package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"influxinv/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Progress prints one line per step transition of a traced run. A nil
// *Progress hands out the global (no-op) tracer.
type Progress struct {
	provider *sdktrace.TracerProvider
}

func NewProgress(w io.Writer) *Progress {
	tracker := newStepTracker(w)
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&stepSpanProcessor{tracker: tracker}))
	return &Progress{provider: provider}
}

func (p *Progress) Tracer(name string) trace.Tracer {
	if p == nil || p.provider == nil {
		return otel.Tracer(name)
	}
	return p.provider.Tracer(name)
}

func (p *Progress) Close() {
	if p == nil || p.provider == nil {
		return
	}
	_ = p.provider.Shutdown(context.Background())
}

type stepStatus int

const (
	stepRunning stepStatus = iota
	stepDone
	stepFailed
)

type fanout struct {
	total  int
	done   int
	failed int
}

func (f *fanout) summary() string {
	if f == nil || f.total == 0 {
		return ""
	}
	if f.failed > 0 {
		return fmt.Sprintf("%d/%d done, %d failed", f.done, f.total, f.failed)
	}
	return fmt.Sprintf("%d/%d done", f.done, f.total)
}

type stepTracker struct {
	mu       sync.Mutex
	w        io.Writer
	titles   map[string]string
	children map[string]*fanout
}

func newStepTracker(w io.Writer) *stepTracker {
	return &stepTracker{
		w:        w,
		titles:   make(map[string]string),
		children: make(map[string]*fanout),
	}
}

func (t *stepTracker) onPlan(plan telemetry.Plan) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range plan.Phases {
		id := strings.TrimSpace(p.ID)
		if title := strings.TrimSpace(p.Title); id != "" && title != "" {
			t.titles[id] = title
		}
	}
}

func (t *stepTracker) onStart(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if parent := parentID(id); parent != "" {
		f := t.children[parent]
		if f == nil {
			f = &fanout{}
			t.children[parent] = f
		}
		f.total++
	}
	_, _ = fmt.Fprintln(t.w, formatStepLine(stepRunning, id, t.titleLocked(id), ""))
}

func (t *stepTracker) onEnd(id string, failed bool, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := stepDone
	if failed {
		status = stepFailed
	}
	if parent := parentID(id); parent != "" {
		if f := t.children[parent]; f != nil {
			if failed {
				f.failed++
			} else {
				f.done++
			}
		}
	}

	msg := strings.TrimSpace(message)
	if summary := t.children[id].summary(); summary != "" {
		if msg == "" {
			msg = summary
		} else {
			msg = summary + "; " + msg
		}
	}
	if !failed && t.children[id] == nil {
		msg = ""
	}
	_, _ = fmt.Fprintln(t.w, formatStepLine(status, id, t.titleLocked(id), msg))
}

func (t *stepTracker) titleLocked(id string) string {
	if title, ok := t.titles[id]; ok {
		return title
	}
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		return id[idx+1:]
	}
	return id
}

func parentID(id string) string {
	if idx := strings.LastIndex(id, "/"); idx > 0 {
		return id[:idx]
	}
	return ""
}

func formatStepLine(status stepStatus, id, title, msg string) string {
	prefix := "[->]"
	switch status {
	case stepDone:
		prefix = "[ok]"
	case stepFailed:
		prefix = "[x]"
	}

	indent := "  "
	if parentID(id) != "" {
		indent = "    "
	}
	if msg != "" {
		return fmt.Sprintf("%s%s %s (%s)", indent, prefix, title, msg)
	}
	return fmt.Sprintf("%s%s %s", indent, prefix, title)
}

type stepSpanProcessor struct {
	tracker *stepTracker
}

func (p *stepSpanProcessor) OnStart(_ context.Context, span sdktrace.ReadWriteSpan) {
	if span.Parent().IsValid() {
		p.tracker.onStart(span.Name())
		return
	}

	raw := attributeValue(span.Attributes(), telemetry.PlanJSONKey)
	if strings.TrimSpace(raw) == "" {
		return
	}
	var plan telemetry.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return
	}
	p.tracker.onPlan(plan)
}

func (p *stepSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	if !span.Parent().IsValid() {
		return
	}
	status := span.Status()
	p.tracker.onEnd(span.Name(), status.Code == codes.Error, status.Description)
}

func (p *stepSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *stepSpanProcessor) ForceFlush(context.Context) error { return nil }

func attributeValue(attrs []attribute.KeyValue, key string) string {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value.AsString()
		}
	}
	return ""
}
