package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"influxinv/internal/telemetry"
)

func TestFormatStepLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status stepStatus
		id     string
		title  string
		msg    string
		want   string
	}{
		{stepRunning, "list", "listing databases", "", "  [->] listing databases"},
		{stepDone, "measurements/cpu", "cpu", "", "    [ok] cpu"},
		{stepFailed, "measurements/mem", "mem", "HTTP 500 - boom", "    [x] mem (HTTP 500 - boom)"},
	}
	for _, tt := range tests {
		if got := formatStepLine(tt.status, tt.id, tt.title, tt.msg); got != tt.want {
			t.Fatalf("formatStepLine() = %q, want %q", got, tt.want)
		}
	}
}

func TestStepTrackerFanoutSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tracker := newStepTracker(&buf)
	tracker.onPlan(telemetry.Plan{Phases: []telemetry.Phase{{ID: "measurements", Title: "scanning measurements"}}})

	tracker.onStart("measurements")
	tracker.onStart("measurements/cpu")
	tracker.onEnd("measurements/cpu", false, "")
	tracker.onStart("measurements/mem")
	tracker.onEnd("measurements/mem", true, "timeout")
	tracker.onEnd("measurements", false, "")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"  [->] scanning measurements",
		"    [->] cpu",
		"    [ok] cpu",
		"    [->] mem",
		"    [x] mem (timeout)",
		"  [ok] scanning measurements (1/2 done, 1 failed)",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if strings.TrimRight(lines[i], " ") != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestProgressPrintsTracedRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	progress := NewProgress(&buf)
	defer progress.Close()

	run, err := telemetry.Start(context.Background(), progress.Tracer("test"), "hosts", telemetry.Plan{
		Phases: []telemetry.Phase{{ID: "list", Title: "listing databases"}},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	_ = run.Step(run.Context(), "list", func(context.Context) error { return nil })
	_ = run.Step(run.Context(), "tags", func(context.Context) error { return errors.New("denied") })
	run.End(nil)

	out := buf.String()
	for _, want := range []string{"  [ok] listing databases\n", "  [x] tags (denied)\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("progress output missing %q:\n%s", want, out)
		}
	}
}

func TestNilProgressTracer(t *testing.T) {
	t.Parallel()

	var p *Progress
	if p.Tracer("x") == nil {
		t.Fatal("nil Progress returned nil tracer")
	}
	p.Close()
}
