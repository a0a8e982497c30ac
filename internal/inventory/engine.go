// Package inventory walks an InfluxDB server: containers and their retention,
// measurements, host tag values and one observed record time per host.
// Output is human-readable text; item failures are printed and the walk
// continues with the next sibling.
package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"influxinv/internal/influx"
	"influxinv/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// HostRow is one line of a per-measurement report. UTC and Local are empty
// when record times were not requested.
type HostRow struct {
	Host  string
	UTC   string
	Local string
}

// SummaryRow is one line of the aggregate report.
type SummaryRow struct {
	Host     string
	OldUTC   string
	OldLocal string
	NewUTC   string
	NewLocal string
}

// Output describes one file a Sink tried to write.
type Output struct {
	Path string
	Err  error
}

// Sink persists scan results.
type Sink interface {
	WriteMeasurement(container, measurement string, rows []HostRow) []Output
	WriteSummary(rows []SummaryRow) []Output
}

type Options struct {
	// Sink receives per-measurement and summary rows. Nil disables files.
	Sink Sink
	// Run traces phases and measurements. Nil disables tracing.
	Run *telemetry.Run
	// Location renders local times; nil means time.Local.
	Location *time.Location
	// NewestFirst orders the single-row fetch by time descending.
	NewestFirst bool
}

type Engine struct {
	client influx.Client
	out    io.Writer
	opts   Options
}

func New(client influx.Client, out io.Writer, opts Options) *Engine {
	return &Engine{client: client, out: out, opts: opts}
}

func (e *Engine) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.out, format, args...)
}

func (e *Engine) row(cols ...string) {
	e.printf("%s\n", strings.TrimRight(fmt.Sprintf("%-30s %-40s %-15s", cols[0], cols[1], cols[2]), " "))
}

// ListOptions controls ListContainers.
type ListOptions struct {
	// Only restricts the listing to one container name.
	Only string
	// Measurements lists the measurements of each container.
	Measurements bool
}

// ListContainers prints every container with its retention settings and,
// optionally, its measurements. Containers are printed in server order.
func (e *Engine) ListContainers(ctx context.Context, opts ListOptions) []influx.Container {
	kind := e.client.Kind()

	var containers []influx.Container
	err := e.opts.Run.Step(ctx, "list", func(ctx context.Context) error {
		var err error
		containers, err = e.client.Containers(ctx)
		return err
	})
	if err != nil {
		e.printf("Error accessing InfluxDB: %v\n", err)
		return nil
	}

	if opts.Only != "" {
		filtered := containers[:0]
		for _, ct := range containers {
			if ct.Name == opts.Only {
				filtered = append(filtered, ct)
			}
		}
		containers = filtered
	}

	if kind == influx.Bucket {
		e.row("Bucket Name", "Bucket ID", "Retention")
	} else {
		e.row("Database Name", "Retention Policy", "Duration")
	}
	e.printf("%s\n", strings.Repeat("-", 85))

	for _, ct := range containers {
		e.printContainer(kind, ct)
		if !opts.Measurements {
			continue
		}
		_ = e.opts.Run.Step(ctx, "list/"+ct.Name, func(ctx context.Context) error {
			return e.printMeasurements(ctx, kind, ct.Name)
		}, attribute.String(telemetry.ContainerKey, ct.Name))
		e.printf("\n")
	}
	return containers
}

func (e *Engine) printContainer(kind influx.Kind, ct influx.Container) {
	if kind == influx.Bucket {
		retention := influx.RetentionPolicy{}
		if len(ct.Policies) > 0 {
			retention = ct.Policies[0]
		}
		e.row(ct.Name, ct.ID, retention.Display())
		return
	}

	if ct.RetentionErr != nil {
		e.printf("  Error querying retention policies for database %s: %v\n", ct.Name, ct.RetentionErr)
	}
	if len(ct.Policies) == 0 {
		e.row(ct.Name, "none", influx.RetentionPolicy{}.Display())
		return
	}
	for _, p := range ct.Policies {
		e.row(ct.Name, p.Name, p.Display())
	}
}

func (e *Engine) printMeasurements(ctx context.Context, kind influx.Kind, container string) error {
	measurements, err := e.client.Measurements(ctx, container)
	if err != nil {
		e.printf("  Error querying measurements for %s %s: %v\n", kind, container, err)
		e.printf("  Measurements (Tables): None\n")
		return err
	}
	if len(measurements) == 0 {
		e.printf("  Measurements (Tables): None\n")
		e.printf("  Warning: No measurements found for %s %s. %s\n", kind, container, emptyHint(kind))
		return nil
	}
	e.printf("  Measurements (Tables): %s\n", strings.Join(measurements, ", "))
	return nil
}

func emptyHint(kind influx.Kind) string {
	if kind == influx.Bucket {
		return "Check DBRP mapping, token permissions, or data presence."
	}
	return "Check data presence or retention policies."
}

// TagValues returns the distinct host tag values of measurement, sorted. An
// empty measurement spans the whole container.
func (e *Engine) TagValues(ctx context.Context, container, measurement string) ([]string, error) {
	rows, err := e.client.Query(ctx, container, influx.ShowTagValues(measurement, influx.HostTagKey))
	if err != nil {
		return nil, err
	}
	return distinctSorted(influx.ColumnStrings(rows, 1)), nil
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ReportTagValues prints the host tag values of one measurement, or of the
// whole container when measurement is empty.
func (e *Engine) ReportTagValues(ctx context.Context, container, measurement string) ([]string, error) {
	kind := e.client.Kind()
	key := influx.HostTagKey

	if measurement != "" {
		e.printf("Querying tag '%s' values for measurement '%s' in %s '%s'.\n", key, measurement, kind, container)
	} else {
		e.printf("Querying tag '%s' values across all measurements in %s '%s'.\n", key, kind, container)
	}

	var values []string
	err := e.opts.Run.Step(ctx, "tags", func(ctx context.Context) error {
		var err error
		values, err = e.TagValues(ctx, container, measurement)
		return err
	}, attribute.String(telemetry.ContainerKey, container), attribute.String(telemetry.MeasurementKey, measurement))
	if err != nil {
		suffix := ""
		if measurement != "" {
			suffix = " for measurement " + measurement
		}
		e.printf("Error querying '%s' tag values in %s '%s'%s: %v\n", key, kind, container, suffix, err)
		return nil, err
	}

	scope := " (all measurements)"
	if measurement != "" {
		scope = " for measurement " + measurement
	}
	e.printf("\nTag: %s\n", key)
	e.printf("List of '%s' tag values in %s '%s'%s:\n", key, kind, container, scope)
	e.printf("%s\n", strings.Repeat("-", 60))
	if len(values) == 0 {
		e.printf("No '%s' tag values found.\n", key)
		return values, nil
	}
	for _, v := range values {
		e.printf("%s\n", v)
	}
	return values, nil
}

// ScanOptions selects what ScanHosts walks.
type ScanOptions struct {
	Container string
	// Measurement restricts the scan to one measurement; empty scans all.
	Measurement string
	// LatestTime fetches one record per host and aggregates oldest/newest.
	LatestTime bool
}

// ScanResult summarises one ScanHosts call.
type ScanResult struct {
	Processed int
	Total     int
	Summary   []SummaryRow
}

// ScanHosts lists host tag values per measurement and, with LatestTime, one
// observed record time per host. Record times are aggregated across all
// measurements of the scan into per-host oldest/newest rows.
func (e *Engine) ScanHosts(ctx context.Context, opts ScanOptions) ScanResult {
	kind := e.client.Kind()
	mode := "host tag values"
	if opts.LatestTime {
		mode = "latest record time"
	}

	var measurements []string
	if opts.Measurement != "" {
		measurements = []string{opts.Measurement}
		e.printf("\nQuerying %s for measurement '%s' in %s '%s'.\n", mode, opts.Measurement, kind, opts.Container)
	} else {
		ms, err := e.client.Measurements(ctx, opts.Container)
		if err != nil {
			e.printf("Error querying measurements for %s %s: %v\n", kind, opts.Container, err)
		} else {
			slog.Debug("found measurements", "container", opts.Container, "count", len(ms))
		}
		if len(ms) == 0 {
			e.printf("\nNo measurements found in %s '%s'. Check permissions or data presence.\n", kind, opts.Container)
			return ScanResult{}
		}
		measurements = ms
		e.printf("\nQuerying %s for all measurements in %s '%s' (%d measurements found).\n", mode, kind, opts.Container, len(measurements))
	}

	times := NewHostTimes()
	result := ScanResult{Total: len(measurements)}
	for _, m := range measurements {
		result.Processed++
		e.printf("\nMeasurement: %s (%d/%d)\n", m, result.Processed, result.Total)
		e.printf("%s\n", strings.Repeat("=", 80))

		_ = e.opts.Run.Step(ctx, "measurements/"+m, func(ctx context.Context) error {
			e.scanMeasurement(ctx, kind, opts, m, times)
			return nil
		}, attribute.String(telemetry.ContainerKey, opts.Container), attribute.String(telemetry.MeasurementKey, m))
		e.printf("\n")
	}

	if opts.LatestTime {
		result.Summary = e.summarize(times)
		if len(result.Summary) == 0 {
			e.printf("\nNo host times found to generate all-result.csv or all-result.txt.\n")
		} else if e.opts.Sink != nil {
			e.printf("\n")
			for _, o := range e.opts.Sink.WriteSummary(result.Summary) {
				if o.Err != nil {
					e.printf("Error writing summary file '%s': %v\n", o.Path, o.Err)
					continue
				}
				e.printf("Saved summary to %s\n", o.Path)
			}
		}
	}

	e.printf("\nCompleted querying %d/%d measurements in %s '%s'.\n", result.Processed, result.Total, kind, opts.Container)
	return result
}

func (e *Engine) scanMeasurement(ctx context.Context, kind influx.Kind, opts ScanOptions, m string, times *HostTimes) {
	key := influx.HostTagKey
	e.printf("  Fetching all '%s' tag values for measurement '%s'.\n", key, m)

	hosts, err := e.TagValues(ctx, opts.Container, m)
	if err != nil {
		telemetry.Fail(ctx, err)
		e.printf("  Error querying '%s' tag values for measurement '%s' in %s '%s': %v\n", key, m, kind, opts.Container, err)
		return
	}
	if len(hosts) == 0 {
		e.printf("  No '%s' tag values found for measurement '%s'.\n", key, m)
		return
	}

	var rows []HostRow
	if opts.LatestTime {
		rows = e.latestTimes(ctx, kind, opts.Container, m, hosts, times)
	} else {
		e.printf("  List of '%s' tag values in measurement '%s' (%s: %s):\n", key, m, kind, opts.Container)
		e.printf("  %s\n", strings.Repeat("-", 60))
		for _, h := range hosts {
			e.printf("  %s\n", h)
			rows = append(rows, HostRow{Host: h})
		}
	}

	if len(rows) == 0 {
		e.printf("  No data to save for measurement '%s'.\n", m)
		return
	}
	if e.opts.Sink == nil {
		return
	}
	for _, o := range e.opts.Sink.WriteMeasurement(opts.Container, m, rows) {
		if o.Err != nil {
			telemetry.Fail(ctx, o.Err)
			e.printf("  Error writing CSV file '%s': %v\n", o.Path, o.Err)
			continue
		}
		e.printf("  Saved results to %s\n", o.Path)
	}
}

func (e *Engine) latestTimes(ctx context.Context, kind influx.Kind, container, m string, hosts []string, times *HostTimes) []HostRow {
	e.printf("  Latest record time for each host in measurement '%s' (%s: %s):\n", m, kind, container)
	e.printf("  %-30s %-30s %s\n", "Host", "Time_UTC", "Time_Local")
	e.printf("  %s\n", strings.Repeat("-", 90))

	var rows []HostRow
	for _, h := range hosts {
		stmt := influx.SelectOne(m, influx.HostTagKey, h, e.opts.NewestFirst)
		series, err := e.client.Query(ctx, container, stmt)
		if err != nil {
			telemetry.Fail(ctx, err)
			e.printf("  Error querying host '%s' in measurement '%s': %v\n", h, m, err)
			continue
		}
		raw, ok := influx.FirstValue(series, 0)
		if !ok {
			e.printf("  No data found for host '%s' in measurement '%s'.\n", h, m)
			continue
		}

		times.Add(h, raw)
		utc, local := FormatTime(raw, e.opts.Location)
		e.printf("  %-30s %-30s %s\n", h, utc, local)
		rows = append(rows, HostRow{Host: h, UTC: utc, Local: local})
	}
	return rows
}

func (e *Engine) summarize(times *HostTimes) []SummaryRow {
	spans := times.Spans()
	out := make([]SummaryRow, 0, len(spans))
	for _, s := range spans {
		oldUTC, oldLocal := FormatTime(s.Oldest, e.opts.Location)
		newUTC, newLocal := FormatTime(s.Newest, e.opts.Location)
		out = append(out, SummaryRow{
			Host:     s.Host,
			OldUTC:   oldUTC,
			OldLocal: oldLocal,
			NewUTC:   newUTC,
			NewLocal: newLocal,
		})
	}
	return out
}
