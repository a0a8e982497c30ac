// Package inventorycmd holds the list, tags and hosts commands.
package inventorycmd

import (
	"context"
	"fmt"
	"log/slog"

	"influxinv/cmd/influxinv/cmdutil"
	"influxinv/internal/influx"
	"influxinv/internal/inventory"
	"influxinv/internal/telemetry"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "influxinv"

type session struct {
	conn   cmdutil.Conn
	client influx.Client
	run    *telemetry.Run
	engine *inventory.Engine
}

type sessionOptions struct {
	command string
	phases  func(kind influx.Kind) []telemetry.Phase
	newest  bool

	// openSink builds the report sink once the flags are known to be valid.
	openSink func() (inventory.Sink, func(), error)
}

// withSession connects, opens a traced run and hands an engine to fn. The
// connection is validated by validate before any client is built.
func withSession(cmd *cobra.Command, root *cmdutil.RootOptions, flags *cmdutil.ConnFlags, validate func(cmdutil.Conn) error, opts sessionOptions, fn func(context.Context, *session) error) error {
	conn, err := flags.Resolve(cmd)
	if err != nil {
		return err
	}
	if validate != nil {
		if err := validate(conn); err != nil {
			return err
		}
	}

	var sink inventory.Sink
	if opts.openSink != nil && conn.Container != "" {
		var closeSink func()
		sink, closeSink, err = opts.openSink()
		if err != nil {
			return err
		}
		defer closeSink()
	}

	client, err := cmdutil.NewClient(conn)
	if err != nil {
		return err
	}
	defer client.Close()

	progress := root.NewProgress(cmd)
	defer progress.Close()

	kind := client.Kind()
	var phases []telemetry.Phase
	if opts.phases != nil {
		phases = opts.phases(kind)
	}
	run, err := telemetry.Start(cmd.Context(), progress.Tracer(tracerName), opts.command, telemetry.Plan{Phases: phases},
		attribute.String("influxinv.api", string(conn.Config.API)),
		attribute.String(telemetry.ContainerKey, conn.Container),
	)
	if err != nil {
		return fmt.Errorf("start %s: %w", opts.command, err)
	}

	slog.Debug("connected", "api", conn.Config.API, "transport", conn.Config.Transport, "url", conn.Config.URL)
	s := &session{
		conn:   conn,
		client: client,
		run:    run,
		engine: inventory.New(client, cmd.OutOrStdout(), inventory.Options{
			Sink:        sink,
			Run:         run,
			NewestFirst: opts.newest,
		}),
	}
	err = fn(run.Context(), s)
	run.End(err)
	return err
}

func listPhase(kind influx.Kind) telemetry.Phase {
	return telemetry.Phase{ID: "list", Title: "listing " + string(kind) + "s"}
}

// measurementFlags are the measurement selectors shared by tags and hosts.
type measurementFlags struct {
	measurement string
	all         bool
	skipListing bool
}

func (f *measurementFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.measurement, "measurement", "", "Only this measurement")
	cmd.Flags().BoolVar(&f.all, "all-measurement", false, "Every measurement in the container")
	cmd.Flags().BoolVar(&f.skipListing, "skip-listing", false, "Do not print the container listing first")
}

func (f *measurementFlags) exclusive() error {
	if f.measurement != "" && f.all {
		return cmdutil.Usagef("--measurement and --all-measurement cannot be used together.")
	}
	return nil
}
