package inventorycmd

import (
	"context"
	"fmt"

	"influxinv/cmd/influxinv/cmdutil"
	"influxinv/internal/influx"
	"influxinv/internal/inventory"
	"influxinv/internal/report"
	"influxinv/internal/telemetry"

	"github.com/spf13/cobra"
)

// HostsCmd walks measurements for host tag values and, with --latest-time,
// the record time per host, writing CSV and text reports.
func HostsCmd(root *cmdutil.RootOptions) *cobra.Command {
	var (
		flags       cmdutil.ConnFlags
		mf          measurementFlags
		latestTime  bool
		newestFirst bool
		outputDir   string
		withSQLite  bool
	)

	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "List host tag values per measurement and their latest record times",
		Args:  cmdutil.UsageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := mf.exclusive(); err != nil {
				return err
			}
			if newestFirst && !latestTime {
				return cmdutil.Usagef("--newest-first requires --latest-time.")
			}
			validate := func(conn cmdutil.Conn) error {
				return validateHosts(conn, mf, latestTime)
			}

			openSink := func() (inventory.Sink, func(), error) {
				writer := report.NewWriter(outputDir)
				if !withSQLite {
					return writer, func() {}, nil
				}
				db, err := report.OpenSQLite(outputDir)
				if err != nil {
					return nil, nil, fmt.Errorf("open sqlite report: %w", err)
				}
				return report.Multi{writer, db}, func() { _ = db.Close() }, nil
			}

			opts := sessionOptions{
				command:  "hosts",
				openSink: openSink,
				newest:   newestFirst,
				phases: func(kind influx.Kind) []telemetry.Phase {
					return []telemetry.Phase{listPhase(kind), {ID: "measurements", Title: "scanning measurements"}}
				},
			}
			return withSession(cmd, root, &flags, validate, opts, func(ctx context.Context, s *session) error {
				if !mf.skipListing {
					s.engine.ListContainers(ctx, inventory.ListOptions{Measurements: true})
				}
				if s.conn.Container == "" {
					return nil
				}
				return s.run.Step(ctx, "measurements", func(ctx context.Context) error {
					s.engine.ScanHosts(ctx, inventory.ScanOptions{
						Container:   s.conn.Container,
						Measurement: mf.measurement,
						LatestTime:  latestTime,
					})
					return nil
				})
			})
		},
	}

	flags.Bind(cmd)
	mf.bind(cmd)
	cmd.Flags().BoolVar(&latestTime, "latest-time", false, "Fetch one record time per host and write all-result reports")
	cmd.Flags().BoolVar(&newestFirst, "newest-first", false, "Order the per-host fetch by time descending")
	cmd.Flags().StringVar(&outputDir, "output-dir", report.DefaultDir, "Directory for report files")
	cmd.Flags().BoolVar(&withSQLite, "sqlite", false, "Also write reports to <output-dir>/inventory.db")
	return cmd
}

func validateHosts(conn cmdutil.Conn, mf measurementFlags, latestTime bool) error {
	selected := mf.measurement != "" || mf.all || latestTime
	switch {
	case selected && conn.Container == "":
		return cmdutil.Usagef("%s is required when using --measurement, --all-measurement, or --latest-time.", conn.ContainerFlag())
	case !selected && conn.Container != "":
		return cmdutil.Usagef("Please specify --measurement, --all-measurement, or --latest-time when providing %s.", conn.ContainerFlag())
	}
	return nil
}
