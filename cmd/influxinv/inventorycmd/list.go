package inventorycmd

import (
	"context"

	"influxinv/cmd/influxinv/cmdutil"
	"influxinv/internal/influx"
	"influxinv/internal/inventory"
	"influxinv/internal/telemetry"

	"github.com/spf13/cobra"
)

// ListCmd prints containers with their retention and measurements.
func ListCmd(root *cmdutil.RootOptions) *cobra.Command {
	var (
		flags         cmdutil.ConnFlags
		retentionOnly bool
		onlySelected  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List databases or buckets with retention and measurements",
		Args:  cmdutil.UsageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			validate := func(conn cmdutil.Conn) error {
				if onlySelected && conn.Container == "" {
					return cmdutil.Usagef("%s is required with --only-selected.", conn.ContainerFlag())
				}
				return nil
			}
			opts := sessionOptions{
				command: "list",
				phases: func(kind influx.Kind) []telemetry.Phase {
					return []telemetry.Phase{listPhase(kind)}
				},
			}
			return withSession(cmd, root, &flags, validate, opts, func(ctx context.Context, s *session) error {
				lo := inventory.ListOptions{Measurements: !retentionOnly}
				if onlySelected {
					lo.Only = s.conn.Container
				}
				s.engine.ListContainers(ctx, lo)
				return nil
			})
		},
	}

	flags.Bind(cmd)
	cmd.Flags().BoolVar(&retentionOnly, "retention-only", false, "Skip measurement listing")
	cmd.Flags().BoolVar(&onlySelected, "only-selected", false, "List only the container named by --database/--bucket")
	return cmd
}
