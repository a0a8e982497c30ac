package inventorycmd

import (
	"context"

	"influxinv/cmd/influxinv/cmdutil"
	"influxinv/internal/influx"
	"influxinv/internal/inventory"
	"influxinv/internal/telemetry"

	"github.com/spf13/cobra"
)

// TagsCmd lists the distinct host tag values of a container.
func TagsCmd(root *cmdutil.RootOptions) *cobra.Command {
	var (
		flags cmdutil.ConnFlags
		mf    measurementFlags
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List distinct host tag values",
		Args:  cmdutil.UsageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := mf.exclusive(); err != nil {
				return err
			}
			validate := func(conn cmdutil.Conn) error {
				return validateTags(conn, mf)
			}
			opts := sessionOptions{
				command: "tags",
				phases: func(kind influx.Kind) []telemetry.Phase {
					return []telemetry.Phase{listPhase(kind), {ID: "tags", Title: "querying host tag values"}}
				},
			}
			return withSession(cmd, root, &flags, validate, opts, func(ctx context.Context, s *session) error {
				if !mf.skipListing {
					s.engine.ListContainers(ctx, inventory.ListOptions{Measurements: true})
				}
				if s.conn.Container == "" {
					return nil
				}
				_, _ = s.engine.ReportTagValues(ctx, s.conn.Container, mf.measurement)
				return nil
			})
		},
	}

	flags.Bind(cmd)
	mf.bind(cmd)
	return cmd
}

func validateTags(conn cmdutil.Conn, mf measurementFlags) error {
	selected := mf.measurement != "" || mf.all
	switch {
	case selected && conn.Container == "":
		return cmdutil.Usagef("%s is required when using --measurement or --all-measurement.", conn.ContainerFlag())
	case !selected && conn.Container != "":
		return cmdutil.Usagef("Please specify --measurement or --all-measurement when providing %s.", conn.ContainerFlag())
	}
	return nil
}
