package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"influxinv/cmd/influxinv/cmdutil"
	"influxinv/cmd/influxinv/contextcmd"
	"influxinv/cmd/influxinv/inventorycmd"
	"influxinv/cmd/influxinv/ui"
	"influxinv/internal/buildinfo"
	"influxinv/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	if err := logging.Configure(logging.LevelWarn, logging.FormatText); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(cmdutil.ExitRuntime)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmdutil.AsUsage(newRootCmd().ExecuteContext(ctx))
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("Error: %v", err))
	}
	os.Exit(cmdutil.ExitCode(err))
}

func newRootCmd() *cobra.Command {
	var opts cmdutil.RootOptions

	root := &cobra.Command{
		Use:           "influxinv",
		Short:         "Inventory InfluxDB databases, buckets, measurements and hosts",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.Apply()
		},
	}
	opts.Bind(root)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.Usagef("%v", err)
	})

	root.AddCommand(inventorycmd.ListCmd(&opts))
	root.AddCommand(inventorycmd.TagsCmd(&opts))
	root.AddCommand(inventorycmd.HostsCmd(&opts))
	root.AddCommand(contextcmd.Cmd())
	return root
}
