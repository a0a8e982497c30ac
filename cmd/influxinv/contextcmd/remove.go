package contextcmd

import (
	"fmt"

	"influxinv/cmd/influxinv/cmdutil"
	"influxinv/cmd/influxinv/ui"
	"influxinv/config"

	"github.com/spf13/cobra"
)

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Short:   "Remove a connection profile",
		Aliases: []string{"rm"},
		Args:    cmdutil.UsageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Remove(name); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("Context %s removed.", ui.Accent(name)))
			return nil
		},
	}
}
