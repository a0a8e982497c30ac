package contextcmd

import (
	"fmt"

	"influxinv/cmd/influxinv/cmdutil"
	"influxinv/cmd/influxinv/ui"
	"influxinv/config"

	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		flags cmdutil.ProfileFlags
		use   bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a connection profile",
		Args:  cmdutil.UsageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			profile := flags.Profile()
			if profile.URL == "" {
				return cmdutil.Usagef("--url is required")
			}
			if profile.Token != "" && profile.Org == "" {
				return cmdutil.Usagef("--org is required with --token")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Set(name, profile)
			if use || cfg.CurrentContext == "" {
				cfg.CurrentContext = name
			}
			if err := cfg.Save(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.SuccessMsg("Context %s saved.", ui.Accent(name)))
			fmt.Fprint(out, ui.KeyValues("  ",
				ui.KV("url", profile.URL),
				ui.KV("api", apiLabel(profile)),
				ui.KV("auth", credentials(profile)),
				ui.KV("current", fmt.Sprint(cfg.CurrentContext == name)),
			))
			return nil
		},
	}

	flags.Bind(cmd)
	cmd.Flags().BoolVar(&use, "use", false, "Make this the current context")
	return cmd
}
