package contextcmd

import (
	"fmt"
	"sort"

	"influxinv/cmd/influxinv/cmdutil"
	"influxinv/cmd/influxinv/ui"
	"influxinv/config"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connection profiles",
		Args:  cmdutil.UsageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(cfg.Contexts) == 0 {
				fmt.Fprintln(out, ui.WarnMsg("No contexts configured. Add one with %s.", ui.Accent("influxinv context add")))
				return nil
			}

			names := make([]string, 0, len(cfg.Contexts))
			for name := range cfg.Contexts {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				c := cfg.Contexts[name]
				current := ""
				if name == cfg.CurrentContext {
					current = "*"
				}
				rows = append(rows, []string{current, name, apiLabel(c), c.URL, credentials(c)})
			}

			fmt.Fprintln(out, ui.Table([]string{"", "NAME", "API", "URL", "AUTH"}, rows))
			return nil
		},
	}
}

func apiLabel(c config.Context) string {
	api := c.API
	if api == "" {
		api = "v1"
		if c.Token != "" {
			api = "v2"
		}
	}
	if api == "v1" && c.Transport != "" {
		return api + "/" + c.Transport
	}
	if api == "v2" && c.Flux {
		return api + "/flux"
	}
	return api
}

func credentials(c config.Context) string {
	switch {
	case c.Token != "":
		return "token " + ui.Mask(c.Token) + " org " + c.Org
	case c.Username != "":
		return "user " + c.Username
	default:
		return ui.Muted("none")
	}
}
