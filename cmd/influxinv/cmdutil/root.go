package cmdutil

import (
	"influxinv/cmd/influxinv/ui"
	"influxinv/internal/logging"

	"github.com/spf13/cobra"
)

// RootOptions are the persistent flags shared by every command.
type RootOptions struct {
	Debug     bool
	LogLevel  string
	LogFormat string
	NoColor   bool
	Progress  bool
}

func (o *RootOptions) Bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolVar(&o.Debug, "debug", false, "Enable debug logging (same as --log-level debug)")
	flags.StringVar(&o.LogLevel, "log-level", logging.LevelWarn, "Log level: debug, info, warn, error")
	flags.StringVar(&o.LogFormat, "log-format", logging.FormatText, "Log format: text or json")
	flags.BoolVar(&o.NoColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&o.Progress, "progress", false, "Print step progress to stderr")
}

// Apply configures logging and console styling. Invalid values are usage
// errors.
func (o *RootOptions) Apply() error {
	level := o.LogLevel
	if o.Debug {
		level = logging.LevelDebug
	}
	if err := logging.Configure(level, o.LogFormat); err != nil {
		return Usagef("%v", err)
	}
	ui.ConfigureColor(o.NoColor)
	return nil
}

// NewProgress returns the progress printer for cmd, or nil when progress
// output is off.
func (o *RootOptions) NewProgress(cmd *cobra.Command) *ui.Progress {
	if o == nil || !o.Progress {
		return nil
	}
	return ui.NewProgress(cmd.ErrOrStderr())
}
