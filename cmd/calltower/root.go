package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "calltower",
		Short: "Resolve calls and name accesses against declaration worlds",
		Long: `calltower resolves the call sites described in world files (.yaml) or
golden archives (.txtar) with the tower resolution engine and reports
which declaration each name binds to.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (default: calltower.yaml in the working directory or a parent)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&a.color, "color", "", "color output: auto, always, never")
	flags.BoolVar(&a.trace, "trace", false, "print resolution spans to stderr")
	flags.BoolVar(&a.metrics, "metrics", false, "print resolution counters to stderr after the run")

	root.AddCommand(
		newResolveCmd(a),
		newCheckCmd(a),
		newRunsCmd(a),
	)
	return root
}
