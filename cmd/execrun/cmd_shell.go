package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/execkit/process"
)

func newShellCmd(global *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "shell [flags] SCRIPT [ARG...]",
		Short: "Run a script with the configured shell",
		Long: `Run SCRIPT with "execution.shell -c". Remaining arguments become the
script's positional parameters $1, $2 and so on.`,
		Example: `  execrun shell 'echo "$1" | tr a-z A-Z' hello
  execrun shell --timeout 10 'make && make test'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			pc, err := flags.command(c.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			sc := process.NewAdapter(cfg.Execution).ShellCommand(args[0], args[1:]...)
			pc.Binary, pc.Args = sc.Binary, sc.Args
			return runCommand(c.Context(), cfg, &flags, pc, stdout, stderr)
		},
	}
	flags.register(cmd)
	return cmd
}
