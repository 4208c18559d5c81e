// uci is the command-line front end for the UCI configuration engine.
//
// It reads and writes UCI package files in a config directory and
// offers the familiar get/set/show/commit surface plus an interactive
// shell and a batch mode.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ucikit/uci/pkg/cli"
	"github.com/ucikit/uci/pkg/logging"
	"github.com/ucikit/uci/pkg/ucistore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configDir string
	logLevel  string
	shell     *cli.Shell
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "uci",
		Short:         "read and modify UCI configuration files",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Setup(os.Stderr, a.logLevel); err != nil {
				return err
			}
			a.shell = cli.New(ucistore.New(a.configDir), os.Stdout)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configDir, "config-dir", "c", ucistore.DefaultDir, "UCI config directory")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.passthrough("get <package>.<section>[.<option>]", "print a section type or option value", cobra.ExactArgs(1)),
		a.passthrough("set <package>.<section>.<option>=<value>", "set an option value", cobra.MinimumNArgs(1)),
		a.passthrough("add <package> <section-type>", "append an anonymous section", cobra.ExactArgs(2)),
		a.passthrough("add_list <package>.<section>.<option>=<value>", "append a list element", cobra.MinimumNArgs(1)),
		a.passthrough("delete <package>.<section>[.<option>]", "remove an option or section", cobra.ExactArgs(1)),
		a.passthrough("show [<package>[.<section>]]", "print configuration in dotted notation", cobra.MaximumNArgs(1)),
		a.passthrough("export <package>", "print a package as canonical UCI text", cobra.ExactArgs(1)),
		a.passthrough("commit [<package>]", "persist pending changes", cobra.MaximumNArgs(1)),
		a.passthrough("revert <package>", "discard pending changes", cobra.ExactArgs(1)),
		a.passthrough("packages", "list packages in the config directory", cobra.NoArgs),
		&cobra.Command{
			Use:   "batch",
			Short: "execute uci commands from stdin",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.shell.Batch(cmd.InOrStdin())
			},
		},
		&cobra.Command{
			Use:   "shell",
			Short: "start the interactive shell",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.shell.Run()
			},
		},
	)
	return root
}

// passthrough builds a cobra command that forwards to the shared shell
// dispatcher, so the one-shot CLI and the interactive shell behave
// identically.
func (a *app) passthrough(use, short string, argsCheck cobra.PositionalArgs) *cobra.Command {
	name := strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  argsCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			line := name
			if len(args) > 0 {
				line = fmt.Sprintf("%s %s", name, strings.Join(args, " "))
			}
			return a.shell.Execute(line)
		},
	}
}
