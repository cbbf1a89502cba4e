package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root grape command. Running it searches; the
// history subcommand lists earlier runs.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grape [flags] PATTERN [PATH...]",
		Short: "Search files in parallel for lines matching a regular expression",
		Long: `grape searches each PATH for lines matching PATTERN, one file per worker.

With no PATH, standard input is searched. Directories are searched only with
--recursive. Output modes are selected with -c (count matching lines per file),
-l (list files with a match) and -L (list files without a match); without any of
them every matching line is printed with its matches highlighted.

Configuration is loaded from .grape/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  grape 'ab+c' notes.txt
  grape -n -i error logs/*.log
  grape -r -c --include '*.go' func .
  grape -L TODO -r src
  cat file | grape -n pattern`,
		Args:    cobra.MinimumNArgs(1),
		Version: Version,
		RunE:    searchCommand,
		// main prints the error; silence cobra's copy and the usage text
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addSearchFlags(cmd)

	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
