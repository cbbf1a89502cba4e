package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/grape/internal/history"
)

// NewHistoryCommand creates the 'grape history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent search runs",
		Long: `List search runs recorded in the history database, newest first.

Runs are recorded only when history.enabled is set in the config file.
The database lives at history.db_path, or $GRAPE_HOME/history.db
(default ~/.grape/history.db).

To search for the literal pattern "history", put it after --:
  grape -- history file.txt`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")
	cmd.Flags().String("config", "", "Path to config file (default: .grape/config.yaml)")

	return cmd
}

// runHistory executes the history command
func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return fmt.Errorf("failed to get history database path: %w", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No runs recorded (database %s does not exist)\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(out, "%d run(s) from %s\n\n", len(runs), dbPath)
	for _, run := range runs {
		fmt.Fprint(out, formatRun(run))
	}
	return nil
}

func formatRun(run *history.Run) string {
	var sb strings.Builder
	ignoreCase := ""
	if run.IgnoreCase {
		ignoreCase = " -i"
	}
	fmt.Fprintf(&sb, "%s  %s  %q%s (%s, %d workers)\n",
		run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		run.ID, run.Pattern, ignoreCase, run.Mode, run.Workers)
	fmt.Fprintf(&sb, "  paths: %s\n", strings.Join(run.Paths, " "))
	fmt.Fprintf(&sb, "  files: %d searched, %d matched; lines: %d matched; errors: %d; took %s\n\n",
		run.Stats.FilesSearched, run.Stats.FilesMatched, run.Stats.MatchedLines,
		run.Stats.Errors(), run.Duration.Round(time.Millisecond))
	return sb.String()
}
