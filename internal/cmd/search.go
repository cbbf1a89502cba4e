package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/grape/internal/config"
	"github.com/harrison/grape/internal/fileutil"
	"github.com/harrison/grape/internal/history"
	"github.com/harrison/grape/internal/logger"
	"github.com/harrison/grape/internal/output"
	"github.com/harrison/grape/internal/pattern"
	"github.com/harrison/grape/internal/queue"
	"github.com/harrison/grape/internal/report"
	"github.com/harrison/grape/internal/search"
	"github.com/harrison/grape/internal/worker"
)

// reportTimeout bounds how long a run waits for another process holding the
// report lock.
const reportTimeout = 10 * time.Second

func addSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolP("ignore-case", "i", false, "Match case-insensitively")
	f.Bool("no-capture", false, "Treat unnamed groups as non-capturing")
	f.BoolP("line-number", "n", false, "Prefix each matching line with its line number")
	f.BoolP("count", "c", false, "Print only the number of matching lines per file")
	f.BoolP("files-with-matches", "l", false, "Print only names of files with a match")
	f.BoolP("files-without-match", "L", false, "Print only names of files without a match")
	f.BoolP("with-filename", "H", false, "Always prefix output with the file name")
	f.Bool("no-filename", false, "Never prefix output with the file name")
	f.BoolP("recursive", "r", false, "Search directories recursively")
	f.StringSlice("include", nil, "Search only files whose base name matches this glob (repeatable)")
	f.StringSlice("exclude", nil, "Skip files whose base name matches this glob (repeatable)")
	f.StringSlice("exclude-dir", nil, "Skip directories matching this glob (repeatable, adds to config)")
	f.IntP("workers", "j", -1, "Number of search workers (0 = one per CPU, -1 = use config)")
	f.String("color", "", "Colour policy: auto, always or never (default: config, then auto)")
	f.String("match-timeout", "", "Time limit for matching a single line (e.g. 100ms)")
	f.String("config", "", "Path to config file (default: .grape/config.yaml)")
	f.String("report", "", "Write a YAML summary of the run to this file")
	f.Bool("no-history", false, "Do not record this run in the history database")
	f.String("log-level", "", "Diagnostic level: trace, debug, info, warn, error")
}

// loadConfig reads the config file named by --config, or .grape/config.yaml
// in the working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfigFromDir(wd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyFlagOverrides merges explicitly set flags over the config values.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if workers, _ := flags.GetInt("workers"); workers >= 0 {
		cfg.Workers = workers
	}
	if c, _ := flags.GetString("color"); c != "" {
		cfg.Color = c
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if raw, _ := flags.GetString("match-timeout"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid --match-timeout %q: %w", raw, err)
		}
		cfg.MatchTimeout = timeout
	}
	if dirs, _ := flags.GetStringSlice("exclude-dir"); len(dirs) > 0 {
		cfg.ExcludeDirs = append(append([]string{}, cfg.ExcludeDirs...), dirs...)
	}
	if noHistory, _ := flags.GetBool("no-history"); noHistory {
		cfg.History.Enabled = false
	}

	return cfg.Validate()
}

// displayOptions picks the prefix settings. The file name is shown unless a
// single file is searched; -H and --no-filename override that.
func displayOptions(cmd *cobra.Command, mode output.Mode, roots []string) (output.DisplayOptions, error) {
	flags := cmd.Flags()
	withName, _ := flags.GetBool("with-filename")
	noName, _ := flags.GetBool("no-filename")
	lineNumber, _ := flags.GetBool("line-number")

	if withName && noName {
		return output.DisplayOptions{}, fmt.Errorf("-H/--with-filename and --no-filename are mutually exclusive")
	}

	opts := output.DisplayOptions{
		ShowFileName:   !fileutil.IsSingleFile(roots),
		ShowLineNumber: lineNumber && mode == output.Normal,
	}
	switch {
	case withName:
		opts.ShowFileName = true
	case noName:
		opts.ShowFileName = false
	}
	return opts, nil
}

// stdoutFile returns w as an *os.File when it is one, for terminal detection.
func stdoutFile(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}

// searchCommand implements the root command: grape PATTERN [PATH...]
func searchCommand(cmd *cobra.Command, args []string) error {
	started := time.Now()
	flags := cmd.Flags()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return err
	}

	count, _ := flags.GetBool("count")
	withMatches, _ := flags.GetBool("files-with-matches")
	withoutMatch, _ := flags.GetBool("files-without-match")
	mode, err := output.ModeFromFlags(count, withMatches, withoutMatch)
	if err != nil {
		return err
	}

	policy, err := output.ParseColorPolicy(cfg.Color)
	if err != nil {
		return err
	}

	ignoreCase, _ := flags.GetBool("ignore-case")
	noCapture, _ := flags.GetBool("no-capture")
	pat, err := pattern.Compile(args[0], pattern.Options{
		IgnoreCase:   ignoreCase,
		NoCapture:    noCapture,
		MatchTimeout: cfg.MatchTimeout,
	})
	if err != nil {
		return err
	}

	roots := args[1:]
	if len(roots) == 0 {
		roots = []string{search.StdinPath}
	}

	display, err := displayOptions(cmd, mode, roots)
	if err != nil {
		return err
	}

	recursive, _ := flags.GetBool("recursive")
	include, _ := flags.GetStringSlice("include")
	exclude, _ := flags.GetStringSlice("exclude")
	filter, err := fileutil.NewFilter(fileutil.ScanOptions{
		Recursive:     recursive,
		Include:       include,
		Exclude:       exclude,
		ExcludeDirs:   cfg.ExcludeDirs,
		IncludeHidden: cfg.IncludeHidden,
	})
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	out := cmd.OutOrStdout()

	engine, err := search.NewEngine(search.Config{
		Pattern: pat,
		Mode:    mode,
		Display: display,
		Sink:    output.NewSink(out),
		Styler:  output.StylerFor(policy, stdoutFile(out)),
		Logger:  log,
		Stdin:   cmd.InOrStdin(),
	})
	if err != nil {
		return err
	}

	pool := worker.NewPool(cfg.Workers, log)
	log.Debugf("searching %d root(s) for %q in %s mode with %d worker(s)", len(roots), pat.String(), mode, pool.Size())

	q := queue.New[search.WorkItem]()
	go func() {
		defer q.Close()
		nextID := 0
		for _, err := range filter.Enumerate(roots, func(path string) {
			q.Push(search.WorkItem{ID: nextID, Path: path})
			nextID++
		}) {
			log.Errorf("%v", err)
		}
	}()

	worker.Run(pool, q, engine.Search)

	stats := engine.Stats().Snapshot()
	log.Debugf("searched %d file(s), %d matched, %d error(s)", stats.FilesSearched, stats.FilesMatched, stats.Errors())

	run := &history.Run{
		ID:         history.NewRunID(),
		Pattern:    pat.String(),
		Mode:       mode.String(),
		IgnoreCase: ignoreCase,
		Workers:    pool.Size(),
		Paths:      absPaths(roots),
		StartedAt:  started,
		Duration:   time.Since(started),
		Stats:      stats,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.History.Enabled {
		if err := recordRun(ctx, cfg, run); err != nil {
			log.Warnf("failed to record run history: %v", err)
		}
	}

	if reportPath, _ := flags.GetString("report"); reportPath != "" {
		reportCtx, cancel := context.WithTimeout(ctx, reportTimeout)
		defer cancel()
		if err := report.Write(reportCtx, reportPath, run); err != nil {
			log.Warnf("%v", err)
		}
	}

	return nil
}

// recordRun stores run in the history database and prunes old rows.
func recordRun(ctx context.Context, cfg *config.Config, run *history.Run) error {
	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Record(ctx, run); err != nil {
		return err
	}
	if _, err := store.Prune(ctx, cfg.History.KeepRuns); err != nil {
		return err
	}
	return nil
}

func absPaths(paths []string) []string {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == search.StdinPath {
			abs = append(abs, p)
			continue
		}
		if a, err := filepath.Abs(p); err == nil {
			p = a
		}
		abs = append(abs, p)
	}
	return abs
}
