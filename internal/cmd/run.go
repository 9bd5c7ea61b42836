package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/filescout/internal/config"
	"github.com/harrison/filescout/internal/filelock"
	"github.com/harrison/filescout/internal/history"
	"github.com/harrison/filescout/internal/logger"
	"github.com/harrison/filescout/internal/task"
)

// defaultConfigPath is consulted when --config is not given.
var defaultConfigPath = filepath.Join(".filescout", "config.yaml")

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search the source folders and copy matches to the destination",
		Long: `Search every source folder recursively for target files matching the
given keywords, then copy the matches into the destination folder.

Keywords are either pattern keywords (of, uf, if) or dotted version
numbers (5.4.4). Spreadsheet files need both a version association and a
pattern keyword in the filename; data files match on the version
association alone.

Result sets larger than the confirmation threshold prompt before any
copying begins.

Examples:
  filescout run --source /data/vendorA --source /data/vendorB \
      --keyword OF --keyword 5.4.4 --dest /archive/batch

  filescout run --source /data --keyword 5.4.4 --dest /archive --yes`,
		RunE: runCommand,
	}

	cmd.Flags().StringArrayP("source", "s", nil, "Source folder to search (repeatable)")
	cmd.Flags().StringArrayP("keyword", "k", nil, "Search keyword: pattern or version number (repeatable)")
	cmd.Flags().StringP("dest", "d", "", "Destination folder for copies")
	cmd.Flags().String("config", "", "Path to config file (default: .filescout/config.yaml)")
	cmd.Flags().String("log-level", "", "Console verbosity: debug, info, warn, error")
	cmd.Flags().BoolP("yes", "y", false, "Skip the large-result-set confirmation prompt")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	sources, _ := cmd.Flags().GetStringArray("source")
	keywords, _ := cmd.Flags().GetStringArray("keyword")
	dest, _ := cmd.Flags().GetString("dest")
	autoYes, _ := cmd.Flags().GetBool("yes")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}

	// User input errors block the task before it starts.
	if err := validateInputs(sources, keywords, dest); err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("cannot create destination folder %s: %w", dest, err)
	}

	// One task at a time per destination.
	lock := filelock.NewRunLock(dest)
	acquired, err := lock.TryAcquire()
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("another filescout task is already running against %s", dest)
	}
	defer lock.Release()

	printer := logger.NewPrinter(logger.NewConsoleLogger(cmd.OutOrStdout(), level))
	sink := newCLISink(printer, cmd.InOrStdin(), cmd.OutOrStdout(), autoYes)

	worker := task.New(sink, task.Options{
		Extensions:        cfg.Extensions,
		PatternVocabulary: cfg.PatternKeywords,
		ConfirmThreshold:  cfg.ConfirmThreshold,
	})

	// SIGINT/SIGTERM request cooperative cancellation; the task ends as
	// stopped with partial counts.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupt received, stopping after the current file...")
			worker.Stop()
		}
	}()

	worker.Run(sources, keywords, dest)
	summary := worker.Summary()

	if cfg.History.Enabled && !noHistory {
		if err := recordRun(cfg.History.DBPath, summary, sources, keywords, dest); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not record run history: %v\n", err)
		}
	}

	if summary.Outcome == task.OutcomeFailed {
		return fmt.Errorf("task failed; see log output above")
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadConfig(defaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// validateInputs enforces the blocking user-input checks: at least one
// existing source folder, at least one keyword, and a destination path.
func validateInputs(sources, keywords []string, dest string) error {
	if len(sources) == 0 {
		return fmt.Errorf("no source folders given; use --source at least once")
	}
	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("source folder %s is not accessible: %w", src, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("source %s is not a directory", src)
		}
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords given; use --keyword at least once")
	}
	if dest == "" {
		return fmt.Errorf("no destination folder given; use --dest")
	}
	return nil
}

func recordRun(dbPath string, summary task.Summary, sources, keywords []string, dest string) error {
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.RecordRun(history.Run{
		ID:           summary.TaskID,
		StartedAt:    summary.StartedAt,
		Sources:      sources,
		Keywords:     keywords,
		Destination:  dest,
		Matched:      summary.Matched,
		FilesCopied:  summary.FilesCopied,
		DurationSecs: summary.Duration.Seconds(),
		Outcome:      summary.Outcome,
	})
}
