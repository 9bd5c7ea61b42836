package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/filescout/internal/filelock"
	"github.com/harrison/filescout/internal/history"
)

// NewHistoryCommand creates the history command for inspecting past runs.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent copy runs",
		Long: `List recent copy runs recorded in the history database, newest first.

Examples:
  filescout history
  filescout history --limit 50
  filescout history --export runs.json`,
		RunE: historyCommand,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	cmd.Flags().String("export", "", "Write all recorded runs to this file as JSON")
	cmd.Flags().String("config", "", "Path to config file (default: .filescout/config.yaml)")

	return cmd
}

func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.History.DBPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "No run history recorded yet.")
			return nil
		}
		return fmt.Errorf("cannot access history database: %w", err)
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if exportPath, _ := cmd.Flags().GetString("export"); exportPath != "" {
		data, err := store.ExportJSON()
		if err != nil {
			return fmt.Errorf("export history: %w", err)
		}
		if err := filelock.AtomicWrite(exportPath, data, 0644); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported run history to %s\n", exportPath)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No run history recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %-11s copied %d/%d in %.2fs -> %s (keywords: %v)\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Outcome, run.FilesCopied, run.Matched, run.DurationSecs,
			run.Destination, run.Keywords)
	}
	return nil
}
