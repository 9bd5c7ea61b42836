package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harrison/filescout/internal/cancel"
	"github.com/harrison/filescout/internal/events"
	"github.com/harrison/filescout/internal/keyword"
	"github.com/harrison/filescout/internal/logger"
	"github.com/harrison/filescout/internal/search"
)

// NewSearchCommand creates the search command: a dry run that lists what a
// copy task would match, without touching any destination.
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List matching files without copying anything",
		Long: `Search every source folder recursively and list the files a run would
copy, including the keyword rule each file matched and the destination
subfolder it would land in.

Example:
  filescout search --source /data --keyword OF --keyword 5.4.4`,
		RunE: searchCommand,
	}

	cmd.Flags().StringArrayP("source", "s", nil, "Source folder to search (repeatable)")
	cmd.Flags().StringArrayP("keyword", "k", nil, "Search keyword: pattern or version number (repeatable)")
	cmd.Flags().String("config", "", "Path to config file (default: .filescout/config.yaml)")
	cmd.Flags().String("log-level", "", "Console verbosity: debug, info, warn, error")

	return cmd
}

func searchCommand(cmd *cobra.Command, args []string) error {
	sources, _ := cmd.Flags().GetStringArray("source")
	keywords, _ := cmd.Flags().GetStringArray("keyword")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}

	if len(sources) == 0 {
		return fmt.Errorf("no source folders given; use --source at least once")
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords given; use --keyword at least once")
	}

	params := keyword.Parse(keywords, cfg.PatternKeywords)
	if params.Empty() {
		return fmt.Errorf("no valid keywords among %v; expected pattern keywords %v or version numbers like 5.4.4",
			keywords, cfg.PatternKeywords)
	}

	roots := make([]string, len(sources))
	for i, s := range sources {
		roots[i] = filepath.Clean(s)
	}

	printer := logger.NewPrinter(logger.NewConsoleLogger(cmd.OutOrStdout(), level))
	logFn := events.LogFunc(printer.Log)

	_, matches := search.Run(search.Options{
		Roots:      roots,
		Extensions: cfg.Extensions,
		Params:     params,
	}, cancel.NewToken(), logFn)

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "No matching files found.")
		return nil
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Path < matches[j].Path })
	for _, m := range matches {
		target := "<destination root>"
		if m.LastFolder != "" {
			target = m.LastFolder + string(filepath.Separator)
		}
		fmt.Fprintf(out, "%s  (rule: %s, num: %s) -> %s\n", m.Path, m.Key, m.Number, target)
	}
	fmt.Fprintf(out, "%d matching files.\n", len(matches))
	return nil
}
