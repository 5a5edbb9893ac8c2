package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wangxy/wfmaster/internal/config"
	"github.com/wangxy/wfmaster/internal/logger"
	"github.com/wangxy/wfmaster/internal/pipeline"
	"github.com/wangxy/wfmaster/internal/reconcile"
	"github.com/wangxy/wfmaster/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanges = 2
)

var (
	flagType      string
	flagSeason    string
	flagConfigDir string
	flagOutputDir string
	flagFormat    string
	flagFromBatch bool
	flagVerbose   bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wfmaster",
		Short: "Maintain a master football schedule from worldfootball.net",
		Long: `Scrapes league and cup schedules from worldfootball.net, reconciles
them against the stored master schedule, and exports the schedule workbook.
Tracks fixtures across runs and reports what changed since last run.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagType, "type", pipeline.KindLeague, "Competition table: league or cup")
	pf.StringVar(&flagSeason, "season", "", "Override the mapping-table season (e.g. 2025-2026)")
	pf.StringVar(&flagConfigDir, "config-dir", "", "Directory holding the mapping tables")
	pf.StringVar(&flagOutputDir, "output-dir", "", "Directory for exported workbooks and the log")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newRunCmd(), newScrapeCmd())

	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape, reconcile and export one competition table",
		RunE:  runPipeline,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagFromBatch, "from-batch", false, "Reuse the saved raw batch instead of fetching")
	return cmd
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Fetch one competition table and save the raw batch workbook",
		RunE:  runScrape,
	}
}

// setup loads config, applies flag overrides and builds the runner.
func setup() (*config.Config, *pipeline.Runner, error) {
	kind := strings.ToLower(strings.TrimSpace(flagType))
	if kind != pipeline.KindLeague && kind != pipeline.KindCup {
		return nil, nil, fmt.Errorf("invalid --type: %s (must be 'league' or 'cup')", flagType)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if flagConfigDir != "" {
		cfg.ConfigDir = flagConfigDir
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.OutputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	runner := pipeline.New(cfg, log, scraper.New(cfg.BaseURL, log))
	runner.Season = strings.TrimSpace(flagSeason)
	return cfg, runner, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, runner, err := setup()
	if err != nil {
		return err
	}

	kind := strings.ToLower(strings.TrimSpace(flagType))
	result, err := runner.Run(kind, flagFromBatch)
	if err != nil {
		return err
	}

	out := &OutputResult{
		RanAt:    time.Now().UTC(),
		Kind:     kind,
		Workbook: cfg.OutputPath(kind),
		Changed:  result.Changed(),
	}
	for _, s := range result.Summaries {
		out.Competitions = append(out.Competitions, CompetitionResult{
			Competition: s.CompetitionID,
			Added:       s.Counts[reconcile.Added],
			Rescheduled: s.Counts[reconcile.Rescheduled],
			Status:      s.Counts[reconcile.StatusChanged],
			Scores:      s.Counts[reconcile.ScoreUpdated],
			Unchanged:   s.Counts[reconcile.Unchanged],
			Dropped:     s.Dropped,
			Duplicates:  s.DuplicateIDs,
			Unmapped:    s.Unmapped,
		})
	}

	if err := WriteOutput(os.Stdout, out, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if out.Changed > 0 {
		os.Exit(ExitChanges)
	}
	os.Exit(ExitSuccess)
	return nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, runner, err := setup()
	if err != nil {
		return err
	}

	kind := strings.ToLower(strings.TrimSpace(flagType))
	rows, err := runner.Scrape(kind)
	if err != nil {
		return err
	}

	fmt.Printf("Saved %d rows to %s\n", len(rows), cfg.RawBatchPath(kind))
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
