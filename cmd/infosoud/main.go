package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkadlec/infosoud/internal/cases"
	"github.com/mkadlec/infosoud/internal/checkpoint"
	"github.com/mkadlec/infosoud/internal/config"
	"github.com/mkadlec/infosoud/internal/courts"
	"github.com/mkadlec/infosoud/internal/database"
	"github.com/mkadlec/infosoud/internal/enrich"
	"github.com/mkadlec/infosoud/internal/infosoud"
	"github.com/mkadlec/infosoud/internal/report"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "infosoud",
	Short:   "Czech court-decision timeline enrichment",
	Long:    "infosoud derives lookup URLs for court decisions, scrapes each case's proceeding timeline from infosoud.justice.cz, and accumulates the results in a resumable checkpoint.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(dedupeCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(reportCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("infosoud", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/infosoud/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point at your decisions export and data directory.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show case table, checkpoint, and run status",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := cases.Load(cfg.CaseTablePath())
		if err != nil {
			fmt.Printf("Case table: not available (%v)\n", err)
			fmt.Println("Run 'infosoud prepare' to create it from the decisions export.")
			return nil
		}

		store := checkpoint.New(cfg.CheckpointPath())
		done, err := store.DoneSet()
		if err != nil {
			return fmt.Errorf("reading checkpoint: %w", err)
		}

		fmt.Printf("Case table: %d cases (%s)\n", table.Len(), cfg.CaseTablePath())
		fmt.Printf("Checkpoint: %d enriched, %d pending (%s)\n",
			len(done), table.Len()-len(done), cfg.CheckpointPath())

		db, err := database.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("reading run history: %w", err)
		}
		fmt.Println("\nRun history:")
		fmt.Printf("  Runs: %d\n", stats.TotalRuns)
		fmt.Printf("  Cases processed: %d\n", stats.CasesProcessed)
		fmt.Printf("  Fetch failures: %d\n", stats.FetchFailures)
		if stats.LastFinishedAt != "" {
			fmt.Printf("  Last finished: %s\n", stats.LastFinishedAt)
		}
		return nil
	},
}

// --- prepare command ---

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build the case table from the raw decisions export",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := cases.Load(cfg.DecisionsPath())
		if err != nil {
			return fmt.Errorf("loading decisions export: %w", err)
		}

		reg, err := loadCourts()
		if err != nil {
			return err
		}
		builder := infosoud.NewBuilder(cfg.Fetch.BaseURL, reg)

		table, res, err := cases.Prepare(raw, builder)
		if err != nil {
			return fmt.Errorf("preparing case table: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(cfg.CaseTablePath()), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		if err := table.Write(cfg.CaseTablePath()); err != nil {
			return fmt.Errorf("writing case table: %w", err)
		}

		fmt.Println("Case table prepared:")
		fmt.Printf("  Kept: %d\n", res.Kept)
		fmt.Printf("  Dropped (unknown court): %d\n", res.UnknownCourts)
		fmt.Printf("  Dropped (bad case number): %d\n", res.BadCaseNumber)
		fmt.Printf("  Written to: %s\n", cfg.CaseTablePath())
		return nil
	},
}

// --- validate and dedupe commands ---

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the checkpoint against the case table",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := cases.Load(cfg.CaseTablePath())
		if err != nil {
			return fmt.Errorf("loading case table: %w", err)
		}
		if err := checkpoint.New(cfg.CheckpointPath()).Validate(table.URLSet()); err != nil {
			return err
		}
		fmt.Println("Checkpoint is valid.")
		return nil
	},
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate rows from the checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := checkpoint.New(cfg.CheckpointPath()).Deduplicate()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d duplicate rows.\n", removed)
		return nil
	},
}

// --- enrich command ---

var chunkSize int

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch case timelines chunk by chunk, resuming from the checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := cases.Load(cfg.CaseTablePath())
		if err != nil {
			return fmt.Errorf("loading case table: %w", err)
		}

		db, err := database.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer db.Close()

		stop := &enrich.StopFlag{}
		fmt.Println("Type 'q' and press Enter to stop after the current chunk.")
		go enrich.ListenForQuit(os.Stdin, stop)

		size := chunkSize
		if size <= 0 {
			size = cfg.Enrich.ChunkSize
		}

		runner := &enrich.Runner{
			Table:     table,
			Store:     checkpoint.New(cfg.CheckpointPath()),
			Fetcher:   infosoud.NewClient(time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second, cfg.Fetch.UserAgent),
			ChunkSize: size,
			Stop:      stop,
			History:   db,
		}

		result, err := runner.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Println("\nEnrichment finished:")
		fmt.Printf("  Chunks committed: %d\n", result.Chunks)
		fmt.Printf("  Cases processed: %d\n", result.Processed)
		fmt.Printf("  Fetch failures: %d\n", result.Failed)
		if result.Stopped {
			fmt.Println("  Stopped early on request; run 'infosoud enrich' again to resume.")
		}
		return nil
	},
}

func init() {
	enrichCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Override chunk size (cases per commit)")
}

// --- report command ---

var reportHTML bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a coverage report for the enrichment progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := cases.Load(cfg.CaseTablePath())
		if err != nil {
			return fmt.Errorf("loading case table: %w", err)
		}

		var stored *cases.Table
		store := checkpoint.New(cfg.CheckpointPath())
		if store.Exists() {
			stored, err = cases.Load(store.Path())
			if err != nil {
				return fmt.Errorf("loading checkpoint: %w", err)
			}
		}

		var runs []database.Run
		if db, err := database.Open(cfg.DatabasePath()); err == nil {
			runs, _ = db.GetRecentRuns(10)
			db.Close()
		}

		markdown := report.Markdown(report.Compute(table, stored, runs))

		mdPath := filepath.Join(cfg.GetDataDir(), "report.md")
		if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Wrote %s\n", mdPath)

		if reportHTML {
			html, err := report.HTML(markdown)
			if err != nil {
				return err
			}
			htmlPath := filepath.Join(cfg.GetDataDir(), "report.html")
			if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
				return fmt.Errorf("writing HTML report: %w", err)
			}
			fmt.Printf("Wrote %s\n", htmlPath)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "Also render the report as HTML")
}

func loadCourts() (*courts.Registry, error) {
	if cfg.Paths.CourtMap != "" {
		reg, err := courts.Load(cfg.Paths.CourtMap)
		if err != nil {
			return nil, err
		}
		return reg, nil
	}
	return courts.LoadDefault()
}
