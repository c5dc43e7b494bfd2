package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"parkwait-collector/internal/collector"
	"parkwait-collector/internal/config"
	"parkwait-collector/internal/database"
	"parkwait-collector/internal/metrics"
	"parkwait-collector/internal/queuetimes"
)

var errParksFailed = errors.New("one or more parks failed to collect")

var (
	checkFlag  bool
	dryRunFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "parkwait",
	Short: "Collect theme park ride wait times into SQLite",
	Long: `parkwait fetches the current queue times of every configured park from
Queue-Times and appends one reading per ride to the local SQLite database.
Run it on a schedule (cron, systemd timer); each invocation is one collection pass.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if dryRunFlag {
			cfg.DryRun = true
		}

		if checkFlag {
			return runCheck(cfg)
		}
		return runCollect(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&checkFlag, "check", false, "Print database status without collecting")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Fetch and parse without writing to the database")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errParksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func runCollect(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("Starting parkwait collector",
		"database", cfg.DatabasePath,
		"parks", cfg.ParkNames(),
		"log_level", cfg.LogLevel,
		"dry_run", cfg.DryRun)

	// A dry run never touches the database, not even to create the file
	var store collector.Store
	var db *database.DB
	if !cfg.DryRun {
		var err error
		db, err = database.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		store = db
	}

	client := queuetimes.NewClient(cfg.BaseURL,
		queuetimes.WithLogger(logger),
		queuetimes.WithMaxAttempts(cfg.MaxRetries),
		queuetimes.WithTimeout(cfg.RequestTimeout),
		queuetimes.WithRateLimit(cfg.RequestsPerSecond),
	)

	c := collector.New(store, client, cfg.Parks, logger, collector.WithDryRun(cfg.DryRun))

	run, runErr := c.CollectAll(ctx)

	if db != nil {
		metrics.CollectStoreGauges(db, logger)
	}
	if err := metrics.Export(prometheus.DefaultGatherer, cfg.MetricsTextfile, cfg.PushgatewayURL, cfg.MetricsJob); err != nil {
		// Metrics delivery never fails a run that collected data
		logger.Error("Failed to export metrics", "error", err)
	}

	if runErr != nil {
		logger.Error("Collection run aborted", "run_id", run.RunID, "error", runErr)
		return runErr
	}
	if run.Failed() {
		return errParksFailed
	}
	return nil
}

func runCheck(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		return err
	}

	parkCount, err := db.CountParks()
	if err != nil {
		return err
	}
	rideCount, err := db.CountRides()
	if err != nil {
		return err
	}
	readingCount, err := db.CountReadings()
	if err != nil {
		return err
	}
	latest, err := db.LatestCollectedAt()
	if err != nil {
		return err
	}

	rule := strings.Repeat("=", 50)
	fmt.Println()
	fmt.Println(rule)
	fmt.Println("Park Wait Time Collector - Status")
	fmt.Println(rule)
	fmt.Printf("Parks tracked: %d\n", len(cfg.Parks))
	for _, p := range cfg.Parks {
		fmt.Printf("  - %s (%d)\n", p.Name, p.ID)
	}
	fmt.Printf("\nParks in database: %d\n", parkCount)
	fmt.Printf("Rides in database: %d\n", rideCount)
	fmt.Printf("Wait time records: %d\n", readingCount)
	if latest != nil {
		fmt.Printf("Last collection: %s (%s ago)\n",
			latest.Format(database.TimestampLayout), time.Since(*latest).Round(time.Second))
	} else {
		fmt.Println("Last collection: never")
	}
	fmt.Println(rule)
	fmt.Println()

	return nil
}
