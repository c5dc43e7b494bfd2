package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	json "github.com/goccy/go-json"

	"parkwait-collector/internal/config"
	"parkwait-collector/internal/database"
	"parkwait-collector/internal/queuetimes"
)

func main() {
	// Disable structured logging for CLI
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors
	})))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "parks":
		handleParks(cfg)
	case "fetch":
		handleFetch(cfg)
	case "rides":
		handleRides(cfg)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`parkwait CLI - Wait Time Inspection

Usage:
  cli <command> [options]

Commands:
  parks             List configured parks and stored counts
  fetch [park_id]   Fetch a park from Queue-Times and print parsed rides as JSON (no writes)
  rides [park_id]   List stored rides of a park with their latest reading
  help              Show this help message

Examples:
  cli parks
  cli fetch 64
  cli rides 334

Environment Variables:
  DATABASE_PATH          - SQLite database (default: ./data/wait_times.db)
  QUEUE_TIMES_BASE_URL   - API base (default: https://queue-times.com/en-US/parks)
  PARKS                  - Tracked parks as id=name pairs separated by ';'`)
}

func openDB(cfg *config.Config) *database.DB {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(); err != nil {
		db.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return db
}

func parkIDArg(cfg *config.Config, command string) config.Park {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Error: Park ID required")
		fmt.Fprintf(os.Stderr, "Usage: cli %s <park_id>\n", command)
		os.Exit(1)
	}

	parkID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil || parkID <= 0 {
		fmt.Fprintf(os.Stderr, "Error: Invalid park ID: %s\n", os.Args[2])
		os.Exit(1)
	}

	// Unconfigured parks can still be inspected
	park, ok := cfg.FindPark(parkID)
	if !ok {
		park = config.Park{ID: parkID, Name: fmt.Sprintf("park %d", parkID)}
	}
	return park
}

func handleParks(cfg *config.Config) {
	db := openDB(cfg)
	defer db.Close()

	fmt.Printf("Configured parks (%d):\n\n", len(cfg.Parks))
	for _, p := range cfg.Parks {
		stored, err := db.GetPark(p.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		rides, err := db.ListRides(p.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("ID: %d\n", p.ID)
		fmt.Printf("  Name: %s\n", p.Name)
		if stored == nil {
			fmt.Println("  Stored: no (not collected yet)")
		} else {
			fmt.Printf("  Stored as: %s\n", stored.Name)
		}
		fmt.Printf("  Rides: %d\n", len(rides))
		fmt.Println()
	}
}

func handleFetch(cfg *config.Config) {
	park := parkIDArg(cfg, "fetch")

	client := queuetimes.NewClient(cfg.BaseURL,
		queuetimes.WithLogger(slog.Default()),
		queuetimes.WithMaxAttempts(cfg.MaxRetries),
		queuetimes.WithTimeout(cfg.RequestTimeout),
	)

	fmt.Fprintf(os.Stderr, "Fetching %s...\n", client.ParkURL(park.ID))

	resp, err := client.FetchPark(context.Background(), park.ID)
	if err != nil {
		var httpErr *queuetimes.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
			fmt.Fprintf(os.Stderr, "Error: Park %d not found\n", park.ID)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	rides := queuetimes.ParseRides(resp, park.ID)

	out, err := json.MarshalIndent(rides, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	fmt.Fprintf(os.Stderr, "✓ %d ride(s) parsed for %s\n", len(rides), park.Name)
}

func handleRides(cfg *config.Config) {
	park := parkIDArg(cfg, "rides")

	db := openDB(cfg)
	defer db.Close()

	rides, err := db.ListRides(park.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to list rides: %v\n", err)
		os.Exit(1)
	}

	if len(rides) == 0 {
		fmt.Printf("No rides stored for %s.\n", park.Name)
		fmt.Println("\nTo collect data, run: parkwait")
		return
	}

	fmt.Printf("%s: %d ride(s)\n\n", park.Name, len(rides))
	for _, r := range rides {
		land := "(no land)"
		if r.LandName != nil {
			land = *r.LandName
		}

		status := "no readings"
		if r.LatestIsOpen != nil {
			switch {
			case !*r.LatestIsOpen:
				status = "closed"
			case r.LatestWaitTime != nil:
				status = fmt.Sprintf("open, %d min", *r.LatestWaitTime)
			default:
				status = "open"
			}
		}

		fmt.Printf("ID: %d\n", r.ID)
		fmt.Printf("  Name: %s\n", r.Name)
		fmt.Printf("  Land: %s\n", land)
		fmt.Printf("  Latest: %s", status)
		if r.LatestCollectedAt != nil {
			fmt.Printf(" (at %s)", *r.LatestCollectedAt)
		}
		fmt.Println()
		fmt.Println()
	}
}
