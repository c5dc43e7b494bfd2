package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabasePath = "./data/wait_times.db"
	defaultBaseURL      = "https://queue-times.com/en-US/parks"
	defaultParks        = "64=Islands of Adventure;65=Universal Studios Florida;334=Epic Universe"
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	maxRetriesLimit     = 10
	defaultRequestsPerS = 2.0
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultMetricsJob   = "parkwait_collector"
)

// Park is a tracked venue, keyed by its Queue-Times id
type Park struct {
	ID   int64
	Name string
}

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabasePath string

	// Queue-Times API configuration
	BaseURL           string
	Parks             []Park
	RequestTimeout    time.Duration
	MaxRetries        int
	RequestsPerSecond float64

	// Logging configuration
	LogLevel  string
	LogFormat string

	// Metrics export (both optional)
	MetricsTextfile string
	PushgatewayURL  string
	MetricsJob      string

	DryRun bool
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first; variables already
// set in the process environment take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		DatabasePath:    getEnv("DATABASE_PATH", defaultDatabasePath),
		BaseURL:         strings.TrimRight(getEnv("QUEUE_TIMES_BASE_URL", defaultBaseURL), "/"),
		LogLevel:        getEnv("LOG_LEVEL", defaultLogLevel),
		LogFormat:       getEnv("LOG_FORMAT", defaultLogFormat),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
		PushgatewayURL:  getEnv("PUSHGATEWAY_URL", ""),
		MetricsJob:      getEnv("METRICS_JOB", defaultMetricsJob),
	}

	parks, err := ParseParks(getEnv("PARKS", defaultParks))
	if err != nil {
		return nil, fmt.Errorf("invalid PARKS: %w", err)
	}
	cfg.Parks = parks

	cfg.RequestTimeout = defaultTimeout
	if v := getEnv("REQUEST_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	cfg.MaxRetries = defaultMaxRetries
	if v := getEnv("MAX_RETRIES", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_RETRIES: %w", err)
		}
		cfg.MaxRetries = n
	}

	cfg.RequestsPerSecond = defaultRequestsPerS
	if v := getEnv("REQUESTS_PER_SECOND", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUESTS_PER_SECOND: %w", err)
		}
		cfg.RequestsPerSecond = f
	}

	dryRun := getEnv("DRY_RUN", "")
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges after loading
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return errors.New("LOG_FORMAT must be one of: json, text")
	}

	if c.MaxRetries < 1 || c.MaxRetries > maxRetriesLimit {
		return fmt.Errorf("MAX_RETRIES must be between 1 and %d", maxRetriesLimit)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("REQUESTS_PER_SECOND must not be negative")
	}
	if len(c.Parks) == 0 {
		return errors.New("PARKS must name at least one park")
	}

	return nil
}

// ParkNames returns the configured park names in order
func (c *Config) ParkNames() []string {
	names := make([]string, 0, len(c.Parks))
	for _, p := range c.Parks {
		names = append(names, p.Name)
	}
	return names
}

// FindPark looks up a configured park by id
func (c *Config) FindPark(id int64) (Park, bool) {
	for _, p := range c.Parks {
		if p.ID == id {
			return p, true
		}
	}
	return Park{}, false
}

// ParseParks parses a ';'-separated list of id=name pairs, preserving order.
func ParseParks(raw string) ([]Park, error) {
	var parks []Park
	seen := make(map[int64]bool)

	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		idStr, name, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q is not id=name", entry)
		}

		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("entry %q has invalid park id", entry)
		}

		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("entry %q has empty name", entry)
		}

		if seen[id] {
			return nil, fmt.Errorf("park id %d listed more than once", id)
		}
		seen[id] = true

		parks = append(parks, Park{ID: id, Name: name})
	}

	return parks, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}
