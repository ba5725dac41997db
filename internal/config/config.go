package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr   string
	DBPath string
	// DataDir is the root directory demo files are read from and that the
	// cleanup job prunes.
	DataDir  string
	LogLevel string

	ProcessWorkerCount int
	ProcessQueueSize   int
	StatsWorkerCount   int
	StatsQueueSize     int

	JobPollInterval time.Duration
	JobRetryLimit   int
	JobRetryDelay   time.Duration
	JobExpiry       time.Duration

	CleanupSchedule  string
	RetentionDays    int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("ADDR", ":8080"),
		DBPath:   envOr("DB_PATH", "file:demoscope.db"),
		DataDir:  envOr("DATA_DIR", "data/demos"),
		LogLevel: envOr("LOG_LEVEL", "INFO"),

		ProcessWorkerCount: envIntOr("PROCESS_WORKER_COUNT", 2),
		ProcessQueueSize:   envIntOr("PROCESS_QUEUE_SIZE", 32),
		StatsWorkerCount:   envIntOr("STATS_WORKER_COUNT", 1),
		StatsQueueSize:     envIntOr("STATS_QUEUE_SIZE", 64),

		JobPollInterval: envDurationOr("JOB_POLL_INTERVAL", time.Second),
		JobRetryLimit:   envIntOr("JOB_RETRY_LIMIT", 3),
		JobRetryDelay:   envDurationOr("JOB_RETRY_DELAY", 30*time.Second),
		JobExpiry:       envDurationOr("JOB_EXPIRY", time.Hour),

		CleanupSchedule:    envOr("CLEANUP_SCHEDULE", "0 3 * * *"),
		RetentionDays:      envIntOr("RETENTION_DAYS", 30),
	}
}

// Validate reports every configuration problem at once so a bad deployment
// fails with a single actionable message.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.DataDir == "" {
		problems = append(problems, "DATA_DIR cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.ProcessWorkerCount <= 0 {
		problems = append(problems, "PROCESS_WORKER_COUNT must be positive")
	}
	if c.ProcessQueueSize <= 0 {
		problems = append(problems, "PROCESS_QUEUE_SIZE must be positive")
	}
	if c.StatsWorkerCount <= 0 {
		problems = append(problems, "STATS_WORKER_COUNT must be positive")
	}
	if c.StatsQueueSize <= 0 {
		problems = append(problems, "STATS_QUEUE_SIZE must be positive")
	}
	if c.JobPollInterval <= 0 {
		problems = append(problems, "JOB_POLL_INTERVAL must be positive")
	}
	if c.JobRetryLimit < 0 {
		problems = append(problems, "JOB_RETRY_LIMIT cannot be negative")
	}
	if c.JobRetryDelay <= 0 {
		problems = append(problems, "JOB_RETRY_DELAY must be positive")
	}
	if c.JobExpiry <= 0 {
		problems = append(problems, "JOB_EXPIRY must be positive")
	}
	if c.RetentionDays <= 0 {
		problems = append(problems, "RETENTION_DAYS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
