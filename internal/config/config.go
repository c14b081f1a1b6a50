package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Persistence backend: memory, file, or sqlite
	DataBackend string

	// File backend
	SnapshotPath string

	// SQLite backend
	SQLiteDBPath string

	// AMQP (optional change events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Demo seed data for empty stores
	SeedDemoData bool

	// HTTP server timeouts
	ShutdownTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8082"),
		DataBackend: getEnv("DATA_BACKEND", "file"),

		SnapshotPath: getEnv("SNAPSHOT_PATH", "./data/transactions.json"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/soquy.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "soquy"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),

		SeedDemoData: getEnvBool("SEED_DEMO_DATA", false),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "file", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate paths for the backends that need them
	switch c.DataBackend {
	case "file":
		if c.SnapshotPath == "" {
			errors = append(errors, "snapshot path cannot be empty when using file backend")
		} else {
			errors = append(errors, checkDir(c.SnapshotPath)...)
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			errors = append(errors, checkDir(c.SQLiteDBPath)...)
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ShutdownTimeout <= 0 {
		errors = append(errors, "shutdown timeout must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}
	return nil
}

// checkDir ensures the parent directory of path exists or can be created.
func checkDir(path string) []string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return []string{fmt.Sprintf("cannot create data directory '%s': %v", dir, err)}
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
