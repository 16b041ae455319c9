// Package config reads console settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything cmd/console needs to wire the client.
type Config struct {
	BaseURL      string        // CONSOLE_API_URL
	Token        string        // CONSOLE_API_TOKEN
	PollInterval time.Duration // CONSOLE_POLL_INTERVAL
	JournalPath  string        // CONSOLE_JOURNAL_PATH ("" disables)
	MetricsAddr  string        // CONSOLE_METRICS_ADDR ("" disables)
	ConsulAddr   string        // CONSOLE_CONSUL_ADDR ("" disables discovery)
	StreamScans  bool          // CONSOLE_STREAM_SCANS
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = loadDotEnv()
	return Config{
		BaseURL:      getenv("CONSOLE_API_URL", "http://127.0.0.1:8000"),
		Token:        os.Getenv("CONSOLE_API_TOKEN"),
		PollInterval: getduration("CONSOLE_POLL_INTERVAL", 2500*time.Millisecond),
		JournalPath:  os.Getenv("CONSOLE_JOURNAL_PATH"),
		MetricsAddr:  os.Getenv("CONSOLE_METRICS_ADDR"),
		ConsulAddr:   os.Getenv("CONSOLE_CONSUL_ADDR"),
		StreamScans:  os.Getenv("CONSOLE_STREAM_SCANS") == "1",
	}
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return err
	}
	return godotenv.Load()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
