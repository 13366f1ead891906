package config

import "time"

// Config holds runtime settings for the giglog CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - DBPath: location of the on-device SQLite database.
//   - RequestTimeout: per-request deadline for server calls.
//   - SyncInterval: how often the background sync loop runs.
type Config struct {
	ServerURL      string
	DBPath         string
	RequestTimeout time.Duration
	SyncInterval   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DBPath = "giglog.db"
	c.RequestTimeout = 12 * time.Second
	c.SyncInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
