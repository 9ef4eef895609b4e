// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	TeamCityURL     string
	TeamCityToken   string
	Demo            bool
	ListenAddr      string
	DBPath          string
	PostgresDSN     string
	VersionsPath    string
	VersionMarker   string
	CacheTTL        time.Duration
	UpstreamTimeout time.Duration
	EnrichWorkers   int
	TreeDepth       int
	WatchInterval   time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
}

// HasTeamCityCredentials returns true when both the server URL and token are set.
// Without them the real client answers every call with driven.ErrNotConfigured.
func (c *Config) HasTeamCityCredentials() bool {
	return c.TeamCityURL != "" && c.TeamCityToken != ""
}

// UsePostgres reports whether the selection and preference stores live in
// PostgreSQL instead of the embedded SQLite file.
func (c *Config) UsePostgres() bool {
	return c.PostgresDSN != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// TeamCity credentials (TCPANEL_TEAMCITY_URL, TCPANEL_TEAMCITY_TOKEN) are optional;
// if absent, the app starts but every upstream view reports unavailable unless
// TCPANEL_DEMO is set.
// Optional variables with defaults: TCPANEL_LISTEN_ADDR (127.0.0.1:8080),
// TCPANEL_DB_PATH (tcpanel.db), TCPANEL_VERSIONS_PATH (config/versions.yaml),
// TCPANEL_VERSION_MARKER (GO2 Version), TCPANEL_CACHE_TTL (2m),
// TCPANEL_UPSTREAM_TIMEOUT (3s), TCPANEL_ENRICH_WORKERS (12),
// TCPANEL_TREE_DEPTH (0, natural depth), TCPANEL_WATCH_INTERVAL (0, disabled),
// TCPANEL_KAFKA_TOPIC (tcpanel.build-status).
func Load() (*Config, error) {
	cfg := &Config{
		TeamCityURL:     strings.TrimRight(os.Getenv("TCPANEL_TEAMCITY_URL"), "/"),
		TeamCityToken:   os.Getenv("TCPANEL_TEAMCITY_TOKEN"),
		ListenAddr:      "127.0.0.1:8080",
		DBPath:          "tcpanel.db",
		PostgresDSN:     os.Getenv("TCPANEL_POSTGRES_DSN"),
		VersionsPath:    "config/versions.yaml",
		VersionMarker:   "GO2 Version",
		CacheTTL:        2 * time.Minute,
		UpstreamTimeout: 3 * time.Second,
		EnrichWorkers:   12,
		KafkaBrokers:    []string{},
		KafkaTopic:      "tcpanel.build-status",
	}

	if v, ok := os.LookupEnv("TCPANEL_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("TCPANEL_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("TCPANEL_VERSIONS_PATH"); ok {
		cfg.VersionsPath = v
	}
	if v, ok := os.LookupEnv("TCPANEL_VERSION_MARKER"); ok && strings.TrimSpace(v) != "" {
		cfg.VersionMarker = v
	}
	if v, ok := os.LookupEnv("TCPANEL_KAFKA_TOPIC"); ok && v != "" {
		cfg.KafkaTopic = v
	}

	if v, ok := os.LookupEnv("TCPANEL_DEMO"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("TCPANEL_DEMO has invalid boolean %q: %w", v, err)
		}
		cfg.Demo = parsed
	}

	var err error
	if cfg.CacheTTL, err = durationEnv("TCPANEL_CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("TCPANEL_CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	if cfg.UpstreamTimeout, err = durationEnv("TCPANEL_UPSTREAM_TIMEOUT", cfg.UpstreamTimeout); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("TCPANEL_UPSTREAM_TIMEOUT must be positive, got %s", cfg.UpstreamTimeout)
	}
	if cfg.WatchInterval, err = durationEnv("TCPANEL_WATCH_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.WatchInterval < 0 {
		return nil, fmt.Errorf("TCPANEL_WATCH_INTERVAL must not be negative, got %s", cfg.WatchInterval)
	}

	if cfg.EnrichWorkers, err = intEnv("TCPANEL_ENRICH_WORKERS", cfg.EnrichWorkers); err != nil {
		return nil, err
	}
	if cfg.EnrichWorkers < 1 {
		return nil, fmt.Errorf("TCPANEL_ENRICH_WORKERS must be at least 1, got %d", cfg.EnrichWorkers)
	}
	if cfg.TreeDepth, err = intEnv("TCPANEL_TREE_DEPTH", 0); err != nil {
		return nil, err
	}
	if cfg.TreeDepth < 0 {
		return nil, fmt.Errorf("TCPANEL_TREE_DEPTH must not be negative, got %d", cfg.TreeDepth)
	}

	if v, ok := os.LookupEnv("TCPANEL_KAFKA_BROKERS"); ok && v != "" {
		for _, broker := range strings.Split(v, ",") {
			broker = strings.TrimSpace(broker)
			if broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}

func intEnv(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	return parsed, nil
}
