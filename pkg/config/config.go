package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cuemby/starhunt/pkg/api"
	"github.com/cuemby/starhunt/pkg/hub"
	"github.com/cuemby/starhunt/pkg/reconciler"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Default spreadsheet exports for the reference metadata
const (
	DefaultSpawnTimesURL = "https://docs.google.com/spreadsheets/d/17rGbgylW_IPQHaHUW1WsJAhuWI7y2WhplQR79g-obqg/gviz/tq?tqx=out:csv&gid=1417940817"
	DefaultDashboardURL  = "https://docs.google.com/spreadsheets/d/17rGbgylW_IPQHaHUW1WsJAhuWI7y2WhplQR79g-obqg/export?format=csv&gid=1500701349"
)

// Config is the relay configuration. Values are layered: built-in defaults,
// then the YAML file, then environment variables.
type Config struct {
	Port     int    `yaml:"port" env:"PORT"`
	LogLevel string `yaml:"log_level" env:"STARHUNT_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"STARHUNT_LOG_JSON"`

	// DataDir enables last-good metadata persistence when set
	DataDir string `yaml:"data_dir" env:"STARHUNT_DATA_DIR"`

	SyncInterval     time.Duration `yaml:"sync_interval" env:"STARHUNT_SYNC_INTERVAL"`
	SweepInterval    time.Duration `yaml:"sweep_interval" env:"STARHUNT_SWEEP_INTERVAL"`
	MaxAge           time.Duration `yaml:"max_age" env:"STARHUNT_MAX_AGE"`
	MaxInactivity    time.Duration `yaml:"max_inactivity" env:"STARHUNT_MAX_INACTIVITY"`
	TrustClientClock bool          `yaml:"trust_client_clock" env:"STARHUNT_TRUST_CLIENT_CLOCK"`

	MetadataInterval time.Duration `yaml:"metadata_interval" env:"STARHUNT_METADATA_INTERVAL"`
	StatsInterval    time.Duration `yaml:"stats_interval" env:"STARHUNT_STATS_INTERVAL"`
	SpawnTimesURL    string        `yaml:"spawn_times_url" env:"STARHUNT_SPAWN_TIMES_URL"`
	DashboardURL     string        `yaml:"dashboard_url" env:"STARHUNT_DASHBOARD_URL"`

	SendQueue      int     `yaml:"send_queue" env:"STARHUNT_SEND_QUEUE"`
	MaxMessageSize int64   `yaml:"max_message_size" env:"STARHUNT_MAX_MESSAGE_SIZE"`
	RateLimit      float64 `yaml:"rate_limit" env:"STARHUNT_RATE_LIMIT"`
	RateBurst      int     `yaml:"rate_burst" env:"STARHUNT_RATE_BURST"`
}

// Default returns the built-in configuration
func Default() Config {
	hubCfg := hub.DefaultConfig()
	recCfg := reconciler.DefaultConfig()
	connCfg := api.DefaultConnConfig()

	return Config{
		Port:             8080,
		LogLevel:         "info",
		SyncInterval:     recCfg.SyncInterval,
		SweepInterval:    recCfg.SweepInterval,
		MaxAge:           hubCfg.MaxAge,
		MaxInactivity:    hubCfg.MaxInactivity,
		TrustClientClock: hubCfg.TrustClientClock,
		MetadataInterval: 60 * time.Second,
		StatsInterval:    60 * time.Second,
		SpawnTimesURL:    DefaultSpawnTimesURL,
		DashboardURL:     DefaultDashboardURL,
		SendQueue:        connCfg.SendQueue,
		MaxMessageSize:   connCfg.MaxMessageSize,
		RateLimit:        float64(connCfg.RateLimit),
		RateBurst:        connCfg.RateBurst,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ports, intervals and limits
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"sync_interval", c.SyncInterval},
		{"sweep_interval", c.SweepInterval},
		{"max_age", c.MaxAge},
		{"max_inactivity", c.MaxInactivity},
		{"metadata_interval", c.MetadataInterval},
		{"stats_interval", c.StatsInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.value))
		}
	}

	if c.SendQueue <= 0 {
		errs = append(errs, fmt.Errorf("send_queue must be positive, got %d", c.SendQueue))
	}
	if c.MaxMessageSize <= 0 {
		errs = append(errs, fmt.Errorf("max_message_size must be positive, got %d", c.MaxMessageSize))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("rate_limit and rate_burst must be positive"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP/WebSocket server
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Hub returns the hub settings
func (c Config) Hub() hub.Config {
	return hub.Config{
		MaxAge:           c.MaxAge,
		MaxInactivity:    c.MaxInactivity,
		TrustClientClock: c.TrustClientClock,
	}
}

// Reconciler returns the maintenance loop settings
func (c Config) Reconciler() reconciler.Config {
	return reconciler.Config{
		SweepInterval: c.SweepInterval,
		SyncInterval:  c.SyncInterval,
	}
}

// Conn returns the per-observer connection limits
func (c Config) Conn() api.ConnConfig {
	cfg := api.DefaultConnConfig()
	cfg.SendQueue = c.SendQueue
	cfg.MaxMessageSize = c.MaxMessageSize
	cfg.RateLimit = rate.Limit(c.RateLimit)
	cfg.RateBurst = c.RateBurst
	return cfg
}
