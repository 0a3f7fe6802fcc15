package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulator  SimulatorConfig  `yaml:"simulator"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	Email      EmailConfig      `yaml:"email"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
// Push delivery is skipped when either key is empty.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// EmailConfig holds the SMTP settings for reservation confirmation mails.
// Mail is skipped when Host or From is empty.
type EmailConfig struct {
	Host               string `yaml:"smtp_host"`
	Port               int    `yaml:"smtp_port"`
	Username           string `yaml:"smtp_user"`
	Password           string `yaml:"smtp_password"`
	From               string `yaml:"from"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// Enabled reports whether a mail server and sender are configured.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.From != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RequestIPHeader string        `yaml:"request_ip_header"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// SimulatorConfig controls the occupancy refresh task.
type SimulatorConfig struct {
	Enabled         bool           `yaml:"enabled"`
	IntervalSeconds int            `yaml:"interval_seconds"`
	Interval        time.Duration  `yaml:"-"` // Ignored by YAML parser
	Timezone        string         `yaml:"timezone"`
	Location        *time.Location `yaml:"-"`
	Seed            int64          `yaml:"seed"`
}

// CatalogConfig points at optional CSV files replacing the built-in catalog.
type CatalogConfig struct {
	LocationsCSV string `yaml:"locations_csv"`
	RoomsCSV     string `yaml:"rooms_csv"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableTimescale        bool   `yaml:"enable_timescale"`
}

// LogConfig selects the log level and output format ("json" or "text").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Secrets may come from the environment instead of the file.
var envOverrides = []struct {
	name  string
	field func(*Config) *string
}{
	{"SPOTTER_DATABASE_DSN", func(c *Config) *string { return &c.Database.DSN }},
	{"SPOTTER_VAPID_PUBLIC_KEY", func(c *Config) *string { return &c.Push.PublicKey }},
	{"SPOTTER_VAPID_PRIVATE_KEY", func(c *Config) *string { return &c.Push.PrivateKey }},
	{"SPOTTER_SMTP_PASSWORD", func(c *Config) *string { return &c.Email.Password }},
}

func (cfg *Config) applyEnv() {
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			*o.field(cfg) = v
		}
	}
}

// Default returns a configuration usable without a config file: SQLite in
// memory, simulator on, push disabled.
func Default() *Config {
	cfg := &Config{
		Simulator:  SimulatorConfig{Enabled: true},
		Database:   DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared"},
		WorkerPool: WorkerPoolConfig{Size: 1},
	}
	cfg.applyEnv()
	// Defaults never fail for the zero timezone.
	_ = cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Simulator.IntervalSeconds <= 0 {
		cfg.Simulator.IntervalSeconds = 30
	}
	cfg.Simulator.Interval = time.Duration(cfg.Simulator.IntervalSeconds) * time.Second

	if cfg.Simulator.Timezone == "" {
		cfg.Simulator.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Simulator.Timezone)
		if err != nil {
			return fmt.Errorf("failed to load timezone %q: %w", cfg.Simulator.Timezone, err)
		}
		cfg.Simulator.Location = loc
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Email.Port <= 0 {
		cfg.Email.Port = 587
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		logrus.Warn("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	return nil
}
