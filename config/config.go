package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/marginscan/risk"
	"github.com/rustyeddy/marginscan/sim"
)

// Config is the complete marginscan configuration.
type Config struct {
	Margin  risk.MarginConfig `json:"margin" yaml:"margin"`
	Risk    RiskConfig        `json:"risk" yaml:"risk"`
	Store   StoreConfig       `json:"store" yaml:"store"`
	Feed    sim.FeedConfig    `json:"feed" yaml:"feed"`
	Journal JournalConfig     `json:"journal" yaml:"journal"`
	Metrics MetricsConfig     `json:"metrics" yaml:"metrics"`
	Log     LogConfig         `json:"log" yaml:"log"`
}

// RiskConfig controls the cadence of the risk loop and the account policy.
type RiskConfig struct {
	Interval            time.Duration `json:"interval" yaml:"interval" env:"RISK_INTERVAL"`
	IdleInterval        time.Duration `json:"idle_interval" yaml:"idle_interval" env:"RISK_IDLE_INTERVAL"`
	ErrorBackoff        time.Duration `json:"error_backoff" yaml:"error_backoff" env:"RISK_ERROR_BACKOFF"`
	LiquidationCooldown time.Duration `json:"liquidation_cooldown" yaml:"liquidation_cooldown" env:"RISK_LIQUIDATION_COOLDOWN"`

	InitialEquity     float64 `json:"initial_equity" yaml:"initial_equity" env:"INITIAL_EQUITY"`
	WarnUtilization   float64 `json:"warn_utilization" yaml:"warn_utilization" env:"RISK_WARN_UTILIZATION"`
	BreachUtilization float64 `json:"breach_utilization" yaml:"breach_utilization" env:"RISK_BREACH_UTILIZATION"`

	// Workers > 1 scans positions concurrently.
	Workers int `json:"workers" yaml:"workers" env:"RISK_WORKERS"`
}

func (c RiskConfig) Policy() risk.Policy {
	return risk.Policy{
		WarnUtilization:   c.WarnUtilization,
		BreachUtilization: c.BreachUtilization,
	}
}

type StoreConfig struct {
	Type  string      `json:"type" yaml:"type" env:"STORE_TYPE"` // "memory" or "redis"
	Redis RedisConfig `json:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Host     string `json:"host" yaml:"host" env:"REDIS_HOST"`
	Port     int    `json:"port" yaml:"port" env:"REDIS_PORT"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" yaml:"db" env:"REDIS_DB"`
}

func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type JournalConfig struct {
	Type             string `json:"type" yaml:"type" env:"JOURNAL_TYPE"` // "none", "csv" or "sqlite"
	CyclesFile       string `json:"cycles_file,omitempty" yaml:"cycles_file,omitempty" env:"JOURNAL_CYCLES_FILE"`
	LiquidationsFile string `json:"liquidations_file,omitempty" yaml:"liquidations_file,omitempty" env:"JOURNAL_LIQUIDATIONS_FILE"`
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty" env:"JOURNAL_DB_PATH"`
}

type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables it.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" env:"METRICS_ADDR"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" env:"LOG_LEVEL"`
}

// Load returns Default when path is empty and LoadFromFile otherwise.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile reads a YAML or JSON file over the defaults, applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Margin.Validate(); err != nil {
		return fmt.Errorf("margin: %w", err)
	}

	r := c.Risk
	if r.Interval <= 0 || r.IdleInterval <= 0 || r.ErrorBackoff <= 0 {
		return fmt.Errorf("risk intervals must be positive")
	}
	if r.LiquidationCooldown < 0 {
		return fmt.Errorf("risk.liquidation_cooldown must be >= 0")
	}
	if r.InitialEquity < 0 {
		return fmt.Errorf("risk.initial_equity must be >= 0")
	}
	if r.WarnUtilization <= 0 || r.WarnUtilization > r.BreachUtilization {
		return fmt.Errorf("risk.warn_utilization must be positive and not above breach_utilization")
	}
	if r.Workers < 0 {
		return fmt.Errorf("risk.workers must be >= 0")
	}

	switch c.Store.Type {
	case "memory":
	case "redis":
		if c.Store.Redis.Host == "" {
			return fmt.Errorf("store.redis.host is required for redis store")
		}
		if c.Store.Redis.Port <= 0 || c.Store.Redis.Port > 65535 {
			return fmt.Errorf("store.redis.port must be between 1 and 65535")
		}
		if c.Store.Redis.DB < 0 {
			return fmt.Errorf("store.redis.db must be >= 0")
		}
	default:
		return fmt.Errorf("store.type must be 'memory' or 'redis'")
	}

	if err := c.Feed.Validate(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.CyclesFile == "" || c.Journal.LiquidationsFile == "" {
			return fmt.Errorf("journal cycles_file and liquidations_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	policy := risk.DefaultPolicy()
	return &Config{
		Margin: risk.DefaultMarginConfig(),
		Risk: RiskConfig{
			Interval:            time.Second,
			IdleInterval:        2 * time.Second,
			ErrorBackoff:        time.Second,
			LiquidationCooldown: 5 * time.Second,
			InitialEquity:       1_000_000,
			WarnUtilization:     policy.WarnUtilization,
			BreachUtilization:   policy.BreachUtilization,
			Workers:             1,
		},
		Store: StoreConfig{
			Type: "memory",
			Redis: RedisConfig{
				Host: "localhost",
				Port: 6379,
			},
		},
		Feed: sim.DefaultFeedConfig(),
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./marginscan.db",
		},
		Log: LogConfig{Level: "info"},
	}
}
