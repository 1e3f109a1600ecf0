package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/logger"
	"volume-breakout-lab/internal/lookup"
	"volume-breakout-lab/internal/screening"
	"volume-breakout-lab/internal/strategy"
)

// Environment variables that override sensitive or deployment-specific fields.
const (
	EnvDBPassword    = "BACKTEST_DB_PASSWORD"
	EnvClickhouseDSN = "BACKTEST_CLICKHOUSE_DSN"
)

// AppConfig holds the runtime configuration shared by every command.
type AppConfig struct {
	Database   DatabaseConfig     `yaml:"database"`
	Clickhouse ClickhouseConfig   `yaml:"clickhouse"`
	Backtest   BacktestConfig     `yaml:"backtest"`
	Screening  screening.Criteria `yaml:"screening"`
	Output     OutputConfig       `yaml:"output"`
	Logging    logger.Config      `yaml:"logging"`
	Metrics    MetricsConfig      `yaml:"metrics"`
}

// DatabaseConfig is the PostgreSQL connection block.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DBName   string `yaml:"dbname"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"` // 0 keeps the pgxpool default
}

// ClickhouseConfig selects ClickHouse as the daily bar store when DSN is set.
type ClickhouseConfig struct {
	DSN string `yaml:"dsn"`
}

// BacktestConfig holds simulation parameters.
type BacktestConfig struct {
	Ladder       domain.LadderConfig `yaml:"ladder"`
	LookbackDays int                 `yaml:"lookback_days"`
	Workers      int                 `yaml:"workers"` // <= 0 means GOMAXPROCS
	Persist      bool                `yaml:"persist"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the /metrics listener
}

// Default returns the configuration used when no file is given.
func Default() AppConfig {
	return AppConfig{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			DBName:  "stocks",
			User:    "postgres",
			SSLMode: "disable",
		},
		Backtest: BacktestConfig{
			Ladder:       domain.DefaultLadderConfig,
			LookbackDays: lookup.DefaultLookbackDays,
		},
		Screening: screening.DefaultCriteria(),
		Output:    OutputConfig{Dir: "results"},
		Logging:   logger.DefaultConfig(),
	}
}

// Load reads YAML config from path on top of Default and applies validation.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
// An empty path starts from Default.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv(EnvClickhouseDSN); v != "" {
		cfg.Clickhouse.DSN = v
	}
	return cfg, Validate(cfg)
}

// Validate ensures required fields are present and parameters are consistent.
func Validate(cfg AppConfig) error {
	if cfg.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		return fmt.Errorf("database.port %d out of range", cfg.Database.Port)
	}
	if cfg.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if err := strategy.ValidateLadder(cfg.Backtest.Ladder); err != nil {
		return fmt.Errorf("backtest.ladder: %w", err)
	}
	if cfg.Backtest.LookbackDays <= 0 {
		return errors.New("backtest.lookback_days must be > 0")
	}
	if err := cfg.Screening.Validate(); err != nil {
		return fmt.Errorf("screening: %w", err)
	}
	if cfg.Output.Dir == "" {
		return errors.New("output.dir is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection URL.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.DBName,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else if d.User != "" {
		u.User = url.User(d.User)
	}
	if d.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(d.SSLMode)
	}
	return u.String()
}
