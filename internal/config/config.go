// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DBPath   string `env:"STAFFPLAN_DB"`
	HTTPAddr string `env:"STAFFPLAN_HTTP_ADDR" envDefault:":8080"`

	LogLevel    string `env:"STAFFPLAN_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"STAFFPLAN_LOG_FORMAT" envDefault:"text"`
	LogUseCases bool   `env:"STAFFPLAN_LOG_USE_CASES" envDefault:"true"`

	// RedisAddr switches allocation locks to Redis; empty keeps them in
	// process.
	RedisAddr string        `env:"STAFFPLAN_REDIS_ADDR"`
	LockTTL   time.Duration `env:"STAFFPLAN_LOCK_TTL" envDefault:"30s"`

	OTLPEndpoint string `env:"STAFFPLAN_OTLP_ENDPOINT"`

	CORSAllowedOrigins []string `env:"STAFFPLAN_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	Capacity CapacityConfig `envPrefix:"STAFFPLAN_CAPACITY_"`
}

// CapacityConfig holds the thresholds of the detail and fleet scales.
type CapacityConfig struct {
	WeeklyHours     float64 `env:"WEEKLY_HOURS" envDefault:"40"`
	DefaultScale    string  `env:"DEFAULT_SCALE" envDefault:"detail"`
	DetailAvailable float64 `env:"DETAIL_AVAILABLE" envDefault:"15"`
	DetailPartial   float64 `env:"DETAIL_PARTIAL" envDefault:"30"`
	DetailBusy      float64 `env:"DETAIL_BUSY" envDefault:"40"`
	FleetAvailable  float64 `env:"FLEET_AVAILABLE" envDefault:"30"`
	FleetFull       float64 `env:"FLEET_FULL" envDefault:"40"`
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".staffplan", "staffplan.db")
	}
	if _, err := cfg.Scales(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Scales builds the capacity presets from the configured thresholds.
func (c *Config) Scales() (capacity.Scales, error) {
	cc := c.Capacity
	s := capacity.Scales{
		Detail: capacity.DetailScale(
			decimal.NewFromFloat(cc.DetailAvailable),
			decimal.NewFromFloat(cc.DetailPartial),
			decimal.NewFromFloat(cc.DetailBusy)),
		Fleet: capacity.FleetScale(
			decimal.NewFromFloat(cc.FleetAvailable),
			decimal.NewFromFloat(cc.FleetFull)),
	}
	if err := s.Detail.Validate(); err != nil {
		return s, fmt.Errorf("capacity config: %w", err)
	}
	if err := s.Fleet.Validate(); err != nil {
		return s, fmt.Errorf("capacity config: %w", err)
	}
	if _, err := s.Lookup(cc.DefaultScale); err != nil {
		return s, fmt.Errorf("capacity config: %w", err)
	}
	return s, nil
}

// WeeklyCapacity is the full-time hours of one week.
func (c *Config) WeeklyCapacity() decimal.Decimal {
	return decimal.NewFromFloat(c.Capacity.WeeklyHours)
}

// NewLogger builds the process logger.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)
	switch c.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return logger, nil
}
