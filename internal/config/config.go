package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// PlannerConfig describes the external AI planner service. The service only
// acknowledges dispatches; results arrive later on callback_base_url.
type PlannerConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	CallbackBaseURL string        `yaml:"callback_base_url"`
	CallbackSecret  string        `yaml:"callback_secret"`
	Timeout         time.Duration `yaml:"timeout"`
}

type JobsConfig struct {
	// MaxRetries bounds callback-observed failures re-opened via the retry
	// endpoint. Policy, not mechanism: keep it configuration.
	MaxRetries int `yaml:"max_retries"`
	// Workers sizes the dispatch pool.
	Workers int `yaml:"workers"`
	// SweepInterval / SweepGrace drive the pending-job sweeper.
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SweepGrace    time.Duration `yaml:"sweep_grace"`
	// StaleAfter marks processing jobs with no callback as stale (detection
	// only; no transition is forced).
	StaleAfter         time.Duration `yaml:"stale_after"`
	StaleCheckInterval time.Duration `yaml:"stale_check_interval"`
}

type RateLimitConfig struct {
	PlanRequests int           `yaml:"plan_requests"`
	Window       time.Duration `yaml:"window"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Admin     AdminConfig     `yaml:"admin"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Planner   PlannerConfig   `yaml:"planner"`
	Jobs      JobsConfig      `yaml:"jobs"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Planner.Timeout <= 0 {
		cfg.Planner.Timeout = 15 * time.Second
	}
	if cfg.Jobs.MaxRetries < 0 {
		cfg.Jobs.MaxRetries = 0
	} else if cfg.Jobs.MaxRetries == 0 {
		cfg.Jobs.MaxRetries = 1
	}
	if cfg.Jobs.Workers <= 0 {
		cfg.Jobs.Workers = 8
	}
	if cfg.Jobs.SweepInterval <= 0 {
		cfg.Jobs.SweepInterval = 30 * time.Second
	}
	if cfg.Jobs.SweepGrace <= 0 {
		cfg.Jobs.SweepGrace = 10 * time.Second
	}
	if cfg.Jobs.StaleAfter <= 0 {
		cfg.Jobs.StaleAfter = 10 * time.Minute
	}
	if cfg.Jobs.StaleCheckInterval <= 0 {
		cfg.Jobs.StaleCheckInterval = time.Minute
	}
	if cfg.RateLimit.PlanRequests <= 0 {
		cfg.RateLimit.PlanRequests = 10
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Planner.BaseURL == "" {
		return nil, errors.New("planner.base_url is required")
	}
	if cfg.Planner.CallbackBaseURL == "" {
		return nil, errors.New("planner.callback_base_url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
