// File: internal/config/config.go
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
	Port      int    `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
	APIKey    string `yaml:"api_key"` // exchanged for a session token
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty disables durable snapshots
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // 0 keeps slots forever
}

type AIConfig struct {
	DefaultOpenAIModel string `yaml:"default_openai_model"`
	DefaultGeminiModel string `yaml:"default_gemini_model"`
	GeminiURL          string `yaml:"gemini_url"` // override for tests/proxies
	ConcurrentLimit    int    `yaml:"concurrent_limit"`
	RatePerMinute      int    `yaml:"rate_per_minute"` // chat sends per workspace
}

type AutosaveConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Security SecurityConfig `yaml:"security"`

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
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultOpenAIModel == "" {
		cfg.AI.DefaultOpenAIModel = "gpt-4o-mini"
	}
	if cfg.AI.DefaultGeminiModel == "" {
		cfg.AI.DefaultGeminiModel = "gemini-2.0-flash"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.RatePerMinute <= 0 {
		cfg.AI.RatePerMinute = 30
	}
	if cfg.Autosave.Interval <= 0 {
		cfg.Autosave.Interval = time.Minute
	}

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Server.JWTSecret == "" && !dev {
		return nil, errors.New("server.jwt_secret is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
