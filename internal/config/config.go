// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token          string   `yaml:"token"`
	WebhookURL     string   `yaml:"webhook_url"`
	SecretToken    string   `yaml:"secret_token"`
	AllowedUpdates []string `yaml:"allowed_updates"`
	Port           int      `yaml:"port"`
	Username       string   `yaml:"username"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SchedulerConfig struct {
	SessionSweepInterval time.Duration `yaml:"session_sweep_interval"`
	ClaimExpiryInterval  time.Duration `yaml:"claim_expiry_interval"`
}

type LimitsConfig struct {
	CommandsPerMinute int `yaml:"commands_per_minute"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Limits    LimitsConfig    `yaml:"limits"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Bot.Port <= 0 {
		cfg.Bot.Port = 8080
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 9090
	}
	if len(cfg.Bot.AllowedUpdates) == 0 {
		cfg.Bot.AllowedUpdates = []string{"message", "edited_message", "channel_post", "callback_query", "my_chat_member"}
	}
	if cfg.Scheduler.SessionSweepInterval <= 0 {
		cfg.Scheduler.SessionSweepInterval = 10 * time.Minute
	}
	if cfg.Scheduler.ClaimExpiryInterval <= 0 {
		cfg.Scheduler.ClaimExpiryInterval = time.Hour
	}
	if cfg.Limits.CommandsPerMinute <= 0 {
		cfg.Limits.CommandsPerMinute = 20
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.WebhookURL != "" && !strings.HasPrefix(cfg.Bot.WebhookURL, "https://") {
		return nil, errors.New("bot.webhook_url must be https")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
