// Package config layers the application settings on top of the reusable
// core configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "leadbot/core/config"
	coredatabase "leadbot/core/database"
	"leadbot/internal/content"
)

// OnboardingConfig describes the membership gate and lead routing.
type OnboardingConfig struct {
	// Channel is the gated channel, either "@username" or a numeric id.
	Channel    string `yaml:"channel" envconfig:"ONBOARDING_CHANNEL"`
	ChannelURL string `yaml:"channel_url" envconfig:"ONBOARDING_CHANNEL_URL"`
	// AdminChatID receives a copy of each completed lead; 0 disables it.
	AdminChatID int64 `yaml:"admin_chat_id" envconfig:"ADMIN_CHAT_ID"`
}

const (
	// SessionBackendMemory keeps sessions in process memory.
	SessionBackendMemory = "memory"
	// SessionBackendBadger keeps sessions on disk across restarts.
	SessionBackendBadger = "badger"
)

// SessionConfig selects the session store backend.
type SessionConfig struct {
	Backend  string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	Dir      string `yaml:"dir" envconfig:"SESSION_DIR"`
	TTLHours int    `yaml:"ttl_hours" envconfig:"SESSION_TTL_HOURS"`
}

// Config aggregates everything the bot needs at startup.
type Config struct {
	Core       coreconfig.Config   `yaml:",inline"`
	Onboarding OnboardingConfig    `yaml:"onboarding"`
	Session    SessionConfig       `yaml:"session"`
	Database   coredatabase.Config `yaml:"database"`
	Content    content.Catalog     `yaml:"content"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// DatabaseEnabled reports whether lead persistence is configured.
func (c *Config) DatabaseEnabled() bool {
	return strings.TrimSpace(c.Database.Host) != ""
}

// AdminChatID resolves the operator chat for lead copies, falling back
// to the Telegram admin id.
func (c *Config) AdminChatID() int64 {
	if c.Onboarding.AdminChatID != 0 {
		return c.Onboarding.AdminChatID
	}
	return c.Core.Telegram.AdminID
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults. Misconfigured
// startup aborts here rather than failing later mid-conversation.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Onboarding.Channel) == "" {
		return fmt.Errorf("onboarding.channel is required")
	}
	if strings.TrimSpace(cfg.Onboarding.ChannelURL) == "" {
		channel := strings.TrimSpace(cfg.Onboarding.Channel)
		if strings.HasPrefix(channel, "@") {
			cfg.Onboarding.ChannelURL = "https://t.me/" + strings.TrimPrefix(channel, "@")
		} else {
			return fmt.Errorf("onboarding.channel_url is required when the channel is referenced by id")
		}
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if backend == "" {
		backend = SessionBackendMemory
	}
	switch backend {
	case SessionBackendMemory:
	case SessionBackendBadger:
		if strings.TrimSpace(cfg.Session.Dir) == "" {
			return fmt.Errorf("session.dir is required when session.backend is 'badger'")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, badger", cfg.Session.Backend)
	}
	cfg.Session.Backend = backend
	if cfg.Session.TTLHours < 0 {
		return fmt.Errorf("session.ttl_hours must be >= 0")
	}

	if cfg.DatabaseEnabled() {
		if strings.TrimSpace(cfg.Database.User) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.user and database.name are required when database.host is set")
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = 4
		}
	}

	cfg.Content.ApplyDefaults()
	if err := cfg.Content.Validate(); err != nil {
		return err
	}
	return nil
}
