package config

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Bot        BotConfig        `json:"bot"`
	Alert      AlertConfig      `json:"alert"`
	Protection ProtectionConfig `json:"protection"`
	Network    NetworkConfig    `json:"network"`
	Database   DatabaseConfig   `json:"database"`
	Logging    LoggingConfig    `json:"logging"`
}

type BotConfig struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

type AlertConfig struct {
	ChannelName string `json:"channel_name"`
}

// ProtectionConfig holds the guard toggles. The Max* values are declared
// limits surfaced for operators; the mitigation path does not enforce
// them against live counts.
type ProtectionConfig struct {
	BotInviteProtection bool `json:"bot_invite_protection"`
	MaxChannelCreations int  `json:"max_channel_creations"`
	MaxRoleCreations    int  `json:"max_role_creations"`
	MaxBanAttempts      int  `json:"max_ban_attempts"`
	MaxKickAttempts     int  `json:"max_kick_attempts"`
	MaxDeletions        int  `json:"max_deletions"`
}

type NetworkConfig struct {
	HTTPPoolSize int    `json:"http_pool_size"`
	APIBaseURL   string `json:"api_base_url"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type LoggingConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

var GlobalConfig *Config

// Load reads config.json, layers environment variables on top, and makes
// the result the process-wide configuration. A missing .env file is not
// an error.
func Load(path string) (*Config, error) {
	godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	GlobalConfig = &cfg
	return &cfg, nil
}

// LoadOrDefault falls back to defaults (still honoring the environment)
// when the config file is missing or malformed.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = DefaultConfig()
		applyEnv(cfg)
		GlobalConfig = cfg
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if clientID := os.Getenv("CLIENT_ID"); clientID != "" {
		cfg.Bot.ClientID = clientID
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
}

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{},
		Alert: AlertConfig{
			ChannelName: "security-logs",
		},
		Protection: ProtectionConfig{
			BotInviteProtection: true,
			MaxChannelCreations: 1,
			MaxRoleCreations:    1,
			MaxBanAttempts:      1,
			MaxKickAttempts:     1,
			MaxDeletions:        1,
		},
		Network: NetworkConfig{
			HTTPPoolSize: 4,
			APIBaseURL:   "https://discord.com/api/v10",
		},
		Database: DatabaseConfig{
			Path: "guildguard.db",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "guildguard.log",
		},
	}
}

func Get() *Config {
	if GlobalConfig == nil {
		return DefaultConfig()
	}
	return GlobalConfig
}
