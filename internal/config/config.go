package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultSecretKey = "change_me_in_production"

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	DBDriver            string        `mapstructure:"DB_DRIVER"`
	DBPath              string        `mapstructure:"DB_PATH"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	SecretKey           string        `mapstructure:"SECRET_KEY"`
	TimezoneOffsetHours int           `mapstructure:"TZ_OFFSET_HOURS"`
	DefaultLanguage     string        `mapstructure:"DEFAULT_LANGUAGE"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	LogFormat           string        `mapstructure:"LOG_FORMAT"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	TelegramBotToken    string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID      string        `mapstructure:"TELEGRAM_CHAT_ID"`
	TelegramAPIURL      string        `mapstructure:"TELEGRAM_API_URL"`
	ReminderInterval    time.Duration `mapstructure:"REMINDER_INTERVAL"`
}

var envKeys = []string{
	"PORT",
	"ENV",
	"DB_DRIVER",
	"DB_PATH",
	"DATABASE_URL",
	"SECRET_KEY",
	"TZ_OFFSET_HOURS",
	"DEFAULT_LANGUAGE",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"CORS_ORIGINS",
	"TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID",
	"TELEGRAM_API_URL",
	"REMINDER_INTERVAL",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", filepath.Join("data", "careline.db"))
	v.SetDefault("SECRET_KEY", defaultSecretKey)
	v.SetDefault("TZ_OFFSET_HOURS", 8)
	v.SetDefault("DEFAULT_LANGUAGE", "zh")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("TELEGRAM_API_URL", "https://api.telegram.org")
	v.SetDefault("REMINDER_INTERVAL", "1h")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// A missing .env file is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be \"sqlite\" or \"postgres\", got %q", c.DBDriver)
	}

	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	if c.IsProduction() && c.SecretKey == defaultSecretKey {
		return errors.New("SECRET_KEY must be changed in production")
	}
	if c.TimezoneOffsetHours < -12 || c.TimezoneOffsetHours > 14 {
		return fmt.Errorf("TZ_OFFSET_HOURS must be between -12 and 14, got %d", c.TimezoneOffsetHours)
	}
	if c.ReminderInterval < 0 {
		return fmt.Errorf("REMINDER_INTERVAL must not be negative, got %s", c.ReminderInterval)
	}
	return nil
}

// CORSAllowOrigins renders the origin list in the comma separated form the
// fiber cors middleware expects.
func (c *Config) CORSAllowOrigins() string {
	if len(c.CORSOrigins) == 0 {
		return "*"
	}
	return strings.Join(c.CORSOrigins, ",")
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
