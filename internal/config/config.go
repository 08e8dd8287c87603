// Package config provides configuration loading and validation for the bot.
// Values come from defaults, an optional config.yaml, and BOT_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Default values for optional configuration parameters.
const (
	DefaultListenAddr   = ":10000"
	DefaultStatePath    = "state.json"
	DefaultDBPath       = "journal.db"
	DefaultSendTime     = "09:00"
	DefaultTimezone     = "UTC"
	DefaultLogLevel     = "info"
	DefaultLogJSON      = true
	DefaultHistoryLimit = 10
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with BOT_ (e.g. BOT_TELEGRAM_TOKEN) or
// through config.yaml.
type Config struct {
	// Telegram bot credential. The only required setting.
	TelegramToken string `mapstructure:"telegram_token" validate:"required"`

	// BaseURL is the externally reachable address for webhook delivery.
	// Empty means long polling.
	BaseURL    string `mapstructure:"base_url"    validate:"omitempty,url"`
	ListenAddr string `mapstructure:"listen_addr" validate:"required"`

	// Persisted state and delivery journal locations.
	StatePath string `mapstructure:"state_path" validate:"required"`
	DBPath    string `mapstructure:"db_path"    validate:"required"`

	// Scheduling defaults applied when the state record carries none.
	DefaultSendTime string `mapstructure:"default_send_time" validate:"required"`
	DefaultTimezone string `mapstructure:"default_timezone"  validate:"required,timezone"`

	// History page size for the /history command.
	HistoryLimit int `mapstructure:"history_limit" validate:"min=1,max=100"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `mapstructure:"log_json"`

	// BotInfo is populated at startup from GetMe and not read from config.
	BotInfo *models.User `mapstructure:"-"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. config.yaml file (optional)
// 3. BOT_* environment variables
func Load() (*Config, error) {
	setDefaults()

	if err := readConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// readConfigFile initializes and loads the configuration using viper.
// A missing config file is not an error; defaults and env apply.
func readConfigFile() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	// Registering the env-only keys lets AutomaticEnv feed them through
	// Unmarshal; viper skips unregistered keys there.
	viper.SetDefault("telegram_token", "")
	viper.SetDefault("base_url", "")

	viper.SetDefault("listen_addr", DefaultListenAddr)
	viper.SetDefault("state_path", DefaultStatePath)
	viper.SetDefault("db_path", DefaultDBPath)
	viper.SetDefault("default_send_time", DefaultSendTime)
	viper.SetDefault("default_timezone", DefaultTimezone)
	viper.SetDefault("history_limit", DefaultHistoryLimit)
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("log_json", DefaultLogJSON)
}
