// Package config provides configuration loading, validation, and management
// for the bot. Values come from a YAML file, BOT_* environment variables,
// and the defaults declared in defaults.go.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// ErrConfiguration wraps every error returned by LoadConfig.
var ErrConfiguration = errors.New("configuration error")

// Config holds the complete application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Wolfram   WolframConfig   `mapstructure:"wolfram"`
	Urban     UrbanConfig     `mapstructure:"urban"`
	Oxford    OxfordConfig    `mapstructure:"oxford"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Timetable TimetableConfig `mapstructure:"timetable"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token and the chat identifiers used by the
// relay and the channel forwarder.
type TelegramConfig struct {
	Token             string `mapstructure:"token"               validate:"required"`
	ControlChatID     int64  `mapstructure:"control_chat_id"     validate:"required,ne=0"`
	SourceChannelID   int64  `mapstructure:"source_channel_id"   validate:"required,ne=0"`
	DestinationChatID int64  `mapstructure:"destination_chat_id" validate:"required,ne=0"`

	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-" validate:"-"`
}

// WolframConfig configures the short-answer and simple-image services.
type WolframConfig struct {
	AppID   string        `mapstructure:"app_id"   validate:"required"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// UrbanConfig configures the Urban Dictionary client.
type UrbanConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// OxfordConfig configures the Oxford Dictionaries client.
type OxfordConfig struct {
	AppID    string        `mapstructure:"app_id"   validate:"required"`
	AppKey   string        `mapstructure:"app_key"  validate:"required"`
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Language string        `mapstructure:"language" validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// DatabaseConfig points at the SQLite file backing the image cache index.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// CacheConfig controls the rendered-image cache and its eviction policy.
type CacheConfig struct {
	Dir        string        `mapstructure:"dir"         validate:"required"`
	MaxEntries int           `mapstructure:"max_entries" validate:"min=1"`
	MaxAge     time.Duration `mapstructure:"max_age"     validate:"min=1m"`
}

// TimetableConfig points at the static two-week schedule document.
type TimetableConfig struct {
	Path     string `mapstructure:"path"     validate:"required"`
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}

// TaskConfig enables a scheduled task and sets its cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// MetricsConfig controls the ops HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// MessagesConfig holds every user-facing text the bot sends.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"           validate:"required"`
	Help             string `mapstructure:"help"              validate:"required"`
	Usage            string `mapstructure:"usage"             validate:"required"`
	FallbackNotice   string `mapstructure:"fallback_notice"   validate:"required"`
	NotFound         string `mapstructure:"not_found"         validate:"required"`
	DefinitionHeader string `mapstructure:"definition_header" validate:"required"`
	ExampleHeader    string `mapstructure:"example_header"    validate:"required"`
	Weekend          string `mapstructure:"weekend"           validate:"required"`
	WeekFirst        string `mapstructure:"week_first"        validate:"required"`
	WeekSecond       string `mapstructure:"week_second"       validate:"required"`
	Donate           string `mapstructure:"donate"            validate:"required"`
	Ping             string `mapstructure:"ping"              validate:"required"`
	EasterEgg        string `mapstructure:"easter_egg"        validate:"required"`
}

// LoadConfig reads the configuration in this order of precedence:
//  1. BOT_* environment variables (BOT_TELEGRAM_TOKEN, BOT_WOLFRAM_APP_ID, ...)
//  2. the YAML file at path (optional)
//  3. built-in defaults
//
// The result is validated before it is returned.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("%w: failed to read config file %q: %v", ErrConfiguration, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate checks the struct tags on every section.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
