package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultWolframBaseURL = "https://api.wolframalpha.com"
	DefaultUrbanBaseURL   = "https://api.urbandictionary.com"
	DefaultOxfordBaseURL  = "https://od-api.oxforddictionaries.com"
	DefaultOxfordLanguage = "en-gb"
	DefaultLookupTimeout  = 30 * time.Second

	DefaultDBPath = "storage.db"

	DefaultCacheDir        = "./pics"
	DefaultCacheMaxEntries = 500
	DefaultCacheMaxAge     = 7 * 24 * time.Hour

	DefaultTimetablePath     = "./timetable.json"
	DefaultTimetableTimezone = "Europe/Kyiv"

	DefaultMetricsAddr = ":9090"

	// Task names, matched against scheduler.tasks keys.
	TaskCacheEviction  = "cache_eviction"
	TaskSQLMaintenance = "sql_maintenance"
)

// DefaultMessages are the Russian texts the bot has always answered with.
var DefaultMessages = MessagesConfig{
	Welcome: "Привет!\n" +
		"Посмотри список команд либо отправь /help, чтобы узнать, что я умею",
	Help: "/wa - Wolfram Alpha запрос\n" +
		"/wa_simple - Wolfram Alpha запрос картинкой\n" +
		"/ud - Urban Dictionary\n" +
		"/od - Oxford Dictionary\n" +
		"/schedule - расписание на сегодня (/schedule tomorrow - на завтра)\n" +
		"/week - какая сейчас неделя\n" +
		"/donate - поддержать бота\n" +
		"/ping - проверить, жив ли бот\n" +
		"/help - Список команд",
	Usage:            "Введи запрос после команды или отправь команду в ответ на сообщение",
	FallbackNotice:   "Короткого ответа нет, присылаю полный",
	NotFound:         "Ничего не найдено",
	DefinitionHeader: "*Определение:*",
	ExampleHeader:    "*Пример использования:*",
	Weekend:          "Выходной, пар нет",
	WeekFirst:        "Сейчас первая неделя",
	WeekSecond:       "Сейчас вторая неделя",
	Donate:           "Бот бесплатный. Если хочешь поддержать автора, напиши ему в личку",
	Ping:             "i'm here",
	EasterEgg:        "F",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	// Secrets and ids have no default; registering the keys lets
	// AutomaticEnv pick them up during Unmarshal.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.control_chat_id", 0)
	v.SetDefault("telegram.source_channel_id", 0)
	v.SetDefault("telegram.destination_chat_id", 0)
	v.SetDefault("wolfram.app_id", "")
	v.SetDefault("oxford.app_id", "")
	v.SetDefault("oxford.app_key", "")

	v.SetDefault("wolfram.base_url", DefaultWolframBaseURL)
	v.SetDefault("wolfram.timeout", DefaultLookupTimeout)
	v.SetDefault("urban.base_url", DefaultUrbanBaseURL)
	v.SetDefault("urban.timeout", DefaultLookupTimeout)
	v.SetDefault("oxford.base_url", DefaultOxfordBaseURL)
	v.SetDefault("oxford.language", DefaultOxfordLanguage)
	v.SetDefault("oxford.timeout", DefaultLookupTimeout)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("cache.dir", DefaultCacheDir)
	v.SetDefault("cache.max_entries", DefaultCacheMaxEntries)
	v.SetDefault("cache.max_age", DefaultCacheMaxAge)

	v.SetDefault("timetable.path", DefaultTimetablePath)
	v.SetDefault("timetable.timezone", DefaultTimetableTimezone)

	v.SetDefault("scheduler.tasks", map[string]any{
		TaskCacheEviction:  map[string]any{"enabled": true, "schedule": "0 0 * * * *"},
		TaskSQLMaintenance: map[string]any{"enabled": true, "schedule": "0 30 4 * * *"},
	})

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", DefaultMetricsAddr)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.usage", DefaultMessages.Usage)
	v.SetDefault("messages.fallback_notice", DefaultMessages.FallbackNotice)
	v.SetDefault("messages.not_found", DefaultMessages.NotFound)
	v.SetDefault("messages.definition_header", DefaultMessages.DefinitionHeader)
	v.SetDefault("messages.example_header", DefaultMessages.ExampleHeader)
	v.SetDefault("messages.weekend", DefaultMessages.Weekend)
	v.SetDefault("messages.week_first", DefaultMessages.WeekFirst)
	v.SetDefault("messages.week_second", DefaultMessages.WeekSecond)
	v.SetDefault("messages.donate", DefaultMessages.Donate)
	v.SetDefault("messages.ping", DefaultMessages.Ping)
	v.SetDefault("messages.easter_egg", DefaultMessages.EasterEgg)
}

// isNotExist reports whether err means the config file is simply missing.
// SetConfigFile makes viper return the raw os error instead of
// ConfigFileNotFoundError.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
