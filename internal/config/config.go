package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "FILMCATALOG_CONFIG"
	storageDriverEnv  = "FILMCATALOG_STORAGE_DRIVER"
	storagePathEnv    = "FILMCATALOG_STORAGE_PATH"
	storageDSNEnv     = "FILMCATALOG_STORAGE_DSN"
	logLevelEnv       = "FILMCATALOG_LOG_LEVEL"
	parserEnv         = "FILMCATALOG_PARSER"
	proxyEnv          = "FILMCATALOG_PROXY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"

	defaultRefreshInterval = 6 * time.Hour
	defaultParserTimeout   = 20 * time.Second
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging" toml:"logging"`
	Storage       StorageConfig      `yaml:"storage" toml:"storage"`
	Parser        ParserConfig       `yaml:"parser" toml:"parser"`
	Refresh       RefreshConfig      `yaml:"refresh" toml:"refresh"`
	Notifications NotificationConfig `yaml:"notifications" toml:"notifications"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// StorageConfig selects the key-value backend and the keys the catalog uses.
type StorageConfig struct {
	Driver        string `yaml:"driver" toml:"driver"`
	Path          string `yaml:"path" toml:"path"`
	DSN           string `yaml:"dsn" toml:"dsn"`
	CategoriesKey string `yaml:"categoriesKey" toml:"categoriesKey"`
	FilmsKey      string `yaml:"filmsKey" toml:"filmsKey"`
}

// ParserConfig picks playlist strategies and the HTTP client settings they share.
// Hosts maps a lowercase host name to a strategy name. A negative RetryMax
// disables retries.
type ParserConfig struct {
	Default          string            `yaml:"default" toml:"default"`
	Hosts            map[string]string `yaml:"hosts" toml:"hosts"`
	Timeout          string            `yaml:"timeout" toml:"timeout"`
	RetryMax         int               `yaml:"retryMax" toml:"retryMax"`
	UserAgent        string            `yaml:"userAgent" toml:"userAgent"`
	ProxyURL         string            `yaml:"proxyUrl" toml:"proxyUrl"`
	PlaceholderCount int               `yaml:"placeholderCount" toml:"placeholderCount"`
	PlaceholderDelay string            `yaml:"placeholderDelay" toml:"placeholderDelay"`
}

// TimeoutDuration resolves Timeout, falling back to the default on bad input.
func (p ParserConfig) TimeoutDuration() time.Duration {
	return parseDuration(p.Timeout, defaultParserTimeout)
}

// PlaceholderDelayDuration resolves the delay between placeholder items.
func (p ParserConfig) PlaceholderDelayDuration() time.Duration {
	return parseDuration(p.PlaceholderDelay, 0)
}

// RefreshConfig defines how often the watch command re-parses categories.
type RefreshConfig struct {
	Interval string `yaml:"interval" toml:"interval"`
}

// IntervalDuration resolves Interval, falling back to six hours.
func (r RefreshConfig) IntervalDuration() time.Duration {
	d := parseDuration(r.Interval, defaultRefreshInterval)
	if d <= 0 {
		return defaultRefreshInterval
	}
	return d
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram" toml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken" toml:"botToken"`
	ChatID   string `yaml:"chatId" toml:"chatId"`
}

// Load reads the file named by FILMCATALOG_CONFIG (if any), a local .env file
// and environment overrides. Unreadable files are logged and skipped.
func Load() Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("config: cannot load .env", "error", err)
		}
	}

	cfg := defaultConfig()
	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := ReadFile(path)
		if err != nil {
			slog.Warn("config: falling back to defaults", "path", path, "error", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// ReadFile decodes a YAML or TOML file, chosen by extension.
func ReadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var fileCfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(raw, &fileCfg)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(raw, &fileCfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storageDriverEnv); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(storagePathEnv); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(storageDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(parserEnv); v != "" {
		c.Parser.Default = v
	}
	if v := os.Getenv(proxyEnv); v != "" {
		c.Parser.ProxyURL = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.CategoriesKey != "" {
		base.Storage.CategoriesKey = override.Storage.CategoriesKey
	}
	if override.Storage.FilmsKey != "" {
		base.Storage.FilmsKey = override.Storage.FilmsKey
	}

	if override.Parser.Default != "" {
		base.Parser.Default = override.Parser.Default
	}
	if len(override.Parser.Hosts) > 0 {
		base.Parser.Hosts = override.Parser.Hosts
	}
	if override.Parser.Timeout != "" {
		base.Parser.Timeout = override.Parser.Timeout
	}
	if override.Parser.RetryMax != 0 {
		base.Parser.RetryMax = override.Parser.RetryMax
	}
	if override.Parser.UserAgent != "" {
		base.Parser.UserAgent = override.Parser.UserAgent
	}
	if override.Parser.ProxyURL != "" {
		base.Parser.ProxyURL = override.Parser.ProxyURL
	}
	if override.Parser.PlaceholderCount > 0 {
		base.Parser.PlaceholderCount = override.Parser.PlaceholderCount
	}
	if override.Parser.PlaceholderDelay != "" {
		base.Parser.PlaceholderDelay = override.Parser.PlaceholderDelay
	}

	if override.Refresh.Interval != "" {
		base.Refresh.Interval = override.Refresh.Interval
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{
			Driver:        "file",
			Path:          "filmcatalog.json",
			CategoriesKey: "rutube_categories",
			FilmsKey:      "rutube_films",
		},
		Parser: ParserConfig{
			Default: "placeholder",
			Hosts: map[string]string{
				"rutube.ru": "html",
			},
			Timeout:          defaultParserTimeout.String(),
			RetryMax:         2,
			PlaceholderCount: 10,
		},
		Refresh: RefreshConfig{Interval: defaultRefreshInterval.String()},
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("config: invalid duration", "value", value, "fallback", fallback)
		return fallback
	}
	return d
}
