package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	cfg := Load()

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "rutube_categories", cfg.Storage.CategoriesKey)
	assert.Equal(t, "rutube_films", cfg.Storage.FilmsKey)
	assert.Equal(t, "placeholder", cfg.Parser.Default)
	assert.Equal(t, 6*time.Hour, cfg.Refresh.IntervalDuration())
	assert.Equal(t, 20*time.Second, cfg.Parser.TimeoutDuration())
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "catalog.yaml", `
logging:
  level: debug
  format: json
storage:
  driver: sqlite
  path: /tmp/catalog.db
parser:
  default: html
  hosts:
    example.org: json
  timeout: 5s
refresh:
  interval: 30m
notifications:
  telegram:
    chatId: "100"
`)
	t.Setenv(configPathEnv, path)
	t.Setenv(storageDriverEnv, "badger")
	t.Setenv(telegramTokenEnv, "secret")

	cfg := Load()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/catalog.db", cfg.Storage.Path)
	assert.Equal(t, "rutube_films", cfg.Storage.FilmsKey)
	assert.Equal(t, "html", cfg.Parser.Default)
	assert.Equal(t, map[string]string{"example.org": "json"}, cfg.Parser.Hosts)
	assert.Equal(t, 5*time.Second, cfg.Parser.TimeoutDuration())
	assert.Equal(t, 30*time.Minute, cfg.Refresh.IntervalDuration())
	assert.Equal(t, "secret", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, "100", cfg.Notifications.Telegram.ChatID)
}

func TestReadFileTOML(t *testing.T) {
	path := writeConfig(t, "catalog.toml", `
[storage]
driver = "postgres"
dsn = "postgres://localhost/catalog"

[parser]
placeholderCount = 3
placeholderDelay = "10ms"
`)
	cfg, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/catalog", cfg.Storage.DSN)
	assert.Equal(t, 3, cfg.Parser.PlaceholderCount)
	assert.Equal(t, 10*time.Millisecond, cfg.Parser.PlaceholderDelayDuration())
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ReadFile(writeConfig(t, "catalog.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = ReadFile(writeConfig(t, "broken.yaml", "storage: [unclosed"))
	assert.Error(t, err)
}

func TestInvalidConfigFileFallsBack(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, "broken.toml", "[storage"))
	cfg := Load()
	assert.Equal(t, "file", cfg.Storage.Driver)
}

func TestDurationParsing(t *testing.T) {
	assert.Equal(t, 90*time.Second, parseDuration("90", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("nonsense", time.Minute))
	assert.Equal(t, 6*time.Hour, RefreshConfig{Interval: "-1s"}.IntervalDuration())
}
