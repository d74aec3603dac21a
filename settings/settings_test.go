package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "irc.example.net"
port = 6697
ssl = true

[bot]
nick = "triggerbot"
channels = ["#calm"]
database = "triggerbot.db"

[logging]
level = "info"
format = "text"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "irc.example.net", cfg.Server.Host)
	assert.Equal(t, 6697, cfg.Server.Port)
	assert.True(t, cfg.Server.Ssl)
	assert.Equal(t, "triggerbot", cfg.Bot.Nick)
	assert.Equal(t, []string{"#calm"}, cfg.Bot.Channels)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadConfigValidation(t *testing.T) {
	// Missing bot.nick and bot.database must fail validation.
	path := writeConfig(t, `
[server]
host = "irc.example.net"
port = 6697

[bot]
channels = ["#calm"]

[logging]
level = "info"
format = "text"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestIntervalDefaults(t *testing.T) {
	b := Bot{}
	assert.Equal(t, time.Minute, b.SaveInterval())
	assert.Equal(t, 24*time.Hour, b.PurgeInterval())

	b.SaveSeconds = 30
	b.PurgeHours = 6
	assert.Equal(t, 30*time.Second, b.SaveInterval())
	assert.Equal(t, 6*time.Hour, b.PurgeInterval())
}
