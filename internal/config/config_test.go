package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "commands.yml", cfg.Commands.File)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 7345, cfg.Server.Port)
	assert.Equal(t, 32, cfg.Server.MaxConns)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Server.Enabled)
	assert.False(t, cfg.History.Enabled)
}

func TestLoad_ExplicitValues(t *testing.T) {
	resetViper(t)
	viper.Set("commands.file", "my-commands.toml")
	viper.Set("server.enabled", true)
	viper.Set("server.host", "localhost")
	viper.Set("server.port", 9000)
	viper.Set("server.max_conns", 8)
	viper.Set("server.allowed_origins", []string{"http://localhost:9000"})
	viper.Set("watch.enabled", true)
	viper.Set("watch.debounce", "500ms")
	viper.Set("history.enabled", true)
	viper.Set("history.file", "launches.db")
	viper.Set("log.level", "debug")
	viper.Set("log.format", "json")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "my-commands.toml", cfg.Commands.File)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Server.MaxConns)
	assert.Equal(t, []string{"http://localhost:9000"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "launches.db", cfg.History.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidPort(t *testing.T) {
	resetViper(t)
	viper.Set("server.port", 70000)

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestLoad_DangerousHost(t *testing.T) {
	resetViper(t)

	for _, host := range []string{"local;host", "host|pipe", "evil`cmd`", "$(sub)"} {
		viper.Set("server.host", host)

		_, err := Load()

		require.Error(t, err, "host %q", host)
		assert.Contains(t, err.Error(), "dangerous character")
	}
}

func TestLoad_InvalidMaxConns(t *testing.T) {
	resetViper(t)
	viper.Set("server.max_conns", -3)

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_conns")
}

func TestLoad_InvalidDebounce(t *testing.T) {
	resetViper(t)
	viper.Set("watch.debounce", "-10ms")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "debounce")
}

func TestLoad_DebounceTooLong(t *testing.T) {
	resetViper(t)
	viper.Set("watch.debounce", "2m")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	resetViper(t)
	viper.Set("log.level", "loud")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	resetViper(t)
	viper.Set("log.format", "xml")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "log format")
}

func TestLoad_BlankCommandsFile(t *testing.T) {
	resetViper(t)
	viper.Set("commands.file", "   ")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "commands")
}
