package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendlog/internal/common"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SPENDLOG_TEST_DIR", "/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde prefix", in: "~/db/spendlog.db", want: filepath.Join(home, "db", "spendlog.db")},
		{name: "env var", in: "$SPENDLOG_TEST_DIR/x.db", want: "/data/x.db"},
		{name: "absolute", in: "/tmp/x.db", want: "/tmp/x.db"},
		{name: "tilde elsewhere is literal", in: "/a/~b", want: "/a/~b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ExpandPath(DefaultDatabasePath()), cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, ".", cfg.ExportDirectory)
	assert.Empty(t, cfg.Location)
}

func TestInit_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
database:
  path: `+filepath.Join(dir, "custom.db")+`
logging:
  level: DEBUG
  format: json
export:
  directory: `+dir+`
time:
  location: Europe/Berlin
`), 0o600))

	v := viper.New()
	require.NoError(t, Init(v, cfgPath))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, dir, cfg.ExportDirectory)
	assert.Equal(t, "Europe/Berlin", cfg.Location)
}

func TestInit_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SPENDLOG_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("SPENDLOG_LOGGING_LEVEL", "warn")

	v := viper.New()
	require.NoError(t, Init(v, ""), "a missing default config file is fine")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.DatabasePath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "log level", key: KeyLogLevel, value: "loud"},
		{name: "log format", key: KeyLogFormat, value: "xml"},
		{name: "empty database path", key: KeyDatabasePath, value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}
