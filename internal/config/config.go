// Package config loads spendlog settings from a config file, SPENDLOG_*
// environment variables and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spendlog/internal/common"
)

// Viper keys.
const (
	KeyDatabasePath    = "database.path"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyExportDirectory = "export.directory"
	KeyLocation        = "time.location"
)

// EnvPrefix prefixes every environment override, e.g. SPENDLOG_DATABASE_PATH.
const EnvPrefix = "SPENDLOG"

// Config is the resolved application configuration.
type Config struct {
	DatabasePath    string
	LogLevel        string
	LogFormat       string
	ExportDirectory string
	// Location is an IANA zone name that defines day and month boundaries.
	// Empty means the system zone.
	Location string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyExportDirectory, ".")
	v.SetDefault(KeyLocation, "")
}

// Init prepares v to read cfgFile, or config.yaml from the default locations
// when cfgFile is empty, plus SPENDLOG_* environment variables. A missing
// default config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(ExpandPath(ConfigDir()))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load resolves the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DatabasePath:    ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		ExportDirectory: ExpandPath(v.GetString(KeyExportDirectory)),
		Location:        v.GetString(KeyLocation),
	}

	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("%w: %s must not be empty", common.ErrInvalidConfig, KeyDatabasePath)
	}
	if _, err := common.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return Config{}, fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, cfg.LogFormat)
	}

	return cfg, nil
}
