package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName names the per-user config and data directories.
const AppName = "spendlog"

// ExpandPath expands a leading ~ and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// ConfigDir is where config.yaml is looked up by default.
func ConfigDir() string {
	return filepath.Join("$HOME", ".config", AppName)
}

// DefaultDatabasePath is the database location when none is configured.
func DefaultDatabasePath() string {
	return filepath.Join("$HOME", ".local", "share", AppName, AppName+".db")
}
