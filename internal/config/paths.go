package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName = "flocheck"

	// EnvConfigDir overrides the config directory, e.g. for a monitoring
	// daemon's service account.
	EnvConfigDir = "FLOCHECK_CONFIG_DIR"
)

// GetConfigDir returns the platform-specific config directory.
// Override: $FLOCHECK_CONFIG_DIR
// Unix: $XDG_CONFIG_HOME/flocheck or ~/.config/flocheck
// Windows: %APPDATA%\flocheck
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, appName), nil
}

// GetConfigPath returns the path of config.toml.
func GetConfigPath() (string, error) {
	cfgDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, "config.toml"), nil
}

// GetIdentityStorePath returns the path to the encrypted identity vault.
func GetIdentityStorePath() (string, error) {
	cfgDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, "identities.enc"), nil
}

// EnsureDirs creates the config directory if it doesn't exist.
func EnsureDirs() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
