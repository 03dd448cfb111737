package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// SystemConfig lives in ~/.config/aide/settings.toml and only locates the
// data directory; everything else lives with the data.
type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

// UserConfig lives in <data_directory>/config.toml.
type UserConfig struct {
	Owner           string `toml:"owner"`
	DefaultProvider string `toml:"default_provider,omitempty"`
	Encryption      string `toml:"encryption,omitempty"` // "none" or "passphrase"
}

// Config is the resolved runtime configuration.
type Config struct {
	DataDirectory   string
	Owner           string
	DefaultProvider string
	Encryption      string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("AIDE_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if owner := os.Getenv("AIDE_OWNER"); owner != "" {
		c.Owner = owner
	}
	if p := os.Getenv("AIDE_DEFAULT_PROVIDER"); p != "" {
		c.DefaultProvider = p
	}
}

func CheckDebug() bool {
	debug := os.Getenv("AIDE_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens <dataDir>/debug.log when AIDE_DEBUG is set. The file is
// created 0600: debug output can include request metadata.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (AIDE_DEBUG=%s) ===", os.Getenv("AIDE_DEBUG"))
}

// Load resolves the runtime configuration: defaults, then settings files if
// present, then environment overrides, and finally makes sure the data
// directory exists with user-only permissions.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: "~/.local/share/aide",
		Owner:         "local",
		Encryption:    "none",
	}

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory

		userCfg, err := LoadUserConfig(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		if userCfg.Owner != "" {
			cfg.Owner = userCfg.Owner
		}
		cfg.DefaultProvider = userCfg.DefaultProvider
		if userCfg.Encryption != "" {
			cfg.Encryption = userCfg.Encryption
		}
	}

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
