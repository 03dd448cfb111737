package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GetConfigDir returns the platform-specific configuration directory
// Linux/Mac: ~/.config/aide
// Windows: C:\Users\username\.config\aide
func GetConfigDir() string {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		return filepath.Join(userProfile, ".config", "aide")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".config", "aide")
}

// GetDefaultDataDir returns the platform-specific default data directory
// Linux/Mac: ~/.local/share/aide
// Windows: C:\Users\username\AppData\Local\aide
func GetDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			localAppData = filepath.Join(userProfile, "AppData", "Local")
		}
		return filepath.Join(localAppData, "aide")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".local", "share", "aide")
}

// GetSettingsFilePath returns the path to settings.toml
func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

// GetHomeDir returns the user's home directory across platforms
func GetHomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("USERPROFILE")
		if home == "" {
			home = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
		if home == "" {
			home = "C:\\"
		}
		return home
	}
	home := os.Getenv("HOME")
	if home == "" {
		home = "/"
	}
	return home
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home := GetHomeDir()
		path = filepath.Join(home, path[2:])
	}

	path = os.ExpandEnv(path)

	return filepath.Clean(path)
}

// EnsureDir creates a directory if it doesn't exist (0700 - user-only access)
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDataDirPermissions ensures the data directory has 0700 permissions
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dataDir, 0700)
		}
		return err
	}

	if info.Mode().Perm() != 0700 {
		return os.Chmod(dataDir, 0700)
	}
	return nil
}
