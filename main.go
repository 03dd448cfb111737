package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"aide/config"
	"aide/storage"
	"aide/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

func main() {
	settingsPath := config.GetSettingsFilePath()
	if !config.FileExists(settingsPath) {
		if err := config.CreateDefaultSystemConfig(); err != nil {
			fmt.Printf("Failed to create default settings: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	enc := config.NewEncryptionManager(
		config.EncryptionMethod(cfg.Encryption),
		os.Getenv("AIDE_PASSPHRASE"),
	)
	if err := enc.Initialize(); err != nil {
		fmt.Printf("Failed to initialize credential encryption: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewAssistantStore(cfg.DataDir(), enc)
	if err != nil {
		fmt.Printf("Failed to initialize assistant storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to close assistant storage: %v", err)
		}
	}()

	p := tea.NewProgram(
		ui.NewApp(cfg, store),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running aide: %v\n", err)
		os.Exit(1)
	}
}
