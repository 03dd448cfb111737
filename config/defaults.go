package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/aide",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Owner:      "local",
		Encryption: "none",
	}
}

func GenerateSystemConfigTemplate() string {
	return `# aide System Configuration
# Location: ~/.config/aide/settings.toml
# This file uses TOML format: https://toml.io

# Directory where assistants and user config are stored
data_directory = "~/.local/share/aide"
`
}

func GenerateUserConfigTemplate() string {
	return `# aide User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Owner name recorded on saved assistants
owner = "local"

# Provider pre-selected when creating a new assistant (optional)
# One of: gemini, openai, anthropic
default_provider = ""

# How stored API keys are protected: "none" or "passphrase"
# With "passphrase", set AIDE_PASSPHRASE in the environment.
encryption = "none"
`
}
