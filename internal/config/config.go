package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the global daemon configuration, stored as JSON.
type Config struct {
	AutoUpdates       bool     `json:"autoUpdates"`
	UpdateChannel     string   `json:"updateChannel"`     // "stable", "experimental" or "none"
	LoginLimiterDelay int      `json:"loginLimiterDelay"` // milliseconds between remote logins
	HTTPBind          string   `json:"httpBind"`
	HTTPTokens        []string `json:"httpTokens,omitempty"`
	ReleaseFeedURL    string   `json:"releaseFeedURL,omitempty"` // override for testing/mirrors
	WebhookURL        string   `json:"webhookURL,omitempty"`     // lifecycle event notifications
}

// ConfigPath is resolved once at startup: a config.json in the working
// directory wins, otherwise the user config directory is used.
var ConfigPath string

func init() {
	pwd, _ := os.Getwd()
	local := filepath.Join(pwd, "config.json")
	if _, err := os.Stat(local); err == nil {
		ConfigPath = local
		return
	}
	home, _ := os.UserHomeDir()
	ConfigPath = filepath.Join(home, ".botd", "config.json")
}

// Dir returns the directory holding the active config file.
func Dir() string {
	return filepath.Dir(ConfigPath)
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		AutoUpdates:       true,
		UpdateChannel:     "stable",
		LoginLimiterDelay: 7000,
		HTTPBind:          ":1242",
	}
}

// Load reads the config file, falling back to defaults when it is missing.
func Load() (*Config, error) {
	data, err := os.ReadFile(ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(ConfigPath)
	os.MkdirAll(dir, 0755)
	return os.WriteFile(ConfigPath, data, 0644)
}
