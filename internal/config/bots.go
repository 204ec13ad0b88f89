package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BotDefinition describes one account worker as declared in bots.yaml.
type BotDefinition struct {
	Name     string `yaml:"name"`
	Account  string `yaml:"account"`
	Password string `yaml:"password,omitempty"` // empty means prompt at login
	Enabled  bool   `yaml:"enabled"`
}

type botsFile struct {
	Bots []BotDefinition `yaml:"bots"`
}

// BotsPath returns the bot definitions file next to the active config.
func BotsPath() string {
	return filepath.Join(Dir(), "bots.yaml")
}

// LoadBots reads bot definitions. A missing file yields an empty list; a
// malformed file or duplicate names are errors.
func LoadBots() ([]BotDefinition, error) {
	data, err := os.ReadFile(BotsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return parseBots(data)
}

func parseBots(data []byte) ([]BotDefinition, error) {
	var f botsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse bots.yaml: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Bots))
	for _, b := range f.Bots {
		if b.Name == "" {
			return nil, fmt.Errorf("bots.yaml: bot with empty name")
		}
		if _, dup := seen[b.Name]; dup {
			return nil, fmt.Errorf("bots.yaml: duplicate bot %q", b.Name)
		}
		seen[b.Name] = struct{}{}
	}
	return f.Bots, nil
}

// SaveBots writes bot definitions back to disk.
func SaveBots(bots []BotDefinition) error {
	data, err := yaml.Marshal(botsFile{Bots: bots})
	if err != nil {
		return err
	}
	os.MkdirAll(Dir(), 0755)
	return os.WriteFile(BotsPath(), data, 0644)
}
