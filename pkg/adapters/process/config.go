package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes how to start the engine bridge.
type Config struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	// TimeoutSeconds bounds a single engine call. Zero means no limit beyond the caller's context.
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	Description    string `yaml:"description" json:"description"`
}

// ConfigFile is the on-disk shape of a bridge configuration (bridge.yaml).
type ConfigFile struct {
	Bridge Config `yaml:"bridge" json:"bridge"`
}

// LoadConfig reads a bridge configuration (YAML or JSON, chosen by extension).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read bridge config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if cfg.Bridge.Command == "" {
		return Config{}, fmt.Errorf("%s: bridge.command is required", filepath.Base(path))
	}
	if cfg.Bridge.TimeoutSeconds < 0 {
		return Config{}, fmt.Errorf("%s: bridge.timeout_seconds must not be negative", filepath.Base(path))
	}
	return cfg.Bridge, nil
}
