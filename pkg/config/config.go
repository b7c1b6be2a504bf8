package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tosih/enginelog/pkg/models"
)

const appName = "enginelog"

// DefaultPort is used by the web viewer when neither flags nor settings give one
const DefaultPort = 8080

// Config holds the runtime configuration of the web viewer
type Config struct {
	Port        int
	LogPath     string
	DBPath      string
	Temperature models.TemperatureUnit
	Version     string
}

// Settings are remembered between runs
type Settings struct {
	LastDir     string                 `json:"lastDir,omitempty"`
	Temperature models.TemperatureUnit `json:"temperature"`
	Port        int                    `json:"port,omitempty"`
}

// Dir returns the per-user configuration directory
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("no user config directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// DefaultDBPath is where presets live unless --db says otherwise
func DefaultDBPath() string {
	dir, err := Dir()
	if err != nil {
		return "presets.db"
	}
	return filepath.Join(dir, "presets.db")
}

func settingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// LoadSettings reads saved settings. A missing file yields defaults.
func LoadSettings() (*Settings, error) {
	s := &Settings{Port: DefaultPort}

	path, err := settingsPath()
	if err != nil {
		return s, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return &Settings{Port: DefaultPort}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	return s, nil
}

// SaveSettings writes settings, creating the config directory if needed
func SaveSettings(s *Settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
