package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Settings are the user-tunable knobs. They fill the role a host settings
// store would: the UI toggles them and they survive restarts.
type Settings struct {
	Enabled       bool
	Volume        float64
	SoundPath     string
	DesktopAlerts bool
}

// DefaultSettings returns the out-of-the-box configuration: sound on, volume
// 0.7, built-in chime.
func DefaultSettings() Settings {
	return Settings{
		Enabled: true,
		Volume:  0.7,
	}
}

type settingsData struct {
	Version       int       `json:"version"`
	Enabled       bool      `json:"enabled"`
	Volume        float64   `json:"volume"`
	SoundPath     string    `json:"sound_path,omitempty"`
	DesktopAlerts bool      `json:"desktop_alerts"`
	SavedAt       time.Time `json:"saved_at"`
}

const settingsVersion = 1

func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	xdgData := os.Getenv("XDG_DATA_HOME")
	if xdgData == "" {
		xdgData = filepath.Join(home, ".local", "share")
	}

	dir := filepath.Join(xdgData, "failbell")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dir, nil
}

func settingsPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// SaveSettings writes the settings atomically.
func SaveSettings(settings Settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(settingsData{
		Version:       settingsVersion,
		Enabled:       settings.Enabled,
		Volume:        settings.Volume,
		SoundPath:     settings.SoundPath,
		DesktopAlerts: settings.DesktopAlerts,
		SavedAt:       time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return writeAtomic(path, data)
}

// LoadSettings reads the settings, returning defaults when no file exists.
// Volume is clamped to [0, 1] so a hand-edited file cannot break playback.
func LoadSettings() (Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return DefaultSettings(), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("failed to read settings file: %w", err)
	}

	var stored settingsData
	if err := json.Unmarshal(data, &stored); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if stored.Version != settingsVersion {
		return DefaultSettings(), fmt.Errorf("unsupported settings version: %d", stored.Version)
	}

	settings := Settings{
		Enabled:       stored.Enabled,
		Volume:        stored.Volume,
		SoundPath:     stored.SoundPath,
		DesktopAlerts: stored.DesktopAlerts,
	}
	if settings.Volume < 0 {
		settings.Volume = 0
	}
	if settings.Volume > 1 {
		settings.Volume = 1
	}
	return settings, nil
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
