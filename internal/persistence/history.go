package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nateberkopec/failbell/internal/event"
	"github.com/nateberkopec/failbell/internal/watch"
)

type historyEntryData struct {
	ID         int64            `json:"id"`
	Completion event.Completion `json:"completion"`
	AddedAt    time.Time        `json:"added_at"`
	Chimed     bool             `json:"chimed"`
}

type historyData struct {
	Version int                `json:"version"`
	Entries []historyEntryData `json:"entries"`
	SavedAt time.Time          `json:"saved_at"`
}

const historyVersion = 1

func historyPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// SaveLog persists the completion log.
func SaveLog(log *watch.Log) error {
	path, err := historyPath()
	if err != nil {
		return err
	}

	entries := log.ExportState()
	stored := historyData{
		Version: historyVersion,
		Entries: make([]historyEntryData, 0, len(entries)),
		SavedAt: time.Now(),
	}
	for _, entry := range entries {
		stored.Entries = append(stored.Entries, historyEntryData{
			ID:         entry.ID,
			Completion: entry.Completion,
			AddedAt:    entry.AddedAt,
			Chimed:     entry.Chimed,
		})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	return writeAtomic(path, data)
}

// LoadLog restores the completion log. A missing file leaves the log empty.
func LoadLog(log *watch.Log) error {
	path, err := historyPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read history file: %w", err)
	}

	var stored historyData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}

	if stored.Version != historyVersion {
		return fmt.Errorf("unsupported history version: %d", stored.Version)
	}

	entries := make([]*watch.Entry, 0, len(stored.Entries))
	for _, entry := range stored.Entries {
		entries = append(entries, &watch.Entry{
			ID:         entry.ID,
			Completion: entry.Completion,
			AddedAt:    entry.AddedAt,
			Chimed:     entry.Chimed,
		})
	}
	log.ImportState(entries)

	return nil
}
