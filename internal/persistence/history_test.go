package persistence

import (
	"testing"
	"time"

	"github.com/nateberkopec/failbell/internal/event"
	"github.com/nateberkopec/failbell/internal/watch"
)

func TestHistoryRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	log := watch.NewLog()
	log.Append(event.Completion{Command: "go vet ./...", ExitCode: 0, FinishedAt: time.Now()}, false)
	log.Append(event.Completion{Command: "go test ./...", ExitCode: 1, FinishedAt: time.Now()}, true)

	if err := SaveLog(log); err != nil {
		t.Fatalf("SaveLog failed: %v", err)
	}

	loaded := watch.NewLog()
	if err := LoadLog(loaded); err != nil {
		t.Fatalf("LoadLog failed: %v", err)
	}

	visible := loaded.Visible(false)
	if len(visible) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(visible))
	}
	if visible[0].Completion.Command != "go test ./..." {
		t.Fatalf("expected newest first, got %s", visible[0].Completion.Command)
	}
	if !visible[0].Chimed {
		t.Fatal("expected chime flag to survive the round trip")
	}
	if visible[0].Completion.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", visible[0].Completion.ExitCode)
	}
}

func TestLoadLogMissingFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	log := watch.NewLog()
	if err := LoadLog(log); err != nil {
		t.Fatalf("LoadLog should not fail on missing file: %v", err)
	}
	if log.Len() != 0 {
		t.Fatalf("expected empty log, got %d entries", log.Len())
	}
}

func TestHistoryPreservesIDs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	log := watch.NewLog()
	first := log.Append(event.Completion{Command: "a", ExitCode: 1}, true)

	if err := SaveLog(log); err != nil {
		t.Fatalf("SaveLog failed: %v", err)
	}

	loaded := watch.NewLog()
	if err := LoadLog(loaded); err != nil {
		t.Fatalf("LoadLog failed: %v", err)
	}

	fresh := loaded.Append(event.Completion{Command: "b", ExitCode: 0}, false)
	if fresh.ID <= first.ID {
		t.Fatalf("expected fresh ID above %d, got %d", first.ID, fresh.ID)
	}
}
