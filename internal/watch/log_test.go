package watch

import (
	"fmt"
	"testing"

	"github.com/nateberkopec/failbell/internal/event"
)

func completion(command string, exitCode int) event.Completion {
	return event.Completion{Command: command, ExitCode: exitCode}
}

func TestLogAppendNewestFirst(t *testing.T) {
	log := NewLog()

	log.Append(completion("first", 0), false)
	log.Append(completion("second", 1), true)
	log.Append(completion("third", 0), false)

	visible := log.Visible(false)
	if len(visible) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(visible))
	}
	if visible[0].Completion.Command != "third" || visible[2].Completion.Command != "first" {
		t.Fatalf("unexpected order: %s ... %s", visible[0].Completion.Command, visible[2].Completion.Command)
	}
	if !visible[1].Chimed {
		t.Fatal("expected the failed entry to record its chime")
	}
}

func TestLogFailuresFilter(t *testing.T) {
	log := NewLog()
	log.Append(completion("ok", 0), false)
	log.Append(completion("bad", 2), true)
	log.Append(completion("worse", 127), true)

	failures := log.Visible(true)
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}
	if log.Failures() != 2 {
		t.Fatalf("expected failure count 2, got %d", log.Failures())
	}
	if log.Len() != 3 {
		t.Fatalf("expected total 3, got %d", log.Len())
	}
}

func TestLogDismiss(t *testing.T) {
	log := NewLog()
	entry := log.Append(completion("rm -rf build", 1), true)
	log.Append(completion("make", 0), false)

	if !log.Dismiss(entry.ID) {
		t.Fatal("expected dismiss to succeed")
	}
	if log.Dismiss(entry.ID) {
		t.Fatal("expected repeated dismiss to fail")
	}
	if log.Len() != 1 {
		t.Fatalf("expected 1 entry after dismiss, got %d", log.Len())
	}
}

func TestLogClear(t *testing.T) {
	log := NewLog()
	for i := 0; i < 5; i++ {
		log.Append(completion("cmd", i), i != 0)
	}

	log.Clear()
	if log.Len() != 0 || len(log.Visible(false)) != 0 {
		t.Fatal("expected empty log after clear")
	}

	// The log stays usable after clearing.
	log.Append(completion("again", 1), true)
	if log.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", log.Len())
	}
}

func TestLogCapsEntries(t *testing.T) {
	log := NewLog()
	for i := 0; i < MaxEntries+25; i++ {
		log.Append(completion(fmt.Sprintf("cmd %d", i), 0), false)
	}

	if log.Len() != MaxEntries {
		t.Fatalf("expected cap at %d, got %d", MaxEntries, log.Len())
	}

	visible := log.Visible(false)
	if visible[0].Completion.Command != fmt.Sprintf("cmd %d", MaxEntries+24) {
		t.Fatalf("expected newest entry to survive, got %s", visible[0].Completion.Command)
	}
}

func TestLogExportImportRoundTrip(t *testing.T) {
	log := NewLog()
	log.Append(completion("a", 0), false)
	log.Append(completion("b", 1), true)

	restored := NewLog()
	restored.ImportState(log.ExportState())

	visible := restored.Visible(false)
	if len(visible) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(visible))
	}
	if visible[0].Completion.Command != "b" {
		t.Fatalf("expected order preserved, got %s first", visible[0].Completion.Command)
	}

	// IDs keep growing past the imported ones.
	entry := restored.Append(completion("c", 0), false)
	if entry.ID <= visible[0].ID {
		t.Fatalf("expected fresh ID above %d, got %d", visible[0].ID, entry.ID)
	}
}
