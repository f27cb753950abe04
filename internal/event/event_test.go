package event

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewValidCompletion(t *testing.T) {
	c, err := New("make test", 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Command != "make test" || c.ExitCode != 2 {
		t.Fatalf("unexpected completion: %+v", c)
	}
	if c.FinishedAt.IsZero() {
		t.Fatal("expected FinishedAt to be stamped")
	}
	if !c.Failed() {
		t.Fatal("exit code 2 should count as failed")
	}
}

func TestNewRejectsEmptyCommand(t *testing.T) {
	if _, err := New("   ", 1); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestNewRejectsExitCodeOutOfRange(t *testing.T) {
	for _, code := range []int{-1, 256, 1000} {
		if _, err := New("true", code); err == nil {
			t.Fatalf("expected error for exit code %d", code)
		}
	}
}

func TestNewZeroExitIsNotFailed(t *testing.T) {
	c, err := New("ls", 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Failed() {
		t.Fatal("exit code 0 should not count as failed")
	}
}

func TestCompletionJSONRoundTrip(t *testing.T) {
	in := Completion{
		Command:    "cargo build",
		ExitCode:   101,
		Dir:        "/home/user/proj",
		ShellPID:   4321,
		Duration:   1200 * time.Millisecond,
		FinishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out Completion
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if out.Command != in.Command || out.ExitCode != in.ExitCode || out.Dir != in.Dir {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if out.ShellPID != in.ShellPID || out.Duration != in.Duration {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if !out.FinishedAt.Equal(in.FinishedAt) {
		t.Fatalf("timestamp mismatch: got %v want %v", out.FinishedAt, in.FinishedAt)
	}
}

func TestDefaultSocketPathPrefersRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	path, err := DefaultSocketPath()
	if err != nil {
		t.Fatalf("DefaultSocketPath failed: %v", err)
	}
	if path != filepath.Join("/run/user/1000", "failbell.sock") {
		t.Fatalf("unexpected socket path: %s", path)
	}
}

func TestDefaultSocketPathFallsBackToDataDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)

	path, err := DefaultSocketPath()
	if err != nil {
		t.Fatalf("DefaultSocketPath failed: %v", err)
	}
	if path != filepath.Join(tmpDir, "failbell", "failbell.sock") {
		t.Fatalf("unexpected socket path: %s", path)
	}

	// The fallback must not depend on the runtime dir being set at all.
	os.Unsetenv("XDG_RUNTIME_DIR")
	again, err := DefaultSocketPath()
	if err != nil {
		t.Fatalf("DefaultSocketPath failed: %v", err)
	}
	if again != path {
		t.Fatalf("expected stable fallback path, got %s and %s", path, again)
	}
}
