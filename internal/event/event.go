// Package event carries command completion reports from the shell hook to the
// running notifier over a local unix socket, one JSON object per line.
package event

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Completion describes a finished shell command.
type Completion struct {
	Command    string        `json:"command"`
	ExitCode   int           `json:"exit_code"`
	Dir        string        `json:"dir,omitempty"`
	ShellPID   int           `json:"shell_pid,omitempty"`
	Duration   time.Duration `json:"duration_ns,omitempty"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Failed reports whether the command exited with a non-zero status.
func (c Completion) Failed() bool {
	return c.ExitCode != 0
}

// New validates the reported command and exit code and stamps the completion
// with the current time.
func New(command string, exitCode int) (Completion, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return Completion{}, fmt.Errorf("empty command")
	}
	if !validExitCode(exitCode) {
		return Completion{}, fmt.Errorf("exit code out of range: %d", exitCode)
	}
	return Completion{
		Command:    command,
		ExitCode:   exitCode,
		FinishedAt: time.Now(),
	}, nil
}

// validExitCode reports whether the code fits a shell exit status.
func validExitCode(code int) bool {
	return code >= 0 && code <= 255
}

// DefaultSocketPath returns where the notifier listens for completions. The
// runtime dir is preferred; the XDG data dir is the fallback for systems
// without one.
func DefaultSocketPath() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "failbell.sock"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	xdgData := os.Getenv("XDG_DATA_HOME")
	if xdgData == "" {
		xdgData = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(xdgData, "failbell", "failbell.sock"), nil
}
