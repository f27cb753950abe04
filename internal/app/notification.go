package app

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/nateberkopec/failbell/internal/event"
)

// notifyFailure sends a desktop notification for a failed command.
// Errors are ignored to ensure notification failures don't crash the app.
func notifyFailure(c event.Completion) {
	_ = beeep.Alert("Command failed", fmt.Sprintf("exit %d: %s", c.ExitCode, c.Command), "")
}
