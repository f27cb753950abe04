package player

import (
	"fmt"
	"strconv"
)

// paplayVolumeMax is paplay's linear full-volume value.
const paplayVolumeMax = 65536

// playbackCommand returns the audio player invocation for the given platform.
// lookPath resolves binaries so the linux fallback chain is testable anywhere.
// Volume handling varies by player: afplay takes 0..1 directly, paplay a
// linear 0..65536 scale, and aplay and the Windows SoundPlayer have no volume
// control at all. An empty command name means no player is available.
func playbackCommand(goos string, lookPath func(string) (string, error), file string, volume float64) (string, []string) {
	switch goos {
	case "darwin":
		if _, err := lookPath("afplay"); err == nil {
			return "afplay", []string{"-v", strconv.FormatFloat(volume, 'f', -1, 64), file}
		}
	case "linux":
		if _, err := lookPath("paplay"); err == nil {
			return "paplay", []string{fmt.Sprintf("--volume=%d", int(volume*paplayVolumeMax)), file}
		}
		if _, err := lookPath("aplay"); err == nil {
			return "aplay", []string{"-q", file}
		}
	case "windows":
		if _, err := lookPath("powershell"); err == nil {
			return "powershell", []string{
				"-NoProfile", "-NonInteractive", "-Command",
				fmt.Sprintf("(New-Object System.Media.SoundPlayer '%s').PlaySync()", file),
			}
		}
	}
	return "", nil
}
