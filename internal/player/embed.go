// Package player plays the failure chime by shelling out to the OS-native
// audio command. Playback is debounced and never overlaps: starting a new
// sound kills the one still running.
package player

import _ "embed"

// defaultSound is the built-in chime used when no custom sound is configured
// or the configured file is unusable.
//
//go:embed sounds/error.wav
var defaultSound []byte
