package player

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// DebounceWindow is the minimum gap between accepted play requests. A burst of
// failures inside the window produces a single chime.
const DebounceWindow = 1500 * time.Millisecond

// Player plays the failure chime. It holds exclusive ownership of the playback
// subprocess: a newly accepted request kills whatever is still playing.
type Player struct {
	mu        sync.Mutex
	lastPlay  time.Time
	current   *exec.Cmd
	volume    float64
	soundPath string

	// Seams for tests.
	goos     string
	lookPath func(string) (string, error)
	now      func() time.Time
	bell     io.Writer
}

// New creates a player. soundPath may be empty, which selects the built-in
// chime. Volume is clamped to [0, 1].
func New(soundPath string, volume float64) *Player {
	return &Player{
		volume:    clampVolume(volume),
		soundPath: soundPath,
		goos:      runtime.GOOS,
		lookPath:  exec.LookPath,
		now:       time.Now,
		bell:      os.Stdout,
	}
}

// SetVolume updates playback volume, clamped to [0, 1].
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(volume)
}

// Volume returns the current playback volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetSoundPath updates the custom sound file. Empty selects the built-in
// chime.
func (p *Player) SetSoundPath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.soundPath = path
}

// SoundPath returns the configured custom sound file, empty for the built-in
// chime.
func (p *Player) SoundPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.soundPath
}

// Play requests the failure sound. It reports whether playback started; a
// request inside the debounce window is dropped silently. The returned error
// is user-facing (unreadable custom sound, broken player) and may accompany
// started=true when playback fell back to the built-in chime.
func (p *Player) Play() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastPlay) < DebounceWindow {
		return false, nil
	}
	p.lastPlay = now

	file, cleanup, pathErr := p.resolveSoundLocked()
	if file == "" {
		return false, pathErr
	}

	name, args := playbackCommand(p.goos, p.lookPath, file, p.volume)
	if name == "" {
		// No audio player on this platform; the terminal bell is the best we
		// can do.
		if cleanup != nil {
			cleanup()
		}
		fmt.Fprint(p.bell, "\a")
		return true, pathErr
	}

	p.stopLocked()

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		if cleanup != nil {
			cleanup()
		}
		return false, fmt.Errorf("failed to start %s: %w", name, err)
	}
	p.current = cmd

	go func() {
		// A killed playback surfaces as an error from Wait; that is expected.
		_ = cmd.Wait()
		if cleanup != nil {
			cleanup()
		}
		p.mu.Lock()
		if p.current == cmd {
			p.current = nil
		}
		p.mu.Unlock()
	}()

	return true, pathErr
}

// Stop kills any in-flight playback. Safe to call when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current == nil || p.current.Process == nil {
		return
	}
	// Killing a sound is not an error.
	_ = p.current.Process.Kill()
	p.current = nil
}

// resolveSoundLocked picks the file to play. A configured sound that is
// missing or unreadable yields a user-facing error and falls back to the
// built-in chime. The cleanup func, when non-nil, removes the temp file the
// chime was staged to.
func (p *Player) resolveSoundLocked() (string, func(), error) {
	if p.soundPath != "" {
		if _, err := os.Stat(p.soundPath); err == nil {
			return p.soundPath, nil, nil
		}
		file, cleanup, embedErr := stageDefaultSound()
		pathErr := fmt.Errorf("sound file %s is missing, falling back to the built-in chime", p.soundPath)
		if embedErr != nil {
			return "", nil, fmt.Errorf("sound file %s is missing and the built-in chime failed: %w", p.soundPath, embedErr)
		}
		return file, cleanup, pathErr
	}
	return stageDefaultSound()
}

// stageDefaultSound writes the embedded chime to a temp file the audio command
// can read.
func stageDefaultSound() (string, func(), error) {
	tmp, err := os.CreateTemp("", "failbell-*.wav")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp sound file: %w", err)
	}
	path := tmp.Name()

	if _, err := tmp.Write(defaultSound); err != nil {
		tmp.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("failed to write temp sound file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("failed to close temp sound file: %w", err)
	}

	return path, func() { os.Remove(path) }, nil
}

func clampVolume(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}
