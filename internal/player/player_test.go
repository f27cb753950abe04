package player

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestPlayer returns a player pinned to a platform with no audio command,
// so accepted plays ring the terminal bell into buf instead of spawning a
// subprocess.
func newTestPlayer(buf *bytes.Buffer) (*Player, *time.Time) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := New("", 0.7)
	p.goos = "plan9"
	p.bell = buf
	p.now = func() time.Time { return clock }
	return p, &clock
}

func TestPlayDebouncesRapidRequests(t *testing.T) {
	var buf bytes.Buffer
	p, clock := newTestPlayer(&buf)

	started, err := p.Play()
	require.NoError(t, err)
	require.True(t, started)

	// Everything inside the window is dropped, no matter how many requests.
	for i := 0; i < 5; i++ {
		*clock = clock.Add(200 * time.Millisecond)
		started, err = p.Play()
		require.NoError(t, err)
		require.False(t, started)
	}

	require.Equal(t, "\a", buf.String(), "burst should produce exactly one playback")
}

func TestPlayAcceptsAfterWindowElapses(t *testing.T) {
	var buf bytes.Buffer
	p, clock := newTestPlayer(&buf)

	started, err := p.Play()
	require.NoError(t, err)
	require.True(t, started)

	*clock = clock.Add(DebounceWindow)
	started, err = p.Play()
	require.NoError(t, err)
	require.True(t, started)

	require.Equal(t, "\a\a", buf.String())
}

func TestPlayMissingCustomSoundFallsBack(t *testing.T) {
	var buf bytes.Buffer
	p, _ := newTestPlayer(&buf)
	p.SetSoundPath("/nonexistent/chime.wav")

	started, err := p.Play()
	require.True(t, started, "fallback playback should still happen")
	require.Error(t, err)
	require.Contains(t, err.Error(), "/nonexistent/chime.wav")
	require.Contains(t, err.Error(), "built-in chime")
}

func TestPlayUsesReadableCustomSound(t *testing.T) {
	var buf bytes.Buffer
	p, _ := newTestPlayer(&buf)

	custom := filepath.Join(t.TempDir(), "custom.wav")
	require.NoError(t, os.WriteFile(custom, defaultSound, 0o644))
	p.SetSoundPath(custom)

	started, err := p.Play()
	require.NoError(t, err)
	require.True(t, started)
}

func TestStopKillsInFlightPlayback(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the sleep binary")
	}

	p := New("", 0.7)

	cmd := exec.Command("sleep", "60")
	require.NoError(t, cmd.Start())
	p.current = cmd

	p.Stop()
	require.Nil(t, p.current)

	err := cmd.Wait()
	require.Error(t, err, "killed playback should surface from Wait")
	require.False(t, cmd.ProcessState.Success())
}

func TestStopWithoutPlayback(t *testing.T) {
	p := New("", 0.7)
	require.NotPanics(t, func() {
		p.Stop()
	})
}

func TestVolumeClamped(t *testing.T) {
	p := New("", 3.5)
	require.Equal(t, 1.0, p.Volume())

	p.SetVolume(-2)
	require.Equal(t, 0.0, p.Volume())

	p.SetVolume(0.4)
	require.Equal(t, 0.4, p.Volume())
}

func TestStageDefaultSound(t *testing.T) {
	path, cleanup, err := stageDefaultSound()
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, defaultSound, data)
	require.True(t, strings.HasSuffix(path, ".wav"))

	cleanup()
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "cleanup should remove the temp file")
}

func TestDefaultSoundIsValidWAV(t *testing.T) {
	require.GreaterOrEqual(t, len(defaultSound), 44, "too small for a WAV header")
	require.Equal(t, "RIFF", string(defaultSound[0:4]))
	require.Equal(t, "WAVE", string(defaultSound[8:12]))
	require.Less(t, len(defaultSound), 500*1024, "chime should stay small")
}
