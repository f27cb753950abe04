package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nateberkopec/failbell/internal/app"
	"github.com/nateberkopec/failbell/internal/event"
	"github.com/nateberkopec/failbell/internal/hook"
	"github.com/nateberkopec/failbell/internal/persistence"
	"github.com/nateberkopec/failbell/internal/player"
	"github.com/nateberkopec/failbell/internal/watch"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "send":
			os.Exit(runSend(os.Args[2:]))
		case "hook":
			os.Exit(runHook(os.Args[2:]))
		}
	}
	os.Exit(runWatch(os.Args[1:]))
}

// runWatch starts the listener and the status TUI. Flags override the stored
// settings for this session and are persisted on the next settings save.
func runWatch(args []string) int {
	var (
		soundPath     string
		volume        float64
		muted         bool
		desktopAlerts bool
	)

	fs := flag.NewFlagSet("failbell", flag.ExitOnError)
	fs.StringVar(&soundPath, "sound", "", "path to a custom sound file (default: built-in chime)")
	fs.Float64Var(&volume, "volume", -1, "playback volume between 0 and 1")
	fs.BoolVar(&muted, "muted", false, "start with sound disabled")
	fs.BoolVar(&desktopAlerts, "desktop-alerts", false, "also send a desktop notification per failure")
	fs.Parse(args)

	settings, err := persistence.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		settings = persistence.DefaultSettings()
	}
	if soundPath != "" {
		settings.SoundPath = soundPath
	}
	if volume >= 0 {
		settings.Volume = volume
	}
	if muted {
		settings.Enabled = false
	}
	if desktopAlerts {
		settings.DesktopAlerts = true
	}

	socketPath, err := event.DefaultSocketPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	listener, err := event.Listen(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer listener.Close()

	log := watch.NewLog()
	if err := persistence.LoadLog(log); err != nil {
	}

	cfg := app.Config{
		Player:   player.New(settings.SoundPath, settings.Volume),
		Settings: settings,
		Log:      log,
		Events:   listener.Events(),
	}

	program := tea.NewProgram(
		app.New(cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runSend delivers one completion event to a running notifier. A notifier
// that is not running is a quiet success: the shell hook calls this after
// every command and must never disturb the shell.
func runSend(args []string) int {
	fs := flag.NewFlagSet("failbell send", flag.ExitOnError)
	exitCode := fs.Int("exit", 0, "exit code of the finished command")
	command := fs.String("command", "", "command line that finished")
	dir := fs.String("dir", "", "working directory of the command")
	duration := fs.Duration("duration", 0, "how long the command ran")
	fs.Parse(args)

	c, err := event.New(*command, *exitCode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	c.Dir = *dir
	c.Duration = *duration
	c.ShellPID = os.Getppid()

	socketPath, err := event.DefaultSocketPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := event.Send(socketPath, c); err != nil {
		if errors.Is(err, event.ErrNotRunning) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runHook prints the shell snippet that wires completion reporting into the
// user's shell.
func runHook(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: failbell hook <%s>\n", shellList())
		return 2
	}
	snippet, err := hook.Snippet(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	fmt.Print(snippet)
	return 0
}

func shellList() string {
	out := ""
	for i, shell := range hook.Shells {
		if i > 0 {
			out += "|"
		}
		out += shell
	}
	return out
}
