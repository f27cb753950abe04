package event

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// ErrNotRunning indicates that no notifier is listening on the socket.
var ErrNotRunning = errors.New("failbell is not listening")

// connReadTimeout bounds how long a hook connection may dribble its event.
const connReadTimeout = 5 * time.Second

// Listener accepts completion reports on a unix socket and delivers them on a
// channel. Malformed lines are dropped rather than treated as fatal: the
// sender is a fire-and-forget shell hook that nobody is watching for errors.
type Listener struct {
	ln     net.Listener
	events chan Completion
	done   chan struct{}

	closeOnce sync.Once
}

// Listen binds the socket, removing a stale file left behind by a crashed
// process. A live notifier keeps its socket bound, so an unconnectable file
// at the path is safe to remove.
func Listen(path string) (*Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if conn, dialErr := net.DialTimeout("unix", path, time.Second); dialErr == nil {
			conn.Close()
			return nil, fmt.Errorf("another failbell is already listening on %s", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", path, err)
	}

	l := &Listener{
		ln:     ln,
		events: make(chan Completion, 16),
		done:   make(chan struct{}),
	}
	go l.acceptLoop()
	return l, nil
}

// Events returns the stream of decoded completions.
func (l *Listener) Events() <-chan Completion {
	return l.events
}

// Addr returns the socket path the listener is bound to.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Close stops accepting connections and removes the socket file. Events
// already decoded may still be delivered to a draining reader.
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.ln.Close()
	})
	return err
}

func (l *Listener) acceptLoop() {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return
		}
		go l.handle(conn)
	}
}

func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(connReadTimeout))

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var c Completion
		if err := json.Unmarshal(line, &c); err != nil {
			continue
		}
		if strings.TrimSpace(c.Command) == "" {
			continue
		}
		if !validExitCode(c.ExitCode) {
			continue
		}
		if c.FinishedAt.IsZero() {
			c.FinishedAt = time.Now()
		}

		select {
		case l.events <- c:
		case <-l.done:
			return
		}
	}
}

// Send delivers one completion to a running notifier and closes the
// connection. A missing or unconnectable socket yields ErrNotRunning so
// callers can treat "nobody is listening" as a quiet no-op.
func Send(path string, c Completion) error {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
			return ErrNotRunning
		}
		return fmt.Errorf("failed to dial %s: %w", path, err)
	}
	defer conn.Close()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal completion: %w", err)
	}
	data = append(data, '\n')

	conn.SetWriteDeadline(time.Now().Add(time.Second))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to write completion: %w", err)
	}
	return nil
}
