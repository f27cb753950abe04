package app

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nateberkopec/failbell/internal/event"
	"github.com/nateberkopec/failbell/internal/persistence"
	"github.com/nateberkopec/failbell/internal/watch"
)

// chimer captures the player operations the model needs. This makes it easy
// to stub in tests without touching the audio system.
type chimer interface {
	Play() (bool, error)
	SetVolume(float64)
	SetSoundPath(string)
	Stop()
}

type focusArea int

const (
	focusLog focusArea = iota
	focusInput
)

type statusKind int

const (
	statusNeutral statusKind = iota
	statusError
	statusSuccess
)

type statusMessage struct {
	text    string
	kind    statusKind
	expires time.Time
}

type area struct {
	top    int
	height int
}

// Config wires external dependencies for the app.
type Config struct {
	Player   chimer
	Settings persistence.Settings
	Log      *watch.Log
	Events   <-chan event.Completion
}

// Model implements the Bubble Tea program.
type Model struct {
	player   chimer
	settings persistence.Settings
	log      *watch.Log
	events   <-chan event.Completion

	focus        focusArea
	failuresOnly bool
	listening    bool

	selectedIndex int
	scrollOffset  int
	width         int
	height        int

	input textinput.Model
	spin  spinner.Model

	notify func(event.Completion)
	now    func() time.Time

	status statusMessage

	listArea  area
	inputArea area
}

// New creates a Bubble Tea model for the notifier.
func New(cfg Config) *Model {
	log := cfg.Log
	if log == nil {
		log = watch.NewLog()
	}

	ti := textinput.New()
	ti.Placeholder = "Path to a custom sound file (empty for the built-in chime)"
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.SetValue(cfg.Settings.SoundPath)
	ti.Blur()

	sp := spinner.New(spinner.WithSpinner(spinner.Ellipsis))

	return &Model{
		player:    cfg.Player,
		settings:  cfg.Settings,
		log:       log,
		events:    cfg.Events,
		listening: cfg.Events != nil,
		input:     ti,
		spin:      sp,
		notify:    notifyFailure,
		now:       time.Now,
	}
}

// Init satisfies the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	spinCmd := func() tea.Msg { return m.spin.Tick() }
	return tea.Batch(textinput.Blink, m.waitForEvent(), spinCmd)
}

// Update drives the Bubble Tea state machine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.maybeExpireStatus()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.configureLayout()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case completionMsg:
		return m, m.absorbCompletion(msg.Completion)
	case listenerClosedMsg:
		m.listening = false
		m.setStatus("Listener closed; no further completions will arrive", statusError)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the TUI.
func (m *Model) View() string {
	return renderView(m)
}

// absorbCompletion records the event and chimes when a failure arrives while
// sound is enabled. Desktop alerts fire on every failure when turned on;
// muting the chime does not mute them.
func (m *Model) absorbCompletion(c event.Completion) tea.Cmd {
	entry := m.log.Append(c, false)

	if c.Failed() {
		if m.settings.Enabled {
			started, err := m.player.Play()
			if err != nil {
				m.setStatus(err.Error(), statusError)
			}
			entry.Chimed = started
		}
		if m.settings.DesktopAlerts {
			m.notify(c)
		}
	}

	m.ensureSelectionBounds()
	return m.waitForEvent()
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-events
		if !ok {
			return listenerClosedMsg{}
		}
		return completionMsg{Completion: c}
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.MouseLeft:
		if m.listArea.contains(msg.Y) {
			row := msg.Y - m.listArea.top
			if row <= 0 {
				return m, nil
			}
			index := m.scrollOffset + row - 1
			if index >= 0 && index < len(m.log.Visible(m.failuresOnly)) {
				m.selectedIndex = index
				m.setFocus(focusLog)
				m.ensureSelectionBounds()
			}
		} else if m.inputArea.contains(msg.Y) {
			m.setFocus(focusInput)
		}
	case tea.MouseWheelUp:
		m.moveSelection(-1)
	case tea.MouseWheelDown:
		m.moveSelection(1)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c", "ctrl+d":
		m.saveState()
		m.player.Stop()
		return m, tea.Quit
	case "tab", "shift+tab":
		m.toggleFocus()
		if m.focus == focusInput {
			return m, nil
		}
	case "esc":
		m.setFocus(focusLog)
	}

	if m.focus == focusInput {
		if key == "enter" {
			m.submitSoundPath()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		m.saveState()
		m.player.Stop()
		return m, tea.Quit
	case "j", "down":
		m.moveSelection(1)
	case "k", "up":
		m.moveSelection(-1)
	case "pgdown", "ctrl+f":
		m.moveSelection(m.dataRows())
	case "pgup", "ctrl+b":
		m.moveSelection(-m.dataRows())
	case "g", "home":
		m.selectedIndex = 0
		m.scrollOffset = 0
	case "G", "end":
		m.selectedIndex = len(m.log.Visible(m.failuresOnly)) - 1
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
	case "s":
		m.toggleSound()
	case "n":
		m.toggleDesktopAlerts()
	case "t":
		m.testSound()
	case "f":
		m.failuresOnly = !m.failuresOnly
		m.selectedIndex = 0
		m.scrollOffset = 0
		if m.failuresOnly {
			m.setStatus("Showing failures only", statusNeutral)
		} else {
			m.setStatus("Showing all completions", statusNeutral)
		}
	case "d", "x":
		m.dismissSelected()
	case "C":
		m.log.Clear()
		m.selectedIndex = 0
		m.scrollOffset = 0
		m.setStatus("Cleared completion log", statusNeutral)
	case "+", "=":
		m.adjustVolume(0.1)
	case "-", "_":
		m.adjustVolume(-0.1)
	}

	return m, nil
}

// toggleSound flips the enabled flag. Subsequent failures make no sound until
// it is flipped back; the choice is persisted immediately.
func (m *Model) toggleSound() {
	m.settings.Enabled = !m.settings.Enabled
	if m.settings.Enabled {
		m.setStatus("Sound enabled", statusSuccess)
	} else {
		m.setStatus("Sound muted", statusNeutral)
	}
	m.persistSettings()
}

func (m *Model) toggleDesktopAlerts() {
	m.settings.DesktopAlerts = !m.settings.DesktopAlerts
	if m.settings.DesktopAlerts {
		m.setStatus("Desktop alerts enabled", statusSuccess)
	} else {
		m.setStatus("Desktop alerts disabled", statusNeutral)
	}
	m.persistSettings()
}

// testSound previews the chime regardless of the enabled flag, still subject
// to the debounce.
func (m *Model) testSound() {
	started, err := m.player.Play()
	switch {
	case err != nil:
		m.setStatus(err.Error(), statusError)
	case !started:
		m.setStatus("Still chiming, try again in a moment", statusNeutral)
	default:
		m.setStatus("Playing test chime", statusSuccess)
	}
}

func (m *Model) adjustVolume(delta float64) {
	// Round to whole percent so repeated steps don't accumulate float error.
	volume := math.Round((m.settings.Volume+delta)*100) / 100
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	m.settings.Volume = volume
	m.player.SetVolume(volume)
	m.setStatus(fmt.Sprintf("Volume %d%%", int(volume*100+0.5)), statusNeutral)
	m.persistSettings()
}

func (m *Model) submitSoundPath() {
	value := strings.TrimSpace(m.input.Value())

	if value == "" {
		m.settings.SoundPath = ""
		m.player.SetSoundPath("")
		m.setStatus("Using the built-in chime", statusSuccess)
		m.persistSettings()
		m.setFocus(focusLog)
		return
	}

	if _, err := os.Stat(value); err != nil {
		m.setStatus(fmt.Sprintf("Sound file not found: %s", value), statusError)
		return
	}

	m.settings.SoundPath = value
	m.player.SetSoundPath(value)
	m.setStatus(fmt.Sprintf("Using sound %s", value), statusSuccess)
	m.persistSettings()
	m.setFocus(focusLog)
}

func (m *Model) dismissSelected() {
	entry := m.selectedEntry()
	if entry == nil {
		return
	}
	m.log.Dismiss(entry.ID)
	m.ensureSelectionBounds()
	m.setStatus(fmt.Sprintf("Dismissed %s", entryLabel(entry)), statusNeutral)
}

func (m *Model) selectedEntry() *watch.Entry {
	entries := m.log.Visible(m.failuresOnly)
	if len(entries) == 0 {
		return nil
	}
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
	if m.selectedIndex >= len(entries) {
		m.selectedIndex = len(entries) - 1
	}
	return entries[m.selectedIndex]
}

func (m *Model) moveSelection(delta int) {
	entries := m.log.Visible(m.failuresOnly)
	if len(entries) == 0 {
		m.selectedIndex = 0
		m.scrollOffset = 0
		return
	}
	m.selectedIndex += delta
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
	if m.selectedIndex >= len(entries) {
		m.selectedIndex = len(entries) - 1
	}
	m.ensureSelectionBounds()
}

func (m *Model) ensureSelectionBounds() {
	dataRows := m.dataRows()
	if dataRows <= 0 {
		return
	}
	if m.selectedIndex < m.scrollOffset {
		m.scrollOffset = m.selectedIndex
	}
	if m.selectedIndex >= m.scrollOffset+dataRows {
		m.scrollOffset = m.selectedIndex - dataRows + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
	maxScroll := len(m.log.Visible(m.failuresOnly)) - dataRows
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scrollOffset > maxScroll {
		m.scrollOffset = maxScroll
	}
}

func (m *Model) dataRows() int {
	rows := m.listArea.height - 1 // header consumes one row
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) toggleFocus() {
	if m.focus == focusLog {
		m.setFocus(focusInput)
	} else {
		m.setFocus(focusLog)
	}
}

func (m *Model) setFocus(area focusArea) {
	if m.focus == area {
		return
	}
	m.focus = area
	if area == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) configureLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	const (
		helpHeight   = 1
		statusHeight = 2
		inputHeight  = 3
	)
	listHeight := m.height - (helpHeight + statusHeight + inputHeight)
	if listHeight < 5 {
		listHeight = 5
	}
	m.listArea = area{
		top:    helpHeight,
		height: listHeight,
	}
	m.inputArea = area{
		top:    m.height - inputHeight,
		height: inputHeight,
	}
	m.input.Width = max(10, m.width-2)
}

func (m *Model) persistSettings() {
	if err := persistence.SaveSettings(m.settings); err != nil {
		m.setStatus(fmt.Sprintf("Failed to save settings: %v", err), statusError)
	}
}

func (m *Model) saveState() {
	persistence.SaveSettings(m.settings)
	persistence.SaveLog(m.log)
}

func (m *Model) setStatus(text string, kind statusKind) {
	if text == "" {
		m.status = statusMessage{}
		return
	}
	m.status = statusMessage{
		text:    text,
		kind:    kind,
		expires: time.Now().Add(10 * time.Second),
	}
}

func (m *Model) maybeExpireStatus() {
	if m.status.text == "" {
		return
	}
	if time.Now().After(m.status.expires) {
		m.status = statusMessage{}
	}
}

func (a area) contains(y int) bool {
	return y >= a.top && y < a.top+a.height
}

type completionMsg struct {
	Completion event.Completion
}

type listenerClosedMsg struct{}

func entryLabel(entry *watch.Entry) string {
	return truncate(entry.Completion.Command, 40)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
