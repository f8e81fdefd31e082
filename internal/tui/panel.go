// Package tui is the terminal front panel: knob bars, the two switches, the
// voice slots and a computer-keyboard piano.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/icco/hathor/internal/control"
	"github.com/icco/hathor/internal/panel"
	"github.com/icco/hathor/internal/voice"
)

const (
	keyUp    = "up"
	keyDown  = "down"
	keyLeft  = "left"
	keyRight = "right"

	knobStep          = 0.05
	barWidth          = 20
	refreshInterval   = 50 * time.Millisecond
	maxMessageHistory = 8
	defaultVelocity   = 100
	notesPerOctave    = 12
)

// pianoKeys maps the bottom keyboard row onto one octave, C to B.
var pianoKeys = map[string]uint8{
	"z": 0, "s": 1, "x": 2, "d": 3, "c": 4, "v": 5,
	"g": 6, "b": 7, "h": 8, "n": 9, "j": 10, "m": 11,
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	offStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	logStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Pusher accepts note events without blocking.
type Pusher interface {
	Push(ev control.Event) bool
}

// Cursor reports the slot the last note-on landed in. It must be safe to
// call from the UI goroutine.
type Cursor interface {
	Cursor() int
}

// tickMsg refreshes the voice display.
type tickMsg time.Time

// LogMsg appends a line to the message log, typically a decoded MIDI message.
type LogMsg string

// Model is the bubbletea model of the panel. Knob and switch changes go
// straight to the panel, notes go through the event queue.
type Model struct {
	title  string
	port   string
	panel  *panel.Panel
	pool   *voice.Pool
	alloc  Cursor
	queue  Pusher
	knobs  []control.Channel
	cursor int

	baseNote uint8
	held     map[uint8]bool

	messageHistory []string
	messageCount   int
	width          int
	height         int
}

// New returns the panel model. pool may be nil to hide the voice slots and
// alloc may be nil to hide the cursor.
func New(title string, p *panel.Panel, pool *voice.Pool, alloc Cursor, queue Pusher) *Model {
	m := &Model{
		title:          title,
		panel:          p,
		pool:           pool,
		alloc:          alloc,
		queue:          queue,
		baseNote:       60,
		held:           make(map[uint8]bool),
		messageHistory: make([]string, 0, maxMessageHistory),
	}
	for ch := control.Channel(0); ch < control.NumChannels; ch++ {
		if ch.IsKnob() {
			m.knobs = append(m.knobs, ch)
		}
	}
	return m
}

// SetPort sets the MIDI port name shown in the header. Call before the
// program runs.
func (m *Model) SetPort(name string) { m.port = name }

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case LogMsg:
		m.record(string(msg))
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.releaseAll()
		return m, tea.Quit
	case keyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case keyDown:
		if m.cursor < len(m.knobs)-1 {
			m.cursor++
		}
	case keyLeft:
		m.panel.Nudge(m.knobs[m.cursor], -knobStep)
	case keyRight:
		m.panel.Nudge(m.knobs[m.cursor], knobStep)
	case "f":
		m.panel.Toggle(control.FilterSwitch)
	case "l":
		m.panel.Toggle(control.LFOSwitch)
	case "[":
		if m.baseNote >= notesPerOctave {
			m.releaseAll()
			m.baseNote -= notesPerOctave
		}
	case "]":
		if m.baseNote <= 127-2*notesPerOctave+1 {
			m.releaseAll()
			m.baseNote += notesPerOctave
		}
	case " ":
		m.releaseAll()
	default:
		if offset, ok := pianoKeys[key]; ok {
			m.toggleNote(m.baseNote + offset)
		}
	}
	return m, nil
}

func (m *Model) toggleNote(note uint8) {
	ev := control.Event{Kind: control.NoteOn, Note: note, Velocity: defaultVelocity}
	if m.held[note] {
		ev = control.Event{Kind: control.NoteOff, Note: note}
	}
	if !m.queue.Push(ev) {
		m.record("queue full, dropped " + ev.String())
		return
	}
	if ev.Kind == control.NoteOn {
		m.held[note] = true
	} else {
		delete(m.held, note)
	}
	m.record(ev.String())
}

func (m *Model) releaseAll() {
	if len(m.held) == 0 {
		return
	}
	if m.queue.Push(control.Event{Kind: control.AllNotesOff}) {
		m.held = make(map[uint8]bool)
	}
}

func (m *Model) record(line string) {
	m.messageCount++
	m.messageHistory = append([]string{line}, m.messageHistory...)
	if len(m.messageHistory) > maxMessageHistory {
		m.messageHistory = m.messageHistory[:maxMessageHistory]
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	if m.port != "" {
		b.WriteString(subtitleStyle.Render("MIDI Port: ") + statusStyle.Render(m.port) + "\n\n")
	}

	for i, ch := range m.knobs {
		line := fmt.Sprintf("%-14s %s %3.0f%%", ch, renderBar(m.panel.Knob(ch)), m.panel.Knob(ch)*100)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(renderSwitch("Filter", m.panel.Engaged(control.FilterSwitch)) + "  ")
	b.WriteString(renderSwitch("LFO", m.panel.Engaged(control.LFOSwitch)) + "\n\n")

	if m.pool != nil {
		b.WriteString(subtitleStyle.Render("Voices:") + "\n  ")
		b.WriteString(m.renderVoices() + "\n\n")
	}

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Octave: %s  Message Log: [%d total]", midiNoteName(m.baseNote), m.messageCount)) + "\n")
	if len(m.messageHistory) == 0 {
		b.WriteString("  " + logStyle.Render("(waiting for input)") + "\n")
	}
	for _, line := range m.messageHistory {
		b.WriteString("  " + logStyle.Render(line) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("↑/↓: select knob • ←/→: adjust • f: filter • l: LFO • z..m: notes • [/]: octave • space: all off • q: quit"))

	return b.String()
}

// renderVoices draws one cell per slot and marks the slot the allocator
// cursor points at.
func (m *Model) renderVoices() string {
	cursor := -1
	if m.alloc != nil {
		cursor = m.alloc.Cursor()
	}

	var b strings.Builder
	for i := 0; i < m.pool.Len(); i++ {
		v := m.pool.Voice(i)
		marker := " "
		if i == cursor {
			marker = selectedStyle.Render("▶")
		}
		cell := fmt.Sprintf("%d:%-4s", i+1, "-")
		if v.Gate() {
			cell = noteStyle.Render(fmt.Sprintf("%d:%-4s", i+1, midiNoteName(v.Note())))
		}
		b.WriteString(marker + cell + " ")
	}
	return b.String()
}

func renderBar(position float64) string {
	filled := int(position*barWidth + 0.5)
	return statusStyle.Render(strings.Repeat("█", filled)) + offStyle.Render(strings.Repeat("·", barWidth-filled))
}

func renderSwitch(name string, on bool) string {
	if on {
		return statusStyle.Render("● " + name)
	}
	return offStyle.Render("○ " + name)
}

func midiNoteName(note uint8) string {
	notes := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", notes[note%12], octave)
}
