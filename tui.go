package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"horch/state"
)

// TUI message types
type AudioLevelMsg struct{ Level float64 }
type SpeechMsg struct{ Active bool }
type ModeLineMsg struct{ Text string }
type DeviceLineMsg struct{ Text string }
type tickMsg time.Time

// renderInterval is the fixed dashboard refresh period (10 Hz).
const renderInterval = 100 * time.Millisecond

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

// Styles are built once; the render loop only applies them.
var (
	boxIdleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("4")).
			Foreground(lipgloss.Color("7")).
			Align(lipgloss.Center).
			Padding(0, 1).
			Width(16)
	boxHotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Foreground(lipgloss.Color("10")).
			Bold(true).
			Align(lipgloss.Center).
			Padding(0, 1).
			Width(16)
	countStyle    = lipgloss.NewStyle().Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	wordsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	speechStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	levelOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	levelOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
)

type tuiModel struct {
	store *state.Store

	snap          state.Snapshot
	width, height int
	level         float64
	speech        bool
	modeLine      string
	deviceLine    string
}

// NewDashboard builds the Bubble Tea program around a read-only store
// handle; every tick takes a snapshot, the model never mutates the store.
func NewDashboard(store *state.Store) *tea.Program {
	m := tuiModel{store: store, snap: store.Snapshot()}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(renderInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		m.snap = m.store.Snapshot()
		return m, tuiTick()

	case AudioLevelMsg:
		// Smoothed so the meter does not flicker.
		m.level = m.level*0.6 + msg.Level*0.4

	case SpeechMsg:
		m.speech = msg.Active

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Status line
	status := dimStyle.Render("○ listening")
	if m.speech {
		status = speechStyle.Render("● speech")
	}
	b.WriteString(status + "  " + renderLevelBar(m.level) + "\n")
	if m.modeLine != "" {
		b.WriteString(dimStyle.Render(m.modeLine) + "\n")
	}
	if m.deviceLine != "" {
		b.WriteString(dimStyle.Render(m.deviceLine) + "\n")
	}
	if m.snap.DroppedFrames > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠ %d audio frames dropped", m.snap.DroppedFrames)) + "\n")
	}
	b.WriteString("\n")

	// Keyword boxes
	b.WriteString(renderKeywordBoxes(m.snap, m.width) + "\n\n")

	// Rolling words
	b.WriteString(titleStyle.Render("Recognized words") + "\n")
	b.WriteString(renderWordLine(m.snap.Words, m.width-2) + "\n\n")

	// Execution log tail
	b.WriteString(titleStyle.Render("Script executions") + "\n")
	b.WriteString(renderLogTail(m.snap.Log, m.width-2))

	b.WriteString("\n" + dimStyle.Render("q to quit · horch "+version))
	return b.String()
}

func renderKeywordBoxes(snap state.Snapshot, width int) string {
	boxes := make([]string, 0, len(snap.Keywords))
	for _, kw := range snap.Keywords {
		style := boxIdleStyle
		if kw.Highlighted {
			style = boxHotStyle
		}
		content := kw.Keyword + "\n" + countStyle.Render(fmt.Sprintf("%d", kw.Count))
		boxes = append(boxes, style.Render(content))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
	if width > 0 && lipgloss.Width(row) > width {
		// Narrow terminal: stack instead of clipping.
		return lipgloss.JoinVertical(lipgloss.Left, boxes...)
	}
	return row
}

func renderWordLine(words []string, width int) string {
	if len(words) == 0 {
		return dimStyle.Render("waiting for speech...")
	}
	line := strings.Join(words, " ")
	// Keep the newest words when the line overflows.
	if width > 0 {
		line = truncateLeft(line, width)
	}
	return wordsStyle.Render(line)
}

func renderLogTail(log []state.ExecutionRecord, width int) string {
	if len(log) == 0 {
		return dimStyle.Render("no script executions yet")
	}
	var b strings.Builder
	for i, rec := range log {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatExecution(rec, width))
	}
	return b.String()
}

func formatExecution(rec state.ExecutionRecord, width int) string {
	var style lipgloss.Style
	switch rec.Status {
	case state.StatusOK:
		style = okStyle
	case state.StatusSkipped:
		style = skipStyle
	default:
		style = failStyle
	}
	line := fmt.Sprintf("%s  %-10s %s",
		rec.At.Format("15:04:05"), rec.Keyword, strings.ToUpper(string(rec.Status)))
	if snippet := firstLine(rec.Snippet); snippet != "" {
		line += " | " + snippet
	}
	if width > 0 {
		line = truncateRight(line, width)
	}
	return style.Render(line)
}

// Truncation counts runes, not bytes: recognized words keep their umlauts
// until normalization, and cutting mid-rune would mangle them.

func truncateLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "…" + string(r[len(r)-width+1:])
}

func truncateRight(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

const levelBarWidth = 20

func renderLevelBar(level float64) string {
	filled := int(level * 3 * levelBarWidth) // mic RMS rarely exceeds ~0.3
	if filled > levelBarWidth {
		filled = levelBarWidth
	}
	return levelOnStyle.Render(strings.Repeat("█", filled)) +
		levelOffStyle.Render(strings.Repeat("░", levelBarWidth-filled))
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

func tuiQuit() {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Quit()
	}
}
