package commands

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/synapse-health/guardian/pkg/cli"
	"github.com/synapse-health/guardian/pkg/consult"
)

// liveModel is the bubbletea model for the live consult view.
type liveModel struct {
	consult *consult.Consult
	title   string

	// Latest conflated snapshot from the session core.
	snap    consult.Update
	hasSnap bool

	// Log writer for capturing log output
	logWriter  *cli.LogWriter
	logContent []string

	// UI
	styles cli.Styles
	width  int
	height int

	quitting bool
}

func newLiveModel(c *consult.Consult, logWriter *cli.LogWriter, title string) liveModel {
	return liveModel{
		consult:   c,
		title:     title,
		logWriter: logWriter,
		styles:    cli.NewStyles(cli.DefaultTheme),
	}
}

// ConsultUpdateMsg wraps session snapshots for bubbletea.
type ConsultUpdateMsg consult.Update

// ConsultDoneMsg signals that the session reached a terminal state.
type ConsultDoneMsg struct{}

// LogMsg wraps log messages for bubbletea.
type LogMsg string

// TickMsg is sent periodically to refresh the duration clock.
type TickMsg time.Time

// Init initializes the model.
func (m liveModel) Init() tea.Cmd {
	return tea.Batch(
		m.listenUpdates(),
		m.listenDone(),
		m.listenLogs(),
		m.tick(),
	)
}

func (m liveModel) listenUpdates() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.consult.Updates()
		if !ok {
			return nil
		}
		return ConsultUpdateMsg(u)
	}
}

func (m liveModel) listenDone() tea.Cmd {
	return func() tea.Msg {
		<-m.consult.Done()
		return ConsultDoneMsg{}
	}
}

func (m liveModel) listenLogs() tea.Cmd {
	if m.logWriter == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-m.logWriter.Channel()
		if !ok {
			return nil
		}
		return LogMsg(line)
	}
}

func (m liveModel) tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles messages.
func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.consult.End()
			m.quitting = true
			return m, tea.Quit
		case tea.KeyRunes:
			if len(msg.Runes) != 1 {
				break
			}
			switch msg.Runes[0] {
			case 'q':
				m.consult.End()
				m.quitting = true
				return m, tea.Quit
			case 'p':
				m.consult.Pause()
			case 'r':
				m.consult.Resume()
			case 's':
				m.consult.CheckSafety()
			case 'e':
				m.consult.End()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ConsultUpdateMsg:
		m.snap = consult.Update(msg)
		m.hasSnap = true
		cmds = append(cmds, m.listenUpdates())

	case ConsultDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case LogMsg:
		m.logContent = append(m.logContent, string(msg))
		if len(m.logContent) > 50 {
			m.logContent = m.logContent[len(m.logContent)-50:]
		}
		cmds = append(cmds, m.listenLogs())

	case TickMsg:
		cmds = append(cmds, m.tick())
	}

	return m, tea.Batch(cmds...)
}

func (m liveModel) transcriptLines() []string {
	if !m.hasSnap {
		return []string{"Waiting for transcript..."}
	}
	lines := make([]string, 0, len(m.snap.Transcript))
	for _, e := range m.snap.Transcript {
		ts := e.Timestamp.Format("15:04:05")
		lines = append(lines, fmt.Sprintf("[%s] %-7s %s", ts, e.Speaker, e.Text))
	}
	return lines
}

func (m liveModel) safetyLines() []string {
	var lines []string
	if m.hasSnap && m.snap.Overlay {
		lines = append(lines, cli.StyleCritical.Render("⚠ "+m.snap.OverlayText))
	}
	if m.hasSnap {
		for _, a := range m.snap.Alerts {
			ts := a.Timestamp.Format("15:04:05")
			level := cli.SeverityStyle(string(a.Level)).Render(string(a.Level))
			lines = append(lines, fmt.Sprintf("[%s] %s (%.2f) %s", ts, level, a.RiskScore, a.Message))
		}
	}
	if len(lines) == 0 {
		lines = []string{cli.StyleSafe.Render("No alerts")}
	}
	return lines
}

func (m liveModel) status() string {
	if !m.hasSnap {
		return "CONNECTING"
	}
	s := fmt.Sprintf("%s · %s · %s",
		m.snap.State, m.snap.Connection, cli.FormatDuration(m.snap.Duration))
	if m.snap.Overlay {
		s += " · INTERRUPTION"
	}
	return s
}

// View renders the UI.
func (m liveModel) View() string {
	if m.quitting {
		return "Finalizing consult...\n"
	}

	frame := cli.Frame{
		Styles: m.styles,
		Title:  m.title,
		Status: m.status(),
		Sections: []cli.Section{
			{Label: " Transcript ", Content: m.transcriptLines},
			{Label: " Safety ", Content: m.safetyLines},
			{Label: " Log ", Content: func() []string { return m.logContent }},
		},
		Help: "p=pause  r=resume  s=safety check  e=end  q=quit",
	}

	return frame.Render(m.width, m.height)
}
