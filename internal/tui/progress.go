// Package tui provides the terminal progress view for generation runs.
// It consumes engine events and renders per-task status, wave progress,
// and a final summary.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tbeckett/grammarsmith/internal/engine"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	waveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// taskRow is the display state of one task.
type taskRow struct {
	id       string
	status   string
	duration time.Duration
	err      error
}

// EventMsg wraps an engine event for the bubbletea loop.
type EventMsg struct {
	Event engine.Event
}

// eventsClosedMsg signals that the engine event stream has ended.
type eventsClosedMsg struct{}

// Model is the bubbletea model for a generation run.
type Model struct {
	title    string
	events   <-chan engine.Event
	spinner  spinner.Model
	progress progress.Model

	rows      []taskRow
	order     map[string]int
	total     int
	completed int
	failed    int
	wave      int
	done      bool
	quitting  bool
	width     int
}

// NewModel creates a progress model for a run with total tasks, fed by
// the engine's event stream.
func NewModel(title string, total int, events <-chan engine.Event) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		title:    title,
		events:   events,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		order:    make(map[string]int),
		total:    total,
	}
}

// waitForEvent blocks on the next engine event.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 8
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case EventMsg:
		cmd := m.handleEvent(msg.Event)
		return m, tea.Batch(cmd, m.waitForEvent())

	case eventsClosedMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// handleEvent folds one engine event into the display state.
func (m *Model) handleEvent(ev engine.Event) tea.Cmd {
	switch ev.Type {
	case engine.EventWaveStarted:
		m.wave = ev.Wave + 1

	case engine.EventTaskStarted:
		m.row(ev.TaskID).status = "running"

	case engine.EventTaskCompleted:
		row := m.row(ev.TaskID)
		row.status = "done"
		row.duration = ev.Duration
		m.completed++
		return m.progress.SetPercent(m.percent())

	case engine.EventTaskFailed:
		row := m.row(ev.TaskID)
		row.status = "failed"
		row.duration = ev.Duration
		row.err = ev.Error
		m.completed++
		m.failed++
		return m.progress.SetPercent(m.percent())

	case engine.EventBatchDone:
		m.done = true
		return tea.Quit
	}
	return nil
}

// row finds or creates the display row for a task.
func (m *Model) row(id string) *taskRow {
	if i, ok := m.order[id]; ok {
		return &m.rows[i]
	}
	m.order[id] = len(m.rows)
	m.rows = append(m.rows, taskRow{id: id, status: "pending"})
	return &m.rows[len(m.rows)-1]
}

func (m *Model) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.completed) / float64(m.total)
}

// Failed reports how many tasks failed.
func (m *Model) Failed() int {
	return m.failed
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for i := range m.rows {
		row := &m.rows[i]
		switch row.status {
		case "running":
			b.WriteString(fmt.Sprintf("  %s %s\n", m.spinner.View(), row.id))
		case "done":
			b.WriteString(doneStyle.Render(fmt.Sprintf("  ✓ %s (%s)", row.id, row.duration.Round(time.Millisecond))))
			b.WriteString("\n")
		case "failed":
			b.WriteString(failStyle.Render(fmt.Sprintf("  ✗ %s: %v", row.id, row.err)))
			b.WriteString("\n")
		default:
			b.WriteString(pendingStyle.Render(fmt.Sprintf("  · %s", row.id)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		if m.failed == 0 {
			b.WriteString(doneStyle.Render(fmt.Sprintf("Done: %d/%d tasks", m.completed, m.total)))
		} else {
			b.WriteString(failStyle.Render(fmt.Sprintf("Done with %d failure(s): %d/%d tasks", m.failed, m.completed, m.total)))
		}
	} else {
		b.WriteString(waveStyle.Render(fmt.Sprintf("Wave %d", m.wave)))
		b.WriteString("  ")
		b.WriteString(m.progress.View())
	}
	b.WriteString("\n")

	return b.String()
}

// Run drives the progress view until the event stream ends. It returns
// the number of failed tasks observed.
func Run(title string, total int, events <-chan engine.Event) (int, error) {
	model := NewModel(title, total, events)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return 0, err
	}
	if m, ok := final.(*Model); ok {
		return m.Failed(), nil
	}
	return model.Failed(), nil
}
