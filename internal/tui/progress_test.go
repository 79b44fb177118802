package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbeckett/grammarsmith/internal/engine"
)

func apply(t *testing.T, m *Model, ev engine.Event) {
	t.Helper()
	m.handleEvent(ev)
}

func TestModel_TracksTaskLifecycle(t *testing.T) {
	m := NewModel("generate zealot", 2, nil)

	apply(t, m, engine.Event{Type: engine.EventWaveStarted, Wave: 0, WaveSize: 2})
	apply(t, m, engine.Event{Type: engine.EventTaskStarted, TaskID: "tm-grammar"})
	apply(t, m, engine.Event{Type: engine.EventTaskCompleted, TaskID: "tm-grammar", Duration: 5 * time.Millisecond})
	apply(t, m, engine.Event{Type: engine.EventTaskStarted, TaskID: "readme"})
	apply(t, m, engine.Event{Type: engine.EventTaskFailed, TaskID: "readme", Error: errors.New("boom")})

	if m.completed != 2 {
		t.Errorf("completed = %d, want 2", m.completed)
	}
	if m.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", m.Failed())
	}

	view := m.View()
	if !strings.Contains(view, "tm-grammar") {
		t.Errorf("view missing completed task:\n%s", view)
	}
	if !strings.Contains(view, "boom") {
		t.Errorf("view missing failure detail:\n%s", view)
	}
}

func TestModel_BatchDoneQuits(t *testing.T) {
	m := NewModel("generate", 1, nil)

	cmd := m.handleEvent(engine.Event{Type: engine.EventBatchDone})
	if cmd == nil {
		t.Fatal("batch_done should produce a quit command")
	}
	if !m.done {
		t.Error("model should be marked done")
	}

	view := m.View()
	if !strings.Contains(view, "Done") {
		t.Errorf("final view missing summary:\n%s", view)
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := NewModel("generate", 1, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
}

func TestModel_EventStreamClosed(t *testing.T) {
	events := make(chan engine.Event)
	close(events)

	m := NewModel("generate", 0, events)
	msg := m.waitForEvent()()
	if _, ok := msg.(eventsClosedMsg); !ok {
		t.Fatalf("msg = %T, want eventsClosedMsg", msg)
	}
}

func TestModel_WaitForEventDelivers(t *testing.T) {
	events := make(chan engine.Event, 1)
	events <- engine.Event{Type: engine.EventTaskStarted, TaskID: "x"}

	m := NewModel("generate", 1, events)
	msg := m.waitForEvent()()
	ev, ok := msg.(EventMsg)
	if !ok {
		t.Fatalf("msg = %T, want EventMsg", msg)
	}
	if ev.Event.TaskID != "x" {
		t.Errorf("TaskID = %q, want x", ev.Event.TaskID)
	}
}
