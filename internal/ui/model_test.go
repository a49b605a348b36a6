package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/tasks/internal/model"
	"github.com/dori/tasks/internal/tasklist"
	"github.com/dori/tasks/internal/testutil"
	"github.com/dori/tasks/internal/ui/theme"
)

var errNetwork = errors.New("connection refused")

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// settle runs cmd and feeds finished ops back into the model. Commands that
// are not controller ops, such as cursor blinks, are dropped.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		done, ok := cmd().(opDoneMsg)
		if !ok {
			return m
		}
		m, cmd = send(m, done)
	}
	return m
}

// press sends a key and settles whatever it triggers
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	m, cmd := send(m, msg)
	return settle(t, m, cmd)
}

// typeText sends text to the focused field. The cursor blink it schedules
// is not run.
func typeText(m Model, text string) Model {
	m, _ = send(m, runes(text))
	return m
}

func newModel(t *testing.T, tasks ...model.Task) (Model, *tasklist.Controller, *testutil.FakeBackend) {
	t.Helper()
	backend := testutil.NewFakeBackend(tasks...)
	ctrl := tasklist.New(backend, nil)
	t.Cleanup(ctrl.Close)

	m := New(context.Background(), ctrl)
	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = settle(t, m, m.Init())
	return m, ctrl, backend
}

func TestInitLoadsTasks(t *testing.T) {
	backend := testutil.NewFakeBackend(model.Task{ID: 1, Title: "Buy milk"})
	ctrl := tasklist.New(backend, nil)
	defer ctrl.Close()

	m := New(context.Background(), ctrl)
	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d before load, want 1", m.Pending())
	}
	if !strings.Contains(m.View(), "syncing") {
		t.Error("view does not show the sync indicator while loading")
	}

	m = settle(t, m, m.Init())
	if m.Pending() != 0 {
		t.Fatalf("Pending() = %d after load, want 0", m.Pending())
	}
	view := m.View()
	if !strings.Contains(view, "Buy milk") {
		t.Errorf("view missing loaded task:\n%s", view)
	}
	if strings.Contains(view, "syncing") {
		t.Error("sync indicator still shown after load")
	}
}

func TestLoadFailureShowsEmptyListWithoutError(t *testing.T) {
	backend := testutil.NewFakeBackend(model.Task{ID: 1, Title: "Buy milk"})
	backend.ListErr = errNetwork
	ctrl := tasklist.New(backend, nil)
	defer ctrl.Close()

	m := New(context.Background(), ctrl)
	m = settle(t, m, m.Init())

	view := m.View()
	if !strings.Contains(view, "No tasks") {
		t.Errorf("view should show the empty list:\n%s", view)
	}
	if strings.Contains(view, errNetwork.Error()) {
		t.Errorf("view shows the error:\n%s", view)
	}
}

func TestAddFormSubmitsAndStaysOpen(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m = press(t, m, runes("a"))
	if m.Mode() != ModeAdd {
		t.Fatalf("mode = %v, want Add", m.Mode())
	}

	m = typeText(m, "Buy milk")
	if ctrl.Input() != "Buy milk" {
		t.Fatalf("controller input = %q, want %q", ctrl.Input(), "Buy milk")
	}

	m = press(t, m, enter)
	if m.Mode() != ModeAdd {
		t.Errorf("mode = %v after submit, want Add", m.Mode())
	}
	tasks := ctrl.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Fatalf("tasks = %+v", tasks)
	}
	if ctrl.Input() != "" || m.addInput.Value() != "" {
		t.Errorf("input not cleared: ctrl=%q form=%q", ctrl.Input(), m.addInput.Value())
	}

	m = press(t, m, esc)
	if m.Mode() != ModeNormal {
		t.Errorf("mode = %v after esc, want Normal", m.Mode())
	}
}

func TestAddFailureKeepsInput(t *testing.T) {
	m, ctrl, backend := newModel(t)
	backend.CreateErr = errNetwork

	m = press(t, m, runes("a"))
	m = typeText(m, "Buy milk")
	m = press(t, m, enter)

	if len(ctrl.Tasks()) != 0 {
		t.Fatalf("tasks = %+v, want none", ctrl.Tasks())
	}
	if m.addInput.Value() != "Buy milk" {
		t.Errorf("form = %q, want the typed title kept", m.addInput.Value())
	}
	if strings.Contains(m.View(), errNetwork.Error()) {
		t.Error("view shows the error")
	}
}

func TestBlankAddSendsNothing(t *testing.T) {
	m, _, backend := newModel(t)

	m = press(t, m, runes("a"))
	m = typeText(m, "   ")
	m, cmd := send(m, enter)
	if cmd != nil {
		t.Fatal("blank submit returned a command")
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
	if n := len(backend.Calls()); n != 1 {
		t.Errorf("backend saw %d calls, want only the load", n)
	}
}

func TestKeysTypeIntoAddForm(t *testing.T) {
	m, ctrl, _ := newModel(t, model.Task{ID: 1, Title: "a"})

	m = press(t, m, runes("a"))
	m = typeText(m, "q")
	m = typeText(m, "d")

	if m.Mode() != ModeAdd {
		t.Fatalf("mode = %v, want Add", m.Mode())
	}
	if ctrl.Input() != "qd" {
		t.Errorf("input = %q, want %q", ctrl.Input(), "qd")
	}
}

func TestEditCommitClosesEditor(t *testing.T) {
	m, ctrl, backend := newModel(t, model.Task{ID: 1, Title: "a"}, model.Task{ID: 2, Title: "Buy milk"})

	m = press(t, m, runes("j"))
	m = press(t, m, enter)
	if m.Mode() != ModeEdit {
		t.Fatalf("mode = %v, want Edit", m.Mode())
	}
	editing, ok := ctrl.Editing()
	if !ok || editing.ID != 2 {
		t.Fatalf("Editing() = %+v, %v", editing, ok)
	}

	m = typeText(m, " now")
	m = press(t, m, enter)

	if m.Mode() != ModeNormal {
		t.Errorf("mode = %v after commit, want Normal", m.Mode())
	}
	if _, ok := ctrl.Editing(); ok {
		t.Error("editor still open after commit")
	}
	if got := ctrl.Tasks()[1].Title; got != "Buy milk now" {
		t.Errorf("title = %q, want %q", got, "Buy milk now")
	}

	calls := backend.Calls()
	last := calls[len(calls)-1]
	if last.Method != "update" || last.ID != 2 {
		t.Errorf("last call = %+v", last)
	}
}

func TestEditFailureKeepsEditorOpen(t *testing.T) {
	m, ctrl, backend := newModel(t, model.Task{ID: 1, Title: "Buy milk"})
	backend.UpdateErr = errNetwork

	m = press(t, m, enter)
	m = typeText(m, "!")
	m = press(t, m, enter)

	if m.Mode() != ModeEdit {
		t.Errorf("mode = %v, want Edit", m.Mode())
	}
	editing, ok := ctrl.Editing()
	if !ok || editing.Title != "Buy milk!" {
		t.Errorf("Editing() = %+v, %v", editing, ok)
	}
	if got := ctrl.Tasks()[0].Title; got != "Buy milk" {
		t.Errorf("list entry changed to %q", got)
	}
}

func TestEditCancel(t *testing.T) {
	m, ctrl, backend := newModel(t, model.Task{ID: 1, Title: "Buy milk"})

	m = press(t, m, enter)
	m = typeText(m, "xyz")
	m = press(t, m, esc)

	if m.Mode() != ModeNormal {
		t.Errorf("mode = %v, want Normal", m.Mode())
	}
	if _, ok := ctrl.Editing(); ok {
		t.Error("editor still open")
	}
	if n := len(backend.Calls()); n != 1 {
		t.Errorf("backend saw %d calls, want only the load", n)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, ctrl, backend := newModel(t, model.Task{ID: 1, Title: "a"}, model.Task{ID: 2, Title: "b"})

	m = press(t, m, runes("d"))
	if m.Mode() != ModeConfirmDelete {
		t.Fatalf("mode = %v, want Delete", m.Mode())
	}
	if !strings.Contains(m.View(), "(y/n)") {
		t.Error("confirmation prompt not shown")
	}

	m = press(t, m, runes("n"))
	if m.Mode() != ModeNormal || len(ctrl.Tasks()) != 2 {
		t.Fatalf("declined delete changed state: mode=%v tasks=%+v", m.Mode(), ctrl.Tasks())
	}

	m = press(t, m, runes("j"))
	m = press(t, m, runes("d"))
	m = press(t, m, runes("y"))

	tasks := ctrl.Tasks()
	if len(tasks) != 1 || tasks[0].ID != 1 {
		t.Fatalf("tasks = %+v, want only id 1", tasks)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want it clamped to 0", m.cursor)
	}

	calls := backend.Calls()
	if last := calls[len(calls)-1]; last.Method != "delete" || last.ID != 2 {
		t.Errorf("last call = %+v", last)
	}
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	m, ctrl, backend := newModel(t, model.Task{ID: 1, Title: "a"})
	backend.DeleteErr = errNetwork

	m = press(t, m, runes("d"))
	m = press(t, m, runes("y"))

	if len(ctrl.Tasks()) != 1 {
		t.Fatalf("tasks = %+v, want the entry kept", ctrl.Tasks())
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestCursorBounds(t *testing.T) {
	m, _, _ := newModel(t, model.Task{ID: 1, Title: "a"}, model.Task{ID: 2, Title: "b"})

	m = press(t, m, runes("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	m = press(t, m, runes("j"))
	m = press(t, m, runes("j"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestThemeCycle(t *testing.T) {
	defer theme.SetTheme(theme.Nord)
	m, _, _ := newModel(t)

	before := theme.Current.Theme.Name
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if theme.Current.Theme.Name == before {
		t.Fatalf("theme still %q", before)
	}
	if !strings.Contains(m.View(), "theme: "+theme.Current.Theme.Name) {
		t.Error("header does not name the new theme")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel(t)

	_, cmd := send(m, runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
