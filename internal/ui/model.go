// Package ui is the terminal front end over a tasklist.Controller.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/tasks/internal/model"
	"github.com/dori/tasks/internal/tasklist"
	"github.com/dori/tasks/internal/ui/theme"
)

// Mode represents the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeEdit
	ModeConfirmDelete
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeAdd:
		return "Add"
	case ModeEdit:
		return "Edit"
	case ModeConfirmDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// opDoneMsg carries a finished controller Op back to Update
type opDoneMsg struct {
	res tasklist.Result
}

// Model is the bubbletea model for the task list
type Model struct {
	// ctx bounds every request the model issues
	ctx  context.Context
	ctrl *tasklist.Controller

	keys      KeyMap
	help      help.Model
	addInput  textinput.Model
	editInput textinput.Model

	mode     Mode
	cursor   int
	deleteID int64
	pending  int
	initOp   tasklist.Op

	width  int
	height int
}

// New creates a model driving ctrl. The initial load is issued by Init.
func New(ctx context.Context, ctrl *tasklist.Controller) Model {
	add := textinput.New()
	add.Placeholder = "New task..."
	add.CharLimit = 256
	add.Prompt = "+ "

	edit := textinput.New()
	edit.CharLimit = 256
	edit.Prompt = ""

	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		addInput:  add,
		editInput: edit,
		initOp:    ctrl.Initialize(),
	}
	if m.initOp != nil {
		m.pending = 1
	}
	return m
}

// Init issues the initial fetch
func (m Model) Init() tea.Cmd {
	return m.run(m.initOp)
}

// Mode returns the current input mode
func (m Model) Mode() Mode {
	return m.mode
}

// Pending returns the number of requests still in flight
func (m Model) Pending() int {
	return m.pending
}

// dispatch counts op as in flight and returns the command that runs it
func (m Model) dispatch(op tasklist.Op) (Model, tea.Cmd) {
	if op == nil {
		return m, nil
	}
	m.pending++
	return m, m.run(op)
}

func (m Model) run(op tasklist.Op) tea.Cmd {
	if op == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{res: op(ctx)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.addInput.Width = max(msg.Width-8, 10)
		m.editInput.Width = max(msg.Width-12, 10)
		return m, nil

	case opDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		// Failures are logged by the controller and never shown here.
		_ = m.ctrl.Apply(msg.res)
		m.sync()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.ThemeCycle) {
			theme.SetTheme(theme.Next(theme.Current.Theme))
			return m, nil
		}

		switch m.mode {
		case ModeAdd:
			return m.handleAddMode(msg)
		case ModeEdit:
			return m.handleEditMode(msg)
		case ModeConfirmDelete:
			return m.handleDeleteConfirm(msg)
		default:
			return m.handleNormalMode(msg)
		}
	}

	return m, nil
}

// sync pulls controller state the view depends on after a result lands
func (m *Model) sync() {
	if m.addInput.Value() != m.ctrl.Input() {
		m.addInput.SetValue(m.ctrl.Input())
	}
	if m.mode == ModeEdit {
		if _, ok := m.ctrl.Editing(); !ok {
			m.mode = ModeNormal
			m.editInput.Blur()
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the task under the cursor
func (m Model) selected() (model.Task, bool) {
	tasks := m.ctrl.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.cursor], true
}

// handleNormalMode handles keypresses in normal mode
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.ctrl.Tasks())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		m.mode = ModeAdd
		m.addInput.SetValue(m.ctrl.Input())
		m.addInput.CursorEnd()
		m.addInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.ctrl.BeginEdit(task)
		m.mode = ModeEdit
		m.editInput.SetValue(task.Title)
		m.editInput.CursorEnd()
		m.editInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.deleteID = task.ID
		m.mode = ModeConfirmDelete

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// handleAddMode handles keypresses in add mode. The form stays open after
// a submit so several tasks can be entered in a row.
func (m Model) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m.dispatch(m.ctrl.AddTask(m.ctrl.Input()))
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
		m.addInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	m.ctrl.SetInput(m.addInput.Value())
	return m, cmd
}

// handleEditMode handles keypresses in edit mode. The editor closes when
// the controller reports the update went through.
func (m Model) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m.dispatch(m.ctrl.CommitEdit())
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.CancelEdit()
		m.mode = ModeNormal
		m.editInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	m.ctrl.UpdateEditingTitle(m.editInput.Value())
	return m, cmd
}

// handleDeleteConfirm handles keypresses in delete confirmation
func (m Model) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.mode = ModeNormal
		return m.dispatch(m.ctrl.DeleteTask(m.deleteID))
	case key.Matches(msg, m.keys.No):
		m.mode = ModeNormal
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderAddForm())
	sections = append(sections, m.renderList())
	if m.mode == ModeConfirmDelete {
		sections = append(sections, m.renderConfirm())
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

// renderHeader renders the title bar with the sync indicator
func (m Model) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	left := styles.Header.Render("tasks")
	if m.pending > 0 {
		left = lipgloss.JoinHorizontal(lipgloss.Center, left, styles.Syncing.Render("syncing…"))
	}
	right := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1).
		Render(fmt.Sprintf("theme: %s", t.Name))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderAddForm() string {
	styles := theme.Current.Styles
	if m.mode == ModeAdd {
		return styles.InputFocused.Render(m.addInput.View())
	}
	return styles.Input.Render(m.addInput.View())
}

func (m Model) renderList() string {
	styles := theme.Current.Styles
	tasks := m.ctrl.Tasks()
	if len(tasks) == 0 {
		return styles.Empty.Render("No tasks. Press a to add one.")
	}

	editing, isEditing := m.ctrl.Editing()
	lines := make([]string, 0, len(tasks))
	for i, task := range tasks {
		if m.mode == ModeEdit && isEditing && task.ID == editing.ID {
			lines = append(lines, m.renderEditRow(task))
			continue
		}
		lines = append(lines, m.renderTask(task, i == m.cursor && m.mode != ModeAdd))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTask(task model.Task, isCursor bool) string {
	styles := theme.Current.Styles

	indicator := " "
	if isCursor {
		indicator = ">"
	}
	line := fmt.Sprintf("%s %s %s", indicator, styles.TaskID.Render(fmt.Sprintf("#%d", task.ID)), task.Title)
	if isCursor {
		return styles.TaskSelected.Render(line)
	}
	return styles.TaskNormal.Render(line)
}

func (m Model) renderEditRow(task model.Task) string {
	styles := theme.Current.Styles
	prefix := styles.Prompt.Render(fmt.Sprintf("✎ #%d ", task.ID))
	return styles.TaskSelected.Render(prefix + m.editInput.View())
}

func (m Model) renderConfirm() string {
	styles := theme.Current.Styles
	title := fmt.Sprintf("#%d", m.deleteID)
	for _, task := range m.ctrl.Tasks() {
		if task.ID == m.deleteID {
			title = task.Title
			break
		}
	}
	return styles.Confirm.Render(fmt.Sprintf("Delete %q? (y/n)", title))
}

// renderFooter renders context-aware key hints
func (m Model) renderFooter() string {
	styles := theme.Current.Styles
	var hints string
	switch m.mode {
	case ModeAdd, ModeEdit:
		hints = m.help.View(formKeys(m.keys))
	case ModeConfirmDelete:
		hints = m.help.View(promptKeys(m.keys))
	default:
		hints = m.help.View(m.keys)
	}
	return styles.Footer.Render(hints)
}
