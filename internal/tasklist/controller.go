// Package tasklist keeps a local task list in step with the tasks API.
//
// A Controller is owned by exactly one goroutine (the UI loop or a CLI
// command). Commands that need the server return an Op. Running an Op only
// performs the remote call; the Result it yields must be handed back to
// Apply on the owning goroutine, which is the only place state changes.
// Nothing is applied before the server confirms it.
package tasklist

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dori/tasks/internal/model"
)

// Backend is the remote task collection
type Backend interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, title string) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, title string) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Op is a prepared remote call. It is safe to run on any goroutine.
type Op func(ctx context.Context) Result

// Controller owns the task list, the add-form input and the editor
type Controller struct {
	backend Backend
	logger  *slog.Logger

	tasks   []model.Task
	input   string
	editing *model.Task

	initialized bool
	closed      bool
}

// New starts a session against backend. A nil logger discards diagnostics.
func New(backend Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{
		backend: backend,
		logger:  logger.With("session", uuid.NewString()),
	}
	c.logger.Debug("session started")
	return c
}

// Close ends the session. State is dropped and later commands return nil Ops.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.tasks = nil
	c.input = ""
	c.editing = nil
	c.logger.Debug("session closed")
}

// Tasks returns a copy of the local list in display order
func (c *Controller) Tasks() []model.Task {
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Input returns the add-form text
func (c *Controller) Input() string {
	return c.input
}

// SetInput replaces the add-form text
func (c *Controller) SetInput(text string) {
	c.input = text
}

// Editing returns the editor snapshot, if a task is being edited
func (c *Controller) Editing() (model.Task, bool) {
	if c.editing == nil {
		return model.Task{}, false
	}
	return *c.editing, true
}

// Initialize fetches the task collection. Only the first call in a session
// returns an Op.
func (c *Controller) Initialize() Op {
	if c.closed || c.initialized {
		return nil
	}
	c.initialized = true

	backend := c.backend
	return func(ctx context.Context) Result {
		tasks, err := backend.ListTasks(ctx)
		return LoadResult{Tasks: tasks, Err: err}
	}
}

// AddTask creates a task from title. Blank titles return a nil Op.
func (c *Controller) AddTask(title string) Op {
	title, ok := model.NormalizeTitle(title)
	if c.closed || !ok {
		return nil
	}

	backend := c.backend
	return func(ctx context.Context) Result {
		task, err := backend.CreateTask(ctx, title)
		return AddResult{Title: title, Task: task, Err: err}
	}
}

// DeleteTask removes the task with id. The id is not checked locally.
func (c *Controller) DeleteTask(id int64) Op {
	if c.closed {
		return nil
	}

	backend := c.backend
	return func(ctx context.Context) Result {
		err := backend.DeleteTask(ctx, id)
		return DeleteResult{ID: id, Err: err}
	}
}

// BeginEdit puts a copy of task in the editor, replacing any edit in progress
func (c *Controller) BeginEdit(task model.Task) {
	if c.closed {
		return
	}
	snapshot := task
	c.editing = &snapshot
}

// UpdateEditingTitle changes the editor copy only
func (c *Controller) UpdateEditingTitle(text string) {
	if c.editing == nil {
		return
	}
	c.editing.Title = text
}

// CommitEdit sends the edited title. It returns a nil Op when nothing is
// being edited or the title is blank.
func (c *Controller) CommitEdit() Op {
	if c.closed || c.editing == nil {
		return nil
	}
	title, ok := model.NormalizeTitle(c.editing.Title)
	if !ok {
		return nil
	}

	backend := c.backend
	id := c.editing.ID
	return func(ctx context.Context) Result {
		task, err := backend.UpdateTask(ctx, id, title)
		return UpdateResult{ID: id, Task: task, Err: err}
	}
}

// CancelEdit closes the editor without contacting the server
func (c *Controller) CancelEdit() {
	c.editing = nil
}

// Apply folds a finished Op into local state. A failed Op is logged and its
// error returned; state is then left as the operation requires.
func (c *Controller) Apply(res Result) error {
	if res == nil {
		return nil
	}
	if c.closed {
		c.logger.Debug("result after close dropped", "op", res.op())
		return nil
	}

	if err := res.err(); err != nil {
		c.logger.Error("request failed", "op", res.op(), "err", err)
	}
	res.apply(c)
	return res.err()
}

// Run executes op and applies its result on the calling goroutine
func (c *Controller) Run(ctx context.Context, op Op) error {
	if op == nil {
		return nil
	}
	return c.Apply(op(ctx))
}
