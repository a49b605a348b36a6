package tasklist

import (
	"slices"

	"github.com/dori/tasks/internal/model"
)

// Result is the outcome of an Op. The concrete types below are the only
// implementations.
type Result interface {
	op() string
	err() error
	apply(c *Controller)
}

// LoadResult carries the initial task collection
type LoadResult struct {
	Tasks []model.Task
	Err   error
}

// AddResult carries a created task
type AddResult struct {
	Title string // title that was sent
	Task  model.Task
	Err   error
}

// DeleteResult reports a deletion
type DeleteResult struct {
	ID  int64
	Err error
}

// UpdateResult carries the stored version of an edited task
type UpdateResult struct {
	ID   int64
	Task model.Task
	Err  error
}

func (r LoadResult) op() string   { return "load" }
func (r AddResult) op() string    { return "add" }
func (r DeleteResult) op() string { return "delete" }
func (r UpdateResult) op() string { return "update" }

func (r LoadResult) err() error   { return r.Err }
func (r AddResult) err() error    { return r.Err }
func (r DeleteResult) err() error { return r.Err }
func (r UpdateResult) err() error { return r.Err }

// A failed load leaves the list empty
func (r LoadResult) apply(c *Controller) {
	if r.Err != nil {
		c.tasks = nil
		return
	}
	c.tasks = make([]model.Task, len(r.Tasks))
	copy(c.tasks, r.Tasks)
}

func (r AddResult) apply(c *Controller) {
	if r.Err != nil {
		return
	}
	c.tasks = append(c.tasks, r.Task)
	c.input = ""
}

func (r DeleteResult) apply(c *Controller) {
	if r.Err != nil {
		return
	}
	if i := model.IndexOf(c.tasks, r.ID); i >= 0 {
		c.tasks = slices.Delete(c.tasks, i, i+1)
	}
}

func (r UpdateResult) apply(c *Controller) {
	if r.Err != nil {
		return
	}
	if i := model.IndexOf(c.tasks, r.ID); i >= 0 {
		c.tasks[i] = r.Task
	}
	// A later BeginEdit on another task keeps its editor
	if c.editing != nil && c.editing.ID == r.ID {
		c.editing = nil
	}
}
