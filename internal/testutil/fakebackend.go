// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/dori/tasks/internal/model"
)

// ErrNotFound is returned when a task id is unknown.
var ErrNotFound = errors.New("not found")

// Call records one request made against a FakeBackend.
type Call struct {
	Method string // "list", "create", "update" or "delete"
	ID     int64
	Title  string
}

// FakeBackend is an in-memory task collection for testing.
// It is safe for concurrent use.
type FakeBackend struct {
	mu     sync.Mutex
	tasks  []model.Task
	nextID int64
	calls  []Call

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// NewFakeBackend creates a FakeBackend holding tasks. New ids start after
// the largest given id.
func NewFakeBackend(tasks ...model.Task) *FakeBackend {
	f := &FakeBackend{nextID: 1}
	for _, t := range tasks {
		f.tasks = append(f.tasks, t)
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
	return f
}

// SetNextID sets the id the next created task receives.
func (f *FakeBackend) SetNextID(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID = id
}

// Calls returns the requests made so far.
func (f *FakeBackend) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Stored returns the server-side tasks.
func (f *FakeBackend) Stored() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ListTasks implements tasklist.Backend.
func (f *FakeBackend) ListTasks(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "list"})
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]model.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

// CreateTask implements tasklist.Backend.
func (f *FakeBackend) CreateTask(ctx context.Context, title string) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "create", Title: title})
	if f.CreateErr != nil {
		return model.Task{}, f.CreateErr
	}
	t := model.Task{ID: f.nextID, Title: title}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements tasklist.Backend.
func (f *FakeBackend) UpdateTask(ctx context.Context, id int64, title string) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "update", ID: id, Title: title})
	if f.UpdateErr != nil {
		return model.Task{}, f.UpdateErr
	}
	i := model.IndexOf(f.tasks, id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	f.tasks[i].Title = title
	return f.tasks[i], nil
}

// DeleteTask implements tasklist.Backend.
func (f *FakeBackend) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "delete", ID: id})
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	i := model.IndexOf(f.tasks, id)
	if i < 0 {
		return ErrNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}
