package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/dori/tasks/internal/model"
)

// SampleTaskTitle is the title of the task created in an empty store
const SampleTaskTitle = "My First Sample Task"

// ListTasks returns all tasks in creation order
func (db *DB) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, title FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask returns a single task by ID, or nil if it does not exist
func (db *DB) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	var t model.Task
	err := db.QueryRowContext(ctx, `SELECT id, title FROM tasks WHERE id = ?`, id).Scan(&t.ID, &t.Title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask creates a new task
func (db *DB) CreateTask(ctx context.Context, title string) (*model.Task, error) {
	now := time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		INSERT INTO tasks (title, created_at, updated_at) VALUES (?, ?, ?)
	`, title, now, now)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.Task{ID: id, Title: title}, nil
}

// UpdateTaskTitle updates a task's title and returns the stored task,
// or nil if the task does not exist
func (db *DB) UpdateTaskTitle(ctx context.Context, id int64, title string) (*model.Task, error) {
	now := time.Now().UTC()
	res, err := db.ExecContext(ctx, `UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?`, title, now, id)
	if err != nil {
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return &model.Task{ID: id, Title: title}, nil
}

// DeleteTask deletes a task and its comments. It reports whether the task existed.
func (db *DB) DeleteTask(ctx context.Context, id int64) (bool, error) {
	// Foreign key cascade removes comments
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SeedSampleTask creates the sample task when the store is empty.
// It reports whether a task was created.
func (db *DB) SeedSampleTask(ctx context.Context) (bool, error) {
	created := false
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (title, created_at, updated_at) VALUES (?, ?, ?)
		`, SampleTaskTitle, now, now); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
