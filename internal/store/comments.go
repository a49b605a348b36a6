package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/dori/tasks/internal/model"
)

// ListComments returns the comments of a task, oldest first
func (db *DB) ListComments(ctx context.Context, taskID int64) ([]model.Comment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, text, created_at, task_id
		FROM comments
		WHERE task_id = ?
		ORDER BY id
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.CreatedAt, &c.TaskID); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetComment returns a single comment by ID, or nil if it does not exist
func (db *DB) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	err := db.QueryRowContext(ctx, `
		SELECT id, text, created_at, task_id FROM comments WHERE id = ?
	`, id).Scan(&c.ID, &c.Text, &c.CreatedAt, &c.TaskID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment adds a comment to a task. The caller checks the task exists.
func (db *DB) CreateComment(ctx context.Context, taskID int64, text string) (*model.Comment, error) {
	now := time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		INSERT INTO comments (text, created_at, task_id) VALUES (?, ?, ?)
	`, text, now, taskID)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.Comment{ID: id, Text: text, CreatedAt: now, TaskID: taskID}, nil
}

// UpdateCommentText changes a comment's text and returns the stored comment,
// or nil if the comment does not exist
func (db *DB) UpdateCommentText(ctx context.Context, id int64, text string) (*model.Comment, error) {
	res, err := db.ExecContext(ctx, `UPDATE comments SET text = ? WHERE id = ?`, text, id)
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
	return db.GetComment(ctx, id)
}

// DeleteComment deletes a comment. It reports whether the comment existed.
func (db *DB) DeleteComment(ctx context.Context, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
