package model

import (
	"time"
)

// Comment is a note attached to a task. Comments are deleted with their task.
type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	TaskID    int64     `json:"task_id"`
}
