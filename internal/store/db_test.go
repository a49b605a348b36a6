package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRunsMigrationsTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := db.CreateTask(context.Background(), "persisted"); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer db.Close()

	tasks, err := db.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "persisted" {
		t.Fatalf("tasks after reopen = %+v, want one persisted task", tasks)
	}
}

func TestTaskLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	empty, err := db.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("ListTasks on empty store = %#v, want empty non-nil slice", empty)
	}

	first, err := db.CreateTask(ctx, "first")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	second, err := db.CreateTask(ctx, "second")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("tasks share id %d", first.ID)
	}

	updated, err := db.UpdateTaskTitle(ctx, first.ID, "first, renamed")
	if err != nil {
		t.Fatalf("UpdateTaskTitle failed: %v", err)
	}
	if updated == nil || updated.Title != "first, renamed" {
		t.Fatalf("UpdateTaskTitle = %+v", updated)
	}

	got, err := db.GetTask(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got == nil || got.Title != "first, renamed" {
		t.Fatalf("GetTask = %+v", got)
	}

	tasks, err := db.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Fatalf("ListTasks order = %+v", tasks)
	}

	existed, err := db.DeleteTask(ctx, first.ID)
	if err != nil || !existed {
		t.Fatalf("DeleteTask = (%v, %v), want (true, nil)", existed, err)
	}
	existed, err = db.DeleteTask(ctx, first.ID)
	if err != nil || existed {
		t.Fatalf("second DeleteTask = (%v, %v), want (false, nil)", existed, err)
	}
}

func TestMissingTask(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	got, err := db.GetTask(ctx, 99)
	if err != nil || got != nil {
		t.Fatalf("GetTask(99) = (%+v, %v), want (nil, nil)", got, err)
	}

	updated, err := db.UpdateTaskTitle(ctx, 99, "nope")
	if err != nil || updated != nil {
		t.Fatalf("UpdateTaskTitle(99) = (%+v, %v), want (nil, nil)", updated, err)
	}
}

func TestCommentsCascadeWithTask(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	task, err := db.CreateTask(ctx, "Task")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	comment, err := db.CreateComment(ctx, task.ID, "Original text")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if comment.TaskID != task.ID || comment.CreatedAt.IsZero() {
		t.Fatalf("CreateComment = %+v", comment)
	}

	edited, err := db.UpdateCommentText(ctx, comment.ID, "Updated text")
	if err != nil {
		t.Fatalf("UpdateCommentText failed: %v", err)
	}
	if edited == nil || edited.Text != "Updated text" || edited.TaskID != task.ID {
		t.Fatalf("UpdateCommentText = %+v", edited)
	}

	if _, err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	got, err := db.GetComment(ctx, comment.ID)
	if err != nil {
		t.Fatalf("GetComment failed: %v", err)
	}
	if got != nil {
		t.Fatalf("comment survived task deletion: %+v", got)
	}
}

func TestDeleteComment(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	task, _ := db.CreateTask(ctx, "Task")
	comment, err := db.CreateComment(ctx, task.ID, "To be deleted")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	existed, err := db.DeleteComment(ctx, comment.ID)
	if err != nil || !existed {
		t.Fatalf("DeleteComment = (%v, %v), want (true, nil)", existed, err)
	}

	comments, err := db.ListComments(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("ListComments = %+v, want none", comments)
	}
}

func TestCommentRequiresTask(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.CreateComment(context.Background(), 404, "orphan"); err == nil {
		t.Fatal("CreateComment on missing task succeeded, want foreign key error")
	}
}

func TestSeedSampleTaskOnlyWhenEmpty(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created, err := db.SeedSampleTask(ctx)
	if err != nil || !created {
		t.Fatalf("first SeedSampleTask = (%v, %v), want (true, nil)", created, err)
	}
	created, err = db.SeedSampleTask(ctx)
	if err != nil || created {
		t.Fatalf("second SeedSampleTask = (%v, %v), want (false, nil)", created, err)
	}

	tasks, _ := db.ListTasks(ctx)
	if len(tasks) != 1 || tasks[0].Title != SampleTaskTitle {
		t.Fatalf("tasks after seeding = %+v", tasks)
	}
}

// TestNestedQueriesNoDeadlock guards the single-connection pool: listing
// comments per task must happen after the task rows are closed.
func TestNestedQueriesNoDeadlock(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		task, err := db.CreateTask(ctx, "Task")
		if err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		if _, err := db.CreateComment(ctx, task.ID, "note"); err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
	}

	done := make(chan error, 1)
	go func() {
		tasks, err := db.ListTasks(ctx)
		if err != nil {
			done <- err
			return
		}
		for _, task := range tasks {
			if _, err := db.ListComments(ctx, task.ID); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("nested queries failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out - possible deadlock detected")
	}
}
