package model

import "strings"

// Task represents a todo item as the server stores it
type Task struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// NormalizeTitle trims surrounding whitespace from a title.
// An empty result means the title is not usable.
func NormalizeTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	return title, title != ""
}

// IndexOf returns the position of the task with the given ID, or -1
func IndexOf(tasks []Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
