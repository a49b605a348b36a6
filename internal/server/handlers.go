package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type titleRequest struct {
	Title *string `json:"title"`
}

type textRequest struct {
	Text *string `json:"text"`
}

// Task handlers

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), *req.Title)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Task created!", "task": task})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	existing, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if existing == nil {
		notFound(c)
		return
	}

	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	task, err := s.store.UpdateTaskTitle(c.Request.Context(), id, *req.Title)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if task == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated!", "task": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	existed, err := s.store.DeleteTask(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !existed {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully!"})
}

// Comment handlers

func (s *Server) handleListComments(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	task, err := s.store.GetTask(c.Request.Context(), taskID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if task == nil {
		notFound(c)
		return
	}

	comments, err := s.store.ListComments(c.Request.Context(), taskID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (s *Server) handleAddComment(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	task, err := s.store.GetTask(c.Request.Context(), taskID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if task == nil {
		notFound(c)
		return
	}

	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text is required"})
		return
	}

	comment, err := s.store.CreateComment(c.Request.Context(), taskID, *req.Text)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added successfully!", "comment": comment})
}

func (s *Server) handleUpdateComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text is required"})
		return
	}

	comment, err := s.store.UpdateCommentText(c.Request.Context(), id, *req.Text)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if comment == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully!", "comment": comment})
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	existed, err := s.store.DeleteComment(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !existed {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully!"})
}

// pathID parses the :id segment. Anything that is not an integer is a 404,
// the same as an unknown id.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
