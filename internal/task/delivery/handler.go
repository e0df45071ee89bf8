package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"mimir-backend/internal/task/domain"
	"mimir-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

// GetTasks returns the user's tasks ordered by priority
// GET /api/tasks?horizon=today&limit=50
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var horizonPtr *domain.Horizon
	if raw := c.Query("horizon"); raw != "" {
		horizon := domain.Horizon(raw)
		if !domain.ValidHorizon(horizon) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown horizon: " + raw})
			return
		}
		horizonPtr = &horizon
	}

	tasks, err := h.taskUsecase.GetUserTasks(userID, horizonPtr, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// CompleteTask marks a task done
// POST /api/tasks/:id/complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.transition(c, h.taskUsecase.CompleteTask)
}

// UndoTask reopens a completed task
// POST /api/tasks/:id/undo
func (h *TaskHandler) UndoTask(c *gin.Context) {
	h.transition(c, h.taskUsecase.UndoTask)
}

func (h *TaskHandler) transition(c *gin.Context, apply func(userID, taskID string) (*domain.Task, error)) {
	userID := c.GetString("userID")
	taskID := c.Param("id")

	task, err := apply(userID, taskID)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
			return
		}
		if errors.Is(err, usecase.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, task)
}

// SeedTasks inserts the fixed development tasks
// POST /api/dev/seed?reseed=true
func (h *TaskHandler) SeedTasks(c *gin.Context) {
	userID := c.GetString("userID")
	reseed := c.Query("reseed") == "true"

	if err := h.taskUsecase.SeedTasks(userID, reseed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "seeded"})
}
