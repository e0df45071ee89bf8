package job

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves job submission and inspection
type Handler struct {
	orchestrator *Orchestrator
	dispatcher   Dispatcher
}

func NewHandler(orchestrator *Orchestrator, dispatcher Dispatcher) *Handler {
	return &Handler{orchestrator: orchestrator, dispatcher: dispatcher}
}

// Suggest enqueues a full ingest-and-prioritise run for the user
// POST /api/jobs/suggest
func (h *Handler) Suggest(c *gin.Context) {
	userID := c.GetString("userID")

	job, err := h.orchestrator.Submit(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.dispatcher.Enqueue(c.Request.Context(), job.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Re-read: an inline dispatcher has already finished the run
	current, err := h.orchestrator.jobs.FindByID(job.ID)
	if err == nil && current != nil {
		job = current
	}

	c.JSON(http.StatusAccepted, job)
}

// GetJob returns one job's status and result
// GET /api/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	userID := c.GetString("userID")
	jobID := c.Param("id")

	job, err := h.orchestrator.jobs.FindByID(jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil || job.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs returns the user's recent jobs
// GET /api/jobs
func (h *Handler) ListJobs(c *gin.Context) {
	userID := c.GetString("userID")

	jobs, err := h.orchestrator.jobs.FindByUserID(userID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
