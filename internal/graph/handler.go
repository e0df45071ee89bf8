package graph

import (
	"net/http"

	"mimir-backend/internal/task/domain"

	"github.com/gin-gonic/gin"
)

// Handler serves the graph view endpoints
type Handler struct {
	builder *Builder
}

func NewHandler(builder *Builder) *Handler {
	return &Handler{builder: builder}
}

// GetGraph returns the node and edge lists for the timeline view
// GET /api/graph?window=month
func (h *Handler) GetGraph(c *gin.Context) {
	userID := c.GetString("userID")

	window := Window(c.DefaultQuery("window", string(WindowMonth)))
	switch window {
	case WindowDay, WindowWeek, WindowMonth:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown window: " + string(window)})
		return
	}

	graph, err := h.builder.Build(userID, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, graph)
}

// GetFilters returns the filter options the graph view offers
// GET /api/graph/filters
func (h *Handler) GetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources":  []string{domain.KindMail, domain.KindIssues, domain.KindCode, domain.KindFiles},
		"statuses": []string{"done", "future"},
	})
}
