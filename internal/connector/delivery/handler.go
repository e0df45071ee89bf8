package delivery

import (
	"errors"
	"net/http"
	"strings"

	"mimir-backend/internal/connector/usecase"

	"github.com/gin-gonic/gin"
)

// ConnectorHandler handles connector-related HTTP requests
type ConnectorHandler struct {
	connectorUsecase usecase.ConnectorUsecase
}

func NewConnectorHandler(connectorUsecase usecase.ConnectorUsecase) *ConnectorHandler {
	return &ConnectorHandler{
		connectorUsecase: connectorUsecase,
	}
}

// ListConnectors returns the user's connectors with status
// GET /api/connectors
func (h *ConnectorHandler) ListConnectors(c *gin.Context) {
	userID := c.GetString("userID")

	connectors, err := h.connectorUsecase.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"connectors": connectors})
}

// Connect starts the OAuth flow for a connector kind
// POST /api/connectors/:kind/connect
func (h *ConnectorHandler) Connect(c *gin.Context) {
	userID := c.GetString("userID")
	kind := c.Param("kind")

	url, err := h.connectorUsecase.StartConnect(userID, kind)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown connector kind: " + kind})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authorize_url": url})
}

// Test probes a connector's credentials
// POST /api/connectors/:kind/test
func (h *ConnectorHandler) Test(c *gin.Context) {
	userID := c.GetString("userID")
	kind := c.Param("kind")

	result, err := h.connectorUsecase.Test(c.Request.Context(), userID, kind)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown connector kind: " + kind})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// OAuthCallback completes an OAuth code exchange. State carries the
// owning user and connector kind from StartConnect.
// GET /api/oauth/callback?state=<user>:<kind>&code=...
func (h *ConnectorHandler) OAuthCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state and code are required"})
		return
	}

	parts := strings.SplitN(state, ":", 2)
	if len(parts) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed state"})
		return
	}
	userID, kind := parts[0], parts[1]

	if err := h.connectorUsecase.CompleteOAuth(c.Request.Context(), userID, kind, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "connected", "kind": kind})
}
