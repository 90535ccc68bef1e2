package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/middleware"
	"github.com/yungbote/sproutlingo-backend/internal/services"
)

type TreeHandler struct {
	log     *logger.Logger
	treeSvc services.TreeService
}

func NewTreeHandler(log *logger.Logger, treeSvc services.TreeService) *TreeHandler {
	return &TreeHandler{
		log:     log.With("handler", "TreeHandler"),
		treeSvc: treeSvc,
	}
}

// GET /api/tree
func (h *TreeHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	status, err := h.treeSvc.Evaluate(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, status)
}

// POST /api/tree/refresh
func (h *TreeHandler) Refresh(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	status, err := h.treeSvc.Refresh(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, status)
}

type addGrantRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// POST /api/tree/grants
func (h *TreeHandler) AddGrant(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	var req addGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	status, err := h.treeSvc.AddGrant(c.Request.Context(), userID, req.Kind)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, status)
}

// POST /api/tree/grants/:id/consume
func (h *TreeHandler) ConsumeGrant(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	grantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_grant_id", err)
		return
	}
	status, err := h.treeSvc.ConsumeGrant(c.Request.Context(), userID, grantID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, status)
}
