package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/middleware"
	"github.com/yungbote/sproutlingo-backend/internal/services"
)

type SessionHandler struct {
	log        *logger.Logger
	sessionSvc services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessionSvc services.SessionService) *SessionHandler {
	return &SessionHandler{
		log:        log.With("handler", "SessionHandler"),
		sessionSvc: sessionSvc,
	}
}

type startSessionRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// POST /api/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.sessionSvc.Start(c.Request.Context(), userID, req.Topic)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

type reportActivityRequest struct {
	ActivityType   string      `json:"activity_type" binding:"required"`
	ChunkIDs       []uuid.UUID `json:"chunk_ids"`
	Correct        bool        `json:"correct"`
	ResponseTimeMs float64     `json:"response_time_ms"`
	UsedHelp       bool        `json:"used_help"`
	Attempts       int         `json:"attempts"`
	Abandoned      bool        `json:"abandoned"`
	PlannedMinutes float64     `json:"planned_minutes"`
}

// POST /api/sessions/:id/activities
func (h *SessionHandler) ReportActivity(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	var req reportActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.sessionSvc.ReportActivity(c.Request.Context(), userID, sessionID, services.ActivityInput{
		ActivityType:   req.ActivityType,
		ChunkIDs:       req.ChunkIDs,
		Correct:        req.Correct,
		ResponseTimeMs: req.ResponseTimeMs,
		UsedHelp:       req.UsedHelp,
		Attempts:       req.Attempts,
		Abandoned:      req.Abandoned,
		PlannedMinutes: req.PlannedMinutes,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	sc, err := h.sessionSvc.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sc)
}

type endSessionRequest struct {
	Reason string `json:"reason"`
}

// POST /api/sessions/:id/end
func (h *SessionHandler) End(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	var req endSessionRequest
	_ = c.ShouldBindJSON(&req)
	result, err := h.sessionSvc.End(c.Request.Context(), userID, sessionID, req.Reason)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
