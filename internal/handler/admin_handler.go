package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/ascent-backend/internal/middleware"
	"github.com/stemsi/ascent-backend/internal/response"
)

// AdminHandler serves the ranger dashboard.
type AdminHandler struct {
	dashboard Dashboard
	sessions  SessionLifecycle
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(dashboard Dashboard, sessions SessionLifecycle) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, sessions: sessions}
}

// GetExpeditionMap godoc
// GET /api/v1/admin/map
// Lists every active session with its owner and progress.
func (h *AdminHandler) GetExpeditionMap(c *gin.Context) {
	markers, err := h.dashboard.ExpeditionMap(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"expeditions": markers})
}

// GetAnalytics godoc
// GET /api/v1/admin/analytics
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.dashboard.Analytics(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, analytics)
}

// GetTraveler godoc
// GET /api/v1/admin/travelers/:session_id
// Returns one session with its owner, journey and audit trail.
func (h *AdminHandler) GetTraveler(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	detail, err := h.dashboard.Traveler(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// MarkDistress godoc
// POST /api/v1/admin/travelers/:session_id/distress
func (h *AdminHandler) MarkDistress(c *gin.Context) {
	h.toggle(c, true)
}

// ClearDistress godoc
// DELETE /api/v1/admin/travelers/:session_id/distress
func (h *AdminHandler) ClearDistress(c *gin.Context) {
	h.toggle(c, false)
}

func (h *AdminHandler) toggle(c *gin.Context, distress bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Fail(c, response.ErrTokenRequired)
		return
	}
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	fn := h.sessions.ClearDistress
	if distress {
		fn = h.sessions.MarkDistress
	}
	session, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}
