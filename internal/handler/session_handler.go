package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/ascent-backend/internal/middleware"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/response"
	"github.com/stemsi/ascent-backend/internal/service"
	"github.com/stemsi/ascent-backend/internal/validator"
)

// SessionHandler drives a student's ascent: embark, answer, checkpoints and sign-off.
type SessionHandler struct {
	sessions SessionLifecycle
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionLifecycle) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetActiveSession godoc
// GET /api/v1/student/active-session
// Returns the caller's in-progress or distressed session, or nulls.
func (h *SessionHandler) GetActiveSession(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Fail(c, response.ErrTokenRequired)
		return
	}

	session, journey, err := h.sessions.GetActiveSession(c.Request.Context(), actor.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session, "journey": journey})
}

// Embark godoc
// POST /api/v1/student/journeys/:journey_id/embark
// Starts a journey, or resumes the caller's active session on it.
func (h *SessionHandler) Embark(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Fail(c, response.ErrTokenRequired)
		return
	}

	journeyID := c.Param("journey_id")
	if !validator.IsSlug(journeyID) {
		response.Fail(c, response.ErrInvalidID)
		return
	}

	session, err := h.sessions.Embark(c.Request.Context(), actor.UserID, journeyID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetWaypoint godoc
// GET /api/v1/student/sessions/:session_id/waypoint
// Tells the client whether to show a question, the overlook or the summit.
func (h *SessionHandler) GetWaypoint(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	wp, err := h.sessions.NextWaypoint(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, wp)
}

// SubmitAnswer godoc
// POST /api/v1/student/sessions/:session_id/answers
// Grades the answer for the current step and advances the session.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	feedback, err := h.sessions.SubmitAnswer(c.Request.Context(), actor, id, req.QuestionID, req.AnswerID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, feedback)
}

// ReachOverlook godoc
// POST /api/v1/student/sessions/:session_id/overlook
func (h *SessionHandler) ReachOverlook(c *gin.Context) {
	h.transition(c, h.sessions.ReachOverlook)
}

// ResumeAscent godoc
// POST /api/v1/student/sessions/:session_id/resume
func (h *SessionHandler) ResumeAscent(c *gin.Context) {
	h.transition(c, h.sessions.ResumeAscent)
}

// SignOff godoc
// POST /api/v1/student/sessions/:session_id/sign-off
// Completes the session. Signing off twice returns the completed session.
func (h *SessionHandler) SignOff(c *gin.Context) {
	h.transition(c, h.sessions.SignOff)
}

// MarkDistress godoc
// POST /api/v1/student/sessions/:session_id/distress
func (h *SessionHandler) MarkDistress(c *gin.Context) {
	h.transition(c, h.sessions.MarkDistress)
}

// ClearDistress godoc
// DELETE /api/v1/student/sessions/:session_id/distress
func (h *SessionHandler) ClearDistress(c *gin.Context) {
	h.transition(c, h.sessions.ClearDistress)
}

// GetLogs godoc
// GET /api/v1/student/sessions/:session_id/logs
func (h *SessionHandler) GetLogs(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	logs, err := h.sessions.GetSessionLogs(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logs": logs})
}

type sessionTransition func(ctx context.Context, actor service.Actor, sessionID uuid.UUID) (*model.ExamSession, error)

func (h *SessionHandler) transition(c *gin.Context, fn sessionTransition) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	session, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// target resolves the caller and the session id, writing the failure itself.
func (h *SessionHandler) target(c *gin.Context) (service.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Fail(c, response.ErrTokenRequired)
		return service.Actor{}, uuid.Nil, false
	}
	id, ok := sessionIDParam(c)
	if !ok {
		return service.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}
