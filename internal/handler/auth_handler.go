package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/ascent-backend/internal/middleware"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/response"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth  Authenticator
	users UserReader
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth Authenticator, users UserReader) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and returns a JWT. A student's earlier login is revoked.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Logout godoc
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, response.ErrTokenRequired)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims.UserID); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, response.ErrTokenRequired)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}
