package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/ascent-backend/internal/middleware"
	"github.com/stemsi/ascent-backend/internal/response"
)

// JourneyHandler serves the catalog and the student's atlas.
type JourneyHandler struct {
	catalog JourneyLister
	atlas   AtlasBuilder
}

// NewJourneyHandler creates a new JourneyHandler.
func NewJourneyHandler(catalog JourneyLister, atlas AtlasBuilder) *JourneyHandler {
	return &JourneyHandler{catalog: catalog, atlas: atlas}
}

// ListJourneys godoc
// GET /api/v1/journeys
func (h *JourneyHandler) ListJourneys(c *gin.Context) {
	journeys, err := h.catalog.ListJourneys(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"journeys": journeys})
}

// GetAtlas godoc
// GET /api/v1/atlas
// Lists journeys with unlock state, best score and the active session.
func (h *JourneyHandler) GetAtlas(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Fail(c, response.ErrTokenRequired)
		return
	}

	atlas, err := h.atlas.Atlas(c.Request.Context(), actor.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, atlas)
}
