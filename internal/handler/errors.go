package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/ascent-backend/internal/response"
	"github.com/stemsi/ascent-backend/internal/service"
	"github.com/stemsi/ascent-backend/internal/validator"
)

// errorCodes is checked in order; specific errors come before the kinds they wrap.
var errorCodes = []struct {
	err  error
	code response.ErrCode
}{
	{service.ErrActiveJourney, response.ErrActiveJourneyExists},
	{service.ErrSessionCompleted, response.ErrSessionCompleted},
	{service.ErrStaleStep, response.ErrStaleStep},
	{service.ErrSessionChanged, response.ErrSessionChanged},
	{service.ErrNotAtOverlook, response.ErrNotAtOverlook},
	{service.ErrJourneyLocked, response.ErrJourneyLocked},
	{service.ErrNotOwner, response.ErrNotSessionOwner},
	{service.ErrInvalidCredentials, response.ErrInvalidCredentials},
	{service.ErrLoginSuperseded, response.ErrSessionInvalidated},
	{service.ErrInvalidRole, response.ErrValidation},
	{service.ErrConflict, response.ErrConflict},
	{service.ErrNotFound, response.ErrNotFound},
	{service.ErrForbidden, response.ErrForbidden},
	{service.ErrUnauthorized, response.ErrTokenInvalid},
}

// failFromError writes the response for a service error. Unknown errors are
// attached to the context for the request logger and reported as internal.
func failFromError(c *gin.Context, err error) {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			response.Fail(c, m.code)
			return
		}
	}
	_ = c.Error(err)
	response.Fail(c, response.ErrInternal)
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds and validates the body, writing the failure itself. A body
// that is not JSON at all is INVALID_PAYLOAD; failed rules are VALIDATION_ERROR.
func bindJSON(c *gin.Context, dst any) bool {
	fields := validator.Bind(c, dst)
	if fields == nil {
		return true
	}
	code := response.ErrValidation
	if _, malformed := fields["detail"]; malformed && len(fields) == 1 {
		code = response.ErrInvalidPayload
	}
	response.FailWithFields(c, code, fields)
	return false
}
