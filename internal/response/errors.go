package response

import "net/http"

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// Authorization
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrNotSessionOwner   ErrCode = "NOT_SESSION_OWNER"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// Journey lifecycle
	ErrActiveJourneyExists ErrCode = "ACTIVE_JOURNEY_EXISTS"
	ErrSessionCompleted    ErrCode = "SESSION_COMPLETED"
	ErrStaleStep           ErrCode = "STALE_STEP"
	ErrSessionChanged      ErrCode = "SESSION_CHANGED"
	ErrJourneyLocked       ErrCode = "JOURNEY_LOCKED"
	ErrNotAtOverlook       ErrCode = "NOT_AT_OVERLOOK"

	// Rate limiting
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionInvalidated:
		return "You signed in on another device. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	case ErrForbidden:
		return "You are not allowed to access this resource."
	case ErrNotSessionOwner:
		return "This expedition belongs to another traveler."
	case ErrStudentAccessOnly:
		return "This resource is limited to students."
	case ErrAdminAccessOnly:
		return "This resource is limited to administrators."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "The request conflicts with the current state."

	case ErrActiveJourneyExists:
		return "Finish or abandon your current journey before starting another."
	case ErrSessionCompleted:
		return "This journey has already reached the summit."
	case ErrStaleStep:
		return "This step was already answered. Reload to continue."
	case ErrSessionChanged:
		return "The expedition changed while you were acting. Reload to continue."
	case ErrJourneyLocked:
		return "Complete the prerequisite journey to unlock this one."
	case ErrNotAtOverlook:
		return "The overlook is not reachable from this step."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

// StatusFor returns the HTTP status conventionally paired with a code.
func StatusFor(code ErrCode) int {
	switch code {
	case ErrInvalidCredentials, ErrSessionInvalidated, ErrTokenRequired, ErrTokenInvalid, ErrTokenExpired:
		return http.StatusUnauthorized
	case ErrForbidden, ErrNotSessionOwner, ErrStudentAccessOnly, ErrAdminAccessOnly, ErrJourneyLocked:
		return http.StatusForbidden
	case ErrValidation, ErrInvalidID, ErrInvalidPayload:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict, ErrActiveJourneyExists, ErrSessionCompleted, ErrStaleStep, ErrSessionChanged, ErrNotAtOverlook:
		return http.StatusConflict
	case ErrRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
