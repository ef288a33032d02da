package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the HTTP layer. Specific errors wrap one of the
// four kinds so callers can match either.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrLoginSuperseded    = fmt.Errorf("%w: login superseded by another device", ErrUnauthorized)

	ErrActiveJourney    = fmt.Errorf("%w: an active journey must be finished or abandoned first", ErrConflict)
	ErrSessionCompleted = fmt.Errorf("%w: session already completed", ErrConflict)
	ErrStaleStep        = fmt.Errorf("%w: step was already answered", ErrConflict)
	ErrSessionChanged   = fmt.Errorf("%w: session changed concurrently", ErrConflict)
	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrNotAtOverlook    = fmt.Errorf("%w: session is not at the overlook", ErrConflict)

	ErrNotOwner      = fmt.Errorf("%w: session belongs to another user", ErrForbidden)
	ErrJourneyLocked = fmt.Errorf("%w: journey is locked", ErrForbidden)

	ErrInvalidRole = errors.New("invalid role")

	// ErrJourneyExhausted signals a step past the last question; routing maps it to the summit.
	ErrJourneyExhausted = errors.New("journey exhausted")
)
