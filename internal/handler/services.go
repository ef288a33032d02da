package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/service"
)

// The interfaces below are the slices of the service layer each handler
// depends on. The concrete services in internal/service satisfy them.

// Authenticator is implemented by service.AuthService.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context, userID int) error
}

// UserReader is implemented by service.UserService.
type UserReader interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
}

// JourneyLister is implemented by service.CatalogService.
type JourneyLister interface {
	ListJourneys(ctx context.Context) ([]model.Journey, error)
}

// AtlasBuilder is implemented by service.AtlasService.
type AtlasBuilder interface {
	Atlas(ctx context.Context, userID int) (*model.Atlas, error)
}

// SessionLifecycle is implemented by service.ExamSessionService.
type SessionLifecycle interface {
	Embark(ctx context.Context, userID int, journeyID string) (*model.ExamSession, error)
	SubmitAnswer(ctx context.Context, actor service.Actor, sessionID uuid.UUID, questionID, answerID string) (*model.AnswerFeedback, error)
	SignOff(ctx context.Context, actor service.Actor, sessionID uuid.UUID) (*model.ExamSession, error)
	MarkDistress(ctx context.Context, actor service.Actor, sessionID uuid.UUID) (*model.ExamSession, error)
	ClearDistress(ctx context.Context, actor service.Actor, sessionID uuid.UUID) (*model.ExamSession, error)
	ReachOverlook(ctx context.Context, actor service.Actor, sessionID uuid.UUID) (*model.ExamSession, error)
	ResumeAscent(ctx context.Context, actor service.Actor, sessionID uuid.UUID) (*model.ExamSession, error)
	GetActiveSession(ctx context.Context, userID int) (*model.ExamSession, *model.Journey, error)
	NextWaypoint(ctx context.Context, actor service.Actor, sessionID uuid.UUID) (*model.Waypoint, error)
	GetSessionLogs(ctx context.Context, actor service.Actor, sessionID uuid.UUID) ([]model.JourneyLog, error)
}

// Dashboard is implemented by service.DashboardService.
type Dashboard interface {
	ExpeditionMap(ctx context.Context) ([]model.ExpeditionMarker, error)
	Analytics(ctx context.Context) (*model.Analytics, error)
	Traveler(ctx context.Context, sessionID uuid.UUID) (*model.TravelerDetail, error)
}
