package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/ascent-backend/internal/model"
)

// SessionStore persists exam sessions and their journey logs.
// Implemented by repository.ExamSessionRepository.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	FindActiveByUser(ctx context.Context, userID int) (*model.ExamSession, error)
	ListByUser(ctx context.Context, userID int) ([]model.ExamSession, error)
	CreateWithLog(ctx context.Context, s *model.ExamSession, l *model.JourneyLog) error
	AdvanceStep(ctx context.Context, id uuid.UUID, expectedStep, earned, possible int, l *model.JourneyLog) (*model.ExamSession, error)
	Complete(ctx context.Context, id uuid.UUID, endTime time.Time, l *model.JourneyLog) (*model.ExamSession, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.SessionStatus, l *model.JourneyLog) (*model.ExamSession, error)
	AppendLog(ctx context.Context, l *model.JourneyLog) error
	HasLog(ctx context.Context, sessionID uuid.UUID, action model.LogAction) (bool, error)
	ListLogs(ctx context.Context, sessionID uuid.UUID) ([]model.JourneyLog, error)
}

// UserStore reads and writes user accounts. Implemented by repository.UserRepository.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	UpsertByEmail(ctx context.Context, u *model.User) error
}

// JourneyStore is the persistence side of the journey catalog.
type JourneyStore interface {
	List(ctx context.Context) ([]model.Journey, error)
	GetByID(ctx context.Context, id string) (*model.Journey, error)
}

// QuestionStore is the persistence side of the question bank.
type QuestionStore interface {
	ListByJourney(ctx context.Context, journeyID string) ([]model.Question, error)
	GetByID(ctx context.Context, id string) (*model.Question, error)
}

// CatalogReader is the read-only view of journeys and questions used by the
// session lifecycle. Implemented by CatalogService.
type CatalogReader interface {
	ListJourneys(ctx context.Context) ([]model.Journey, error)
	GetJourney(ctx context.Context, id string) (*model.Journey, error)
	ListQuestions(ctx context.Context, journeyID string) ([]model.Question, error)
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
}

// Notifier accepts outbound progress events without blocking the caller.
// Implemented by worker.BroadcastWorker.
type Notifier interface {
	Notify(event model.ProgressEvent)
}

// KeyValueCache is the subset of the Redis client used for caching and the
// login registry. *redis.Client satisfies it.
type KeyValueCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Actor is the authenticated caller of a session operation.
type Actor struct {
	UserID int
	Role   model.Role
}

// IsAdmin reports whether the actor may act on other users' sessions.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}
