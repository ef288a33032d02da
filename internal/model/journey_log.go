package model

import (
	"time"

	"github.com/google/uuid"
)

// LogAction enumerates the lifecycle events recorded for a session.
type LogAction string

const (
	LogActionStart            LogAction = "START"
	LogActionAnswerQuestion   LogAction = "ANSWER_QUESTION"
	LogActionEnterOverlook    LogAction = "ENTER_OVERLOOK"
	LogActionResumeAscent     LogAction = "RESUME_ASCENT"
	LogActionSummitReached    LogAction = "SUMMIT_REACHED"
	LogActionDistressSignaled LogAction = "DISTRESS_SIGNALED"
	LogActionDistressCleared  LogAction = "DISTRESS_CLEARED"
)

// JourneyLog is an append-only audit record owned by one session.
type JourneyLog struct {
	ID           uuid.UUID      `json:"id"`
	SessionID    uuid.UUID      `json:"session_id"`
	StepIndex    int            `json:"step_index"`
	Action       LogAction      `json:"action"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IsCorrect    *bool          `json:"is_correct,omitempty"`
	PointsEarned *int           `json:"points_earned,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// NewJourneyLog builds a log entry with a fresh ID and the given time.
func NewJourneyLog(sessionID uuid.UUID, step int, action LogAction, at time.Time) *JourneyLog {
	return &JourneyLog{
		ID:        uuid.New(),
		SessionID: sessionID,
		StepIndex: step,
		Action:    action,
		Metadata:  map[string]any{"timestamp": at.UTC().Format(time.RFC3339)},
		Timestamp: at,
	}
}
