package model

import (
	"time"

	"github.com/google/uuid"
)

// ExpeditionMarker is an active session as plotted on the admin map.
type ExpeditionMarker struct {
	SessionID  uuid.UUID `json:"id"`
	UserID     int       `json:"user_id"`
	Name       string    `json:"name"`
	Journey    string    `json:"exam"`
	Progress   int       `json:"progress"`
	Status     string    `json:"status"`
	LastActive time.Time `json:"last_active"`
}

// JourneyAnalytics aggregates completed sessions of one journey.
type JourneyAnalytics struct {
	JourneyID    string `json:"journey_id"`
	Name         string `json:"name"`
	Completions  int    `json:"completions"`
	AverageScore int    `json:"average_score"`
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	TotalSessions       int                `json:"total_sessions"`
	ActiveSessions      int                `json:"active_sessions"`
	CompletedSessions   int                `json:"completed_sessions"`
	TotalStudents       int                `json:"total_students"`
	AverageScorePercent int                `json:"average_score_percent"`
	CompletionRate      int                `json:"completion_rate"`
	Journeys            []JourneyAnalytics `json:"journey_analytics"`
}

// TravelerDetail is one session with its owner, journey and full audit trail.
type TravelerDetail struct {
	Session ExamSession  `json:"session"`
	User    User         `json:"user"`
	Journey Journey      `json:"journey"`
	Logs    []JourneyLog `json:"logs"`
}
