package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
//
//	IN_PROGRESS <-> DISTRESS
//	IN_PROGRESS | DISTRESS -> COMPLETED (terminal)
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusDistress   SessionStatus = "DISTRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// Active reports whether the status counts toward the one-active-session limit.
func (s SessionStatus) Active() bool {
	return s == SessionStatusInProgress || s == SessionStatusDistress
}

// ExamSession is one student's attempt at one journey.
type ExamSession struct {
	ID          uuid.UUID     `json:"id"`
	UserID      int           `json:"user_id"`
	JourneyID   string        `json:"journey_id"`
	Status      SessionStatus `json:"status"`
	CurrentStep int           `json:"current_step"`
	Score       int           `json:"score"`
	TotalPoints int           `json:"total_points"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     *time.Time    `json:"end_time,omitempty"`
}

// ScorePercent is score/totalPoints*100, or 0 before any points were possible.
func (s *ExamSession) ScorePercent() float64 {
	if s.TotalPoints <= 0 {
		return 0
	}
	return float64(s.Score) / float64(s.TotalPoints) * 100
}

// Waypoint kinds returned to the routing layer.
const (
	WaypointQuestion = "question"
	WaypointOverlook = "overlook"
	WaypointSummit   = "summit"
)

// Waypoint tells the client which page the session should be on.
type Waypoint struct {
	Kind     string              `json:"kind"`
	Step     int                 `json:"step"`
	Total    int                 `json:"total_questions"`
	Question *QuestionForStudent `json:"question,omitempty"`
	Session  *ExamSession        `json:"session"`
}
