package model

import "github.com/google/uuid"

// ProgressEvent is an outbound notification for dashboard observers.
type ProgressEvent struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

// PlayerMoved is published after every answer and distress toggle.
type PlayerMoved struct {
	SessionID uuid.UUID     `json:"sessionId"`
	UserID    int           `json:"userId"`
	UserName  string        `json:"userName"`
	Progress  int           `json:"progress"`
	Status    SessionStatus `json:"status"`
	Step      int           `json:"step"`
}

// PlayerCompleted is published once a session reaches the summit.
type PlayerCompleted struct {
	SessionID uuid.UUID     `json:"sessionId"`
	UserID    int           `json:"userId"`
	Status    SessionStatus `json:"status"`
	Score     int           `json:"score"`
	Total     int           `json:"totalPoints"`
}

// SessionsChanged tells observers to refetch a user's session list.
type SessionsChanged struct {
	UserID    int       `json:"userId"`
	SessionID uuid.UUID `json:"sessionId"`
	JourneyID string    `json:"journeyId"`
}
