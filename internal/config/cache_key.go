package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserLoginKey returns the key holding the JTI of a student's current login.
func (r *CacheKeyStruct) UserLoginKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// JourneyCatalogKey returns the key of the cached, title-ordered journey list.
func (r *CacheKeyStruct) JourneyCatalogKey() string {
	return "catalog:journeys"
}

// JourneyQuestionsKey returns the key of a journey's ordered question sequence.
func (r *CacheKeyStruct) JourneyQuestionsKey(journeyID string) string {
	return fmt.Sprintf("catalog:journey:%s:questions", journeyID)
}

// RateLimitKey returns the counter key of one client in one limiter window.
func (r *CacheKeyStruct) RateLimitKey(scope, clientIP string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, clientIP, window)
}

var CacheKey = NewCacheKeyStruct()

// BroadcastStruct names the pub/sub channel and events observed by the admin dashboard.
type BroadcastStruct struct {
	Channel              string
	EventPlayerMoved     string
	EventPlayerCompleted string
	EventSessionsChanged string
	DrainTimeout         time.Duration
}

var Broadcast = &BroadcastStruct{
	Channel:              "expeditions",
	EventPlayerMoved:     "player-moved",
	EventPlayerCompleted: "player-completed",
	EventSessionsChanged: "sessions-changed",
	DrainTimeout:         3 * time.Second,
}
