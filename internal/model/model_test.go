package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePercent(t *testing.T) {
	assert.Zero(t, (&ExamSession{}).ScorePercent())
	assert.InDelta(t, 75.0, (&ExamSession{Score: 30, TotalPoints: 40}).ScorePercent(), 1e-9)
	assert.InDelta(t, 100.0, (&ExamSession{Score: 120, TotalPoints: 120}).ScorePercent(), 1e-9)
}

func TestSessionStatusActive(t *testing.T) {
	assert.True(t, SessionStatusInProgress.Active())
	assert.True(t, SessionStatusDistress.Active())
	assert.False(t, SessionStatusCompleted.Active())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("student").Valid())
	assert.False(t, Role("").Valid())
}

func TestDisplayName(t *testing.T) {
	var nobody *User
	assert.Equal(t, "Traveler", nobody.DisplayName())
	assert.Equal(t, "Traveler", (&User{}).DisplayName())
	assert.Equal(t, "Ana", (&User{Name: "Ana"}).DisplayName())
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Email: "a@example.com", PasswordHash: "$2a$10$secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
}

func TestQuestionForStudentDropsAnswerKey(t *testing.T) {
	q := Question{
		ID: "q1", JourneyID: "basecamp", OrderIndex: 1, Text: "Pick",
		Options:       []Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
		CorrectOption: "b", Explanation: "because",
	}

	assert.True(t, q.HasOption("a"))
	assert.False(t, q.HasOption("c"))

	b, err := json.Marshal(q.ForStudent())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "correct_option")
	assert.NotContains(t, string(b), "because")
	assert.Contains(t, string(b), `"order_index":1`)
}

func TestNewJourneyLog(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	sid := uuid.New()

	l := NewJourneyLog(sid, 4, LogActionEnterOverlook, at)

	assert.NotEqual(t, uuid.Nil, l.ID)
	assert.Equal(t, sid, l.SessionID)
	assert.Equal(t, 4, l.StepIndex)
	assert.Equal(t, "2026-03-14T02:30:00Z", l.Metadata["timestamp"])
	assert.True(t, l.Timestamp.Equal(at))
}

func TestJourneyHasPrerequisite(t *testing.T) {
	empty := ""
	base := "basecamp"
	assert.False(t, (&Journey{}).HasPrerequisite())
	assert.False(t, (&Journey{PrerequisiteID: &empty}).HasPrerequisite())
	assert.True(t, (&Journey{PrerequisiteID: &base}).HasPrerequisite())
}
