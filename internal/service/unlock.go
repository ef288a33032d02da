package service

import "github.com/stemsi/ascent-backend/internal/model"

// IsUnlocked reports whether a journey can be embarked on given the student's
// sessions. A journey without prerequisite is always open. Otherwise any
// COMPLETED session of the prerequisite scoring at least MinScoreToUnlock
// percent unlocks it; the best or latest attempt is not singled out.
func IsUnlocked(journey model.Journey, sessions []model.ExamSession) bool {
	if !journey.HasPrerequisite() {
		return true
	}
	for i := range sessions {
		s := &sessions[i]
		if s.JourneyID != *journey.PrerequisiteID || s.Status != model.SessionStatusCompleted {
			continue
		}
		if meetsThreshold(s, journey.MinScoreToUnlock) {
			return true
		}
	}
	return false
}

// meetsThreshold compares score/total against minPercent in integers so an
// exact percentage is never lost to float rounding. A session with no
// possible points counts as 0%.
func meetsThreshold(s *model.ExamSession, minPercent int) bool {
	if s.TotalPoints <= 0 {
		return minPercent <= 0
	}
	return s.Score*100 >= minPercent*s.TotalPoints
}

// BestScorePercent returns the highest completed score percent for a journey, or nil.
func BestScorePercent(journeyID string, sessions []model.ExamSession) *float64 {
	var best *float64
	for i := range sessions {
		s := &sessions[i]
		if s.JourneyID != journeyID || s.Status != model.SessionStatusCompleted {
			continue
		}
		p := s.ScorePercent()
		if best == nil || p > *best {
			best = &p
		}
	}
	return best
}
