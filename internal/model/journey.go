package model

// Journey is an ordered set of questions a student attempts. Journeys are
// reference data: written by the seeder, read-only afterwards.
type Journey struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Difficulty       string  `json:"difficulty"`
	Duration         string  `json:"duration"`
	TotalQuestions   int     `json:"total_questions"`
	PrerequisiteID   *string `json:"prerequisite_id,omitempty"`
	MinScoreToUnlock int     `json:"min_score_to_unlock"`
}

// HasPrerequisite reports whether the journey is gated behind another one.
func (j *Journey) HasPrerequisite() bool {
	return j.PrerequisiteID != nil && *j.PrerequisiteID != ""
}

// AtlasEntry is a journey as shown on the student's atlas.
type AtlasEntry struct {
	Journey
	Unlocked  bool     `json:"unlocked"`
	BestScore *float64 `json:"best_score_percent,omitempty"`
	Active    bool     `json:"active"`
}

// Atlas is the student's route overview.
type Atlas struct {
	Journeys      []AtlasEntry `json:"journeys"`
	ActiveSession *ExamSession `json:"active_session"`
}
