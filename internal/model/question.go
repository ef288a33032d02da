package model

// Option is one answer choice. IDs are unique within a question and are the
// only valid answer identifiers for it.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a multiple-choice question belonging to one journey.
// OrderIndex fixes its position in the journey and never changes.
type Question struct {
	ID            string   `json:"id"`
	JourneyID     string   `json:"journey_id"`
	OrderIndex    int      `json:"order_index"`
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Explanation   string   `json:"explanation"`
}

// HasOption reports whether id names one of the question's options.
func (q *Question) HasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// QuestionForStudent is a question without its answer key.
type QuestionForStudent struct {
	ID         string   `json:"id"`
	JourneyID  string   `json:"journey_id"`
	OrderIndex int      `json:"order_index"`
	Text       string   `json:"text"`
	Options    []Option `json:"options"`
}

// ForStudent strips the answer key and explanation.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:         q.ID,
		JourneyID:  q.JourneyID,
		OrderIndex: q.OrderIndex,
		Text:       q.Text,
		Options:    q.Options,
	}
}

// SubmitAnswerRequest is the payload for answering the current waypoint.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=64,slug"`
	AnswerID   string `json:"answer_id" binding:"required,max=64,slug"`
}

// AnswerFeedback lets the client reveal the right answer without a second request.
type AnswerFeedback struct {
	IsCorrect     bool         `json:"is_correct"`
	CorrectOption *string      `json:"correct_option"`
	Explanation   *string      `json:"explanation"`
	Session       *ExamSession `json:"session"`
}
