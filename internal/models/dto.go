// backend/internal/models/dto.go
package models

type QuizDTO struct {
	ID               uint          `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	CategoryID       uint          `json:"category_id"`
	HasTimeLimit     bool          `json:"has_time_limit"`
	TimeLimitSeconds *int          `json:"time_limit_seconds"`
	CreatorID        uint          `json:"creator_id"`
	Questions        []QuestionDTO `json:"questions"`
}

type QuestionDTO struct {
	ID      uint        `json:"id"`
	QuizID  uint        `json:"quiz_id"`
	Text    string      `json:"text"`
	Points  uint        `json:"points"`
	Choices []ChoiceDTO `json:"choices"`
}

type ChoiceDTO struct {
	ID         uint   `json:"id"`
	QuestionID uint   `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  *bool  `json:"is_correct,omitempty"` // Only for admins
}

// ToDTO renders the quiz; correct flags are included only when withAnswers is set.
func (q Quiz) ToDTO(withAnswers bool) QuizDTO {
	questions := make([]QuestionDTO, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = question.ToDTO(withAnswers)
	}
	return QuizDTO{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		CategoryID:       q.CategoryID,
		HasTimeLimit:     q.HasTimeLimit,
		TimeLimitSeconds: q.TimeLimitSeconds,
		CreatorID:        q.CreatorID,
		Questions:        questions,
	}
}

func (q Question) ToDTO(withAnswers bool) QuestionDTO {
	choices := make([]ChoiceDTO, len(q.Choices))
	for i, c := range q.Choices {
		choices[i] = ChoiceDTO{
			ID:         c.ID,
			QuestionID: c.QuestionID,
			Text:       c.Text,
		}
		if withAnswers {
			correct := c.IsCorrect
			choices[i].IsCorrect = &correct
		}
	}
	return QuestionDTO{
		ID:      q.ID,
		QuizID:  q.QuizID,
		Text:    q.Text,
		Points:  q.Points,
		Choices: choices,
	}
}
