// backend/internal/quiz/requests.go
package quiz

import (
	"quiz-platform/internal/apperr"
	"quiz-platform/internal/httpx"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (r CategoryRequest) Validate() error {
	return httpx.ValidateStruct(r)
}

type QuizRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Description      string `json:"description"`
	CategoryID       uint   `json:"category_id" validate:"required"`
	HasTimeLimit     bool   `json:"has_time_limit"`
	TimeLimitSeconds *int   `json:"time_limit_seconds" validate:"omitempty,gt=0"`
}

func (r QuizRequest) Validate() error {
	if err := httpx.ValidateStruct(r); err != nil {
		return err
	}
	if r.HasTimeLimit && r.TimeLimitSeconds == nil {
		return apperr.Validation("time_limit_seconds: required when has_time_limit is set")
	}
	return nil
}

type ChoiceRequest struct {
	Text      string `json:"text" validate:"required,max=200"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Text    string          `json:"text" validate:"required"`
	Points  uint            `json:"points"`
	Choices []ChoiceRequest `json:"choices" validate:"dive"`
}

func (r QuestionRequest) Validate() error {
	return httpx.ValidateStruct(r)
}

// QuestionBatch is the body of add-questions: a list of questions with their
// choices.
type QuestionBatch []QuestionRequest

func (b QuestionBatch) Validate() error {
	if len(b) == 0 {
		return apperr.Validation("at least one question is required")
	}
	for _, q := range b {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type QuestionUpdateRequest struct {
	Text   string `json:"text" validate:"required"`
	Points uint   `json:"points"`
}

func (r QuestionUpdateRequest) Validate() error {
	return httpx.ValidateStruct(r)
}

type AnswerRequest struct {
	QuestionID       uint `json:"question_id" validate:"required"`
	SelectedChoiceID uint `json:"selected_choice_id" validate:"required"`
}

type TakeQuizRequest struct {
	Questions []AnswerRequest `json:"questions" validate:"unique=QuestionID,dive"`
}

func (r TakeQuizRequest) Validate() error {
	return httpx.ValidateStruct(r)
}

func (r TakeQuizRequest) answers() []Answer {
	out := make([]Answer, len(r.Questions))
	for i, a := range r.Questions {
		out[i] = Answer{QuestionID: a.QuestionID, ChoiceID: a.SelectedChoiceID}
	}
	return out
}

type RateRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

func (r RateRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 7 {
		return apperr.Validation("rating: must be between 1 and 7")
	}
	return nil
}
