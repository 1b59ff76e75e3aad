// backend/internal/quiz/scoring.go
package quiz

import (
	"fmt"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/models"
)

// Answer is one submitted (question, selected choice) pair.
type Answer struct {
	QuestionID uint
	ChoiceID   uint
}

// Score sums the points of every question whose selected choice is correct
// and belongs to that question. Each question counts at most once. A reference
// to an unknown question or choice fails the whole submission.
func Score(answers []Answer, questions map[uint]models.Question, choices map[uint]models.Choice) (int, error) {
	total := 0
	scored := make(map[uint]bool, len(answers))
	for _, a := range answers {
		question, ok := questions[a.QuestionID]
		if !ok {
			return 0, apperr.NotFound(fmt.Sprintf("question %d not found", a.QuestionID))
		}
		choice, ok := choices[a.ChoiceID]
		if !ok {
			return 0, apperr.NotFound(fmt.Sprintf("choice %d not found", a.ChoiceID))
		}
		if choice.IsCorrect && choice.QuestionID == question.ID && !scored[question.ID] {
			scored[question.ID] = true
			total += int(question.Points)
		}
	}
	return total, nil
}

func answerIDs(answers []Answer) (questionIDs, choiceIDs []uint) {
	seenQ := make(map[uint]bool, len(answers))
	seenC := make(map[uint]bool, len(answers))
	for _, a := range answers {
		if !seenQ[a.QuestionID] {
			seenQ[a.QuestionID] = true
			questionIDs = append(questionIDs, a.QuestionID)
		}
		if !seenC[a.ChoiceID] {
			seenC[a.ChoiceID] = true
			choiceIDs = append(choiceIDs, a.ChoiceID)
		}
	}
	return questionIDs, choiceIDs
}
