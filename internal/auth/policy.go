// backend/internal/auth/policy.go
package auth

import (
	"quiz-platform/internal/apperr"
	"quiz-platform/internal/models"
)

type Action string

const (
	ActionManageQuizzes    Action = "manage_quizzes"
	ActionManageCategories Action = "manage_categories"
	ActionTakeQuiz         Action = "take_quiz"
	ActionRateQuiz         Action = "rate_quiz"
	ActionViewProgress     Action = "view_progress"
	ActionChangePassword   Action = "change_password"
)

var adminOnly = map[Action]string{
	ActionManageQuizzes:    "Only admins can manage quizzes",
	ActionManageCategories: "Only admins can manage categories",
}

// Authorize decides whether user may perform action.
func Authorize(user *models.User, action Action) error {
	if user == nil {
		return apperr.Unauthorized("Authentication credentials were not provided.")
	}
	if msg, ok := adminOnly[action]; ok && !user.IsAdmin {
		return apperr.Forbidden(msg)
	}
	return nil
}
