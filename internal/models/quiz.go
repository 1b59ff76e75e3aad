// backend/internal/models/quiz.go
package models

import (
	"time"
)

type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Quizzes   []Quiz    `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

type Quiz struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Title            string     `json:"title" gorm:"size:200;not null"`
	Description      string     `json:"description"`
	CategoryID       uint       `json:"category_id" gorm:"not null;index"`
	HasTimeLimit     bool       `json:"has_time_limit" gorm:"default:false"`
	TimeLimitSeconds *int       `json:"time_limit_seconds"`
	CreatorID        uint       `json:"creator_id" gorm:"index"`
	Questions        []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Ratings          []Rating   `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Attempts         []Attempt  `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	QuizID    uint      `json:"quiz_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"not null"`
	Points    uint      `json:"points" gorm:"not null;default:0"`
	Choices   []Choice  `json:"choices,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"size:200;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
}

// Attempt statuses. Only completed attempts carry a trustworthy score.
const (
	AttemptPending   = "pending"
	AttemptCompleted = "completed"
)

// Attempt is one user's pass over one quiz.
type Attempt struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time  `json:"created_at"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	QuizID      uint       `json:"quiz_id" gorm:"not null;index"`
	Score       int        `json:"score" gorm:"not null;default:0"`
	Status      string     `json:"status" gorm:"size:20;not null;default:'pending'"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (Attempt) TableName() string {
	return "user_quizzes"
}

type Rating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	QuizID    uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_ratings_quiz_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_ratings_quiz_user"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   *string   `json:"comment"`
}

// models/quiz.go
type LeaderboardEntry struct {
	AttemptID   uint      `json:"attempt_id"`
	UserID      uint      `json:"user_id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}
