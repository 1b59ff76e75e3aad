// backend/internal/quiz/repository.go
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx runs fn against a repository bound to a single transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return err
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("id").Find(&categories).Error
	return categories, err
}

func (r *Repository) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, "category")
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *Repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteCategory removes the category with every quiz filed under it.
func (r *Repository) DeleteCategory(ctx context.Context, id uint) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		var quizIDs []uint
		if err := tx.db.Model(&models.Quiz{}).Where("category_id = ?", id).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if err := tx.deleteQuizzes(quizIDs); err != nil {
			return err
		}
		result := tx.db.Delete(&models.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("category not found")
		}
		return nil
	})
}

// ListQuizzes returns every quiz, or only those of categoryID when non-nil.
func (r *Repository) ListQuizzes(ctx context.Context, categoryID *uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	q := r.db.WithContext(ctx).Preload("Questions.Choices").Order("id")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	if err := q.Find(&quizzes).Error; err != nil {
		log.Printf("Error listing quizzes: %v", err)
		return nil, err
	}
	return quizzes, nil
}

// GetQuiz loads a quiz with its questions and choices.
func (r *Repository) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id") }).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB { return db.Order("choices.id") }).
		First(&quiz, id).Error
	if err != nil {
		return nil, notFound(err, "quiz")
	}
	return &quiz, nil
}

// GetQuizByID loads the quiz row only.
func (r *Repository) GetQuizByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, notFound(err, "quiz")
	}
	return &quiz, nil
}

func (r *Repository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if err := r.db.WithContext(ctx).Create(quiz).Error; err != nil {
		log.Printf("Error creating quiz: %v", err)
		return err
	}
	log.Printf("Created quiz with ID: %d", quiz.ID)
	return nil
}

func (r *Repository) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	err := r.db.WithContext(ctx).Model(quiz).Select(
		"Title", "Description", "CategoryID", "HasTimeLimit", "TimeLimitSeconds",
	).Updates(quiz).Error
	if err != nil {
		log.Printf("Error updating quiz: %v", err)
		return err
	}
	log.Printf("Updated quiz with ID: %d", quiz.ID)
	return nil
}

// DeleteQuiz removes a quiz with its questions, choices, attempts and ratings.
func (r *Repository) DeleteQuiz(ctx context.Context, id uint) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		if _, err := tx.GetQuizByID(ctx, id); err != nil {
			return err
		}
		return tx.deleteQuizzes([]uint{id})
	})
}

func (r *Repository) deleteQuizzes(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	questionIDs := r.db.Model(&models.Question{}).Select("id").Where("quiz_id IN ?", ids)
	steps := []struct {
		query *gorm.DB
		model interface{}
	}{
		{r.db.Where("question_id IN (?)", questionIDs), &models.Choice{}},
		{r.db.Where("quiz_id IN ?", ids), &models.Question{}},
		{r.db.Where("quiz_id IN ?", ids), &models.Rating{}},
		{r.db.Where("quiz_id IN ?", ids), &models.Attempt{}},
		{r.db.Where("id IN ?", ids), &models.Quiz{}},
	}
	for _, step := range steps {
		if err := step.query.Delete(step.model).Error; err != nil {
			return fmt.Errorf("delete %T: %w", step.model, err)
		}
	}
	return nil
}

// AddQuestions stores questions with their choices in one transaction.
func (r *Repository) AddQuestions(ctx context.Context, questions []models.Question) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		for i := range questions {
			if err := tx.db.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).Preload("Choices").First(&question, id).Error
	if err != nil {
		log.Printf("Error getting question %d: %v", id, err)
		return nil, notFound(err, "question")
	}
	return &question, nil
}

func (r *Repository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Model(question).Select("Text", "Points").Updates(question).Error
}

func (r *Repository) DeleteQuestion(ctx context.Context, id uint) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		if err := tx.db.Where("question_id = ?", id).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
		result := tx.db.Delete(&models.Question{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("question not found")
		}
		return nil
	})
}

// FindQuestions returns the questions of quizID among ids, keyed by id.
func (r *Repository) FindQuestions(ctx context.Context, quizID uint, ids []uint) (map[uint]models.Question, error) {
	out := make(map[uint]models.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var questions []models.Question
	if err := r.db.WithContext(ctx).Where("quiz_id = ? AND id IN ?", quizID, ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	for _, q := range questions {
		out[q.ID] = q
	}
	return out, nil
}

// FindChoices returns the choices among ids, keyed by id.
func (r *Repository) FindChoices(ctx context.Context, ids []uint) (map[uint]models.Choice, error) {
	out := make(map[uint]models.Choice, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var choices []models.Choice
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&choices).Error; err != nil {
		return nil, err
	}
	for _, c := range choices {
		out[c.ID] = c
	}
	return out, nil
}

func (r *Repository) CreateAttempt(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *Repository) SaveAttempt(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Save(attempt).Error
}

// ListAttemptsByUser returns the user's completed attempts, newest first.
func (r *Repository) ListAttemptsByUser(ctx context.Context, userID uint) ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.AttemptCompleted).
		Order("completed_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}

// repository.go
func (r *Repository) GetLeaderboard(ctx context.Context, quizID uint, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry

	err := r.db.WithContext(ctx).Raw(`
        SELECT a.id AS attempt_id, a.user_id, u.email, u.first_name, a.score, a.completed_at
        FROM user_quizzes a
        JOIN users u ON u.id = a.user_id
        WHERE a.quiz_id = ? AND a.status = ?
        ORDER BY a.score DESC, a.completed_at ASC, a.id ASC
        LIMIT ?
    `, quizID, models.AttemptCompleted, limit).Scan(&entries).Error

	if err != nil {
		log.Printf("Error getting leaderboard: %v", err)
		return nil, err
	}

	return entries, nil
}

// QuizIDsWithAttempts lists quizzes that have at least one completed attempt.
func (r *Repository) QuizIDsWithAttempts(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Attempt{}).
		Where("status = ?", models.AttemptCompleted).
		Distinct().
		Order("quiz_id").
		Pluck("quiz_id", &ids).Error
	return ids, err
}

// UpsertRating inserts the rating or, when the user already rated the quiz,
// overwrites it. The unique (quiz_id, user_id) index arbitrates concurrent
// requests.
func (r *Repository) UpsertRating(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quiz_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(rating).Error
	if err != nil {
		return nil, err
	}

	var stored models.Rating
	if err := db.Where("quiz_id = ? AND user_id = ?", rating.QuizID, rating.UserID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// AverageRating returns nil when the quiz has no ratings.
func (r *Repository) AverageRating(ctx context.Context, quizID uint) (*float64, error) {
	var avg *float64
	row := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("AVG(rating)").
		Where("quiz_id = ?", quizID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}
