// backend/internal/quiz/service.go
package quiz

import (
	"context"
	"errors"
	"log"
	"time"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/auth"
	"quiz-platform/internal/mailer"
	"quiz-platform/internal/models"
	"quiz-platform/pkg/cache"
	"quiz-platform/pkg/websocket"
)

// LeaderboardSize is the number of attempts kept on a quiz leaderboard.
const LeaderboardSize = 10

// Cache is the subset of the Redis cache the service reads through.
type Cache interface {
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	SetQuiz(ctx context.Context, quiz *models.Quiz) error
	GetLeaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error)
	SetLeaderboard(ctx context.Context, quizID uint, entries []models.LeaderboardEntry) error
	InvalidateLeaderboard(ctx context.Context, quizID uint) error
	InvalidateQuiz(ctx context.Context, quizID uint) error
}

// Notifier pushes events to the clients watching a quiz.
type Notifier interface {
	BroadcastMessage(room string, messageType string, data interface{})
}

type Service struct {
	repo  *Repository
	cache Cache
	wsHub Notifier
	mail  mailer.Sender
}

// NewService wires the quiz service. cache and wsHub may be nil.
func NewService(repo *Repository, cache Cache, wsHub Notifier, mail mailer.Sender) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		wsHub: wsHub,
		mail:  mail,
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, user *models.User, req CategoryRequest) (*models.Category, error) {
	if err := auth.Authorize(user, auth.ActionManageCategories); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	category := &models.Category{Name: req.Name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, user *models.User, id uint, req CategoryRequest) (*models.Category, error) {
	if err := auth.Authorize(user, auth.ActionManageCategories); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes the category and every quiz filed under it.
func (s *Service) DeleteCategory(ctx context.Context, user *models.User, id uint) error {
	if err := auth.Authorize(user, auth.ActionManageCategories); err != nil {
		return err
	}
	categoryID := id
	quizzes, err := s.repo.ListQuizzes(ctx, &categoryID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	for _, q := range quizzes {
		s.invalidateQuiz(ctx, q.ID)
	}
	return nil
}

// ListQuizzes returns all quizzes, or the quizzes of one category. An unknown
// category is reported as not found rather than as an empty list.
func (s *Service) ListQuizzes(ctx context.Context, categoryID *uint) ([]models.Quiz, error) {
	if categoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *categoryID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListQuizzes(ctx, categoryID)
}

// GetQuiz returns the quiz with its questions and choices, reading through
// the cache.
func (s *Service) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	if s.cache != nil {
		quiz, err := s.cache.GetQuiz(ctx, id)
		if err == nil {
			return quiz, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("Error reading quiz %d from cache: %v", id, err)
		}
	}

	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetQuiz(ctx, quiz); err != nil {
			log.Printf("Error caching quiz %d: %v", id, err)
		}
	}
	return quiz, nil
}

func (s *Service) CreateQuiz(ctx context.Context, user *models.User, req QuizRequest) (*models.Quiz, error) {
	if err := auth.Authorize(user, auth.ActionManageQuizzes); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{CreatorID: user.ID}
	applyQuizRequest(quiz, req)
	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *Service) UpdateQuiz(ctx context.Context, user *models.User, id uint, req QuizRequest) (*models.Quiz, error) {
	if err := auth.Authorize(user, auth.ActionManageQuizzes); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	quiz, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	applyQuizRequest(quiz, req)
	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	s.invalidateQuiz(ctx, id)
	return quiz, nil
}

func (s *Service) DeleteQuiz(ctx context.Context, user *models.User, id uint) error {
	if err := auth.Authorize(user, auth.ActionManageQuizzes); err != nil {
		return err
	}
	if err := s.repo.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	s.invalidateQuiz(ctx, id)
	return nil
}

func (s *Service) requireCategory(ctx context.Context, id uint) error {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Validation("category_id: category does not exist")
		}
		return err
	}
	return nil
}

func applyQuizRequest(quiz *models.Quiz, req QuizRequest) {
	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.CategoryID = req.CategoryID
	quiz.HasTimeLimit = req.HasTimeLimit
	quiz.TimeLimitSeconds = nil
	if req.HasTimeLimit {
		quiz.TimeLimitSeconds = req.TimeLimitSeconds
	}
}

// AddQuestions appends a batch of questions with their choices to a quiz.
func (s *Service) AddQuestions(ctx context.Context, user *models.User, quizID uint, batch QuestionBatch) ([]models.Question, error) {
	if err := auth.Authorize(user, auth.ActionManageQuizzes); err != nil {
		return nil, err
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetQuizByID(ctx, quizID); err != nil {
		return nil, err
	}

	questions := make([]models.Question, len(batch))
	for i, q := range batch {
		questions[i] = models.Question{QuizID: quizID, Text: q.Text, Points: q.Points}
		for _, c := range q.Choices {
			questions[i].Choices = append(questions[i].Choices, models.Choice{Text: c.Text, IsCorrect: c.IsCorrect})
		}
	}
	if err := s.repo.AddQuestions(ctx, questions); err != nil {
		return nil, err
	}
	log.Printf("Added %d questions to quiz %d", len(questions), quizID)
	s.invalidateQuiz(ctx, quizID)
	return questions, nil
}

func (s *Service) UpdateQuestion(ctx context.Context, user *models.User, id uint, req QuestionUpdateRequest) (*models.Question, error) {
	if err := auth.Authorize(user, auth.ActionManageQuizzes); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Text = req.Text
	question.Points = req.Points
	if err := s.repo.UpdateQuestion(ctx, question); err != nil {
		return nil, err
	}
	s.invalidateQuiz(ctx, question.QuizID)
	return question, nil
}

func (s *Service) DeleteQuestion(ctx context.Context, user *models.User, id uint) error {
	if err := auth.Authorize(user, auth.ActionManageQuizzes); err != nil {
		return err
	}
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.invalidateQuiz(ctx, question.QuizID)
	return nil
}

// TakeQuiz scores a submission and records it as a new completed attempt.
// The attempt is created, scored and completed in one transaction, so a
// submission that references an unknown question or choice leaves nothing
// behind.
func (s *Service) TakeQuiz(ctx context.Context, user *models.User, quizID uint, req TakeQuizRequest) (*models.Attempt, error) {
	if err := auth.Authorize(user, auth.ActionTakeQuiz); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	quiz, err := s.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	answers := req.answers()
	var attempt *models.Attempt
	err = s.repo.WithTx(ctx, func(tx *Repository) error {
		attempt = &models.Attempt{UserID: user.ID, QuizID: quizID, Status: models.AttemptPending}
		if err := tx.CreateAttempt(ctx, attempt); err != nil {
			return err
		}

		questionIDs, choiceIDs := answerIDs(answers)
		questions, err := tx.FindQuestions(ctx, quizID, questionIDs)
		if err != nil {
			return err
		}
		choices, err := tx.FindChoices(ctx, choiceIDs)
		if err != nil {
			return err
		}
		score, err := Score(answers, questions, choices)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		attempt.Score = score
		attempt.Status = models.AttemptCompleted
		attempt.CompletedAt = &now
		return tx.SaveAttempt(ctx, attempt)
	})
	if err != nil {
		log.Printf("Error scoring attempt on quiz %d by user %d: %v", quizID, user.ID, err)
		return nil, err
	}
	log.Printf("User %d scored %d on quiz %d", user.ID, attempt.Score, quizID)

	s.sendResult(ctx, user, quiz, attempt.Score)
	s.notify(quizID, "attempt_completed", map[string]interface{}{
		"attempt_id": attempt.ID,
		"user_id":    user.ID,
		"score":      attempt.Score,
	})
	s.leaderboardChanged(ctx, quizID)
	return attempt, nil
}

// leaderboardChanged recomputes the cached leaderboard after a new attempt.
// When that fails the cached copy is dropped so readers fall back to the store.
func (s *Service) leaderboardChanged(ctx context.Context, quizID uint) {
	_, err := s.RefreshLeaderboard(ctx, quizID)
	if err == nil {
		return
	}
	log.Printf("Error refreshing leaderboard for quiz %d: %v", quizID, err)
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLeaderboard(ctx, quizID); err != nil {
		log.Printf("Error invalidating leaderboard %d: %v", quizID, err)
	}
}

func (s *Service) sendResult(ctx context.Context, user *models.User, quiz *models.Quiz, score int) {
	if s.mail == nil {
		return
	}
	msg, err := mailer.QuizResultEmail(user.Email, user.FirstName, quiz.Title, score)
	if err != nil {
		log.Printf("Error rendering result email: %v", err)
		return
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		log.Printf("Error sending result email to %s: %v", user.Email, err)
	}
}

// Progress lists the user's completed attempts, newest first.
func (s *Service) Progress(ctx context.Context, user *models.User) ([]models.Attempt, error) {
	if err := auth.Authorize(user, auth.ActionViewProgress); err != nil {
		return nil, err
	}
	return s.repo.ListAttemptsByUser(ctx, user.ID)
}

// Leaderboard returns the top attempts of a quiz, from the cache when present.
func (s *Service) Leaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error) {
	if _, err := s.repo.GetQuizByID(ctx, quizID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		entries, err := s.cache.GetLeaderboard(ctx, quizID)
		if err == nil {
			return entries, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("Error reading leaderboard %d from cache: %v", quizID, err)
		}
	}
	return s.RefreshLeaderboard(ctx, quizID)
}

// RefreshLeaderboard recomputes the leaderboard from the store, caches it and
// pushes it to the quiz room.
func (s *Service) RefreshLeaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error) {
	entries, err := s.repo.GetLeaderboard(ctx, quizID, LeaderboardSize)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	if s.cache != nil {
		if err := s.cache.SetLeaderboard(ctx, quizID, entries); err != nil {
			log.Printf("Error caching leaderboard %d: %v", quizID, err)
		}
	}
	s.notify(quizID, "leaderboard", entries)
	return entries, nil
}

// RefreshAllLeaderboards recomputes the leaderboard of every quiz that has
// completed attempts. It stops at the first store error.
func (s *Service) RefreshAllLeaderboards(ctx context.Context) (int, error) {
	ids, err := s.repo.QuizIDsWithAttempts(ctx)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if _, err := s.RefreshLeaderboard(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

// RateQuiz records the user's rating of a quiz, replacing an earlier one.
func (s *Service) RateQuiz(ctx context.Context, user *models.User, quizID uint, req RateRequest) (*models.Rating, error) {
	if err := auth.Authorize(user, auth.ActionRateQuiz); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetQuizByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.repo.UpsertRating(ctx, &models.Rating{
		QuizID:  quizID,
		UserID:  user.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
}

// AverageRating is nil for a quiz nobody rated yet.
func (s *Service) AverageRating(ctx context.Context, quizID uint) (*float64, error) {
	if _, err := s.repo.GetQuizByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.repo.AverageRating(ctx, quizID)
}

func (s *Service) invalidateQuiz(ctx context.Context, quizID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateQuiz(ctx, quizID); err != nil {
		log.Printf("Error invalidating cache for quiz %d: %v", quizID, err)
	}
}

func (s *Service) notify(quizID uint, messageType string, data interface{}) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.BroadcastMessage(websocket.Room(quizID), messageType, data)
}
