package quiz

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/mailer"
	"quiz-platform/internal/models"
	"quiz-platform/internal/testutil"
	"quiz-platform/pkg/cache"
)

type event struct {
	room string
	kind string
}

type recordingHub struct {
	mu     sync.Mutex
	events []event
}

func (h *recordingHub) BroadcastMessage(room, messageType string, _ interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event{room, messageType})
}

func (h *recordingHub) kinds() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, e := range h.events {
		out = append(out, e.kind)
	}
	return out
}

type fixture struct {
	db    *gorm.DB
	svc   *Service
	mail  *mailer.Recorder
	hub   *recordingHub
	admin *models.User
	user  *models.User
}

func newFixture(t *testing.T, c Cache) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	admin := &models.User{Email: "admin@example.com", FirstName: "Root", Password: "x", IsAdmin: true}
	user := &models.User{Email: "ada@example.com", FirstName: "Ada", Password: "x"}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(user).Error)

	mail := &mailer.Recorder{}
	hub := &recordingHub{}
	svc := NewService(NewRepository(db), c, hub, mail)
	return fixture{db: db, svc: svc, mail: mail, hub: hub, admin: admin, user: user}
}

// seedAlgebra creates the Algebra quiz: question A (2 pts) and question B
// (3 pts), each with one correct and one wrong choice.
func (f fixture) seedAlgebra(t *testing.T) (*models.Quiz, []models.Question) {
	t.Helper()
	ctx := context.Background()
	category, err := f.svc.CreateCategory(ctx, f.admin, CategoryRequest{Name: "Math"})
	require.NoError(t, err)
	quiz, err := f.svc.CreateQuiz(ctx, f.admin, QuizRequest{Title: "Algebra", CategoryID: category.ID})
	require.NoError(t, err)
	questions, err := f.svc.AddQuestions(ctx, f.admin, quiz.ID, QuestionBatch{
		{Text: "A", Points: 2, Choices: []ChoiceRequest{{Text: "A1", IsCorrect: true}, {Text: "A2"}}},
		{Text: "B", Points: 3, Choices: []ChoiceRequest{{Text: "B1", IsCorrect: true}, {Text: "B2"}}},
	})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	return quiz, questions
}

func answer(q models.Question, choice int) AnswerRequest {
	return AnswerRequest{QuestionID: q.ID, SelectedChoiceID: q.Choices[choice].ID}
}

func (f fixture) attempts(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Attempt{}).Count(&n).Error)
	return n
}

func TestTakeQuizScoresAlgebra(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, qs := f.seedAlgebra(t)

	attempt, err := f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{answer(qs[0], 0), answer(qs[1], 1)}})
	require.NoError(t, err)
	assert.Equal(t, 2, attempt.Score)
	assert.Equal(t, models.AttemptCompleted, attempt.Status)
	assert.NotNil(t, attempt.CompletedAt)

	attempt, err = f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{answer(qs[0], 0), answer(qs[1], 0)}})
	require.NoError(t, err)
	assert.Equal(t, 5, attempt.Score)

	assert.EqualValues(t, 2, f.attempts(t), "each call records its own attempt")

	sent := f.mail.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Quiz Result", sent[1].Subject)
	assert.Contains(t, sent[1].HTML, "You scored 5 in the quiz Algebra.")
	assert.Contains(t, f.hub.kinds(), "attempt_completed")
	assert.Contains(t, f.hub.kinds(), "leaderboard")
}

func TestTakeQuizWithNoAnswers(t *testing.T) {
	f := newFixture(t, nil)
	quiz, _ := f.seedAlgebra(t)

	attempt, err := f.svc.TakeQuiz(context.Background(), f.user, quiz.ID, TakeQuizRequest{})
	require.NoError(t, err)
	assert.Zero(t, attempt.Score)
	assert.EqualValues(t, 1, f.attempts(t))
}

func TestTakeQuizRollsBackOnUnknownReference(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, qs := f.seedAlgebra(t)

	_, err := f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{
		answer(qs[0], 0),
		{QuestionID: 999, SelectedChoiceID: qs[1].Choices[0].ID},
	}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{
		{QuestionID: qs[0].ID, SelectedChoiceID: 999},
	}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.Zero(t, f.attempts(t))
	assert.Empty(t, f.mail.Sent())
}

func TestTakeQuizRejectsRepeatedQuestion(t *testing.T) {
	f := newFixture(t, nil)
	quiz, qs := f.seedAlgebra(t)

	a := answer(qs[0], 0)
	_, err := f.svc.TakeQuiz(context.Background(), f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{a, a, a, a}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, f.attempts(t))
}

func TestTakeQuizRejectsQuestionFromAnotherQuiz(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, _ := f.seedAlgebra(t)
	other, err := f.svc.CreateQuiz(ctx, f.admin, QuizRequest{Title: "Geometry", CategoryID: quiz.CategoryID})
	require.NoError(t, err)
	foreign, err := f.svc.AddQuestions(ctx, f.admin, other.ID, QuestionBatch{
		{Text: "C", Points: 10, Choices: []ChoiceRequest{{Text: "C1", IsCorrect: true}}},
	})
	require.NoError(t, err)

	_, err = f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{answer(foreign[0], 0)}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTakeQuizErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.TakeQuiz(ctx, f.user, 42, TakeQuizRequest{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.TakeQuiz(ctx, nil, 42, TakeQuizRequest{})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestRateQuizUpserts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, _ := f.seedAlgebra(t)

	avg, err := f.svc.AverageRating(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)

	_, err = f.svc.RateQuiz(ctx, f.user, quiz.ID, RateRequest{Rating: 3})
	require.NoError(t, err)
	comment := "better on second look"
	rating, err := f.svc.RateQuiz(ctx, f.user, quiz.ID, RateRequest{Rating: 6, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, 6, rating.Rating)
	require.NotNil(t, rating.Comment)
	assert.Equal(t, comment, *rating.Comment)

	var rows int64
	require.NoError(t, f.db.Model(&models.Rating{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	_, err = f.svc.RateQuiz(ctx, f.admin, quiz.ID, RateRequest{Rating: 2})
	require.NoError(t, err)

	avg, err = f.svc.AverageRating(ctx, quiz.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 1e-9)
}

func TestRateQuizValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, _ := f.seedAlgebra(t)

	for _, r := range []int{0, 8, -1} {
		_, err := f.svc.RateQuiz(ctx, f.user, quiz.ID, RateRequest{Rating: r})
		assert.True(t, apperr.Is(err, apperr.KindValidation), "rating %d", r)
	}

	_, err := f.svc.RateQuiz(ctx, f.user, 999, RateRequest{Rating: 4})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.AverageRating(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAuthoringRequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, qs := f.seedAlgebra(t)

	_, err := f.svc.CreateCategory(ctx, f.user, CategoryRequest{Name: "History"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.CreateQuiz(ctx, f.user, QuizRequest{Title: "x", CategoryID: quiz.CategoryID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	err = f.svc.DeleteQuestion(ctx, f.user, qs[0].ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	err = f.svc.DeleteQuiz(ctx, nil, quiz.ID)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestCreateQuizValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateQuiz(ctx, f.admin, QuizRequest{Title: "Orphan", CategoryID: 77})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	category, err := f.svc.CreateCategory(ctx, f.admin, CategoryRequest{Name: "Math"})
	require.NoError(t, err)
	_, err = f.svc.CreateQuiz(ctx, f.admin, QuizRequest{Title: "Timed", CategoryID: category.ID, HasTimeLimit: true})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	limit := 300
	quiz, err := f.svc.CreateQuiz(ctx, f.admin, QuizRequest{Title: "Timed", CategoryID: category.ID, HasTimeLimit: true, TimeLimitSeconds: &limit})
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, quiz.CreatorID)
	require.NotNil(t, quiz.TimeLimitSeconds)
	assert.Equal(t, 300, *quiz.TimeLimitSeconds)
}

func TestDeleteCategoryCascades(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, qs := f.seedAlgebra(t)
	_, err := f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{answer(qs[0], 0)}})
	require.NoError(t, err)
	_, err = f.svc.RateQuiz(ctx, f.user, quiz.ID, RateRequest{Rating: 5})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCategory(ctx, f.admin, quiz.CategoryID))

	for _, model := range []interface{}{&models.Quiz{}, &models.Question{}, &models.Choice{}, &models.Attempt{}, &models.Rating{}} {
		var n int64
		require.NoError(t, f.db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T rows left", model)
	}

	err = f.svc.DeleteCategory(ctx, f.admin, quiz.CategoryID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateAndDeleteQuestion(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, qs := f.seedAlgebra(t)

	updated, err := f.svc.UpdateQuestion(ctx, f.admin, qs[0].ID, QuestionUpdateRequest{Text: "A'", Points: 7})
	require.NoError(t, err)
	assert.Equal(t, uint(7), updated.Points)

	require.NoError(t, f.svc.DeleteQuestion(ctx, f.admin, qs[1].ID))

	got, err := f.svc.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "A'", got.Questions[0].Text)
	assert.Len(t, got.Questions[0].Choices, 2)

	err = f.svc.DeleteQuestion(ctx, f.admin, qs[1].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListQuizzesByCategory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, _ := f.seedAlgebra(t)

	quizzes, err := f.svc.ListQuizzes(ctx, &quiz.CategoryID)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "Algebra", quizzes[0].Title)

	missing := uint(404)
	_, err = f.svc.ListQuizzes(ctx, &missing)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestProgressAndLeaderboard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	quiz, qs := f.seedAlgebra(t)

	_, err := f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{answer(qs[0], 0)}})
	require.NoError(t, err)
	_, err = f.svc.TakeQuiz(ctx, f.admin, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{answer(qs[0], 0), answer(qs[1], 0)}})
	require.NoError(t, err)

	progress, err := f.svc.Progress(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 2, progress[0].Score)

	board, err := f.svc.Leaderboard(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "admin@example.com", board[0].Email)
	assert.Equal(t, 5, board[0].Score)
	assert.Equal(t, 2, board[1].Score)

	refreshed, err := f.svc.RefreshAllLeaderboards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
}

func TestCachedQuizAndLeaderboard(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(mr.Addr())
	t.Cleanup(func() { rc.Close() })
	f := newFixture(t, rc)
	ctx := context.Background()
	quiz, qs := f.seedAlgebra(t)

	_, err := f.svc.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("quiz:1"))

	_, err = f.svc.UpdateQuestion(ctx, f.admin, qs[0].ID, QuestionUpdateRequest{Text: "A", Points: 4})
	require.NoError(t, err)
	assert.False(t, mr.Exists("quiz:1"), "edits drop the cached quiz")

	_, err = f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{answer(qs[0], 0)}})
	require.NoError(t, err)
	assert.True(t, mr.Exists("leaderboard:1"))

	board, err := f.svc.Leaderboard(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 4, board[0].Score)
}

func TestStaleLeaderboardDroppedWhenRefreshFails(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(mr.Addr())
	t.Cleanup(func() { rc.Close() })
	f := newFixture(t, rc)
	ctx := context.Background()
	quiz, qs := f.seedAlgebra(t)

	_, err := f.svc.TakeQuiz(ctx, f.user, quiz.ID, TakeQuizRequest{Questions: []AnswerRequest{answer(qs[0], 0)}})
	require.NoError(t, err)
	require.True(t, mr.Exists("leaderboard:1"))

	// The leaderboard query joins users; without the table the recompute fails.
	require.NoError(t, f.db.Exec("ALTER TABLE users RENAME TO users_archived").Error)

	f.svc.leaderboardChanged(ctx, quiz.ID)
	assert.False(t, mr.Exists("leaderboard:1"))
}
