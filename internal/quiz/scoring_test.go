package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/models"
)

// algebra: question 1 (2 pts, choice 11 correct), question 2 (3 pts,
// choice 21 correct, 22 wrong).
func algebra() (map[uint]models.Question, map[uint]models.Choice) {
	questions := map[uint]models.Question{
		1: {ID: 1, QuizID: 1, Points: 2},
		2: {ID: 2, QuizID: 1, Points: 3},
	}
	choices := map[uint]models.Choice{
		11: {ID: 11, QuestionID: 1, IsCorrect: true},
		12: {ID: 12, QuestionID: 1},
		21: {ID: 21, QuestionID: 2, IsCorrect: true},
		22: {ID: 22, QuestionID: 2},
	}
	return questions, choices
}

func TestScoreAlgebra(t *testing.T) {
	questions, choices := algebra()

	score, err := Score([]Answer{{1, 11}, {2, 22}}, questions, choices)
	require.NoError(t, err)
	assert.Equal(t, 2, score)

	score, err = Score([]Answer{{1, 11}, {2, 21}}, questions, choices)
	require.NoError(t, err)
	assert.Equal(t, 5, score)
}

func TestScoreCountsRepeatedQuestionOnce(t *testing.T) {
	questions, choices := algebra()

	score, err := Score([]Answer{{1, 11}, {1, 11}, {1, 11}, {1, 11}}, questions, choices)
	require.NoError(t, err)
	assert.Equal(t, 2, score)

	score, err = Score([]Answer{{1, 12}, {1, 11}, {2, 21}, {2, 21}}, questions, choices)
	require.NoError(t, err)
	assert.Equal(t, 5, score)
}

func TestTakeQuizRequestRejectsRepeatedQuestion(t *testing.T) {
	req := TakeQuizRequest{Questions: []AnswerRequest{
		{QuestionID: 1, SelectedChoiceID: 11},
		{QuestionID: 2, SelectedChoiceID: 21},
		{QuestionID: 1, SelectedChoiceID: 11},
	}}

	err := req.Validate()
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "questions: must not contain duplicates", apperr.Message(err))

	req.Questions = req.Questions[:2]
	assert.NoError(t, req.Validate())
}

func TestScoreIgnoresCorrectChoiceOfAnotherQuestion(t *testing.T) {
	questions, choices := algebra()

	score, err := Score([]Answer{{1, 21}}, questions, choices)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestScoreIsOrderIndependent(t *testing.T) {
	questions, choices := algebra()

	forward, err := Score([]Answer{{1, 11}, {2, 21}}, questions, choices)
	require.NoError(t, err)
	backward, err := Score([]Answer{{2, 21}, {1, 11}}, questions, choices)
	require.NoError(t, err)
	assert.Equal(t, forward, backward)
}

func TestScoreEmptySubmission(t *testing.T) {
	questions, choices := algebra()

	score, err := Score(nil, questions, choices)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestScoreUnknownReferences(t *testing.T) {
	questions, choices := algebra()

	_, err := Score([]Answer{{9, 11}}, questions, choices)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = Score([]Answer{{1, 99}}, questions, choices)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestScoreQuestionWithoutCorrectChoice(t *testing.T) {
	questions := map[uint]models.Question{1: {ID: 1, Points: 4}}
	choices := map[uint]models.Choice{5: {ID: 5, QuestionID: 1}, 6: {ID: 6, QuestionID: 1}}

	score, err := Score([]Answer{{1, 5}, {1, 6}}, questions, choices)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestAnswerIDsDeduplicates(t *testing.T) {
	questionIDs, choiceIDs := answerIDs([]Answer{{1, 11}, {1, 12}, {2, 11}})
	assert.Equal(t, []uint{1, 2}, questionIDs)
	assert.Equal(t, []uint{11, 12}, choiceIDs)
}
