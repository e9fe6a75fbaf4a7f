package service

import (
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizFixture(passing int, n int) *model.Quiz {
	q := &model.Quiz{PassingScore: passing}
	q.ID = 1
	id := uint(100)
	for i := 0; i < n; i++ {
		id++
		question := model.QuizQuestion{Text: "q"}
		question.ID = id
		for _, correct := range []bool{true, false, false} {
			id++
			a := model.QuizAnswer{Text: "a", IsCorrect: correct}
			a.ID = id
			question.Answers = append(question.Answers, a)
		}
		q.Questions = append(q.Questions, question)
	}
	return q
}

func TestScoreRounding(t *testing.T) {
	assert.Equal(t, 67, Score(2, 3))
	assert.Equal(t, 33, Score(1, 3))
	assert.Equal(t, 100, Score(2, 2))
	assert.Equal(t, 0, Score(0, 4))
	assert.Equal(t, 13, Score(1, 8), "12.5 rounds half away from zero")
	assert.Equal(t, 0, Score(0, 0))
}

func TestGradeSubmissionTwoOfThree(t *testing.T) {
	q := quizFixture(70, 3)
	g, err := GradeSubmission(q, answers(q, 2))
	require.NoError(t, err)

	assert.Equal(t, 67, g.Score)
	assert.False(t, g.Passed)
	assert.Equal(t, 2, g.CorrectCount)
	assert.Equal(t, 3, g.TotalQuestions)
	require.Len(t, g.Responses, 3)
	assert.True(t, g.Responses[0].IsCorrect)
	assert.False(t, g.Responses[2].IsCorrect)
}

func TestGradeSubmissionPassBoundary(t *testing.T) {
	q := quizFixture(67, 3)
	g, err := GradeSubmission(q, answers(q, 2))
	require.NoError(t, err)
	assert.True(t, g.Passed, "score equal to the passing score passes")
}

func TestGradeSubmissionOmittedQuestionCountsWrong(t *testing.T) {
	q := quizFixture(50, 4)
	all := answers(q, 4)
	g, err := GradeSubmission(q, all[:2])
	require.NoError(t, err)

	assert.Equal(t, 50, g.Score)
	assert.Equal(t, 4, g.TotalQuestions)
	require.Len(t, g.Responses, 4)
	assert.Nil(t, g.Responses[3].AnswerID)
	assert.False(t, g.Responses[3].IsCorrect)
}

func TestGradeSubmissionRejectsMalformed(t *testing.T) {
	q := quizFixture(70, 2)
	valid := answers(q, 2)

	cases := map[string][]SubmittedResponse{
		"unknown question": {{QuestionID: 9999, AnswerID: valid[0].AnswerID}},
		"foreign answer":   {{QuestionID: valid[0].QuestionID, AnswerID: valid[1].AnswerID}},
		"duplicate":        {valid[0], valid[0]},
	}
	for name, responses := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := GradeSubmission(q, responses)
			assert.ErrorIs(t, err, util.ErrInvalidSubmission)
		})
	}

	_, err := GradeSubmission(&model.Quiz{PassingScore: 10}, nil)
	assert.ErrorIs(t, err, util.ErrInvalidSubmission, "quiz without questions")
}

func TestConsecutiveFailures(t *testing.T) {
	assert.Equal(t, 0, consecutiveFailures(nil))
	assert.Equal(t, 2, consecutiveFailures([]model.UserQuizAttempt{{Passed: false}, {Passed: false}, {Passed: true}, {Passed: false}}))
	assert.Equal(t, 0, consecutiveFailures([]model.UserQuizAttempt{{Passed: true}, {Passed: false}}))
}
