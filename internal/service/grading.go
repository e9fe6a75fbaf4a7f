package service

import (
	"fmt"
	"math"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
)

// SubmittedResponse is one learner choice in a quiz submission.
type SubmittedResponse struct {
	QuestionID uint `json:"questionId" validate:"required"`
	AnswerID   uint `json:"answerId" validate:"required"`
}

// Grade is the outcome of evaluating a submission against a quiz.
type Grade struct {
	Score          int
	Passed         bool
	CorrectCount   int
	TotalQuestions int
	Responses      []model.UserQuizResponse
}

// GradeSubmission scores responses against the quiz's correct answers.
// Questions without a response count as wrong. Responses naming unknown
// questions, foreign answers or repeating a question are rejected.
func GradeSubmission(quiz *model.Quiz, responses []SubmittedResponse) (*Grade, error) {
	total := len(quiz.Questions)
	if total == 0 {
		return nil, fmt.Errorf("%w: quiz has no questions", util.ErrInvalidSubmission)
	}

	questions := make(map[uint]*model.QuizQuestion, total)
	for i := range quiz.Questions {
		questions[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	chosen := make(map[uint]uint, len(responses))
	for _, r := range responses {
		q, ok := questions[r.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: question %d is not part of this quiz", util.ErrInvalidSubmission, r.QuestionID)
		}
		if _, dup := chosen[r.QuestionID]; dup {
			return nil, fmt.Errorf("%w: question %d answered more than once", util.ErrInvalidSubmission, r.QuestionID)
		}
		if !hasAnswer(q, r.AnswerID) {
			return nil, fmt.Errorf("%w: answer %d does not belong to question %d", util.ErrInvalidSubmission, r.AnswerID, r.QuestionID)
		}
		chosen[r.QuestionID] = r.AnswerID
	}

	g := &Grade{TotalQuestions: total, Responses: make([]model.UserQuizResponse, 0, total)}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		resp := model.UserQuizResponse{QuestionID: q.ID}
		if answerID, ok := chosen[q.ID]; ok {
			resp.AnswerID = util.UintPtr(answerID)
			correctID, hasCorrect := q.CorrectAnswerID()
			resp.IsCorrect = hasCorrect && correctID == answerID
		}
		if resp.IsCorrect {
			g.CorrectCount++
		}
		g.Responses = append(g.Responses, resp)
	}

	g.Score = Score(g.CorrectCount, total)
	g.Passed = g.Score >= quiz.PassingScore
	return g, nil
}

// Score is the percentage of correct answers rounded half away from zero.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func hasAnswer(q *model.QuizQuestion, answerID uint) bool {
	for _, a := range q.Answers {
		if a.ID == answerID {
			return true
		}
	}
	return false
}

// consecutiveFailures counts failed attempts from the newest backwards until
// the first pass.
func consecutiveFailures(newestFirst []model.UserQuizAttempt) int {
	n := 0
	for _, a := range newestFirst {
		if a.Passed {
			break
		}
		n++
	}
	return n
}
