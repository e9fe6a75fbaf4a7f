package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// Get godoc
// @Summary Quiz for a learner
// @Description Questions and answers without correct flags
// @Tags quiz
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	view, err := c.QuizService.GetForLearner(ctx.Request.Context(), id, canSeeDrafts(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ListForCourse godoc
// @Summary Quizzes of a course
// @Description Course, module and lesson quizzes without questions
// @Tags quiz
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/quizzes [get]
func (c *QuizController) ListForCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	quizzes, err := c.QuizService.ListForCourse(ctx.Request.Context(), id, canSeeDrafts(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

type SubmitQuizRequest struct {
	Responses []service.SubmittedResponse `json:"responses" binding:"required,dive"`
}

// Submit godoc
// @Summary Submit quiz answers
// @Description Grades the submission and records the attempt. Repeated failures reset the learner's progress for the quiz's scope.
// @Tags quiz
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Param   body body SubmitQuizRequest true "One answer per question"
// @Success 200 {object} util.Response{data=service.SubmissionResult}
// @Failure 400 {object} util.Response "Invalid submission"
// @Failure 404 {object} util.Response "Quiz not found"
// @Failure 409 {object} util.Response "Submission already in progress"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.QuizService.Submit(ctx.Request.Context(), claims.UserID, id, req.Responses)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Attempts godoc
// @Summary Caller's attempts on a quiz
// @Tags quiz
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=[]model.UserQuizAttempt}
// @Router /api/quizzes/{id}/attempts [get]
func (c *QuizController) Attempts(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	attempts, err := c.QuizService.ListAttempts(ctx.Request.Context(), claims.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
