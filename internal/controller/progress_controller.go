package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// CompleteLesson godoc
// @Summary Mark a lesson completed
// @Description Idempotent. Enrolls the caller in the lesson's course if needed.
// @Tags progress
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Lesson ID"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 404 {object} util.Response
// @Router /api/lessons/{id}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), claims.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CourseProgress godoc
// @Summary Caller's progress in a course
// @Tags progress
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) CourseProgress(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.CourseProgress(ctx.Request.Context(), claims.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
