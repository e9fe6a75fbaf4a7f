package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// canSeeDrafts lets content managers browse unpublished courses.
func canSeeDrafts(ctx *gin.Context) bool {
	claims := util.GetUserFromContext(ctx)
	return claims != nil && model.CanManageContent(claims.Roles)
}

// List godoc
// @Summary Course catalog
// @Description Published courses; editors and admins also see drafts
// @Tags course
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page"
// @Param   limit query int false "Page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	courses, total, err := c.CourseService.List(ctx.Request.Context(), canSeeDrafts(ctx), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Course with its modules and lessons
// @Tags course
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Get(ctx.Request.Context(), id, canSeeDrafts(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Idempotent; enrolling twice returns the existing enrollment
// @Tags course
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.CourseService.Enroll(ctx.Request.Context(), claims.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// Enrollments godoc
// @Summary Courses the caller is enrolled in
// @Tags course
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
func (c *CourseController) Enrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	enrollments, err := c.CourseService.ListEnrollments(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}
