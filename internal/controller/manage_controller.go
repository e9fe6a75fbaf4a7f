package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ManageController serves content authoring for editors and admins.
type ManageController struct {
	CourseService *service.CourseService
	QuizService   *service.QuizService
}

func NewManageController(courseService *service.CourseService, quizService *service.QuizService) *ManageController {
	return &ManageController{CourseService: courseService, QuizService: quizService}
}

// CreateCourse godoc
// @Summary Create a course
// @Tags manage
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseInput true "Course"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response "Slug taken"
// @Router /api/manage/courses [post]
func (c *ManageController) CreateCourse(ctx *gin.Context) {
	var req service.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.Create(ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags manage
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Param   body body service.CourseInput true "Course"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/manage/courses/{id} [put]
func (c *ManageController) UpdateCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req service.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary Delete a course with its modules and lessons
// @Tags manage
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/manage/courses/{id} [delete]
func (c *ManageController) DeleteCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateModule godoc
// @Summary Add a module to a course
// @Tags manage
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ModuleInput true "Module"
// @Success 201 {object} util.Response{data=model.Module}
// @Router /api/manage/modules [post]
func (c *ManageController) CreateModule(ctx *gin.Context) {
	var req service.ModuleInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	module, err := c.CourseService.CreateModule(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// UpdateModule godoc
// @Summary Update a module
// @Tags manage
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Module ID"
// @Param   body body service.ModuleInput true "Module"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /api/manage/modules/{id} [put]
func (c *ManageController) UpdateModule(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req service.ModuleInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	module, err := c.CourseService.UpdateModule(ctx.Request.Context(), id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// DeleteModule godoc
// @Summary Delete a module
// @Tags manage
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Module ID"
// @Success 200 {object} util.Response
// @Router /api/manage/modules/{id} [delete]
func (c *ManageController) DeleteModule(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteModule(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateLesson godoc
// @Summary Add a lesson to a module
// @Tags manage
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.LessonInput true "Lesson"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/manage/lessons [post]
func (c *ManageController) CreateLesson(ctx *gin.Context) {
	var req service.LessonInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.CreateLesson(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary Update a lesson
// @Tags manage
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Lesson ID"
// @Param   body body service.LessonInput true "Lesson"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/manage/lessons/{id} [put]
func (c *ManageController) UpdateLesson(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req service.LessonInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.UpdateLesson(ctx.Request.Context(), id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary Delete a lesson
// @Tags manage
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Lesson ID"
// @Success 200 {object} util.Response
// @Router /api/manage/lessons/{id} [delete]
func (c *ManageController) DeleteLesson(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteLesson(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadLessonVideo godoc
// @Summary Upload a lesson video
// @Description Stores the video and fills the lesson duration from ffprobe
// @Tags manage
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Lesson ID"
// @Param   file formData file true "Video file"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response "Invalid file"
// @Router /api/manage/lessons/{id}/video [post]
func (c *ManageController) UploadLessonVideo(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	lesson, err := c.CourseService.UploadLessonVideo(ctx.Request.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Description Exactly one of courseId, moduleId, lessonId. Every question needs exactly one correct answer.
// @Tags manage
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuizInput true "Quiz"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "Invalid quiz"
// @Router /api/manage/quizzes [post]
func (c *ManageController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.Create(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// GetQuiz godoc
// @Summary Quiz with correct flags
// @Tags manage
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/manage/quizzes/{id} [get]
func (c *ManageController) GetQuiz(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	quiz, err := c.QuizService.GetForEditor(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary Replace a quiz
// @Description Replaces the quiz header and its full question set
// @Tags manage
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Param   body body service.QuizInput true "Quiz"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/manage/quizzes/{id} [put]
func (c *ManageController) UpdateQuiz(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz and its attempts
// @Tags manage
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response
// @Router /api/manage/quizzes/{id} [delete]
func (c *ManageController) DeleteQuiz(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuizService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
