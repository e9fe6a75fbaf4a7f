package util

import (
	"errors"
	"net/http"

	"learnhub_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

var statusByError = []struct {
	err    error
	status int
}{
	{ErrUserNotFound, http.StatusNotFound},
	{ErrCourseNotFound, http.StatusNotFound},
	{ErrModuleNotFound, http.StatusNotFound},
	{ErrLessonNotFound, http.StatusNotFound},
	{ErrQuizNotFound, http.StatusNotFound},
	{ErrCertificateNotFound, http.StatusNotFound},
	{ErrEmailRegistered, http.StatusConflict},
	{ErrSlugTaken, http.StatusConflict},
	{ErrSubmissionInFlight, http.StatusConflict},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrUserDisabled, http.StatusForbidden},
	{ErrPermissionDenied, http.StatusForbidden},
	{ErrInvalidQuiz, http.StatusBadRequest},
	{ErrInvalidSubmission, http.StatusBadRequest},
	{ErrCertificateNotEligible, http.StatusBadRequest},
	{ErrInvalidFile, http.StatusBadRequest},
	{ErrInvalidInput, http.StatusBadRequest},
}

// HandleError maps known service errors to their HTTP status and message;
// anything else is logged and answered with a plain 500.
func HandleError(c *gin.Context, err error) {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			Error(c, e.status, err.Error())
			return
		}
	}
	LogInternalError(c, err)
}
