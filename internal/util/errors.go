package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("account disabled")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrCourseNotFound = errors.New("course not found")
	ErrModuleNotFound = errors.New("module not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrSlugTaken      = errors.New("course slug already in use")

	ErrQuizNotFound       = errors.New("quiz not found")
	ErrInvalidQuiz        = errors.New("invalid quiz definition")
	ErrInvalidSubmission  = errors.New("invalid quiz submission")
	ErrSubmissionInFlight = errors.New("another submission for this quiz is in progress")

	ErrCertificateNotEligible = errors.New("certificate requirements not met")
	ErrCertificateNotFound    = errors.New("certificate not found")
	ErrSerialExhausted        = errors.New("could not allocate a unique certificate number")

	ErrInvalidFile  = errors.New("invalid file")
	ErrInvalidInput = errors.New("invalid input")
)
