package service

import (
	"context"
	"time"

	"learnhub_backend/internal/model"
)

// Repository contracts consumed by the services. The gorm implementations
// live in internal/repository; lookups return gorm.ErrRecordNotFound and
// unique violations gorm.ErrDuplicatedKey.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	SetDisabled(ctx context.Context, id uint, disabled bool) error
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	GrantRole(ctx context.Context, userID uint, role model.Role) error
	RevokeRole(ctx context.Context, userID uint, role model.Role) error
}

type CourseStore interface {
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uint) (*model.Course, error)
	FindTree(ctx context.Context, id uint) (*model.Course, error)
	List(ctx context.Context, publishedOnly bool, page, limit int) ([]model.Course, int64, error)
	Delete(ctx context.Context, id uint) error

	CreateModule(ctx context.Context, module *model.Module) error
	UpdateModule(ctx context.Context, module *model.Module) error
	FindModule(ctx context.Context, id uint) (*model.Module, error)
	DeleteModule(ctx context.Context, id uint) error

	CreateLesson(ctx context.Context, lesson *model.Lesson) error
	UpdateLesson(ctx context.Context, lesson *model.Lesson) error
	FindLesson(ctx context.Context, id uint) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, id uint) error

	CourseIDForLesson(ctx context.Context, lessonID uint) (uint, error)
	LessonIDsByModule(ctx context.Context, moduleID uint) ([]uint, error)
	LessonIDsByCourse(ctx context.Context, courseID uint) ([]uint, error)
}

type EnrollmentStore interface {
	Enroll(ctx context.Context, userID, courseID uint) (*model.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Enrollment, error)
}

type ProgressStore interface {
	MarkCompleted(ctx context.Context, userID, lessonID uint) (*model.UserProgress, error)
	CompletedLessonIDs(ctx context.Context, userID uint, lessonIDs []uint) ([]uint, error)
}

type QuizStore interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	Replace(ctx context.Context, quiz *model.Quiz) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Quiz, error)
	FindWithQuestions(ctx context.Context, id uint) (*model.Quiz, error)
	FinalExamsForCourse(ctx context.Context, courseID uint) ([]model.Quiz, error)
	ListForCourse(ctx context.Context, courseID uint) ([]model.Quiz, error)
}

type AttemptStore interface {
	Record(ctx context.Context, attempt *model.UserQuizAttempt, reset *model.ProgressReset) error
	ListByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]model.UserQuizAttempt, error)
	HasPassed(ctx context.Context, userID, quizID uint) (bool, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]model.UserQuizAttempt, error)
}

type CertificateStore interface {
	Create(ctx context.Context, cert *model.Certificate) error
	FindByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.Certificate, error)
	FindByNumber(ctx context.Context, number string) (*model.Certificate, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error)
	List(ctx context.Context, courseID uint) ([]model.Certificate, error)
}
