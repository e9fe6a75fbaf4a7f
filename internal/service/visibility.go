package service

import (
	"context"
	"errors"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// visibleCourse loads the course, reporting drafts as missing unless
// includeDrafts is set.
func visibleCourse(ctx context.Context, courses CourseStore, courseID uint, includeDrafts bool) (*model.Course, error) {
	course, err := courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if !course.Published && !includeDrafts {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

// quizCourseID resolves the course a quiz belongs to through its owner. A
// quiz whose owner is gone is reported as missing.
func quizCourseID(ctx context.Context, courses CourseStore, quiz *model.Quiz) (uint, error) {
	scope, id, ok := quiz.Scope()
	if !ok {
		return 0, util.ErrQuizNotFound
	}
	switch scope {
	case model.ScopeCourse:
		return id, nil
	case model.ScopeModule:
		module, err := courses.FindModule(ctx, id)
		if err != nil {
			return 0, notFound(err, util.ErrQuizNotFound)
		}
		return module.CourseID, nil
	default:
		courseID, err := courses.CourseIDForLesson(ctx, id)
		if err != nil {
			return 0, notFound(err, util.ErrQuizNotFound)
		}
		return courseID, nil
	}
}

// ensureQuizVisible fails with ErrQuizNotFound for orphaned quizzes and with
// ErrCourseNotFound for quizzes of draft courses unless includeDrafts.
func ensureQuizVisible(ctx context.Context, courses CourseStore, quiz *model.Quiz, includeDrafts bool) error {
	courseID, err := quizCourseID(ctx, courses, quiz)
	if err != nil {
		return err
	}
	course, err := courses.FindByID(ctx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrQuizNotFound
	}
	if err != nil {
		return err
	}
	if !course.Published && !includeDrafts {
		return util.ErrCourseNotFound
	}
	return nil
}
