package service

import (
	"context"
	"math"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
)

type ProgressService struct {
	Progress    ProgressStore
	Courses     CourseStore
	Enrollments EnrollmentStore
}

func NewProgressService(progress ProgressStore, courses CourseStore, enrollments EnrollmentStore) *ProgressService {
	return &ProgressService{Progress: progress, Courses: courses, Enrollments: enrollments}
}

// CompleteLesson marks the lesson done and enrolls the learner in its course
// if they were not already. Lessons of draft courses cannot be completed.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID uint) (*model.UserProgress, error) {
	courseID, err := s.Courses.CourseIDForLesson(ctx, lessonID)
	if err != nil {
		return nil, notFound(err, util.ErrLessonNotFound)
	}
	if _, err := visibleCourse(ctx, s.Courses, courseID, false); err != nil {
		return nil, err
	}
	if _, err := s.Enrollments.Enroll(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return s.Progress.MarkCompleted(ctx, userID, lessonID)
}

func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID uint) (*model.CourseProgress, error) {
	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	lessonIDs, err := s.Courses.LessonIDsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := s.Progress.CompletedLessonIDs(ctx, userID, lessonIDs)
	if err != nil {
		return nil, err
	}
	if completed == nil {
		completed = []uint{}
	}

	p := &model.CourseProgress{
		CourseID:           courseID,
		TotalLessons:       len(lessonIDs),
		CompletedLessons:   len(completed),
		CompletedLessonIDs: completed,
	}
	if p.TotalLessons > 0 {
		p.Percent = math.Round(float64(p.CompletedLessons)/float64(p.TotalLessons)*1000) / 10
	}
	return p, nil
}
