package service

import (
	"context"
	"testing"

	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteLessonEnrollsAndIsIdempotent(t *testing.T) {
	f := newFixture()
	svc := f.progressService()
	ctx := context.Background()
	course, _, lessons := f.courseWithLessons(t, 2, 1)

	first, err := svc.CompleteLesson(ctx, 7, lessons[0])
	require.NoError(t, err)
	second, err := svc.CompleteLesson(ctx, 7, lessons[0])
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)

	enrolled, _ := f.enrolled.IsEnrolled(ctx, 7, course.ID)
	assert.True(t, enrolled)

	p, err := svc.CourseProgress(ctx, 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalLessons)
	assert.Equal(t, 1, p.CompletedLessons)
	assert.Equal(t, 33.3, p.Percent)

	_, err = svc.CompleteLesson(ctx, 7, 999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
	_, err = svc.CourseProgress(ctx, 7, 999)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCourseProgressWithoutLessons(t *testing.T) {
	f := newFixture()
	course, _, _ := f.courseWithLessons(t)

	p, err := f.progressService().CourseProgress(context.Background(), 1, course.ID)
	require.NoError(t, err)
	assert.Zero(t, p.Percent)
	assert.NotNil(t, p.CompletedLessonIDs)
}

func TestCompleteLessonRejectsDraftCourse(t *testing.T) {
	f := newFixture()
	svc := f.progressService()
	ctx := context.Background()
	course, _, lessons := f.courseWithLessons(t, 1)

	course.Published = false
	require.NoError(t, f.courses.Update(ctx, course))

	_, err := svc.CompleteLesson(ctx, 7, lessons[0])
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	enrolled, _ := f.enrolled.IsEnrolled(ctx, 7, course.ID)
	assert.False(t, enrolled)
}
