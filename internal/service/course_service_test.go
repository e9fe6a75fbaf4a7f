package service

import (
	"bytes"
	"context"
	"testing"

	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func courseService(t *testing.T, f *fixture) (*CourseService, *memStorage) {
	storage := newMemStorage()
	svc := NewCourseService(f.courses, f.enrolled, storage, t.TempDir())
	return svc, storage
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "intro-to-go-1-22", Slugify("  Intro to Go 1.22! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestCreateCourse(t *testing.T) {
	f := newFixture()
	svc, _ := courseService(t, f)
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, &CourseInput{Title: "Concurrency in Go"})
	require.NoError(t, err)
	assert.Equal(t, "concurrency-in-go", c.Slug)
	assert.False(t, c.Published)

	_, err = svc.Create(ctx, 1, &CourseInput{Title: "Other", Slug: "Concurrency in Go"})
	assert.ErrorIs(t, err, util.ErrSlugTaken)

	_, err = svc.Create(ctx, 1, &CourseInput{Title: ""})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.Create(ctx, 1, &CourseInput{Title: "???"})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestDraftsHiddenFromLearners(t *testing.T) {
	f := newFixture()
	svc, _ := courseService(t, f)
	ctx := context.Background()

	draft, err := svc.Create(ctx, 1, &CourseInput{Title: "Draft"})
	require.NoError(t, err)
	live, err := svc.Create(ctx, 1, &CourseInput{Title: "Live", Published: true})
	require.NoError(t, err)

	list, total, err := svc.List(ctx, false, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, live.ID, list[0].ID)

	_, err = svc.Get(ctx, draft.ID, false)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	got, err := svc.Get(ctx, draft.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Title)

	_, err = svc.Enroll(ctx, 5, draft.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	e1, err := svc.Enroll(ctx, 5, live.ID)
	require.NoError(t, err)
	e2, err := svc.Enroll(ctx, 5, live.ID)
	require.NoError(t, err)
	assert.Equal(t, e1.ID, e2.ID)

	enrollments, err := svc.ListEnrollments(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)
}

func TestCourseTree(t *testing.T) {
	f := newFixture()
	svc, _ := courseService(t, f)
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, &CourseInput{Title: "Tree", Published: true})
	require.NoError(t, err)
	m, err := svc.CreateModule(ctx, &ModuleInput{CourseID: c.ID, Title: "Basics"})
	require.NoError(t, err)
	_, err = svc.CreateLesson(ctx, &LessonInput{ModuleID: m.ID, Title: "Hello"})
	require.NoError(t, err)

	_, err = svc.CreateModule(ctx, &ModuleInput{CourseID: 999, Title: "Orphan"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	_, err = svc.CreateLesson(ctx, &LessonInput{ModuleID: 999, Title: "Orphan"})
	assert.ErrorIs(t, err, util.ErrModuleNotFound)

	tree, err := svc.Get(ctx, c.ID, false)
	require.NoError(t, err)
	require.Len(t, tree.Modules, 1)
	assert.Len(t, tree.Modules[0].Lessons, 1)

	assert.ErrorIs(t, svc.DeleteLesson(ctx, 999), util.ErrLessonNotFound)
	assert.ErrorIs(t, svc.DeleteModule(ctx, 999), util.ErrModuleNotFound)
	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), util.ErrCourseNotFound)
}

var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp41isom")

func TestUploadLessonVideo(t *testing.T) {
	f := newFixture()
	svc, storage := courseService(t, f)
	svc.Probe = func(path string) (*util.VideoInfo, error) {
		return &util.VideoInfo{DurationSeconds: 95, Width: 1280, Height: 720, Format: "mp4"}, nil
	}
	_, _, lessons := f.courseWithLessons(t, 1)
	ctx := context.Background()

	lesson, err := svc.UploadLessonVideo(ctx, lessons[0], "intro.MP4", "video/mp4", bytes.NewReader(mp4Header))
	require.NoError(t, err)
	assert.Equal(t, 95, lesson.DurationSeconds)
	assert.Contains(t, lesson.VideoURL, "/files/videos/lessons/")
	assert.Len(t, storage.files, 1)

	_, err = svc.UploadLessonVideo(ctx, lessons[0], "notes.txt", "text/plain", bytes.NewReader(mp4Header))
	assert.ErrorIs(t, err, util.ErrInvalidFile)

	_, err = svc.UploadLessonVideo(ctx, 999, "intro.mp4", "video/mp4", bytes.NewReader(mp4Header))
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestUploadLessonVideoRejectsUnplayableFile(t *testing.T) {
	f := newFixture()
	svc, storage := courseService(t, f)
	svc.Probe = func(string) (*util.VideoInfo, error) { return nil, util.ErrInvalidFile }
	_, _, lessons := f.courseWithLessons(t, 1)

	_, err := svc.UploadLessonVideo(context.Background(), lessons[0], "clip.mp4", "video/mp4", bytes.NewReader(mp4Header))
	assert.ErrorIs(t, err, util.ErrInvalidFile)
	assert.Empty(t, storage.files)
}
