package service

import (
	"context"
	"strings"
	"testing"

	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goBasics = `
title: Go Basics
published: true
modules:
  - title: Syntax
    lessons:
      - title: Variables
        duration_seconds: 300
      - title: Functions
    quiz:
      title: Syntax check
      passing_score: 50
      questions:
        - text: Which keyword declares a function?
          answers:
            - text: func
              correct: true
            - text: def
final_exam:
  title: Final
  questions:
    - text: Does Go have generics?
      answers:
        - text: "yes"
          correct: true
        - text: "no"
`

func TestImportCourseManifest(t *testing.T) {
	f := newFixture()
	courses, _ := courseService(t, f)
	importer := NewCourseImporter(courses, f.quizService(2))
	ctx := context.Background()

	m, err := ParseCourseManifest(strings.NewReader(goBasics))
	require.NoError(t, err)

	course, err := importer.Import(ctx, 7, m)
	require.NoError(t, err)
	assert.Equal(t, "go-basics", course.Slug)
	assert.True(t, course.Published)

	tree, err := courses.Get(ctx, course.ID, false)
	require.NoError(t, err)
	require.Len(t, tree.Modules, 1)
	require.Len(t, tree.Modules[0].Lessons, 2)
	assert.Equal(t, "Variables", tree.Modules[0].Lessons[0].Title)
	assert.Equal(t, 300, tree.Modules[0].Lessons[0].DurationSeconds)

	finals, err := f.quizzes.FinalExamsForCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, finals, 1)
	assert.Equal(t, 70, finals[0].PassingScore)

	assert.Len(t, f.db.quizzes, 2)
}

func TestImportRollsBackOnInvalidQuiz(t *testing.T) {
	f := newFixture()
	courses, _ := courseService(t, f)
	importer := NewCourseImporter(courses, f.quizService(2))
	ctx := context.Background()

	broken := strings.Replace(goBasics, "        - text: \"no\"\n", "        - text: \"no\"\n          correct: true\n", 1)
	m, err := ParseCourseManifest(strings.NewReader(broken))
	require.NoError(t, err)

	_, err = importer.Import(ctx, 7, m)
	require.ErrorIs(t, err, util.ErrInvalidQuiz)
	assert.ErrorContains(t, err, "final exam")

	list, total, err := courses.List(ctx, true, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
	assert.Empty(t, f.db.quizzes)
}

func TestParseCourseManifestRejectsUnknownKeys(t *testing.T) {
	_, err := ParseCourseManifest(strings.NewReader("title: X\nmodulez: []\n"))
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = ParseCourseManifest(strings.NewReader(""))
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}
