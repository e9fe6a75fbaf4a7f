package service

import (
	"context"
	"fmt"
	"io"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// CourseManifest describes a whole course in YAML so content can be seeded
// from the command line.
type CourseManifest struct {
	Title       string           `yaml:"title"`
	Slug        string           `yaml:"slug"`
	Description string           `yaml:"description"`
	Published   bool             `yaml:"published"`
	Modules     []ModuleManifest `yaml:"modules"`
	FinalExam   *QuizManifest    `yaml:"final_exam"`
}

type ModuleManifest struct {
	Title   string           `yaml:"title"`
	Lessons []LessonManifest `yaml:"lessons"`
	Quiz    *QuizManifest    `yaml:"quiz"`
}

type LessonManifest struct {
	Title           string `yaml:"title"`
	Content         string `yaml:"content"`
	DurationSeconds int    `yaml:"duration_seconds"`
}

type QuizManifest struct {
	Title        string             `yaml:"title"`
	PassingScore *int               `yaml:"passing_score"`
	Questions    []QuestionManifest `yaml:"questions"`
}

type QuestionManifest struct {
	Text    string           `yaml:"text"`
	Answers []AnswerManifest `yaml:"answers"`
}

type AnswerManifest struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// ParseCourseManifest decodes a manifest, rejecting unknown keys.
func ParseCourseManifest(r io.Reader) (*CourseManifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m CourseManifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty manifest", util.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	return &m, nil
}

func (q *QuizManifest) input() *QuizInput {
	in := &QuizInput{Title: q.Title, PassingScore: q.PassingScore}
	for i, question := range q.Questions {
		qi := QuestionInput{Text: question.Text, Order: i + 1}
		for _, a := range question.Answers {
			qi.Answers = append(qi.Answers, AnswerInput{Text: a.Text, IsCorrect: a.Correct})
		}
		in.Questions = append(in.Questions, qi)
	}
	return in
}

// CourseImporter creates a course, its modules, lessons and quizzes through
// the regular services so every authoring rule applies.
type CourseImporter struct {
	Courses *CourseService
	Quizzes *QuizService
}

func NewCourseImporter(courses *CourseService, quizzes *QuizService) *CourseImporter {
	return &CourseImporter{Courses: courses, Quizzes: quizzes}
}

// Import creates everything in the manifest. When a step fails the quizzes
// and the course created so far are removed again.
func (i *CourseImporter) Import(ctx context.Context, createdBy uint, m *CourseManifest) (_ *model.Course, err error) {
	course, err := i.Courses.Create(ctx, createdBy, &CourseInput{
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
		Published:   m.Published,
	})
	if err != nil {
		return nil, err
	}

	var quizIDs []uint
	defer func() {
		if err == nil {
			return
		}
		for _, id := range quizIDs {
			if derr := i.Quizzes.Delete(ctx, id); derr != nil {
				logger.Log.Warn("import rollback: delete quiz", zap.Uint("quizID", id), zap.Error(derr))
			}
		}
		if derr := i.Courses.Delete(ctx, course.ID); derr != nil {
			logger.Log.Warn("import rollback: delete course", zap.Uint("courseID", course.ID), zap.Error(derr))
		}
	}()

	for mi, mm := range m.Modules {
		module, err := i.Courses.CreateModule(ctx, &ModuleInput{CourseID: course.ID, Title: mm.Title, Order: mi + 1})
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", mi+1, err)
		}
		for li, lm := range mm.Lessons {
			_, err := i.Courses.CreateLesson(ctx, &LessonInput{
				ModuleID:        module.ID,
				Title:           lm.Title,
				Content:         lm.Content,
				DurationSeconds: lm.DurationSeconds,
				Order:           li + 1,
			})
			if err != nil {
				return nil, fmt.Errorf("module %d lesson %d: %w", mi+1, li+1, err)
			}
		}
		if mm.Quiz != nil {
			in := mm.Quiz.input()
			in.ModuleID = &module.ID
			quiz, err := i.Quizzes.Create(ctx, in)
			if err != nil {
				return nil, fmt.Errorf("module %d quiz: %w", mi+1, err)
			}
			quizIDs = append(quizIDs, quiz.ID)
		}
	}

	if m.FinalExam != nil {
		in := m.FinalExam.input()
		in.CourseID = &course.ID
		in.IsFinalExam = true
		quiz, err := i.Quizzes.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("final exam: %w", err)
		}
		quizIDs = append(quizIDs, quiz.ID)
	}
	return course, nil
}
