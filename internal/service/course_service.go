package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/internal/validator"
	"learnhub_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"omitempty,max=255"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
}

type ModuleInput struct {
	CourseID uint   `json:"courseId" validate:"required"`
	Title    string `json:"title" validate:"required,max=255"`
	Order    int    `json:"order"`
}

type LessonInput struct {
	ModuleID        uint   `json:"moduleId" validate:"required"`
	Title           string `json:"title" validate:"required,max=255"`
	Content         string `json:"content"`
	DurationSeconds int    `json:"durationSeconds" validate:"min=0"`
	Order           int    `json:"order"`
}

// VideoProber extracts metadata from an uploaded video file.
type VideoProber func(path string) (*util.VideoInfo, error)

type CourseService struct {
	Courses     CourseStore
	Enrollments EnrollmentStore
	Storage     StorageProvider
	Probe       VideoProber
	TempDir     string
	validator   *validator.Validator
}

func NewCourseService(courses CourseStore, enrollments EnrollmentStore, storage StorageProvider, tempDir string) *CourseService {
	return &CourseService{
		Courses:     courses,
		Enrollments: enrollments,
		Storage:     storage,
		Probe:       util.ProbeVideo,
		TempDir:     tempDir,
		validator:   validator.New(),
	}
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases and joins alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (s *CourseService) check(in interface{}) error {
	if err := s.validator.Validate(in); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	return nil
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (s *CourseService) List(ctx context.Context, includeDrafts bool, page, limit int) ([]model.Course, int64, error) {
	return s.Courses.List(ctx, !includeDrafts, page, limit)
}

// Get returns the course tree. Drafts are hidden unless includeDrafts.
func (s *CourseService) Get(ctx context.Context, id uint, includeDrafts bool) (*model.Course, error) {
	course, err := s.Courses.FindTree(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if !course.Published && !includeDrafts {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) Create(ctx context.Context, createdBy uint, in *CourseInput) (*model.Course, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	course := &model.Course{
		Title:       in.Title,
		Slug:        Slugify(in.Slug),
		Description: in.Description,
		Published:   in.Published,
		CreatedBy:   createdBy,
	}
	if course.Slug == "" {
		course.Slug = Slugify(in.Title)
	}
	if course.Slug == "" {
		return nil, fmt.Errorf("%w: title must contain letters or digits", util.ErrInvalidInput)
	}
	if err := s.Courses.Create(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrSlugTaken
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id uint, in *CourseInput) (*model.Course, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	course, err := s.Courses.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	course.Title = in.Title
	course.Description = in.Description
	course.Published = in.Published
	if slug := Slugify(in.Slug); slug != "" {
		course.Slug = slug
	}
	if err := s.Courses.Update(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrSlugTaken
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Delete(ctx context.Context, id uint) error {
	return notFound(s.Courses.Delete(ctx, id), util.ErrCourseNotFound)
}

func (s *CourseService) CreateModule(ctx context.Context, in *ModuleInput) (*model.Module, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if _, err := s.Courses.FindByID(ctx, in.CourseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	module := &model.Module{CourseID: in.CourseID, Title: in.Title, Order: in.Order}
	if err := s.Courses.CreateModule(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// UpdateModule edits title and order; a module never moves between courses.
func (s *CourseService) UpdateModule(ctx context.Context, id uint, in *ModuleInput) (*model.Module, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	module, err := s.Courses.FindModule(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrModuleNotFound)
	}
	module.Title = in.Title
	module.Order = in.Order
	if err := s.Courses.UpdateModule(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CourseService) DeleteModule(ctx context.Context, id uint) error {
	return notFound(s.Courses.DeleteModule(ctx, id), util.ErrModuleNotFound)
}

func (s *CourseService) CreateLesson(ctx context.Context, in *LessonInput) (*model.Lesson, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if _, err := s.Courses.FindModule(ctx, in.ModuleID); err != nil {
		return nil, notFound(err, util.ErrModuleNotFound)
	}
	lesson := &model.Lesson{
		ModuleID:        in.ModuleID,
		Title:           in.Title,
		Content:         in.Content,
		DurationSeconds: in.DurationSeconds,
		Order:           in.Order,
	}
	if err := s.Courses.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(ctx context.Context, id uint, in *LessonInput) (*model.Lesson, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	lesson, err := s.Courses.FindLesson(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrLessonNotFound)
	}
	if in.ModuleID != lesson.ModuleID {
		if _, err := s.Courses.FindModule(ctx, in.ModuleID); err != nil {
			return nil, notFound(err, util.ErrModuleNotFound)
		}
	}
	lesson.ModuleID = in.ModuleID
	lesson.Title = in.Title
	lesson.Content = in.Content
	lesson.DurationSeconds = in.DurationSeconds
	lesson.Order = in.Order
	if err := s.Courses.UpdateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) DeleteLesson(ctx context.Context, id uint) error {
	return notFound(s.Courses.DeleteLesson(ctx, id), util.ErrLessonNotFound)
}

// UploadLessonVideo stores the video, probes its duration and attaches both
// to the lesson.
func (s *CourseService) UploadLessonVideo(ctx context.Context, lessonID uint, filename, contentType string, src io.Reader) (*model.Lesson, error) {
	if !util.HasAllowedExtension(filename, util.AllowedVideoExtensions) {
		return nil, fmt.Errorf("%w: unsupported video extension", util.ErrInvalidFile)
	}
	lesson, err := s.Courses.FindLesson(ctx, lessonID)
	if err != nil {
		return nil, notFound(err, util.ErrLessonNotFound)
	}

	if err := os.MkdirAll(s.TempDir, 0755); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	tmp, err := os.CreateTemp(s.TempDir, "lesson-video-*"+ext)
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	head, err := os.Open(tmpPath)
	if err != nil {
		return nil, err
	}
	_, err = util.SniffMimeType(head, []string{util.MimeVideo, util.MimeOctetStream})
	head.Close()
	if err != nil {
		return nil, err
	}

	info, err := s.Probe(tmpPath)
	if err != nil {
		if errors.Is(err, util.ErrInvalidFile) {
			return nil, err
		}
		logger.Log.Warn("video probe failed, keeping previous duration", zap.Uint("lesson_id", lessonID), zap.Error(err))
	}

	key := fmt.Sprintf("videos/lessons/%d/%s%s", lessonID, uuid.NewString(), ext)
	url, err := s.Storage.UploadFile(ctx, key, tmpPath, contentType)
	if err != nil {
		return nil, err
	}

	lesson.VideoURL = url
	if info != nil && info.DurationSeconds > 0 {
		lesson.DurationSeconds = info.DurationSeconds
	}
	if err := s.Courses.UpdateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// Enroll is idempotent. Only published courses accept enrollments.
func (s *CourseService) Enroll(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if !course.Published {
		return nil, util.ErrCourseNotFound
	}
	return s.Enrollments.Enroll(ctx, userID, courseID)
}

func (s *CourseService) ListEnrollments(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	return s.Enrollments.ListByUser(ctx, userID)
}
