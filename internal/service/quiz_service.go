package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"learnhub_backend/internal/cache"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/internal/validator"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnswerInput struct {
	Text      string `json:"text" validate:"required,max=1000"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionInput struct {
	Text    string        `json:"text" validate:"required"`
	Order   int           `json:"order"`
	Answers []AnswerInput `json:"answers" validate:"min=2,one_correct,dive"`
}

// QuizInput is the authoring payload for create and update.
type QuizInput struct {
	Title        string          `json:"title" validate:"required,max=255"`
	CourseID     *uint           `json:"courseId"`
	ModuleID     *uint           `json:"moduleId"`
	LessonID     *uint           `json:"lessonId"`
	PassingScore *int            `json:"passingScore" validate:"omitempty,min=0,max=100"`
	IsFinalExam  bool            `json:"isFinalExam"`
	Questions    []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

const defaultPassingScore = 70

// QuizView is what learners see: no correct flags.
type QuizView struct {
	ID           uint           `json:"id"`
	Title        string         `json:"title"`
	Scope        string         `json:"scope"`
	ScopeID      uint           `json:"scopeId"`
	PassingScore int            `json:"passingScore"`
	IsFinalExam  bool           `json:"isFinalExam"`
	Questions    []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Order   int          `json:"order"`
	Answers []AnswerView `json:"answers"`
}

type AnswerView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type SubmissionResult struct {
	Attempt        *model.UserQuizAttempt `json:"attempt"`
	Score          int                    `json:"score"`
	Passed         bool                   `json:"passed"`
	CorrectCount   int                    `json:"correctCount"`
	TotalQuestions int                    `json:"totalQuestions"`
	ProgressReset  bool                   `json:"progressReset"`
}

type QuizService struct {
	Quizzes   QuizStore
	Attempts  AttemptStore
	Courses   CourseStore
	Locker    SubmissionLocker
	Cache     cache.CacheService
	Events    events.Publisher
	Cfg       config.LearningConfig
	validator *validator.Validator
	loads     singleflight.Group
}

func NewQuizService(
	quizzes QuizStore,
	attempts AttemptStore,
	courses CourseStore,
	locker SubmissionLocker,
	cacheService cache.CacheService,
	publisher events.Publisher,
	cfg config.LearningConfig,
) *QuizService {
	return &QuizService{
		Quizzes:   quizzes,
		Attempts:  attempts,
		Courses:   courses,
		Locker:    locker,
		Cache:     cacheService,
		Events:    publisher,
		Cfg:       cfg,
		validator: validator.New(),
	}
}

func quizViewKey(id uint) string {
	return "quiz:view:" + strconv.FormatUint(uint64(id), 10)
}

func (s *QuizService) buildQuiz(ctx context.Context, in *QuizInput) (*model.Quiz, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidQuiz, err)
	}

	quiz := &model.Quiz{
		Title:        in.Title,
		CourseID:     in.CourseID,
		ModuleID:     in.ModuleID,
		LessonID:     in.LessonID,
		PassingScore: defaultPassingScore,
		IsFinalExam:  in.IsFinalExam,
	}
	if in.PassingScore != nil {
		quiz.PassingScore = *in.PassingScore
	}

	scope, ownerID, ok := quiz.Scope()
	if !ok {
		return nil, fmt.Errorf("%w: exactly one of courseId, moduleId or lessonId is required", util.ErrInvalidQuiz)
	}
	if quiz.IsFinalExam && scope != model.ScopeCourse {
		return nil, fmt.Errorf("%w: a final exam must belong to a course", util.ErrInvalidQuiz)
	}
	if err := s.ensureOwner(ctx, scope, ownerID); err != nil {
		return nil, err
	}

	for _, q := range in.Questions {
		question := model.QuizQuestion{Text: q.Text, Order: q.Order}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, model.QuizAnswer{Text: a.Text, IsCorrect: a.IsCorrect})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

func (s *QuizService) ensureOwner(ctx context.Context, scope model.QuizScope, id uint) error {
	var err error
	switch scope {
	case model.ScopeCourse:
		_, err = s.Courses.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
	case model.ScopeModule:
		_, err = s.Courses.FindModule(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
	case model.ScopeLesson:
		_, err = s.Courses.FindLesson(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrLessonNotFound
		}
	}
	return err
}

func (s *QuizService) Create(ctx context.Context, in *QuizInput) (*model.Quiz, error) {
	quiz, err := s.buildQuiz(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.Quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Update replaces the quiz definition. Existing attempts are kept.
func (s *QuizService) Update(ctx context.Context, id uint, in *QuizInput) (*model.Quiz, error) {
	quiz, err := s.buildQuiz(ctx, in)
	if err != nil {
		return nil, err
	}
	quiz.ID = id
	if err := s.Quizzes.Replace(ctx, quiz); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.GetForEditor(ctx, id)
}

func (s *QuizService) Delete(ctx context.Context, id uint) error {
	if err := s.Quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *QuizService) invalidate(ctx context.Context, id uint) {
	if err := s.Cache.Delete(ctx, quizViewKey(id)); err != nil {
		logger.Log.Warn("failed to invalidate quiz cache", zap.Uint("quiz_id", id), zap.Error(err))
	}
}

func (s *QuizService) load(ctx context.Context, id uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindWithQuestions(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	return quiz, err
}

// GetForEditor returns the quiz including correct flags.
func (s *QuizService) GetForEditor(ctx context.Context, id uint) (*model.Quiz, error) {
	return s.load(ctx, id)
}

// ListForCourse returns the quizzes owned by the course, its modules or its
// lessons, without questions. Drafts are reported as missing unless
// includeDrafts is set.
func (s *QuizService) ListForCourse(ctx context.Context, courseID uint, includeDrafts bool) ([]model.Quiz, error) {
	if _, err := visibleCourse(ctx, s.Courses, courseID, includeDrafts); err != nil {
		return nil, err
	}
	return s.Quizzes.ListForCourse(ctx, courseID)
}

// GetForLearner returns the quiz without correct flags, served from cache
// when possible. Quizzes of draft courses are hidden unless includeDrafts.
func (s *QuizService) GetForLearner(ctx context.Context, id uint, includeDrafts bool) (*QuizView, error) {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrQuizNotFound)
	}
	if err := ensureQuizVisible(ctx, s.Courses, quiz, includeDrafts); err != nil {
		return nil, err
	}

	var view QuizView
	if err := s.Cache.Get(ctx, quizViewKey(id), &view); err == nil {
		return &view, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn("quiz cache read failed", zap.Uint("quiz_id", id), zap.Error(err))
	}

	// Concurrent misses for the same quiz share one load, which must outlive
	// any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	result, err, _ := s.loads.Do(quizViewKey(id), func() (interface{}, error) {
		quiz, err := s.load(loadCtx, id)
		if err != nil {
			return nil, err
		}
		v := toQuizView(quiz)
		if err := s.Cache.Set(loadCtx, quizViewKey(id), v, s.Cfg.QuizCacheTTL); err != nil {
			logger.Log.Warn("quiz cache write failed", zap.Uint("quiz_id", id), zap.Error(err))
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*QuizView), nil
}

func toQuizView(q *model.Quiz) *QuizView {
	scope, scopeID, _ := q.Scope()
	v := &QuizView{
		ID:           q.ID,
		Title:        q.Title,
		Scope:        string(scope),
		ScopeID:      scopeID,
		PassingScore: q.PassingScore,
		IsFinalExam:  q.IsFinalExam,
		Questions:    make([]QuestionView, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		qv := QuestionView{ID: question.ID, Text: question.Text, Order: question.Order, Answers: make([]AnswerView, 0, len(question.Answers))}
		for _, a := range question.Answers {
			qv.Answers = append(qv.Answers, AnswerView{ID: a.ID, Text: a.Text})
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}

// Submit grades a submission, records the attempt and, when the learner has
// now failed MaxConsecutiveFailures times in a row, resets their progress for
// the quiz's scope in the same transaction.
func (s *QuizService) Submit(ctx context.Context, userID, quizID uint, responses []SubmittedResponse) (result *SubmissionResult, err error) {
	ctx, span := tracing.Start(ctx, "QuizService.Submit",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("quiz.id", int64(quizID)),
	)
	defer func() { tracing.End(span, err) }()

	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := ensureQuizVisible(ctx, s.Courses, quiz, false); err != nil {
		return nil, err
	}
	grade, err := GradeSubmission(quiz, responses)
	if err != nil {
		return nil, err
	}

	release, err := s.Locker.Acquire(ctx, fmt.Sprintf("quiz-submit:%d:%d", userID, quizID))
	if err != nil {
		return nil, err
	}
	defer release()

	submitted, err := json.Marshal(responses)
	if err != nil {
		return nil, err
	}
	attempt := &model.UserQuizAttempt{
		UserID:         userID,
		QuizID:         quizID,
		Score:          grade.Score,
		Passed:         grade.Passed,
		CorrectCount:   grade.CorrectCount,
		TotalQuestions: grade.TotalQuestions,
		Submitted:      datatypes.JSON(submitted),
		Responses:      grade.Responses,
	}

	var reset *model.ProgressReset
	if !grade.Passed {
		reset, err = s.pendingReset(ctx, userID, quiz)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Attempts.Record(ctx, attempt, reset); err != nil {
		return nil, err
	}

	monitoring.ObserveSubmission(grade.Passed)
	s.publish(ctx, events.AttemptGraded, events.AttemptGradedPayload{
		AttemptID:      attempt.ID,
		UserID:         userID,
		QuizID:         quizID,
		Score:          grade.Score,
		Passed:         grade.Passed,
		CorrectCount:   grade.CorrectCount,
		TotalQuestions: grade.TotalQuestions,
	})
	if reset != nil {
		monitoring.ProgressResets.Inc()
		span.SetAttributes(attribute.Int("reset.lessons", len(reset.LessonIDs)))
		logger.Log.Info("Progress reset after repeated quiz failures",
			zap.Uint("user_id", userID),
			zap.Uint("quiz_id", quizID),
			zap.Int("lessons", len(reset.LessonIDs)),
		)
		s.publish(ctx, events.ProgressReset, events.ProgressResetPayload{
			UserID:    userID,
			QuizID:    quizID,
			LessonIDs: reset.LessonIDs,
		})
	}

	return &SubmissionResult{
		Attempt:        attempt,
		Score:          grade.Score,
		Passed:         grade.Passed,
		CorrectCount:   grade.CorrectCount,
		TotalQuestions: grade.TotalQuestions,
		ProgressReset:  reset != nil,
	}, nil
}

// pendingReset returns the reset to apply if one more failure reaches the limit.
func (s *QuizService) pendingReset(ctx context.Context, userID uint, quiz *model.Quiz) (*model.ProgressReset, error) {
	history, err := s.Attempts.ListByUserAndQuiz(ctx, userID, quiz.ID)
	if err != nil {
		return nil, err
	}
	if consecutiveFailures(history)+1 < s.Cfg.MaxConsecutiveFailures {
		return nil, nil
	}
	lessonIDs, err := s.resetScope(ctx, quiz)
	if err != nil {
		return nil, err
	}
	return &model.ProgressReset{UserID: userID, QuizID: quiz.ID, LessonIDs: lessonIDs}, nil
}

// resetScope lists the lessons whose progress a reset clears: the module's
// lessons for module and lesson quizzes, every course lesson for course quizzes.
func (s *QuizService) resetScope(ctx context.Context, quiz *model.Quiz) ([]uint, error) {
	scope, id, ok := quiz.Scope()
	if !ok {
		return nil, nil
	}
	switch scope {
	case model.ScopeCourse:
		return s.Courses.LessonIDsByCourse(ctx, id)
	case model.ScopeModule:
		return s.Courses.LessonIDsByModule(ctx, id)
	default:
		lesson, err := s.Courses.FindLesson(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return s.Courses.LessonIDsByModule(ctx, lesson.ModuleID)
	}
}

func (s *QuizService) ListAttempts(ctx context.Context, userID, quizID uint) ([]model.UserQuizAttempt, error) {
	if _, err := s.Quizzes.FindByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return s.Attempts.ListByUserAndQuiz(ctx, userID, quizID)
}

func (s *QuizService) publish(ctx context.Context, t events.EventType, payload interface{}) {
	if err := s.Events.Publish(ctx, t, payload); err != nil {
		logger.Log.Warn("event publish failed", zap.String("event_type", string(t)), zap.Error(err))
	}
}
