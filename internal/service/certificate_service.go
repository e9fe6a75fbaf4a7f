package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnhub_backend/internal/cache"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxSerialAttempts = 5

type IssueResult struct {
	Certificate   *model.Certificate `json:"certificate"`
	AlreadyExists bool               `json:"alreadyExists"`
}

type VerifyResult struct {
	Valid       bool               `json:"valid"`
	Certificate *model.Certificate `json:"certificate,omitempty"`
}

type CertificateService struct {
	Certificates CertificateStore
	Courses      CourseStore
	Quizzes      QuizStore
	Attempts     AttemptStore
	Progress     ProgressStore
	Cache        cache.CacheService
	Events       events.Publisher
	CacheTTL     time.Duration

	NewNumber func(time.Time) string
	Now       func() time.Time
}

func NewCertificateService(
	certs CertificateStore,
	courses CourseStore,
	quizzes QuizStore,
	attempts AttemptStore,
	progress ProgressStore,
	cacheService cache.CacheService,
	publisher events.Publisher,
	cacheTTL time.Duration,
) *CertificateService {
	return &CertificateService{
		Certificates: certs,
		Courses:      courses,
		Quizzes:      quizzes,
		Attempts:     attempts,
		Progress:     progress,
		Cache:        cacheService,
		Events:       publisher,
		CacheTTL:     cacheTTL,
		NewNumber:    NewCertificateNumber,
		Now:          time.Now,
	}
}

// CheckAndIssue returns the learner's certificate for the course, issuing it
// when every final exam is passed and every lesson is completed.
func (s *CertificateService) CheckAndIssue(ctx context.Context, userID, courseID uint) (result *IssueResult, err error) {
	ctx, span := tracing.Start(ctx, "CertificateService.CheckAndIssue",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("course.id", int64(courseID)),
	)
	defer func() { tracing.End(span, err) }()

	existing, err := s.Certificates.FindByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return &IssueResult{Certificate: existing, AlreadyExists: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := visibleCourse(ctx, s.Courses, courseID, false); err != nil {
		return nil, err
	}
	if err := s.checkFinalExams(ctx, userID, courseID); err != nil {
		return nil, err
	}
	if err := s.checkLessons(ctx, userID, courseID); err != nil {
		return nil, err
	}

	return s.issue(ctx, userID, courseID)
}

func (s *CertificateService) checkFinalExams(ctx context.Context, userID, courseID uint) error {
	finals, err := s.Quizzes.FinalExamsForCourse(ctx, courseID)
	if err != nil {
		return err
	}
	for _, exam := range finals {
		passed, err := s.Attempts.HasPassed(ctx, userID, exam.ID)
		if err != nil {
			return err
		}
		if !passed {
			return fmt.Errorf("%w: final exam %q has not been passed", util.ErrCertificateNotEligible, exam.Title)
		}
	}
	return nil
}

func (s *CertificateService) checkLessons(ctx context.Context, userID, courseID uint) error {
	lessonIDs, err := s.Courses.LessonIDsByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if len(lessonIDs) == 0 {
		return fmt.Errorf("%w: course has no lessons", util.ErrCertificateNotEligible)
	}
	completed, err := s.Progress.CompletedLessonIDs(ctx, userID, lessonIDs)
	if err != nil {
		return err
	}
	if missing := len(lessonIDs) - len(completed); missing > 0 {
		return fmt.Errorf("%w: %d of %d lessons not completed", util.ErrCertificateNotEligible, missing, len(lessonIDs))
	}
	return nil
}

// issue inserts the certificate. A duplicate key either means a concurrent
// request already issued one, which is then returned, or the number collided
// and a new one is drawn.
func (s *CertificateService) issue(ctx context.Context, userID, courseID uint) (*IssueResult, error) {
	for i := 0; i < maxSerialAttempts; i++ {
		now := s.Now()
		cert := &model.Certificate{
			UserID:            userID,
			CourseID:          courseID,
			CertificateNumber: s.NewNumber(now),
			IssuedAt:          now,
		}
		err := s.Certificates.Create(ctx, cert)
		if err == nil {
			monitoring.CertificatesIssued.Inc()
			logger.Log.Info("Certificate issued",
				zap.Uint("user_id", userID),
				zap.Uint("course_id", courseID),
				zap.String("number", cert.CertificateNumber),
			)
			if perr := s.Events.Publish(ctx, events.CertificateIssued, events.CertificateIssuedPayload{
				CertificateID:     cert.ID,
				UserID:            userID,
				CourseID:          courseID,
				CertificateNumber: cert.CertificateNumber,
				IssuedAt:          cert.IssuedAt,
			}); perr != nil {
				logger.Log.Warn("event publish failed", zap.String("event_type", string(events.CertificateIssued)), zap.Error(perr))
			}
			return &IssueResult{Certificate: cert}, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		winner, ferr := s.Certificates.FindByUserAndCourse(ctx, userID, courseID)
		if ferr == nil {
			return &IssueResult{Certificate: winner, AlreadyExists: true}, nil
		}
		if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, ferr
		}
		logger.Log.Warn("certificate number collision, retrying",
			zap.String("number", cert.CertificateNumber),
			zap.Int("attempt", i+1),
		)
	}
	return nil, util.ErrSerialExhausted
}

func verifyKey(number string) string {
	return "cert:verify:" + number
}

// Verify is the public lookup by certificate number. Unknown numbers are a
// valid answer, not an error.
func (s *CertificateService) Verify(ctx context.Context, number string) (*VerifyResult, error) {
	var cached VerifyResult
	if err := s.Cache.Get(ctx, verifyKey(number), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn("certificate cache read failed", zap.Error(err))
	}

	cert, err := s.Certificates.FindByNumber(ctx, number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &VerifyResult{Valid: false}, nil
	}
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Valid: true, Certificate: publicCertificate(cert)}
	if err := s.Cache.Set(ctx, verifyKey(number), result, s.CacheTTL); err != nil {
		logger.Log.Warn("certificate cache write failed", zap.Error(err))
	}
	return result, nil
}

// publicCertificate strips the holder down to what a verifier may see.
func publicCertificate(cert *model.Certificate) *model.Certificate {
	out := *cert
	if cert.User != nil {
		out.User = &model.User{Name: cert.User.Name}
		out.User.ID = cert.User.ID
	}
	if cert.Course != nil {
		out.Course = &model.Course{Title: cert.Course.Title, Slug: cert.Course.Slug}
		out.Course.ID = cert.Course.ID
	}
	return &out
}

func (s *CertificateService) ListForUser(ctx context.Context, userID uint) ([]model.Certificate, error) {
	return s.Certificates.ListByUser(ctx, userID)
}

func (s *CertificateService) ListAll(ctx context.Context, courseID uint) ([]model.Certificate, error) {
	return s.Certificates.List(ctx, courseID)
}
