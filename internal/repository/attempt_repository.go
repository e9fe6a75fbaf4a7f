package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// Record inserts the attempt with its responses. When reset is set, the same
// transaction then wipes the learner's progress for reset.LessonIDs and every
// attempt the learner has on the quiz, the new one included.
func (r *AttemptRepository) Record(ctx context.Context, attempt *model.UserQuizAttempt, reset *model.ProgressReset) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(attempt).Error; err != nil {
			return err
		}
		if reset == nil {
			return nil
		}

		if len(reset.LessonIDs) > 0 {
			if err := tx.Where("user_id = ? AND lesson_id IN ?", reset.UserID, reset.LessonIDs).
				Delete(&model.UserProgress{}).Error; err != nil {
				return err
			}
		}

		var attemptIDs []uint
		if err := tx.Model(&model.UserQuizAttempt{}).
			Where("user_id = ? AND quiz_id = ?", reset.UserID, reset.QuizID).
			Pluck("id", &attemptIDs).Error; err != nil {
			return err
		}
		if len(attemptIDs) == 0 {
			return nil
		}
		if err := tx.Where("attempt_id IN ?", attemptIDs).Delete(&model.UserQuizResponse{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", attemptIDs).Delete(&model.UserQuizAttempt{}).Error
	})
}

// ListByUserAndQuiz returns the learner's attempts, newest first.
func (r *AttemptRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]model.UserQuizAttempt, error) {
	var attempts []model.UserQuizAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) HasPassed(ctx context.Context, userID, quizID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.UserQuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND passed = ?", userID, quizID, true).
		Count(&n).Error
	return n > 0, err
}

// ListByQuiz feeds the report export.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID uint) ([]model.UserQuizAttempt, error) {
	var attempts []model.UserQuizAttempt
	err := r.DB.WithContext(ctx).
		Preload("User").
		Where("quiz_id = ?", quizID).
		Order("created_at ASC, id ASC").
		Find(&attempts).Error
	return attempts, err
}
