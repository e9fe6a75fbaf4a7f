package repository

import (
	"context"
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// MarkCompleted upserts the (user, lesson) row so repeated calls keep one row.
func (r *ProgressRepository) MarkCompleted(ctx context.Context, userID, lessonID uint) (*model.UserProgress, error) {
	now := time.Now()
	p := model.UserProgress{UserID: userID, LessonID: lessonID, Completed: true, CompletedAt: &now}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed":    true,
			"completed_at": gorm.Expr("COALESCE(completed_at, ?)", now),
			"updated_at":   now,
		}),
	}).Create(&p).Error
	if err != nil {
		return nil, err
	}

	var stored model.UserProgress
	err = r.DB.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// CompletedLessonIDs filters lessonIDs down to the ones the user completed.
func (r *ProgressRepository) CompletedLessonIDs(ctx context.Context, userID uint, lessonIDs []uint) ([]uint, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND completed = ? AND lesson_id IN ?", userID, true, lessonIDs).
		Order("lesson_id ASC").
		Pluck("lesson_id", &ids).Error
	return ids, err
}
