package repository

import (
	"context"
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// Enroll inserts the enrollment if missing and returns the stored row.
func (r *EnrollmentRepository) Enroll(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	db := r.DB.WithContext(ctx)
	e := model.Enrollment{UserID: userID, CourseID: courseID, EnrolledAt: time.Now()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&e).Error; err != nil {
		return nil, err
	}

	var stored model.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&n).Error
	return n > 0, err
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	var out []model.Enrollment
	err := r.DB.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&out).Error
	return out, err
}
