package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

// Create fails with gorm.ErrDuplicatedKey when either unique index is hit.
func (r *CertificateRepository) Create(ctx context.Context, cert *model.Certificate) error {
	return r.DB.WithContext(ctx).Omit("User", "Course").Create(cert).Error
}

func (r *CertificateRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) FindByNumber(ctx context.Context, number string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("certificate_number = ?", number).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&certs).Error
	return certs, err
}

// List returns certificates for reporting, optionally narrowed to a course.
func (r *CertificateRepository) List(ctx context.Context, courseID uint) ([]model.Certificate, error) {
	query := r.DB.WithContext(ctx).Preload("User").Preload("Course")
	if courseID != 0 {
		query = query.Where("course_id = ?", courseID)
	}
	var certs []model.Certificate
	err := query.Order("issued_at DESC, id DESC").Find(&certs).Error
	return certs, err
}
