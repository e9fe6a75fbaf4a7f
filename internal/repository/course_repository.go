package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit("Modules").Create(course).Error
}

func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit("Modules").Save(course).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindTree loads a course with its modules and lessons in display order.
func (r *CourseRepository) FindTree(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Modules", orderedLessons).
		Preload("Modules.Lessons", orderedLessons).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) List(ctx context.Context, publishedOnly bool, page, limit int) ([]model.Course, int64, error) {
	query := r.DB.WithContext(ctx).Model(&model.Course{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

// Delete soft-deletes the course along with its modules and lessons. Every
// quiz attached to any of them is removed outright.
func (r *CourseRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&model.Module{}).Where("course_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		var lessonIDs []uint
		if len(moduleIDs) > 0 {
			if err := tx.Model(&model.Lesson{}).Where("module_id IN ?", moduleIDs).Pluck("id", &lessonIDs).Error; err != nil {
				return err
			}
		}
		if err := deleteOwnedQuizzes(tx, []uint{id}, moduleIDs, lessonIDs); err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&model.Lesson{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", moduleIDs).Delete(&model.Module{}).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&model.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CourseRepository) CreateModule(ctx context.Context, module *model.Module) error {
	return r.DB.WithContext(ctx).Omit("Lessons").Create(module).Error
}

func (r *CourseRepository) UpdateModule(ctx context.Context, module *model.Module) error {
	return r.DB.WithContext(ctx).Omit("Lessons").Save(module).Error
}

func (r *CourseRepository) FindModule(ctx context.Context, id uint) (*model.Module, error) {
	var module model.Module
	if err := r.DB.WithContext(ctx).First(&module, id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *CourseRepository) DeleteModule(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lessonIDs []uint
		if err := tx.Model(&model.Lesson{}).Where("module_id = ?", id).Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}
		if err := deleteOwnedQuizzes(tx, nil, []uint{id}, lessonIDs); err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Module{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CourseRepository) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Create(lesson).Error
}

func (r *CourseRepository) UpdateLesson(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Save(lesson).Error
}

func (r *CourseRepository) FindLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) DeleteLesson(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteOwnedQuizzes(tx, nil, nil, []uint{id}); err != nil {
			return err
		}
		res := tx.Delete(&model.Lesson{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CourseIDForLesson resolves the course owning a lesson.
func (r *CourseRepository) CourseIDForLesson(ctx context.Context, lessonID uint) (uint, error) {
	var lesson model.Lesson
	if err := r.DB.WithContext(ctx).Select("module_id").First(&lesson, lessonID).Error; err != nil {
		return 0, err
	}
	module, err := r.FindModule(ctx, lesson.ModuleID)
	if err != nil {
		return 0, err
	}
	return module.CourseID, nil
}

func (r *CourseRepository) LessonIDsByModule(ctx context.Context, moduleID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).
		Where("module_id = ?", moduleID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *CourseRepository) LessonIDsByCourse(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("modules.course_id = ?", courseID).
		Order("lessons.id ASC").
		Pluck("lessons.id", &ids).Error
	return ids, err
}
