package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Create stores the quiz with its questions and answers.
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Create(quiz).Error
}

// Replace overwrites the quiz header and swaps its question set.
func (r *QuizRepository) Replace(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Quiz{}).Where("id = ?", quiz.ID).Updates(map[string]interface{}{
			"title":         quiz.Title,
			"course_id":     quiz.CourseID,
			"module_id":     quiz.ModuleID,
			"lesson_id":     quiz.LessonID,
			"passing_score": quiz.PassingScore,
			"is_final_exam": quiz.IsFinalExam,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := deleteQuestions(tx, quiz.ID); err != nil {
			return err
		}
		for i := range quiz.Questions {
			quiz.Questions[i].ID = 0
			quiz.Questions[i].QuizID = quiz.ID
			for j := range quiz.Questions[i].Answers {
				quiz.Questions[i].Answers[j].ID = 0
			}
		}
		if len(quiz.Questions) == 0 {
			return nil
		}
		return tx.Create(&quiz.Questions).Error
	})
}

func deleteQuestions(tx *gorm.DB, quizID uint) error {
	sub := tx.Model(&model.QuizQuestion{}).Select("id").Where("quiz_id = ?", quizID)
	if err := tx.Where("question_id IN (?)", sub).Delete(&model.QuizAnswer{}).Error; err != nil {
		return err
	}
	return tx.Where("quiz_id = ?", quizID).Delete(&model.QuizQuestion{}).Error
}

// Delete removes the quiz, its questions, answers and every attempt.
func (r *QuizRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := deleteQuizzes(tx, []uint{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// deleteQuizzes removes the quizzes with everything hanging off them and
// reports how many quiz rows went.
func deleteQuizzes(tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	for _, id := range ids {
		if err := deleteQuestions(tx, id); err != nil {
			return 0, err
		}
	}
	attempts := tx.Model(&model.UserQuizAttempt{}).Select("id").Where("quiz_id IN ?", ids)
	if err := tx.Where("attempt_id IN (?)", attempts).Delete(&model.UserQuizResponse{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("quiz_id IN ?", ids).Delete(&model.UserQuizAttempt{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&model.Quiz{})
	return res.RowsAffected, res.Error
}

// deleteOwnedQuizzes removes the quizzes attached to the given course, modules
// or lessons.
func deleteOwnedQuizzes(tx *gorm.DB, courseIDs, moduleIDs, lessonIDs []uint) error {
	query := tx.Model(&model.Quiz{}).Where("1 = 0")
	if len(courseIDs) > 0 {
		query = query.Or("course_id IN ?", courseIDs)
	}
	if len(moduleIDs) > 0 {
		query = query.Or("module_id IN ?", moduleIDs)
	}
	if len(lessonIDs) > 0 {
		query = query.Or("lesson_id IN ?", lessonIDs)
	}
	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return err
	}
	_, err := deleteQuizzes(tx, ids)
	return err
}

func (r *QuizRepository) FindByID(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindWithQuestions loads questions by (order, id) and answers by id.
func (r *QuizRepository) FindWithQuestions(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FinalExamsForCourse(ctx context.Context, courseID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Where("course_id = ? AND is_final_exam = ?", courseID, true).
		Order("id ASC").
		Find(&quizzes).Error
	return quizzes, err
}

// ListForCourse returns quizzes owned by the course, its modules or its lessons.
func (r *QuizRepository) ListForCourse(ctx context.Context, courseID uint) ([]model.Quiz, error) {
	modules := r.DB.Model(&model.Module{}).Select("id").Where("course_id = ?", courseID)
	lessons := r.DB.Model(&model.Lesson{}).Select("id").Where("module_id IN (?)", modules)

	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Or("module_id IN (?)", modules).
		Or("lesson_id IN (?)", lessons).
		Order("id ASC").
		Find(&quizzes).Error
	return quizzes, err
}
