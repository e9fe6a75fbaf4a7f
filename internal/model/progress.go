package model

import "time"

type UserProgress struct {
	Record
	UserID      uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"userId"`
	LessonID    uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"lessonId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// CourseProgress summarises lesson completion for one learner in one course.
type CourseProgress struct {
	CourseID           uint    `json:"courseId"`
	TotalLessons       int     `json:"totalLessons"`
	CompletedLessons   int     `json:"completedLessons"`
	CompletedLessonIDs []uint  `json:"completedLessonIds"`
	Percent            float64 `json:"percent"`
}
