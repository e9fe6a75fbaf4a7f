package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Record is the base for rows that are hard-deleted and guarded by unique
// indexes (attempts, progress, certificates, grants).
type Record struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AllModels lists every table handled by AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserRoleGrant{},
		&Course{},
		&Module{},
		&Lesson{},
		&Enrollment{},
		&Quiz{},
		&QuizQuestion{},
		&QuizAnswer{},
		&UserQuizAttempt{},
		&UserQuizResponse{},
		&UserProgress{},
		&Certificate{},
	}
}
