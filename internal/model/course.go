package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Title       string   `gorm:"size:255;not null" json:"title"`
	Slug        string   `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string   `gorm:"type:text" json:"description"`
	Published   bool     `gorm:"default:false" json:"published"`
	CreatedBy   uint     `gorm:"index" json:"createdBy"`
	Modules     []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type Module struct {
	BaseModel
	CourseID uint     `gorm:"index;not null" json:"courseId"`
	Title    string   `gorm:"size:255;not null" json:"title"`
	Order    int      `gorm:"column:sort_order;default:0" json:"order"`
	Lessons  []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

type Lesson struct {
	BaseModel
	ModuleID        uint   `gorm:"index;not null" json:"moduleId"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Content         string `gorm:"type:text" json:"content"`
	VideoURL        string `gorm:"size:512" json:"videoUrl"`
	DurationSeconds int    `gorm:"default:0" json:"durationSeconds"`
	Order           int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (Lesson) TableName() string {
	return "lessons"
}

type Enrollment struct {
	Record
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"userId"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Course     *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
