package model

import "time"

// swagger:model Certificate
type Certificate struct {
	Record
	UserID            uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course" json:"userId"`
	CourseID          uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course" json:"courseId"`
	CertificateNumber string    `gorm:"size:64;not null;uniqueIndex" json:"certificateNumber"`
	IssuedAt          time.Time `gorm:"not null" json:"issuedAt"`
	User              *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course            *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}
