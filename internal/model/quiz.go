package model

import (
	"time"

	"gorm.io/datatypes"
)

type QuizScope string

const (
	ScopeCourse QuizScope = "course"
	ScopeModule QuizScope = "module"
	ScopeLesson QuizScope = "lesson"
)

// swagger:model Quiz
type Quiz struct {
	Record
	Title        string         `gorm:"size:255;not null" json:"title"`
	CourseID     *uint          `gorm:"index" json:"courseId,omitempty"`
	ModuleID     *uint          `gorm:"index" json:"moduleId,omitempty"`
	LessonID     *uint          `gorm:"index" json:"lessonId,omitempty"`
	PassingScore int            `gorm:"not null;default:70" json:"passingScore"`
	IsFinalExam  bool           `gorm:"default:false;index" json:"isFinalExam"`
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Scope reports which kind of entity owns the quiz and its id. ok is false
// unless exactly one owner is set.
func (q *Quiz) Scope() (scope QuizScope, id uint, ok bool) {
	n := 0
	if q.CourseID != nil {
		scope, id = ScopeCourse, *q.CourseID
		n++
	}
	if q.ModuleID != nil {
		scope, id = ScopeModule, *q.ModuleID
		n++
	}
	if q.LessonID != nil {
		scope, id = ScopeLesson, *q.LessonID
		n++
	}
	return scope, id, n == 1
}

type QuizQuestion struct {
	Record
	QuizID  uint         `gorm:"index;not null" json:"quizId"`
	Text    string       `gorm:"type:text;not null" json:"text"`
	Order   int          `gorm:"column:sort_order;default:0" json:"order"`
	Answers []QuizAnswer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// CorrectAnswerID returns the id of the answer flagged correct.
func (q *QuizQuestion) CorrectAnswerID() (uint, bool) {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a.ID, true
		}
	}
	return 0, false
}

type QuizAnswer struct {
	Record
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}

// UserQuizAttempt is one graded submission.
type UserQuizAttempt struct {
	ID             uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint               `gorm:"index:idx_attempt_user_quiz;not null" json:"userId"`
	QuizID         uint               `gorm:"index:idx_attempt_user_quiz;not null" json:"quizId"`
	Score          int                `gorm:"not null" json:"score"`
	Passed         bool               `gorm:"not null" json:"passed"`
	CorrectCount   int                `gorm:"not null" json:"correctCount"`
	TotalQuestions int                `gorm:"not null" json:"totalQuestions"`
	Submitted      datatypes.JSON     `json:"-"`
	CreatedAt      time.Time          `gorm:"index" json:"createdAt"`
	Responses      []UserQuizResponse `gorm:"foreignKey:AttemptID" json:"responses,omitempty"`
	User           *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserQuizAttempt) TableName() string {
	return "user_quiz_attempts"
}

type UserQuizResponse struct {
	ID         uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	AttemptID  uint  `gorm:"index;not null" json:"attemptId"`
	QuestionID uint  `gorm:"not null" json:"questionId"`
	AnswerID   *uint `json:"answerId"`
	IsCorrect  bool  `gorm:"not null" json:"isCorrect"`
}

func (UserQuizResponse) TableName() string {
	return "user_quiz_responses"
}

// ProgressReset describes the rows wiped when a learner fails a quiz too
// many times in a row.
type ProgressReset struct {
	UserID    uint
	QuizID    uint
	LessonIDs []uint
}
