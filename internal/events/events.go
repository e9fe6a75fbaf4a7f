package events

import "time"

type EventType string

const (
	AttemptGraded     EventType = "quiz.attempt_graded"
	ProgressReset     EventType = "learning.progress_reset"
	CertificateIssued EventType = "certificate.issued"
)

const (
	eventSource  = "learnhub"
	eventVersion = "1"
)

// Event is the envelope written to the message bus.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

type AttemptGradedPayload struct {
	AttemptID      uint `json:"attemptId"`
	UserID         uint `json:"userId"`
	QuizID         uint `json:"quizId"`
	Score          int  `json:"score"`
	Passed         bool `json:"passed"`
	CorrectCount   int  `json:"correctCount"`
	TotalQuestions int  `json:"totalQuestions"`
}

type ProgressResetPayload struct {
	UserID    uint   `json:"userId"`
	QuizID    uint   `json:"quizId"`
	LessonIDs []uint `json:"lessonIds"`
}

type CertificateIssuedPayload struct {
	CertificateID     uint      `json:"certificateId"`
	UserID            uint      `json:"userId"`
	CourseID          uint      `json:"courseId"`
	CertificateNumber string    `json:"certificateNumber"`
	IssuedAt          time.Time `json:"issuedAt"`
}
