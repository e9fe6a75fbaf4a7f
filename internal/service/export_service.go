package service

import (
	"context"
	"errors"
	"fmt"

	"learnhub_backend/internal/util"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ExportService struct {
	Quizzes      QuizStore
	Attempts     AttemptStore
	Certificates CertificateStore
}

func NewExportService(quizzes QuizStore, attempts AttemptStore, certs CertificateStore) *ExportService {
	return &ExportService{Quizzes: quizzes, Attempts: attempts, Certificates: certs}
}

func writeSheet(sheetName string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportQuizAttempts exports every recorded attempt of a quiz.
func (s *ExportService) ExportQuizAttempts(ctx context.Context, quizID uint) ([]byte, error) {
	if _, err := s.Quizzes.FindByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	attempts, err := s.Attempts.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Attempt ID", "User ID", "User Name", "Email", "Score", "Correct", "Questions", "Result", "Submitted At"}
	rows := make([][]interface{}, 0, len(attempts))
	for _, a := range attempts {
		name, email := "", ""
		if a.User != nil {
			name, email = a.User.Name, a.User.Email
		}
		result := "Fail"
		if a.Passed {
			result = "Pass"
		}
		rows = append(rows, []interface{}{
			a.ID, a.UserID, name, email, a.Score, a.CorrectCount, a.TotalQuestions, result,
			a.CreatedAt.Format(util.TimeFormat),
		})
	}
	return writeSheet("Attempts", headers, rows)
}

// ExportCertificates exports issued certificates, optionally for one course.
func (s *ExportService) ExportCertificates(ctx context.Context, courseID uint) ([]byte, error) {
	certs, err := s.Certificates.List(ctx, courseID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Certificate Number", "User ID", "User Name", "Email", "Course ID", "Course", "Issued At"}
	rows := make([][]interface{}, 0, len(certs))
	for _, c := range certs {
		name, email, course := "", "", ""
		if c.User != nil {
			name, email = c.User.Name, c.User.Email
		}
		if c.Course != nil {
			course = c.Course.Title
		}
		rows = append(rows, []interface{}{
			c.CertificateNumber, c.UserID, name, email, c.CourseID, course,
			c.IssuedAt.Format(util.TimeFormat),
		})
	}
	return writeSheet("Certificates", headers, rows)
}
