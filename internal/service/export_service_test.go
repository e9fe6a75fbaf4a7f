package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportQuizAttempts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := seedUser(t, f, "learner@example.com")
	_, modules, _ := f.courseWithLessons(t, 1)
	q := f.quiz(t, ownedByModule(modules[0]), 2, 50, false)

	_, err := f.quizService(5).Submit(ctx, user.ID, q.ID, answers(q, 2))
	require.NoError(t, err)

	svc := NewExportService(f.quizzes, f.attempts, f.certs)
	data, err := svc.ExportQuizAttempts(ctx, q.ID)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Attempts"}, book.GetSheetList())

	rows, err := book.GetRows("Attempts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Score", rows[0][4])
	assert.Equal(t, "learner@example.com", rows[1][3])
	assert.Equal(t, "100", rows[1][4])
	assert.Equal(t, "Pass", rows[1][7])

	_, err = svc.ExportQuizAttempts(ctx, 999)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestExportCertificates(t *testing.T) {
	f := newFixture()
	f.db.certs = append(f.db.certs,
		model.Certificate{UserID: 1, CourseID: 10, CertificateNumber: "CERT-A", IssuedAt: time.Now()},
		model.Certificate{UserID: 2, CourseID: 20, CertificateNumber: "CERT-B", IssuedAt: time.Now()},
	)
	svc := NewExportService(f.quizzes, f.attempts, f.certs)

	data, err := svc.ExportCertificates(context.Background(), 20)
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Certificates")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CERT-B", rows[1][0])
}
