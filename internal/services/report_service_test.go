package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/itechs-edu/exam-service/internal/models"
)

func TestExportScores(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	examSvc, _ := newExamService(repo)
	svc := NewReportService(examSvc, testLogger())
	ctx := context.Background()

	exam, err := examSvc.Create(ctx, teacher, &CreateExamRequest{Title: "Final Exam"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	repo.scores[exam.ID] = []*models.Score{
		{ExamID: exam.ID, StudentID: "s1", Score: 90, Percentage: 90},
		{ExamID: exam.ID, StudentID: "s2", Score: 40, Percentage: 40},
	}

	filename, content, err := svc.ExportScores(ctx, teacher, exam.ID)
	if err != nil {
		t.Fatalf("ExportScores() error = %v", err)
	}
	if filename == "" {
		t.Error("empty filename")
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Scores")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) < 3 {
		t.Fatalf("got %d rows, want header plus 2 scores", len(rows))
	}
	if rows[0][0] != "Student" || rows[0][2] != "Score" {
		t.Errorf("header row = %v", rows[0])
	}
}

func TestExportScoresPermission(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	student := seedStudent(repo)
	examSvc, _ := newExamService(repo)
	svc := NewReportService(examSvc, testLogger())
	ctx := context.Background()

	exam, _ := examSvc.Create(ctx, teacher, &CreateExamRequest{Title: "Final Exam"})

	if _, _, err := svc.ExportScores(ctx, student, exam.ID); !IsPermissionError(err) {
		t.Errorf("ExportScores(student) error = %v, want permission error", err)
	}
}
