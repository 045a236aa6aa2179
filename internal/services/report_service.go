package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/itechs-edu/exam-service/internal/models"
)

type reportService struct {
	exams  ExamService
	logger *slog.Logger
}

func NewReportService(exams ExamService, logger *slog.Logger) ReportService {
	return &reportService{exams: exams, logger: logger}
}

// ExportScores renders the score sheet for an exam as an xlsx workbook.
// Permission checks ride on the statistics lookup.
func (s *reportService) ExportScores(ctx context.Context, actor *models.User, examID string) (string, []byte, error) {
	stats, err := s.exams.Statistics(ctx, actor, examID)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Scores"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Student", "Email", "Score", "Percentage"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, score := range stats.Scores {
		name := score.StudentID
		email := ""
		if score.Student != nil {
			name = score.Student.DisplayName()
			email = score.Student.Email
		}

		values := []interface{}{name, email, score.Score, score.Percentage}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	summaryRow := len(stats.Scores) + 3
	summary := [][2]interface{}{
		{"Enrolled students", stats.TotalStudents},
		{"Scores recorded", stats.TotalScores},
		{"Average percentage", stats.AveragePercentage},
		{"Pass rate (%)", stats.PassRate},
	}
	for i, pair := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		f.SetCellValue(sheet, labelCell, pair[0])
		f.SetCellValue(sheet, valueCell, pair[1])
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("render score sheet: %w", err)
	}

	filename := fmt.Sprintf("exam-%s-scores.xlsx", examID)
	s.logger.Info("score sheet exported", "exam_id", examID, "rows", len(stats.Scores))
	return filename, buf.Bytes(), nil
}
