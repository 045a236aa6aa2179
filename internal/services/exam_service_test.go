package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/itechs-edu/exam-service/internal/events"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/validator"
)

func newExamService(repo *mockRepository) (ExamService, *events.MockEventPublisher) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewExamService(repo, publisher, logger, validator.New())
	return svc, publisher
}

func seedTeacher(repo *mockRepository) *models.User {
	return seedUser(repo, "alice@teacher.com", "alice@example.com", "Sup3rSecret!", models.RoleTeacher)
}

func seedStudent(repo *mockRepository) *models.User {
	return seedUser(repo, "bob@student.com", "bob@example.com", "Sup3rSecret!", models.RoleStudent)
}

func TestCreateExamGeneratesCode(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	svc, publisher := newExamService(repo)
	ctx := context.Background()

	codeRe := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		exam, err := svc.Create(ctx, teacher, &CreateExamRequest{Title: "Midterm Algebra"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if !codeRe.MatchString(exam.ExamCode) {
			t.Errorf("ExamCode = %q, want 6 chars A-Z0-9", exam.ExamCode)
		}
		if seen[exam.ExamCode] {
			t.Errorf("ExamCode %q repeated", exam.ExamCode)
		}
		seen[exam.ExamCode] = true
		if !exam.IsActive {
			t.Error("new exam should be active")
		}
		if exam.TeacherID != teacher.ID {
			t.Errorf("TeacherID = %q", exam.TeacherID)
		}
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 5 {
		t.Fatalf("published %d events, want 5", len(published))
	}
	if published[0].Type != events.ExamCreated {
		t.Errorf("first event type = %q", published[0].Type)
	}
}

func TestCreateExamStudentDenied(t *testing.T) {
	repo := newMockRepository()
	student := seedStudent(repo)
	svc, _ := newExamService(repo)

	_, err := svc.Create(context.Background(), student, &CreateExamRequest{Title: "Nope Exam"})
	if !IsPermissionError(err) {
		t.Errorf("Create() error = %v, want permission error", err)
	}
}

func TestJoinExam(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	student := seedStudent(repo)
	svc, publisher := newExamService(repo)
	ctx := context.Background()

	exam, err := svc.Create(ctx, teacher, &CreateExamRequest{Title: "Midterm Algebra"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	publisher.ClearEvents()

	joined, err := svc.Join(ctx, student, &JoinExamRequest{ExamCode: exam.ExamCode})
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if joined.ID != exam.ID {
		t.Errorf("joined exam %q, want %q", joined.ID, exam.ID)
	}

	enrolled, _ := repo.Exam().IsEnrolled(ctx, exam.ID, student.ID)
	if !enrolled {
		t.Error("student not enrolled after join")
	}

	// Second join is a duplicate.
	if _, err := svc.Join(ctx, student, &JoinExamRequest{ExamCode: exam.ExamCode}); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("second Join() error = %v, want ErrAlreadyEnrolled", err)
	}

	// Teachers cannot join.
	if _, err := svc.Join(ctx, teacher, &JoinExamRequest{ExamCode: exam.ExamCode}); !errors.Is(err, ErrStudentsOnly) {
		t.Errorf("teacher Join() error = %v, want ErrStudentsOnly", err)
	}

	// Unknown code.
	if _, err := svc.Join(ctx, student, &JoinExamRequest{ExamCode: "ZZZZZZ"}); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("Join(unknown code) error = %v, want ErrExamNotFound", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.ExamJoined {
		t.Errorf("expected one exam.joined event, got %v", published)
	}
}

func TestJoinInactiveExam(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	student := seedStudent(repo)
	svc, _ := newExamService(repo)
	ctx := context.Background()

	exam, _ := svc.Create(ctx, teacher, &CreateExamRequest{Title: "Closed Exam"})
	inactive := false
	if _, err := svc.Update(ctx, teacher, exam.ID, &UpdateExamRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	_, err := svc.Join(ctx, student, &JoinExamRequest{ExamCode: exam.ExamCode})
	if !errors.Is(err, ErrExamInactive) {
		t.Errorf("Join() error = %v, want ErrExamInactive", err)
	}
}

func TestGetExamByCodePreview(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	svc, _ := newExamService(repo)
	ctx := context.Background()

	exam, _ := svc.Create(ctx, teacher, &CreateExamRequest{Title: "Entrance Exam"})

	preview, err := svc.GetByCode(ctx, nil, exam.ExamCode)
	if err != nil {
		t.Fatalf("GetByCode() error = %v", err)
	}
	if preview.Questions != nil || preview.Students != nil || preview.Scores != nil {
		t.Error("preview should not carry questions, students or scores")
	}

	// Deactivated exams disappear from the code lookup.
	inactive := false
	if _, err := svc.Update(ctx, teacher, exam.ID, &UpdateExamRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := svc.GetByCode(ctx, nil, exam.ExamCode); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("GetByCode(inactive) error = %v, want ErrExamNotFound", err)
	}
}

func TestExamOwnershipChecks(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	other := seedUser(repo, "eve@teacher.com", "eve@example.com", "Sup3rSecret!", models.RoleTeacher)
	svc, _ := newExamService(repo)
	ctx := context.Background()

	exam, _ := svc.Create(ctx, teacher, &CreateExamRequest{Title: "Midterm Algebra"})

	title := "Hijacked"
	if _, err := svc.Update(ctx, other, exam.ID, &UpdateExamRequest{Title: &title}); !IsPermissionError(err) {
		t.Errorf("Update(other) error = %v, want permission error", err)
	}
	if err := svc.Delete(ctx, other, exam.ID); !IsPermissionError(err) {
		t.Errorf("Delete(other) error = %v, want permission error", err)
	}
	if _, err := svc.Statistics(ctx, other, exam.ID); !IsPermissionError(err) {
		t.Errorf("Statistics(other) error = %v, want permission error", err)
	}
}

func TestDeleteExamWithScores(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	svc, _ := newExamService(repo)
	ctx := context.Background()

	exam, _ := svc.Create(ctx, teacher, &CreateExamRequest{Title: "Graded Exam"})
	repo.scores[exam.ID] = []*models.Score{{ExamID: exam.ID, StudentID: "s1", Score: 80, Percentage: 80}}

	if err := svc.Delete(ctx, teacher, exam.ID); !errors.Is(err, ErrExamHasScores) {
		t.Errorf("Delete() error = %v, want ErrExamHasScores", err)
	}
}

func TestExamStatistics(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	svc, _ := newExamService(repo)
	ctx := context.Background()

	// Raw marks differ from percentages so the aggregates prove which one
	// they are computed from.
	exam, _ := svc.Create(ctx, teacher, &CreateExamRequest{Title: "Final Exam"})
	repo.Exam().Enroll(ctx, exam.ID, "s1")
	repo.Exam().Enroll(ctx, exam.ID, "s2")
	repo.Exam().Enroll(ctx, exam.ID, "s3")
	repo.scores[exam.ID] = []*models.Score{
		{ExamID: exam.ID, StudentID: "s1", Score: 45, Percentage: 90},
		{ExamID: exam.ID, StudentID: "s2", Score: 20, Percentage: 40},
	}

	stats, err := svc.Statistics(ctx, teacher, exam.ID)
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}

	if stats.TotalStudents != 3 {
		t.Errorf("TotalStudents = %d, want 3", stats.TotalStudents)
	}
	if stats.TotalScores != 2 {
		t.Errorf("TotalScores = %d, want 2", stats.TotalScores)
	}
	if stats.AveragePercentage != 65 {
		t.Errorf("AveragePercentage = %v, want 65", stats.AveragePercentage)
	}
	if stats.HighestPercentage != 90 || stats.LowestPercentage != 40 {
		t.Errorf("Highest/Lowest = %v/%v", stats.HighestPercentage, stats.LowestPercentage)
	}
	if stats.PassRate != 50 {
		t.Errorf("PassRate = %v, want 50", stats.PassRate)
	}
}

func TestListExamsByRole(t *testing.T) {
	repo := newMockRepository()
	teacher := seedTeacher(repo)
	other := seedUser(repo, "eve@teacher.com", "eve@example.com", "Sup3rSecret!", models.RoleTeacher)
	student := seedStudent(repo)
	admin := seedUser(repo, "admin@example.com", "admin2@example.com", "Adm1nPass!", models.RoleSuperAdmin)
	svc, _ := newExamService(repo)
	ctx := context.Background()

	mine, _ := svc.Create(ctx, teacher, &CreateExamRequest{Title: "Mine Exam"})
	svc.Create(ctx, other, &CreateExamRequest{Title: "Other Exam"})
	svc.Join(ctx, student, &JoinExamRequest{ExamCode: mine.ExamCode})

	teacherList, err := svc.List(ctx, teacher, ExamListQuery{})
	if err != nil {
		t.Fatalf("List(teacher) error = %v", err)
	}
	if len(teacherList.Exams) != 1 || teacherList.Exams[0].ID != mine.ID {
		t.Errorf("teacher sees %d exams", len(teacherList.Exams))
	}

	studentList, err := svc.List(ctx, student, ExamListQuery{})
	if err != nil {
		t.Fatalf("List(student) error = %v", err)
	}
	if len(studentList.Exams) != 1 || studentList.Exams[0].ID != mine.ID {
		t.Errorf("student sees %d exams", len(studentList.Exams))
	}

	adminList, err := svc.List(ctx, admin, ExamListQuery{})
	if err != nil {
		t.Fatalf("List(admin) error = %v", err)
	}
	if len(adminList.Exams) != 2 {
		t.Errorf("admin sees %d exams, want 2", len(adminList.Exams))
	}
}
