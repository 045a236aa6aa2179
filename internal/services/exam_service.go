package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/itechs-edu/exam-service/internal/auth"
	"github.com/itechs-edu/exam-service/internal/events"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
	"github.com/itechs-edu/exam-service/internal/validator"
)

const examCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// examCodeAttempts bounds the generate-and-check loop; the unique constraint
// on exam_code stays the final authority.
const examCodeAttempts = 5

type examService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExamService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ExamService {
	return &examService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *examService) Create(ctx context.Context, actor *models.User, req *CreateExamRequest) (*models.Exam, error) {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, errs
	}
	if actor.Role != models.RoleTeacher && actor.Role != models.RoleSuperAdmin {
		return nil, NewPermissionError(actor.ID, "", "exam", "create", "teachers only")
	}

	exam := &models.Exam{
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		IsActive:    true,
		TeacherID:   actor.ID,
	}
	if req.TotalMarks != nil {
		exam.TotalMarks = *req.TotalMarks
	}

	var lastErr error
	for attempt := 0; attempt < examCodeAttempts; attempt++ {
		code, err := generateExamCode()
		if err != nil {
			return nil, err
		}

		exists, err := s.repo.Exam().CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		exam.ExamCode = code
		if err := s.repo.Exam().Create(ctx, exam); err != nil {
			if repositories.IsDuplicateError(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("create exam: %w", err)
		}

		s.publishExamEvent(ctx, events.ExamCreated, exam, "")
		s.logger.Info("exam created", "exam_id", exam.ID, "exam_code", exam.ExamCode, "teacher_id", actor.ID)
		return exam, nil
	}

	return nil, fmt.Errorf("could not allocate a unique exam code: %w", lastErr)
}

func (s *examService) GetByID(ctx context.Context, actor *models.User, id string) (*models.Exam, error) {
	exam, err := s.loadExam(ctx, id)
	if err != nil {
		return nil, err
	}

	enrolled := false
	if actor.Role == models.RoleStudent {
		enrolled, err = s.repo.Exam().IsEnrolled(ctx, id, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	if !auth.CanViewExam(actor, exam, enrolled) {
		return nil, NewPermissionError(actor.ID, id, "exam", "read", "not owner, enrolled student or admin")
	}

	if actor.Role == models.RoleStudent {
		stripAnswers(exam)
	}
	return exam, nil
}

// GetByCode resolves the shareable join code into a preview: no questions,
// no roster. Anyone holding the code may look.
func (s *examService) GetByCode(ctx context.Context, _ *models.User, code string) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByCode(ctx, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam by code: %w", err)
	}

	// Inactive exams are invisible through the join code.
	if !exam.IsActive {
		return nil, ErrExamNotFound
	}

	exam.Questions = nil
	exam.Students = nil
	exam.Scores = nil
	return exam, nil
}

func (s *examService) List(ctx context.Context, actor *models.User, query ExamListQuery) (*ExamListResponse, error) {
	filters := repositories.ExamFilters{
		IsActive: query.IsActive,
		Search:   query.Search,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}

	switch actor.Role {
	case models.RoleSuperAdmin:
	case models.RoleTeacher:
		filters.TeacherID = &actor.ID
	case models.RoleStudent:
		filters.StudentID = &actor.ID
	default:
		return nil, NewPermissionError(actor.ID, "", "exam", "list", "unknown role")
	}

	exams, total, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	return &ExamListResponse{
		Exams:      exams,
		Pagination: Pagination{Total: total, Limit: query.Limit, Offset: query.Offset},
	}, nil
}

func (s *examService) Update(ctx context.Context, actor *models.User, id string, req *UpdateExamRequest) (*models.Exam, error) {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, errs
	}

	exam, err := s.loadExam(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageExam(actor, exam) {
		return nil, NewPermissionError(actor.ID, id, "exam", "update", "not owner or admin")
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.TimeLimit != nil {
		exam.TimeLimit = req.TimeLimit
	}
	if req.TotalMarks != nil {
		exam.TotalMarks = *req.TotalMarks
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}

	if err := s.repo.Exam().Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return exam, nil
}

// Delete removes an exam permanently. Exams with recorded scores are kept
// for the grade history; deactivate them instead.
func (s *examService) Delete(ctx context.Context, actor *models.User, id string) error {
	exam, err := s.loadExam(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanManageExam(actor, exam) {
		return NewPermissionError(actor.ID, id, "exam", "delete", "not owner or admin")
	}

	scores, err := s.repo.Exam().CountScores(ctx, id)
	if err != nil {
		return err
	}
	if scores > 0 {
		return ErrExamHasScores
	}

	if err := s.repo.Exam().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	s.logger.Info("exam deleted", "exam_id", id, "deleted_by", actor.ID)
	return nil
}

// Join enrolls the calling student via the exam code. Double joins surface
// as ErrAlreadyEnrolled from the enrollment table's primary key.
func (s *examService) Join(ctx context.Context, actor *models.User, req *JoinExamRequest) (*models.Exam, error) {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, errs
	}
	if actor.Role != models.RoleStudent {
		return nil, ErrStudentsOnly
	}

	exam, err := s.repo.Exam().GetByCode(ctx, req.ExamCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("resolve exam code: %w", err)
	}
	if !exam.IsActive {
		return nil, ErrExamInactive
	}

	if err := s.repo.Exam().Enroll(ctx, exam.ID, actor.ID); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("enroll: %w", err)
	}

	s.publishExamEvent(ctx, events.ExamJoined, exam, actor.ID)
	s.logger.Info("student joined exam", "exam_id", exam.ID, "student_id", actor.ID)

	exam.Questions = nil
	exam.Scores = nil
	return exam, nil
}

// Statistics aggregates the exam's scores for its owner.
func (s *examService) Statistics(ctx context.Context, actor *models.User, id string) (*ExamStatistics, error) {
	exam, err := s.loadExam(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageExam(actor, exam) {
		return nil, NewPermissionError(actor.ID, id, "exam", "statistics", "not owner or admin")
	}

	enrollments, err := s.repo.Exam().CountEnrollments(ctx, id)
	if err != nil {
		return nil, err
	}
	scores, err := s.repo.Exam().GetScores(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &ExamStatistics{
		ExamID:        exam.ID,
		Title:         exam.Title,
		TotalStudents: enrollments,
		TotalScores:   int64(len(scores)),
		Scores:        scores,
	}

	if len(scores) > 0 {
		sum := 0.0
		passed := 0
		stats.HighestPercentage = scores[0].Percentage
		stats.LowestPercentage = scores[0].Percentage
		for _, sc := range scores {
			sum += sc.Percentage
			if sc.Percentage > stats.HighestPercentage {
				stats.HighestPercentage = sc.Percentage
			}
			if sc.Percentage < stats.LowestPercentage {
				stats.LowestPercentage = sc.Percentage
			}
			if sc.Percentage >= 50 {
				passed++
			}
		}
		stats.AveragePercentage = sum / float64(len(scores))
		stats.PassRate = float64(passed) / float64(len(scores)) * 100
	}

	return stats, nil
}

func (s *examService) loadExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	return exam, nil
}

func (s *examService) publishExamEvent(ctx context.Context, eventType string, exam *models.Exam, studentID string) {
	err := s.publisher.Publish(ctx, eventType, events.ExamEvent{
		ExamID:    exam.ID,
		ExamCode:  exam.ExamCode,
		Title:     exam.Title,
		TeacherID: exam.TeacherID,
		StudentID: studentID,
	})
	if err != nil {
		s.logger.Error("failed to publish exam event", "event_type", eventType, "exam_id", exam.ID, "error", err)
	}
}

func stripAnswers(exam *models.Exam) {
	for i := range exam.Questions {
		exam.Questions[i].CorrectAnswer = ""
	}
	exam.Scores = nil
}

func generateExamCode() (string, error) {
	code := make([]byte, models.ExamCodeLength)
	max := big.NewInt(int64(len(examCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate exam code: %w", err)
		}
		code[i] = examCodeCharset[n.Int64()]
	}
	return string(code), nil
}
