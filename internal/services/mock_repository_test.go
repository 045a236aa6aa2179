package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	mu       sync.Mutex
	users    map[string]*models.User
	archived map[string]*models.ArchivedUser
	exams    map[string]*models.Exam
	enrolls  map[string]map[string]bool
	scores   map[string][]*models.Score
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    make(map[string]*models.User),
		archived: make(map[string]*models.ArchivedUser),
		exams:    make(map[string]*models.Exam),
		enrolls:  make(map[string]map[string]bool),
		scores:   make(map[string][]*models.Score),
	}
}

func (m *mockRepository) User() repositories.UserRepository                 { return &mockUserRepo{m} }
func (m *mockRepository) ArchivedUser() repositories.ArchivedUserRepository { return &mockArchivedRepo{m} }
func (m *mockRepository) Exam() repositories.ExamRepository                 { return &mockExamRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func (m *mockRepository) addUser(u *models.User) *models.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	m.users[u.ID] = &cp
	return u
}

// ===== user repo =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	r.m.addUser(user)
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	for _, u := range r.m.users {
		if u.ID != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return repositories.ErrDuplicate
		}
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *mockUserRepo) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

func (r *mockUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, u := range r.m.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		if filters.TeacherID != nil && (u.TeacherID == nil || *u.TeacherID != *filters.TeacherID) {
			continue
		}
		if filters.IsArchived != nil && u.IsArchived != *filters.IsArchived {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) SetOTP(ctx context.Context, id string, code string, expiry time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.OTPCode = &code
	u.OTPExpiry = &expiry
	u.OTPVerified = false
	return nil
}

func (r *mockUserRepo) ClearOTP(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.OTPCode = nil
	u.OTPExpiry = nil
	u.OTPVerified = true
	return nil
}

// ===== archived user repo =====

type mockArchivedRepo struct{ m *mockRepository }

func (r *mockArchivedRepo) Create(ctx context.Context, record *models.ArchivedUser) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.archived[record.UserID]; ok {
		return repositories.ErrDuplicate
	}
	r.m.archived[record.UserID] = record
	return nil
}

func (r *mockArchivedRepo) GetByUserID(ctx context.Context, userID string) (*models.ArchivedUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rec, ok := r.m.archived[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return rec, nil
}

func (r *mockArchivedRepo) Delete(ctx context.Context, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.archived[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.archived, userID)
	return nil
}

func (r *mockArchivedRepo) List(ctx context.Context, limit, offset int) ([]*models.ArchivedUser, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ArchivedUser
	for _, rec := range r.m.archived {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

// ===== exam repo =====

type mockExamRepo struct{ m *mockRepository }

func (r *mockExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.exams {
		if e.ExamCode == exam.ExamCode {
			return repositories.ErrDuplicate
		}
	}
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	cp := *exam
	r.m.exams[exam.ID] = &cp
	return nil
}

func (r *mockExamRepo) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.exams[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *mockExamRepo) GetByCode(ctx context.Context, code string) (*models.Exam, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.exams {
		if e.ExamCode == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.exams[exam.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *exam
	r.m.exams[exam.ID] = &cp
	return nil
}

func (r *mockExamRepo) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.exams[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.exams, id)
	return nil
}

func (r *mockExamRepo) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Exam
	for _, e := range r.m.exams {
		if filters.TeacherID != nil && e.TeacherID != *filters.TeacherID {
			continue
		}
		if filters.StudentID != nil && !r.m.enrolls[e.ID][*filters.StudentID] {
			continue
		}
		if filters.IsActive != nil && e.IsActive != *filters.IsActive {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *mockExamRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.exams {
		if e.ExamCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockExamRepo) Enroll(ctx context.Context, examID, studentID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.enrolls[examID] == nil {
		r.m.enrolls[examID] = make(map[string]bool)
	}
	if r.m.enrolls[examID][studentID] {
		return repositories.ErrDuplicate
	}
	r.m.enrolls[examID][studentID] = true
	return nil
}

func (r *mockExamRepo) IsEnrolled(ctx context.Context, examID, studentID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.enrolls[examID][studentID], nil
}

func (r *mockExamRepo) CountEnrollments(ctx context.Context, examID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.enrolls[examID])), nil
}

func (r *mockExamRepo) CountScores(ctx context.Context, examID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.scores[examID])), nil
}

func (r *mockExamRepo) GetScores(ctx context.Context, examID string) ([]*models.Score, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.scores[examID], nil
}
