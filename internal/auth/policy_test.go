package auth

import (
	"testing"

	"github.com/itechs-edu/exam-service/internal/models"
)

func strptr(s string) *string { return &s }

var (
	admin       = &models.User{ID: "admin-1", Role: models.RoleSuperAdmin}
	teacher     = &models.User{ID: "teacher-1", Role: models.RoleTeacher}
	otherTeach  = &models.User{ID: "teacher-2", Role: models.RoleTeacher}
	ownStudent  = &models.User{ID: "student-1", Role: models.RoleStudent, TeacherID: strptr("teacher-1")}
	stray       = &models.User{ID: "student-2", Role: models.RoleStudent, TeacherID: strptr("teacher-2")}
	orphStudent = &models.User{ID: "student-3", Role: models.RoleStudent}
)

func TestCanCreateRole(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.User
		role  models.UserRole
		want  bool
	}{
		{"admin creates teacher", admin, models.RoleTeacher, true},
		{"admin creates admin", admin, models.RoleSuperAdmin, true},
		{"teacher creates student", teacher, models.RoleStudent, true},
		{"teacher creates teacher", teacher, models.RoleTeacher, false},
		{"student creates student", ownStudent, models.RoleStudent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCreateRole(tt.actor, tt.role); got != tt.want {
				t.Errorf("CanCreateRole() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewUser(t *testing.T) {
	tests := []struct {
		name          string
		actor, target *models.User
		want          bool
	}{
		{"admin views anyone", admin, stray, true},
		{"self view", ownStudent, ownStudent, true},
		{"teacher views own student", teacher, ownStudent, true},
		{"teacher views other's student", teacher, stray, false},
		{"teacher views unassigned student", teacher, orphStudent, false},
		{"teacher views peer", teacher, otherTeach, false},
		{"student views classmate", ownStudent, stray, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewUser(tt.actor, tt.target); got != tt.want {
				t.Errorf("CanViewUser() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanArchiveUser(t *testing.T) {
	tests := []struct {
		name          string
		actor, target *models.User
		want          bool
	}{
		{"admin archives teacher", admin, teacher, true},
		{"admin archives self", admin, admin, false},
		{"teacher archives own student", teacher, ownStudent, true},
		{"teacher archives other's student", teacher, stray, false},
		{"teacher archives self", teacher, teacher, false},
		{"teacher archives peer", teacher, otherTeach, false},
		{"student archives anyone", ownStudent, stray, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanArchiveUser(tt.actor, tt.target); got != tt.want {
				t.Errorf("CanArchiveUser() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManageExam(t *testing.T) {
	exam := &models.Exam{ID: "exam-1", TeacherID: "teacher-1"}

	tests := []struct {
		name  string
		actor *models.User
		want  bool
	}{
		{"owner manages", teacher, true},
		{"other teacher denied", otherTeach, false},
		{"admin manages", admin, true},
		{"student denied", ownStudent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanManageExam(tt.actor, exam); got != tt.want {
				t.Errorf("CanManageExam() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewExam(t *testing.T) {
	exam := &models.Exam{ID: "exam-1", TeacherID: "teacher-1"}

	if !CanViewExam(ownStudent, exam, true) {
		t.Error("enrolled student denied")
	}
	if CanViewExam(ownStudent, exam, false) {
		t.Error("unenrolled student allowed")
	}
	if !CanViewExam(teacher, exam, false) {
		t.Error("owning teacher denied")
	}
	if CanViewExam(otherTeach, exam, false) {
		t.Error("other teacher allowed")
	}
}
