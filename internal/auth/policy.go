package auth

import (
	"github.com/itechs-edu/exam-service/internal/models"
)

// Role and ownership checks live here so handlers and services share one
// authority. Every predicate takes the acting user first.

// CanCreateRole reports whether actor may create an account with the given
// role. Super admins create anyone; teachers create students only.
func CanCreateRole(actor *models.User, role models.UserRole) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleTeacher:
		return role == models.RoleStudent
	default:
		return false
	}
}

// CanViewUser reports whether actor may read target's account. Users always
// see themselves; teachers additionally see their assigned students.
func CanViewUser(actor, target *models.User) bool {
	if actor.Role == models.RoleSuperAdmin {
		return true
	}
	if actor.ID == target.ID {
		return true
	}
	if actor.Role == models.RoleTeacher && target.Role == models.RoleStudent {
		return target.TeacherID != nil && *target.TeacherID == actor.ID
	}
	return false
}

// CanUpdateUser reports whether actor may modify target's account.
func CanUpdateUser(actor, target *models.User) bool {
	return CanViewUser(actor, target)
}

// CanArchiveUser reports whether actor may archive target. Self-archival is
// always denied, even for super admins.
func CanArchiveUser(actor, target *models.User) bool {
	if actor.ID == target.ID {
		return false
	}
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleTeacher:
		return target.Role == models.RoleStudent &&
			target.TeacherID != nil && *target.TeacherID == actor.ID
	default:
		return false
	}
}

// CanRestoreUser reports whether actor may restore an archived account.
// Restoration is a super admin operation.
func CanRestoreUser(actor *models.User) bool {
	return actor.Role == models.RoleSuperAdmin
}

// CanResetPassword reports whether actor may reset target's password to a
// temporary one.
func CanResetPassword(actor, target *models.User) bool {
	if actor.ID == target.ID {
		return false
	}
	return CanArchiveUser(actor, target) || actor.Role == models.RoleSuperAdmin
}

// CanManageExam reports whether actor may modify or delete the exam.
func CanManageExam(actor *models.User, exam *models.Exam) bool {
	if actor.Role == models.RoleSuperAdmin {
		return true
	}
	return actor.Role == models.RoleTeacher && exam.TeacherID == actor.ID
}

// CanViewExam reports whether actor may read the exam in full. Students see
// exams they are enrolled in; enrollment is checked by the caller and passed
// as enrolled.
func CanViewExam(actor *models.User, exam *models.Exam, enrolled bool) bool {
	if CanManageExam(actor, exam) {
		return true
	}
	return actor.Role == models.RoleStudent && enrolled
}
