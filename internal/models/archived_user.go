package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// UserSnapshotSchemaVersion is bumped whenever UserSnapshot changes shape so
// restores stay well-typed across schema evolution.
const UserSnapshotSchemaVersion = 1

// UserSnapshot is the structured copy of a user row captured at archive time.
// Relational collections are deliberately excluded.
type UserSnapshot struct {
	SchemaVersion int `json:"schema_version"`

	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	Role       UserRole   `json:"role"`
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	TeacherID  *string    `json:"teacher_id"`
	IsVerified bool       `json:"is_verified"`
	LastLogin  *time.Time `json:"last_login"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewUserSnapshot captures the archivable fields of a user.
func NewUserSnapshot(u *User) UserSnapshot {
	return UserSnapshot{
		SchemaVersion: UserSnapshotSchemaVersion,
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Password:      u.Password,
		Role:          u.Role,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		TeacherID:     u.TeacherID,
		IsVerified:    u.IsVerified,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// ArchivedUser is the append-only archive row written when a user is
// archived and deleted again when the user is restored.
type ArchivedUser struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null;size:36"`

	Role      UserRole `json:"role" gorm:"not null;size:20"`
	FirstName *string  `json:"first_name" gorm:"size:60"`
	LastName  *string  `json:"last_name" gorm:"size:60"`
	TeacherID *string  `json:"teacher_id" gorm:"size:36"`

	Snapshot datatypes.JSON `json:"snapshot" gorm:"not null"`

	ArchivedBy    string  `json:"archived_by" gorm:"not null;size:36"`
	ArchiveReason *string `json:"archive_reason" gorm:"size:500"`

	CreatedAt time.Time `json:"archived_at"`
}

func (ArchivedUser) TableName() string {
	return "archived_users"
}

// NewArchivedUserRecord builds the archive row for a user, embedding the
// serialized snapshot.
func NewArchivedUserRecord(u *User, archivedBy string, reason *string) (*ArchivedUser, error) {
	data, err := json.Marshal(NewUserSnapshot(u))
	if err != nil {
		return nil, err
	}
	return &ArchivedUser{
		UserID:        u.ID,
		Role:          u.Role,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		TeacherID:     u.TeacherID,
		Snapshot:      datatypes.JSON(data),
		ArchivedBy:    archivedBy,
		ArchiveReason: reason,
	}, nil
}

// DecodeSnapshot unmarshals the stored snapshot.
func (a *ArchivedUser) DecodeSnapshot() (*UserSnapshot, error) {
	var snap UserSnapshot
	if err := json.Unmarshal(a.Snapshot, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
