package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
)

// ExamCodeLength is the length of the shareable join code.
const ExamCodeLength = 6

type Exam struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Title       string  `json:"title" gorm:"not null;size:100"`
	Description *string `json:"description" gorm:"size:500"`
	ExamCode    string  `json:"exam_code" gorm:"uniqueIndex;not null;size:6"`

	// TimeLimit is in minutes.
	TimeLimit  *int `json:"time_limit"`
	TotalMarks int  `json:"total_marks" gorm:"not null;default:0"`
	IsActive   bool `json:"is_active" gorm:"not null;default:true;index"`

	TeacherID string `json:"teacher_id" gorm:"index;not null;size:36"`
	Teacher   *User  `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`

	Students  []*User    `json:"students,omitempty" gorm:"many2many:exam_enrollments"`
	Questions []Question `json:"questions,omitempty"`
	Scores    []Score    `json:"scores,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Exam) TableName() string {
	return "exams"
}

func (e *Exam) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

type Question struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	ExamID string `json:"exam_id" gorm:"index;not null;size:36"`

	Text          string         `json:"question" gorm:"column:question;not null;size:2000"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer string         `json:"correct_answer,omitempty" gorm:"not null;size:500"`
	Type          QuestionType   `json:"type" gorm:"not null;size:30;default:MULTIPLE_CHOICE"`
	Marks         int            `json:"marks" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

type Score struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	ExamID string `json:"exam_id" gorm:"uniqueIndex:idx_scores_exam_student;not null;size:36"`

	StudentID string `json:"student_id" gorm:"uniqueIndex:idx_scores_exam_student;not null;size:36"`
	Student   *User  `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	Score      int     `json:"score" gorm:"not null;default:0"`
	Percentage float64 `json:"percentage" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Score) TableName() string {
	return "scores"
}
