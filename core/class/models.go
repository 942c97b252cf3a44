package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sarvashiksha/backend/core"
)

type Class struct {
	ID             string    `json:"id"`
	TeacherID      string    `json:"teacherId"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	GradeLevel     string    `json:"gradeLevel"`
	EnrollmentCode string    `json:"enrollmentCode"`
	StudentIDs     []string  `json:"studentIds"`
	CreatedAt      time.Time `json:"createdAt"` // UTC
	UpdatedAt      time.Time `json:"updatedAt"` // UTC
}

func (c Class) HasStudent(studentID string) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// ForStudent hides the enrollment code & the rest of the roster from a student.
func (c Class) ForStudent() Class {
	c.EnrollmentCode = ""
	c.StudentIDs = nil
	return c
}

type NewClass struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description"`
	GradeLevel  string `json:"gradeLevel" validate:"required,gradelevel"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.GradeLevel = core.CleanString(nc.GradeLevel)
	return validate.Struct(nc)
}

// UpdateClass holds the editable fields of a Class; blank fields are left unchanged.
type UpdateClass struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	GradeLevel  string  `json:"gradeLevel" validate:"omitempty,gradelevel"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.GradeLevel = core.CleanString(uc.GradeLevel)
	if uc.Description != nil {
		desc := core.CleanString(*uc.Description)
		uc.Description = &desc
	}
	return validate.Struct(uc)
}

type JoinClass struct {
	EnrollmentCode string `json:"enrollmentCode" validate:"required,alphanum"`
}

func (jc *JoinClass) Validate(validate *validator.Validate) error {
	jc.EnrollmentCode = normalizeCode(jc.EnrollmentCode)
	return validate.Struct(jc)
}

type QueryFilter struct {
	TeacherID string
	StudentID string
}
