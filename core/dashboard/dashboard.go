// Package dashboard holds the read-only projections shown on the teacher & student home pages.
package dashboard

import (
	"context"

	"github.com/sarvashiksha/backend/core"
	"github.com/sarvashiksha/backend/core/user"
)

var ErrWrongRole = core.NewForbiddenError("no dashboard for this role")

type (
	TeacherStats struct {
		Classes        int `json:"classes" boil:"classes"`
		Students       int `json:"students" boil:"students"` // distinct, across classes
		Assignments    int `json:"assignments" boil:"assignments"`
		PendingGrading int `json:"pendingGrading" boil:"pending_grading"`
	}

	StudentStats struct {
		Classes      int      `json:"classes" boil:"classes"`
		Assignments  int      `json:"assignments" boil:"assignments"`
		Submitted    int      `json:"submitted" boil:"submitted"`
		Pending      int      `json:"pending" boil:"pending"`
		AverageGrade *float64 `json:"averageGrade" boil:"average_grade"` // over graded or scored submissions
	}

	Repository interface {
		TeacherStats(ctx context.Context, teacherID string) (TeacherStats, error)
		StudentStats(ctx context.Context, studentID string) (StudentStats, error)
	}
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Teacher(ctx context.Context, teacher user.User) (TeacherStats, error) {
	if !teacher.IsTeacher() {
		return TeacherStats{}, ErrWrongRole
	}
	return svc.repo.TeacherStats(ctx, teacher.ID)
}

func (svc *Service) Student(ctx context.Context, student user.User) (StudentStats, error) {
	if !student.IsStudent() {
		return StudentStats{}, ErrWrongRole
	}
	stats, err := svc.repo.StudentStats(ctx, student.ID)
	if err != nil {
		return StudentStats{}, err
	}
	stats.Pending = stats.Assignments - stats.Submitted
	if stats.Pending < 0 {
		stats.Pending = 0
	}
	return stats, nil
}
