package inmemdb

import (
	"context"

	"github.com/sarvashiksha/backend/core/dashboard"
)

type dashboardRepository struct {
	db *DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) TeacherStats(_ context.Context, teacherID string) (dashboard.TeacherStats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats dashboard.TeacherStats
	owned := make(map[string]bool)
	students := make(map[string]bool)
	for _, cls := range repo.db.classes {
		if cls.TeacherID != teacherID {
			continue
		}
		owned[cls.ID] = true
		stats.Classes++
		for _, id := range cls.StudentIDs {
			students[id] = true
		}
	}
	stats.Students = len(students)

	assignments := make(map[string]bool)
	for _, a := range repo.db.assignments {
		if owned[a.ClassID] {
			assignments[a.ID] = true
			stats.Assignments++
		}
	}
	for _, s := range repo.db.submissions {
		if assignments[s.AssignmentID] && !s.IsGraded() {
			stats.PendingGrading++
		}
	}
	return stats, nil
}

func (repo *dashboardRepository) StudentStats(_ context.Context, studentID string) (dashboard.StudentStats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats dashboard.StudentStats
	enrolled := make(map[string]bool)
	for _, cls := range repo.db.classes {
		if cls.HasStudent(studentID) {
			enrolled[cls.ID] = true
			stats.Classes++
		}
	}

	visible := make(map[string]bool)
	for _, a := range repo.db.assignments {
		if enrolled[a.ClassID] {
			visible[a.ID] = true
			stats.Assignments++
		}
	}

	var sum float64
	var graded int
	for _, s := range repo.db.submissions {
		if s.StudentID != studentID || !visible[s.AssignmentID] {
			continue
		}
		stats.Submitted++
		if s.Grade != nil {
			sum += *s.Grade
			graded++
		}
	}
	if graded > 0 {
		avg := sum / float64(graded)
		stats.AverageGrade = &avg
	}
	return stats, nil
}
