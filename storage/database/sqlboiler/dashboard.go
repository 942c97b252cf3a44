// Package boiledrepos holds the report queries bound with sqlboiler.
package boiledrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/sarvashiksha/backend/core/dashboard"
)

const (
	teacherStatsQuery = `SELECT
	(SELECT count(*) FROM class WHERE teacher_id = $1) AS classes,
	(SELECT count(DISTINCT cs.student_id) FROM class_student cs JOIN class c ON c.id = cs.class_id
		WHERE c.teacher_id = $1) AS students,
	(SELECT count(*) FROM assignment a JOIN class c ON c.id = a.class_id WHERE c.teacher_id = $1) AS assignments,
	(SELECT count(*) FROM submission s
		JOIN assignment a ON a.id = s.assignment_id
		JOIN class c ON c.id = a.class_id
		WHERE c.teacher_id = $1 AND s.graded_at IS NULL) AS pending_grading`

	studentStatsQuery = `SELECT
	(SELECT count(*) FROM class_student WHERE student_id = $1) AS classes,
	(SELECT count(*) FROM assignment a JOIN class_student cs ON cs.class_id = a.class_id
		WHERE cs.student_id = $1) AS assignments,
	(SELECT count(*) FROM submission s
		JOIN assignment a ON a.id = s.assignment_id
		JOIN class_student cs ON cs.class_id = a.class_id AND cs.student_id = s.student_id
		WHERE s.student_id = $1) AS submitted,
	(SELECT avg(s.grade) FROM submission s
		JOIN assignment a ON a.id = s.assignment_id
		JOIN class_student cs ON cs.class_id = a.class_id AND cs.student_id = s.student_id
		WHERE s.student_id = $1 AND s.grade IS NOT NULL) AS average_grade`
)

type dashboardRepository struct {
	exec boil.ContextExecutor
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(exec boil.ContextExecutor) *dashboardRepository {
	return &dashboardRepository{exec: exec}
}

func (repo dashboardRepository) TeacherStats(ctx context.Context, teacherID string) (dashboard.TeacherStats, error) {
	var stats dashboard.TeacherStats
	if err := queries.Raw(teacherStatsQuery, teacherID).Bind(ctx, repo.exec, &stats); err != nil {
		return dashboard.TeacherStats{}, errors.Wrap(err, "computing teacher stats")
	}
	return stats, nil
}

func (repo dashboardRepository) StudentStats(ctx context.Context, studentID string) (dashboard.StudentStats, error) {
	var stats dashboard.StudentStats
	if err := queries.Raw(studentStatsQuery, studentID).Bind(ctx, repo.exec, &stats); err != nil {
		return dashboard.StudentStats{}, errors.Wrap(err, "computing student stats")
	}
	return stats, nil
}
