package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sarvashiksha/backend/core/authz"
	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/submission"
)

// registry resolves ownership links straight from the tables, bypassing the domain repositories.
type registry struct {
	db *sqlx.DB
}

var _ authz.Registry = (*registry)(nil) // interface compliance check

func NewRegistry(db *sqlx.DB) *registry {
	return &registry{db: db}
}

func (reg registry) ClassOwnerID(ctx context.Context, classID string) (string, error) {
	if !isUUID(classID) {
		return "", class.ErrNotFound
	}
	var teacherID string
	if err := reg.db.GetContext(ctx, &teacherID, `SELECT teacher_id FROM class WHERE id = $1`, classID); err != nil {
		return "", trapNoRowsErr(err, class.ErrNotFound, "finding class owner")
	}
	return teacherID, nil
}

func (reg registry) IsEnrolled(ctx context.Context, classID, studentID string) (bool, error) {
	if !isUUID(classID, studentID) {
		return false, nil
	}
	var enrolled bool
	q := `SELECT EXISTS (SELECT 1 FROM class_student WHERE class_id = $1 AND student_id = $2)`
	if err := reg.db.GetContext(ctx, &enrolled, q, classID, studentID); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return enrolled, nil
}

func (reg registry) AssignmentRef(ctx context.Context, assignmentID string) (authz.AssignmentRef, error) {
	if !isUUID(assignmentID) {
		return authz.AssignmentRef{}, content.ErrAssignmentNotFound
	}
	var ref struct {
		ID        string `db:"id"`
		ClassID   string `db:"class_id"`
		TeacherID string `db:"teacher_id"`
	}
	q := `SELECT id, class_id, teacher_id FROM assignment WHERE id = $1`
	if err := reg.db.GetContext(ctx, &ref, q, assignmentID); err != nil {
		return authz.AssignmentRef{}, trapNoRowsErr(err, content.ErrAssignmentNotFound, "finding assignment ref")
	}
	return authz.AssignmentRef(ref), nil
}

func (reg registry) SubmissionRef(ctx context.Context, submissionID string) (authz.SubmissionRef, error) {
	if !isUUID(submissionID) {
		return authz.SubmissionRef{}, submission.ErrNotFound
	}
	var ref struct {
		ID           string `db:"id"`
		AssignmentID string `db:"assignment_id"`
		StudentID    string `db:"student_id"`
	}
	q := `SELECT id, assignment_id, student_id FROM submission WHERE id = $1`
	if err := reg.db.GetContext(ctx, &ref, q, submissionID); err != nil {
		return authz.SubmissionRef{}, trapNoRowsErr(err, submission.ErrNotFound, "finding submission ref")
	}
	return authz.SubmissionRef(ref), nil
}
