package inmemdb

import (
	"context"

	"github.com/sarvashiksha/backend/core/authz"
	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/submission"
)

type registry struct {
	db *DB
}

var _ authz.Registry = (*registry)(nil) // interface compliance check

func NewRegistry(db *DB) *registry {
	return &registry{db: db}
}

func (reg *registry) ClassOwnerID(_ context.Context, classID string) (string, error) {
	reg.db.RLock()
	defer reg.db.RUnlock()

	if cls, ok := reg.db.classes[classID]; ok {
		return cls.TeacherID, nil
	}
	return "", class.ErrNotFound
}

func (reg *registry) IsEnrolled(_ context.Context, classID, studentID string) (bool, error) {
	reg.db.RLock()
	defer reg.db.RUnlock()

	if cls, ok := reg.db.classes[classID]; ok {
		return cls.HasStudent(studentID), nil
	}
	return false, nil
}

func (reg *registry) AssignmentRef(_ context.Context, assignmentID string) (authz.AssignmentRef, error) {
	reg.db.RLock()
	defer reg.db.RUnlock()

	a, ok := reg.db.assignments[assignmentID]
	if !ok {
		return authz.AssignmentRef{}, content.ErrAssignmentNotFound
	}
	return authz.AssignmentRef{ID: a.ID, ClassID: a.ClassID, TeacherID: a.TeacherID}, nil
}

func (reg *registry) SubmissionRef(_ context.Context, submissionID string) (authz.SubmissionRef, error) {
	reg.db.RLock()
	defer reg.db.RUnlock()

	if s, ok := reg.db.submissions[submissionID]; ok {
		return authz.SubmissionRef{ID: s.ID, AssignmentID: s.AssignmentID, StudentID: s.StudentID}, nil
	}
	return authz.SubmissionRef{}, submission.ErrNotFound
}
