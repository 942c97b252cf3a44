package authz

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/sarvashiksha/backend/core"
	"github.com/sarvashiksha/backend/core/user"
)

var errUnknown = core.NewNotFoundError("unknown resource")

type fakeRegistry struct {
	owners      map[string]string          // classID: teacherID
	enrollments map[string]map[string]bool // classID: {studentID}
	assignments map[string]AssignmentRef
	submissions map[string]SubmissionRef
}

func (r fakeRegistry) ClassOwnerID(_ context.Context, classID string) (string, error) {
	if owner, ok := r.owners[classID]; ok {
		return owner, nil
	}
	return "", errUnknown
}

func (r fakeRegistry) IsEnrolled(_ context.Context, classID, studentID string) (bool, error) {
	return r.enrollments[classID][studentID], nil
}

func (r fakeRegistry) AssignmentRef(_ context.Context, id string) (AssignmentRef, error) {
	if ref, ok := r.assignments[id]; ok {
		return ref, nil
	}
	return AssignmentRef{}, errUnknown
}

func (r fakeRegistry) SubmissionRef(_ context.Context, id string) (SubmissionRef, error) {
	if ref, ok := r.submissions[id]; ok {
		return ref, nil
	}
	return SubmissionRef{}, errUnknown
}

func TestAuthorize(t *testing.T) {
	owner := user.User{ID: "t1", Role: user.RoleTeacher, IsActive: true}
	otherTeacher := user.User{ID: "t2", Role: user.RoleTeacher, IsActive: true}
	student := user.User{ID: "s1", Role: user.RoleStudent, IsActive: true}
	outsider := user.User{ID: "s2", Role: user.RoleStudent, IsActive: true}
	admin := user.User{ID: "a1", Role: user.RoleAdmin, IsActive: true}
	inactiveOwner := owner
	inactiveOwner.IsActive = false

	az := NewAuthorizer(fakeRegistry{
		owners:      map[string]string{"c1": "t1"},
		enrollments: map[string]map[string]bool{"c1": {"s1": true}},
		assignments: map[string]AssignmentRef{"a1": {ID: "a1", ClassID: "c1", TeacherID: "t1"}},
		submissions: map[string]SubmissionRef{"sub1": {ID: "sub1", AssignmentID: "a1", StudentID: "s1"}},
	})

	tests := []struct {
		name     string
		actor    user.User
		action   Action
		id       string
		wantKind core.Kind
		allowed  bool
	}{
		{name: "owner manages class", actor: owner, action: ManageClass, id: "c1", allowed: true},
		{name: "other teacher cannot manage class", actor: otherTeacher, action: ManageClass, id: "c1", wantKind: core.KindForbidden},
		{name: "inactive owner", actor: inactiveOwner, action: ManageClass, id: "c1", wantKind: core.KindForbidden},
		{name: "unknown class", actor: owner, action: ManageClass, id: "nope", wantKind: core.KindNotFound},
		{name: "enrolled student views class", actor: student, action: ViewClass, id: "c1", allowed: true},
		{name: "outsider cannot view class", actor: outsider, action: ViewClass, id: "c1", wantKind: core.KindForbidden},
		{name: "admin cannot view class", actor: admin, action: ViewClass, id: "c1", wantKind: core.KindForbidden},
		{name: "author manages assignment", actor: owner, action: ManageAssignment, id: "a1", allowed: true},
		{name: "other teacher cannot manage assignment", actor: otherTeacher, action: ManageAssignment, id: "a1", wantKind: core.KindForbidden},
		{name: "student views assignment", actor: student, action: ViewAssignment, id: "a1", allowed: true},
		{name: "outsider cannot view assignment", actor: outsider, action: ViewAssignment, id: "a1", wantKind: core.KindForbidden},
		{name: "unknown assignment", actor: student, action: ViewAssignment, id: "nope", wantKind: core.KindNotFound},
		{name: "owner views submissions", actor: owner, action: ViewSubmissions, id: "a1", allowed: true},
		{name: "other teacher cannot view submissions", actor: otherTeacher, action: ViewSubmissions, id: "a1", wantKind: core.KindForbidden},
		{name: "student cannot view submissions", actor: student, action: ViewSubmissions, id: "a1", wantKind: core.KindForbidden},
		{name: "enrolled student submits", actor: student, action: SubmitAssignment, id: "a1", allowed: true},
		{name: "outsider cannot submit", actor: outsider, action: SubmitAssignment, id: "a1", wantKind: core.KindForbidden},
		{name: "teacher cannot submit", actor: owner, action: SubmitAssignment, id: "a1", wantKind: core.KindForbidden},
		{name: "author grades", actor: owner, action: GradeSubmission, id: "sub1", allowed: true},
		{name: "other teacher cannot grade", actor: otherTeacher, action: GradeSubmission, id: "sub1", wantKind: core.KindForbidden},
		{name: "student cannot grade", actor: student, action: GradeSubmission, id: "sub1", wantKind: core.KindForbidden},
		{name: "unknown submission", actor: owner, action: GradeSubmission, id: "nope", wantKind: core.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := az.Authorize(context.Background(), tt.actor, tt.action, tt.id)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantKind, core.KindOf(err))
		})
	}
}

func TestAuthorizeKeepsCause(t *testing.T) {
	az := NewAuthorizer(fakeRegistry{})
	err := az.Authorize(context.Background(), user.User{ID: "t1", Role: user.RoleTeacher, IsActive: true}, ManageClass, "c1")
	assert.Equal(t, errUnknown, errors.Cause(err))
}
