// Package authz answers "may this user act on this resource?" by walking the ownership chain
// (submission → assignment → class → teacher) from storage on every call.
// Client supplied class or teacher references are never trusted.
package authz

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sarvashiksha/backend/core"
	"github.com/sarvashiksha/backend/core/user"
)

var ErrForbidden = core.NewForbiddenError("permission denied")

type Action int

const (
	// ManageClass allows the class owner to edit the class, its roster & its content.
	ManageClass Action = iota
	// ViewClass allows the class owner & enrolled students to read the class.
	ViewClass
	// ManageAssignment allows the assignment author to change or delete it.
	ManageAssignment
	// ViewAssignment allows the class owner & enrolled students to read an assignment.
	ViewAssignment
	// ViewSubmissions allows the owner of the assignment's class to read its roster & submissions.
	ViewSubmissions
	// SubmitAssignment allows a student enrolled in the assignment's class to turn it in.
	SubmitAssignment
	// GradeSubmission allows the author of the submission's assignment to grade it.
	GradeSubmission
)

func (a Action) String() string {
	switch a {
	case ManageClass:
		return "manage class"
	case ViewClass:
		return "view class"
	case ManageAssignment:
		return "manage assignment"
	case ViewAssignment:
		return "view assignment"
	case ViewSubmissions:
		return "view submissions"
	case SubmitAssignment:
		return "submit assignment"
	case GradeSubmission:
		return "grade submission"
	default:
		return "unknown"
	}
}

type (
	AssignmentRef struct {
		ID        string
		ClassID   string
		TeacherID string // author, not necessarily the class owner
	}

	SubmissionRef struct {
		ID           string
		AssignmentID string
		StudentID    string
	}

	// Registry resolves ownership links. Unknown IDs must yield the owning package's NotFound error.
	Registry interface {
		ClassOwnerID(ctx context.Context, classID string) (string, error)
		IsEnrolled(ctx context.Context, classID, studentID string) (bool, error)
		AssignmentRef(ctx context.Context, assignmentID string) (AssignmentRef, error)
		SubmissionRef(ctx context.Context, submissionID string) (SubmissionRef, error)
	}
)

type Authorizer struct {
	reg Registry
}

func NewAuthorizer(reg Registry) *Authorizer {
	return &Authorizer{reg: reg}
}

// Authorize returns nil when actor may perform action on the resource identified by resourceID:
// a class ID for ManageClass/ViewClass, a submission ID for GradeSubmission and an assignment ID otherwise.
func (az *Authorizer) Authorize(ctx context.Context, actor user.User, action Action, resourceID string) error {
	if !actor.IsActive {
		return ErrForbidden
	}

	switch action {
	case ManageClass:
		return az.classOwner(ctx, actor, resourceID)
	case ViewClass:
		return az.classMember(ctx, actor, resourceID)
	case ManageAssignment:
		ref, err := az.reg.AssignmentRef(ctx, resourceID)
		if err != nil {
			return errors.Wrap(err, "resolving assignment")
		}
		return allowIf(actor.IsTeacher() && ref.TeacherID == actor.ID)
	case ViewAssignment:
		ref, err := az.reg.AssignmentRef(ctx, resourceID)
		if err != nil {
			return errors.Wrap(err, "resolving assignment")
		}
		return az.classMember(ctx, actor, ref.ClassID)
	case ViewSubmissions:
		ref, err := az.reg.AssignmentRef(ctx, resourceID)
		if err != nil {
			return errors.Wrap(err, "resolving assignment")
		}
		return az.classOwner(ctx, actor, ref.ClassID)
	case SubmitAssignment:
		ref, err := az.reg.AssignmentRef(ctx, resourceID)
		if err != nil {
			return errors.Wrap(err, "resolving assignment")
		}
		if !actor.IsStudent() {
			return ErrForbidden
		}
		return az.enrolled(ctx, actor, ref.ClassID)
	case GradeSubmission:
		sub, err := az.reg.SubmissionRef(ctx, resourceID)
		if err != nil {
			return errors.Wrap(err, "resolving submission")
		}
		ref, err := az.reg.AssignmentRef(ctx, sub.AssignmentID)
		if err != nil {
			return errors.Wrap(err, "resolving assignment")
		}
		return allowIf(actor.IsTeacher() && ref.TeacherID == actor.ID)
	default:
		return ErrForbidden
	}
}

func (az *Authorizer) classOwner(ctx context.Context, actor user.User, classID string) error {
	ownerID, err := az.reg.ClassOwnerID(ctx, classID)
	if err != nil {
		return errors.Wrap(err, "resolving class owner")
	}
	return allowIf(actor.IsTeacher() && ownerID == actor.ID)
}

func (az *Authorizer) classMember(ctx context.Context, actor user.User, classID string) error {
	ownerID, err := az.reg.ClassOwnerID(ctx, classID)
	if err != nil {
		return errors.Wrap(err, "resolving class owner")
	}
	if actor.IsTeacher() {
		return allowIf(ownerID == actor.ID)
	}
	if actor.IsStudent() {
		return az.enrolled(ctx, actor, classID)
	}
	return ErrForbidden
}

func (az *Authorizer) enrolled(ctx context.Context, actor user.User, classID string) error {
	ok, err := az.reg.IsEnrolled(ctx, classID, actor.ID)
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	return allowIf(ok)
}

func allowIf(ok bool) error {
	if ok {
		return nil
	}
	return ErrForbidden
}
