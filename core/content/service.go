package content

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/sarvashiksha/backend/core"
	"github.com/sarvashiksha/backend/core/authz"
	"github.com/sarvashiksha/backend/core/user"
)

var (
	// errors
	ErrAssignmentNotFound = core.NewNotFoundError("assignment not found")
	ErrMaterialNotFound   = core.NewNotFoundError("material not found")

	ErrAssignmentHasSubmissions = core.NewConflictError("assignment has submissions and cannot be deleted")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		QueryAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error)
		// DeleteAssignment fails with ErrAssignmentHasSubmissions once a student submitted it.
		DeleteAssignment(ctx context.Context, id string) error

		CreateMaterial(ctx context.Context, m Material) (Material, error)
		GetMaterial(ctx context.Context, id string) (Material, error)
		QueryMaterials(ctx context.Context, classID string) ([]Material, error)
		DeleteMaterial(ctx context.Context, id string) error
	}

	Roster interface {
		ListStudents(ctx context.Context, classID string) ([]user.User, error)
	}

	Notifier interface {
		Notify(ctx context.Context, userID, title, message, link string) error
	}
)

type Service struct {
	repo     Repository
	roster   Roster
	az       *authz.Authorizer
	notifier Notifier
	logger   core.Logger
	nowFunc  func() time.Time
}

func NewService(
	repo Repository,
	roster Roster,
	az *authz.Authorizer,
	notifier Notifier,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		roster:   roster,
		az:       az,
		notifier: notifier,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

func (svc *Service) now() time.Time { return svc.nowFunc().UTC() }

// CreateAssignment adds a validated assignment to a class owned by teacher,
// then lets the enrolled students know about it.
func (svc *Service) CreateAssignment(ctx context.Context, teacher user.User, classID string, na NewAssignment) (Assignment, error) {
	if err := svc.az.Authorize(ctx, teacher, authz.ManageClass, classID); err != nil {
		return Assignment{}, err
	}

	now := svc.now()
	a := Assignment{
		ClassID:     classID,
		TeacherID:   teacher.ID,
		Title:       na.Title,
		Description: na.Description,
		Type:        na.Type,
		QuizData:    na.QuizData,
		DueDate:     na.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.Type == TypeFile || a.QuizData.Questions == nil {
		a.QuizData = QuizData{Questions: []Question{}}
	}
	if a.DueDate != nil {
		due := a.DueDate.UTC()
		a.DueDate = &due
	}

	a, err := svc.repo.CreateAssignment(ctx, a)
	if err != nil {
		return Assignment{}, err
	}
	svc.notifyStudents(ctx, a)
	return a, nil
}

func (svc *Service) notifyStudents(ctx context.Context, a Assignment) {
	students, err := svc.roster.ListStudents(ctx, a.ClassID)
	if err != nil {
		svc.logger.Warn("content.CreateAssignment: listing students", errors.Wrap(err, "listing students"))
		return
	}
	msg := fmt.Sprintf("A new assignment was posted: %s.", a.Title)
	for _, s := range students {
		if err = svc.notifier.Notify(ctx, s.ID, "New assignment", msg, "/student/assessment/"+a.ID); err != nil {
			svc.logger.Warn("content.CreateAssignment: notifying student", errors.Wrap(err, "notifying student"))
		}
	}
}

// GetAssignment returns the assignment to the class owner, or to an enrolled student without the answers.
func (svc *Service) GetAssignment(ctx context.Context, actor user.User, id string) (Assignment, error) {
	if err := svc.az.Authorize(ctx, actor, authz.ViewAssignment, id); err != nil {
		return Assignment{}, err
	}
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if actor.IsStudent() {
		return ForStudent(a), nil
	}
	return a, nil
}

func (svc *Service) ListAssignments(ctx context.Context, actor user.User, classID string) ([]Assignment, error) {
	if err := svc.az.Authorize(ctx, actor, authz.ViewClass, classID); err != nil {
		return nil, err
	}
	assignments, err := svc.repo.QueryAssignments(ctx, AssignmentFilter{ClassID: classID})
	if err != nil {
		return nil, err
	}
	if actor.IsStudent() {
		for i := range assignments {
			assignments[i] = ForStudent(assignments[i])
		}
	}
	return assignments, nil
}

// DeleteAssignment removes an assignment nobody submitted yet.
func (svc *Service) DeleteAssignment(ctx context.Context, teacher user.User, id string) error {
	if err := svc.az.Authorize(ctx, teacher, authz.ManageAssignment, id); err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(ctx, id)
}

func (svc *Service) CreateMaterial(ctx context.Context, teacher user.User, classID string, nm NewMaterial) (Material, error) {
	if err := svc.az.Authorize(ctx, teacher, authz.ManageClass, classID); err != nil {
		return Material{}, err
	}
	return svc.repo.CreateMaterial(ctx, Material{
		ClassID:     classID,
		TeacherID:   teacher.ID,
		Title:       nm.Title,
		Description: nm.Description,
		URL:         nm.URL,
		CreatedAt:   svc.now(),
	})
}

func (svc *Service) ListMaterials(ctx context.Context, actor user.User, classID string) ([]Material, error) {
	if err := svc.az.Authorize(ctx, actor, authz.ViewClass, classID); err != nil {
		return nil, err
	}
	return svc.repo.QueryMaterials(ctx, classID)
}

func (svc *Service) DeleteMaterial(ctx context.Context, teacher user.User, id string) error {
	m, err := svc.repo.GetMaterial(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.az.Authorize(ctx, teacher, authz.ManageClass, m.ClassID); err != nil {
		return err
	}
	return svc.repo.DeleteMaterial(ctx, id)
}
