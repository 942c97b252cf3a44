package class

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
	ErrNotFound        = core.NewNotFoundError("class not found")
	ErrAlreadyEnrolled = core.NewConflictError("student is already enrolled in this class")
	ErrNotEnrolled     = core.NewNotFoundError("student is not enrolled in this class")
	ErrCodeTaken       = core.NewConflictError("enrollment code already in use")
	ErrTeachersOnly    = core.NewForbiddenError("only teachers can create classes")
	ErrStudentsOnly    = core.NewForbiddenError("only students can join classes")
	ErrHasSubmissions  = core.NewConflictError("class has submitted assignments and cannot be deleted")
	ErrCodeExhausted   = errors.New("could not generate a unique enrollment code")
)

type (
	Repository interface {
		// CreateClass fails with ErrCodeTaken when the enrollment code is already used.
		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		GetClassByCode(ctx context.Context, code string) (Class, error)
		QueryClasses(ctx context.Context, filter QueryFilter) ([]Class, error)
		// UpdateClass fails with ErrCodeTaken when the enrollment code is already used.
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		// DeleteClass fails with ErrHasSubmissions when any of its assignments was submitted.
		DeleteClass(ctx context.Context, id string) error
		// AddStudent fails with ErrAlreadyEnrolled when the student is already in the class.
		AddStudent(ctx context.Context, classID, studentID string) error
		// RemoveStudent fails with ErrNotEnrolled when the student is not in the class.
		RemoveStudent(ctx context.Context, classID, studentID string) error
		ListStudents(ctx context.Context, classID string) ([]user.User, error)
	}

	Notifier interface {
		Notify(ctx context.Context, userID, title, message, link string) error
	}
)

type Service struct {
	repo         Repository
	az           *authz.Authorizer
	notifier     Notifier
	logger       core.Logger
	codeLen      int
	codeAttempts int
	genCode      func(n int) (string, error)
	nowFunc      func() time.Time
}

func NewService(
	repo Repository,
	az *authz.Authorizer,
	notifier Notifier,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:         repo,
		az:           az,
		notifier:     notifier,
		logger:       logger,
		codeLen:      conf.Classes.EnrollmentCodeLength,
		codeAttempts: conf.Classes.EnrollmentCodeAttempts,
		genCode:      generateCode,
		nowFunc:      time.Now,
	}
}

func (svc *Service) now() time.Time { return svc.nowFunc().UTC() }

// Create stores a new Class owned by teacher, with a fresh enrollment code.
func (svc *Service) Create(ctx context.Context, teacher user.User, nc NewClass) (Class, error) {
	if !teacher.IsTeacher() {
		return Class{}, ErrTeachersOnly
	}

	now := svc.now()
	cls := Class{
		TeacherID:   teacher.ID,
		Name:        nc.Name,
		Description: nc.Description,
		GradeLevel:  nc.GradeLevel,
		StudentIDs:  []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.withFreshCode(func(code string) (Class, error) {
		cls.EnrollmentCode = code
		return svc.repo.CreateClass(ctx, cls)
	})
}

// withFreshCode calls save with new codes until one is not taken, at most codeAttempts times.
func (svc *Service) withFreshCode(save func(code string) (Class, error)) (Class, error) {
	for i := 0; i < svc.codeAttempts; i++ {
		code, err := svc.genCode(svc.codeLen)
		if err != nil {
			return Class{}, errors.Wrap(err, "generating enrollment code")
		}
		cls, err := save(code)
		if err == nil {
			return cls, nil
		}
		if errors.Cause(err) != ErrCodeTaken {
			return Class{}, err
		}
	}
	return Class{}, ErrCodeExhausted
}

// Get returns the class to its owner or to one of its students; students get a trimmed copy.
func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Class, error) {
	if err := svc.az.Authorize(ctx, actor, authz.ViewClass, id); err != nil {
		return Class{}, err
	}
	cls, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if actor.IsStudent() {
		return cls.ForStudent(), nil
	}
	return cls, nil
}

func (svc *Service) ListForTeacher(ctx context.Context, teacherID string) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, QueryFilter{TeacherID: teacherID})
}

func (svc *Service) ListForStudent(ctx context.Context, studentID string) ([]Class, error) {
	classes, err := svc.repo.QueryClasses(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return nil, err
	}
	for i := range classes {
		classes[i] = classes[i].ForStudent()
	}
	return classes, nil
}

func (svc *Service) Update(ctx context.Context, teacher user.User, id string, uc UpdateClass) (Class, error) {
	if err := svc.az.Authorize(ctx, teacher, authz.ManageClass, id); err != nil {
		return Class{}, err
	}
	cls, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Name != "" {
		cls.Name = uc.Name
	}
	if uc.Description != nil {
		cls.Description = *uc.Description
	}
	if uc.GradeLevel != "" {
		cls.GradeLevel = uc.GradeLevel
	}
	cls.UpdatedAt = svc.now()
	return svc.repo.UpdateClass(ctx, cls)
}

// Delete removes the class along with its content. Classes with submissions are kept.
func (svc *Service) Delete(ctx context.Context, teacher user.User, id string) error {
	if err := svc.az.Authorize(ctx, teacher, authz.ManageClass, id); err != nil {
		return err
	}
	return svc.repo.DeleteClass(ctx, id)
}

// RegenerateCode gives the class a new enrollment code; the old one stops working.
func (svc *Service) RegenerateCode(ctx context.Context, teacher user.User, id string) (Class, error) {
	if err := svc.az.Authorize(ctx, teacher, authz.ManageClass, id); err != nil {
		return Class{}, err
	}
	cls, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	return svc.withFreshCode(func(code string) (Class, error) {
		cls.EnrollmentCode = code
		cls.UpdatedAt = svc.now()
		return svc.repo.UpdateClass(ctx, cls)
	})
}

// Enroll adds student to the class matching code and lets the class teacher know.
func (svc *Service) Enroll(ctx context.Context, student user.User, code string) (Class, error) {
	if !student.IsStudent() {
		return Class{}, ErrStudentsOnly
	}
	cls, err := svc.repo.GetClassByCode(ctx, normalizeCode(code))
	if err != nil {
		return Class{}, err
	}
	if err = svc.repo.AddStudent(ctx, cls.ID, student.ID); err != nil {
		return Class{}, err
	}

	msg := fmt.Sprintf("%s joined %s.", student.Name, cls.Name)
	if err = svc.notifier.Notify(ctx, cls.TeacherID, "New student", msg, "/teacher/classes/"+cls.ID); err != nil {
		svc.logger.Warn("class.Enroll: notifying teacher", errors.Wrap(err, "notifying teacher"))
	}

	cls.StudentIDs = append(cls.StudentIDs, student.ID)
	return cls.ForStudent(), nil
}

func (svc *Service) Leave(ctx context.Context, student user.User, classID string) error {
	if !student.IsStudent() {
		return ErrStudentsOnly
	}
	return svc.repo.RemoveStudent(ctx, classID, student.ID)
}

func (svc *Service) RemoveStudent(ctx context.Context, teacher user.User, classID, studentID string) error {
	if err := svc.az.Authorize(ctx, teacher, authz.ManageClass, classID); err != nil {
		return err
	}
	return svc.repo.RemoveStudent(ctx, classID, studentID)
}

// Students returns the class roster to its owner.
func (svc *Service) Students(ctx context.Context, teacher user.User, classID string) ([]user.User, error) {
	if err := svc.az.Authorize(ctx, teacher, authz.ManageClass, classID); err != nil {
		return nil, err
	}
	return svc.repo.ListStudents(ctx, classID)
}
