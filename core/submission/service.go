package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/sarvashiksha/backend/core"
	"github.com/sarvashiksha/backend/core/authz"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/user"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("submission not found")
	ErrAlreadySubmitted = core.NewConflictError("assignment already submitted")
)

type (
	Repository interface {
		// CreateSubmission fails with ErrAlreadySubmitted when the student already has a submission
		// for the assignment. The storage uniqueness constraint is the authority.
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		// GetSubmissionFor fails with ErrNotFound when the student has not submitted.
		GetSubmissionFor(ctx context.Context, assignmentID, studentID string) (Submission, error)
		QuerySubmissions(ctx context.Context, filter Filter) ([]Submission, error)
		UpdateGrade(ctx context.Context, id string, grade float64, feedback string, gradedAt time.Time) (Submission, error)
	}

	Assignments interface {
		GetAssignment(ctx context.Context, id string) (content.Assignment, error)
	}

	RosterSource interface {
		ListStudents(ctx context.Context, classID string) ([]user.User, error)
	}

	Notifier interface {
		Notify(ctx context.Context, userID, title, message, link string) error
	}
)

type Service struct {
	repo        Repository
	assignments Assignments
	roster      RosterSource
	az          *authz.Authorizer
	notifier    Notifier
	validate    *validator.Validate
	logger      core.Logger
	nowFunc     func() time.Time
}

func NewService(
	repo Repository,
	assignments Assignments,
	roster RosterSource,
	az *authz.Authorizer,
	notifier Notifier,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
		roster:      roster,
		az:          az,
		notifier:    notifier,
		validate:    validate,
		logger:      logger,
		nowFunc:     time.Now,
	}
}

func (svc *Service) now() time.Time { return svc.nowFunc().UTC() }

// Submit stores the only submission of student for an assignment, auto-scoring quizzes.
func (svc *Service) Submit(ctx context.Context, student user.User, assignmentID string, req SubmitRequest) (Submission, error) {
	a, err := svc.assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	if err = svc.az.Authorize(ctx, student, authz.SubmitAssignment, a.ID); err != nil {
		return Submission{}, err
	}

	if _, err = svc.repo.GetSubmissionFor(ctx, a.ID, student.ID); err == nil {
		return Submission{}, ErrAlreadySubmitted
	} else if errors.Cause(err) != ErrNotFound {
		return Submission{}, errors.Wrap(err, "looking up existing submission")
	}

	resp, err := req.response(a)
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{
		AssignmentID: a.ID,
		StudentID:    student.ID,
		Response:     resp,
		SubmittedAt:  svc.now(),
	}
	if quiz, ok := resp.(QuizResponse); ok {
		sub.Grade = Percentage(quiz.Score, quiz.TotalScore)
	}

	sub, err = svc.repo.CreateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, err
	}

	msg := fmt.Sprintf("%s turned in %s.", student.Name, a.Title)
	if err = svc.notifier.Notify(ctx, a.TeacherID, "New submission", msg, "/teacher/assignments/"+a.ID+"/submissions"); err != nil {
		svc.logger.Warn("submission.Submit: notifying teacher", errors.Wrap(err, "notifying teacher"))
	}
	return sub, nil
}

// Get returns the submission of student for an assignment.
func (svc *Service) Get(ctx context.Context, student user.User, assignmentID string) (Submission, error) {
	return svc.repo.GetSubmissionFor(ctx, assignmentID, student.ID)
}

// Grade sets the grade & feedback of a submission of one of teacher's assignments.
// Grading again overwrites the previous grade, feedback & gradedAt.
func (svc *Service) Grade(ctx context.Context, teacher user.User, submissionID string, req GradeRequest) (Submission, error) {
	if err := svc.az.Authorize(ctx, teacher, authz.GradeSubmission, submissionID); err != nil {
		return Submission{}, err
	}
	if err := req.Validate(svc.validate); err != nil {
		return Submission{}, err
	}

	var feedback string
	if req.Feedback != nil {
		feedback = *req.Feedback
	}
	sub, err := svc.repo.UpdateGrade(ctx, submissionID, *req.Grade, feedback, svc.now())
	if err != nil {
		return Submission{}, err
	}

	msg := fmt.Sprintf("Your submission was graded: %g/100.", *sub.Grade)
	if err = svc.notifier.Notify(ctx, sub.StudentID, "Submission graded", msg, "/student/assessment/"+sub.AssignmentID+"/submission"); err != nil {
		svc.logger.Warn("submission.Grade: notifying student", errors.Wrap(err, "notifying student"))
	}
	return sub, nil
}

// ListForAssignment returns the roster view of an assignment to the owner of its class:
// every enrolled student with their submission status, and the summary counts.
func (svc *Service) ListForAssignment(ctx context.Context, teacher user.User, assignmentID string) (Roster, error) {
	if err := svc.az.Authorize(ctx, teacher, authz.ViewSubmissions, assignmentID); err != nil {
		return Roster{}, err
	}
	a, err := svc.assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Roster{}, err
	}
	students, err := svc.roster.ListStudents(ctx, a.ClassID)
	if err != nil {
		return Roster{}, errors.Wrap(err, "listing students")
	}
	subs, err := svc.repo.QuerySubmissions(ctx, Filter{AssignmentID: a.ID})
	if err != nil {
		return Roster{}, errors.Wrap(err, "querying submissions")
	}

	entries, summary := BuildRoster(students, subs)
	return Roster{Assignment: a, Entries: entries, Summary: summary}, nil
}

// ListForStudent returns the submission history of student.
func (svc *Service) ListForStudent(ctx context.Context, student user.User) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, Filter{StudentID: student.ID})
}
