package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/submission"
)

type submissionRepository struct {
	db *DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func copySubmission(s *submission.Submission) submission.Submission {
	c := *s
	if quiz, ok := s.Response.(submission.QuizResponse); ok {
		quiz.Answers = append([]string{}, quiz.Answers...)
		c.Response = quiz
	}
	if s.Grade != nil {
		grade := *s.Grade
		c.Grade = &grade
	}
	if s.GradedAt != nil {
		gradedAt := *s.GradedAt
		c.GradedAt = &gradedAt
	}
	return c
}

// CreateSubmission checks & inserts under one write lock, so concurrent submits of the same student
// for the same assignment yield exactly one submission.
func (repo *submissionRepository) CreateSubmission(_ context.Context, s submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.assignments[s.AssignmentID]; !ok {
		return submission.Submission{}, content.ErrAssignmentNotFound
	}
	for _, existing := range repo.db.submissions {
		if existing.AssignmentID == s.AssignmentID && existing.StudentID == s.StudentID {
			return submission.Submission{}, submission.ErrAlreadySubmitted
		}
	}
	s.ID = repo.db.newID()
	stored := copySubmission(&s)
	repo.db.submissions[s.ID] = &stored
	return copySubmission(&stored), nil
}

func (repo *submissionRepository) GetSubmission(_ context.Context, id string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.submissions[id]; ok {
		return copySubmission(s), nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) GetSubmissionFor(_ context.Context, assignmentID, studentID string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return copySubmission(s), nil
		}
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) QuerySubmissions(_ context.Context, filter submission.Filter) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, s := range repo.db.submissions {
		if filter.AssignmentID != "" && s.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && s.StudentID != filter.StudentID {
			continue
		}
		subs = append(subs, copySubmission(s))
	}
	sort.Slice(subs, func(i, j int) bool { return repo.db.before(subs[j].ID, subs[i].ID) })
	return subs, nil
}

func (repo *submissionRepository) UpdateGrade(_ context.Context, id string, grade float64, feedback string, gradedAt time.Time) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.submissions[id]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	gradedAt = gradedAt.UTC()
	s.Grade = &grade
	s.Feedback = feedback
	s.GradedAt = &gradedAt
	return copySubmission(s), nil
}
