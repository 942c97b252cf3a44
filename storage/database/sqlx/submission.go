package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sarvashiksha/backend/core/submission"
	"github.com/sarvashiksha/backend/storage/database"
)

const submissionColumns = `id, assignment_id, student_id, response_kind, COALESCE(answers, '[]'::jsonb) AS answers,
	score, total_score, text_submission, grade, feedback, submitted_at, graded_at`

type submissionRow struct {
	ID             string         `db:"id"`
	AssignmentID   string         `db:"assignment_id"`
	StudentID      string         `db:"student_id"`
	ResponseKind   string         `db:"response_kind"`
	Answers        types.JSONText `db:"answers"`
	Score          null.Int       `db:"score"`
	TotalScore     null.Int       `db:"total_score"`
	TextSubmission null.String    `db:"text_submission"`
	Grade          null.Float64   `db:"grade"`
	Feedback       string         `db:"feedback"`
	SubmittedAt    time.Time      `db:"submitted_at"`
	GradedAt       null.Time      `db:"graded_at"`
}

func (r submissionRow) toSubmission() (submission.Submission, error) {
	s := submission.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Grade:        r.Grade.Ptr(),
		Feedback:     r.Feedback,
		SubmittedAt:  r.SubmittedAt.UTC(),
	}
	if r.GradedAt.Valid {
		gradedAt := r.GradedAt.Time.UTC()
		s.GradedAt = &gradedAt
	}

	switch r.ResponseKind {
	case submission.KindQuiz:
		var answers []string
		if err := r.Answers.Unmarshal(&answers); err != nil {
			return submission.Submission{}, errors.Wrap(err, "decoding answers")
		}
		s.Response = submission.QuizResponse{Answers: answers, Score: r.Score.Int, TotalScore: r.TotalScore.Int}
	default:
		s.Response = submission.TextResponse{Text: r.TextSubmission.String}
	}
	return s, nil
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (repo submissionRepository) CreateSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	s.ID = uuid.New().String()

	var (
		answers           interface{}
		score, totalScore null.Int
		text              null.String
	)
	switch resp := s.Response.(type) {
	case submission.QuizResponse:
		data, err := json.Marshal(resp.Answers)
		if err != nil {
			return submission.Submission{}, errors.Wrap(err, "encoding answers")
		}
		answers = types.JSONText(data)
		score = null.IntFrom(resp.Score)
		totalScore = null.IntFrom(resp.TotalScore)
	case submission.TextResponse:
		text = null.StringFrom(resp.Text)
	default:
		return submission.Submission{}, errors.New("unknown submission response")
	}

	q := `INSERT INTO submission (id, assignment_id, student_id, response_kind, answers, score, total_score,
			text_submission, grade, feedback, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, q,
		s.ID, s.AssignmentID, s.StudentID, s.Response.Kind(), answers, score, totalScore,
		text, null.Float64FromPtr(s.Grade), s.Feedback, s.SubmittedAt.UTC())
	if err != nil {
		if database.IsUniqueViolation(err, "submission_assignment_student_key") {
			return submission.Submission{}, submission.ErrAlreadySubmitted
		}
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return s, nil
}

func (repo submissionRepository) getOne(ctx context.Context, cond string, args ...interface{}) (submission.Submission, error) {
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+submissionColumns+` FROM submission WHERE `+cond, args...); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, submission.ErrNotFound, "finding submission")
	}
	return row.toSubmission()
}

func (repo submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	if !isUUID(id) {
		return submission.Submission{}, submission.ErrNotFound
	}
	return repo.getOne(ctx, "id = $1", id)
}

func (repo submissionRepository) GetSubmissionFor(ctx context.Context, assignmentID, studentID string) (submission.Submission, error) {
	if !isUUID(assignmentID, studentID) {
		return submission.Submission{}, submission.ErrNotFound
	}
	return repo.getOne(ctx, "assignment_id = $1 AND student_id = $2", assignmentID, studentID)
}

func (repo submissionRepository) QuerySubmissions(ctx context.Context, filter submission.Filter) ([]submission.Submission, error) {
	var w where
	if filter.AssignmentID != "" {
		if !isUUID(filter.AssignmentID) {
			return []submission.Submission{}, nil
		}
		w.add("assignment_id = ?", filter.AssignmentID)
	}
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []submission.Submission{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}

	var rows []submissionRow
	q := `SELECT ` + submissionColumns + ` FROM submission` + w.String() + ` ORDER BY submitted_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]submission.Submission, 0, len(rows))
	for _, r := range rows {
		s, err := r.toSubmission()
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}

func (repo submissionRepository) UpdateGrade(ctx context.Context, id string, grade float64, feedback string, gradedAt time.Time) (submission.Submission, error) {
	if !isUUID(id) {
		return submission.Submission{}, submission.ErrNotFound
	}
	var row submissionRow
	q := `UPDATE submission SET grade = $2, feedback = $3, graded_at = $4 WHERE id = $1 RETURNING ` + submissionColumns
	if err := repo.db.GetContext(ctx, &row, q, id, grade, feedback, gradedAt.UTC()); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, submission.ErrNotFound, "grading submission")
	}
	return row.toSubmission()
}
