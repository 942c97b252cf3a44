package submission

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sarvashiksha/backend/core"
	"github.com/sarvashiksha/backend/core/content"
)

// Response kinds
const (
	KindQuiz = "quiz"
	KindText = "text"
)

// Response is what a student turned in: a QuizResponse or a TextResponse.
type Response interface {
	Kind() string
}

type (
	// QuizResponse holds the selected answers, in question order, and their auto-computed score.
	QuizResponse struct {
		Answers    []string
		Score      int
		TotalScore int
	}

	// TextResponse holds a free-text answer waiting for a teacher's grade.
	TextResponse struct {
		Text string
	}
)

func (QuizResponse) Kind() string { return KindQuiz }
func (TextResponse) Kind() string { return KindText }

// Submission is the single response of a student to an assignment.
type Submission struct {
	ID           string
	AssignmentID string
	StudentID    string
	Response     Response
	Grade        *float64 // percentage; nil until scored or graded
	Feedback     string
	SubmittedAt  time.Time  // UTC
	GradedAt     *time.Time // UTC; set when a teacher grades
}

func (s Submission) IsGraded() bool { return s.GradedAt != nil }

type submissionJSON struct {
	ID             string     `json:"id"`
	AssignmentID   string     `json:"assignmentId"`
	StudentID      string     `json:"studentId"`
	Answers        *[]string  `json:"answers,omitempty"` // set, possibly empty, for quiz submissions
	Score          *int       `json:"score,omitempty"`
	TotalScore     *int       `json:"totalScore,omitempty"`
	TextSubmission *string    `json:"textSubmission,omitempty"`
	Grade          *float64   `json:"grade"`
	Feedback       string     `json:"feedback"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	GradedAt       *time.Time `json:"gradedAt"`
}

// MarshalJSON flattens the Response: quiz submissions carry answers/score/totalScore,
// text submissions carry textSubmission.
func (s Submission) MarshalJSON() ([]byte, error) {
	sj := submissionJSON{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		StudentID:    s.StudentID,
		Grade:        s.Grade,
		Feedback:     s.Feedback,
		SubmittedAt:  s.SubmittedAt,
		GradedAt:     s.GradedAt,
	}
	switch resp := s.Response.(type) {
	case QuizResponse:
		answers := resp.Answers
		if answers == nil {
			answers = []string{}
		}
		sj.Answers = &answers
		sj.Score = &resp.Score
		sj.TotalScore = &resp.TotalScore
	case TextResponse:
		sj.TextSubmission = &resp.Text
	}
	return json.Marshal(sj)
}

func (s *Submission) UnmarshalJSON(data []byte) error {
	var sj submissionJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}
	*s = Submission{
		ID:           sj.ID,
		AssignmentID: sj.AssignmentID,
		StudentID:    sj.StudentID,
		Grade:        sj.Grade,
		Feedback:     sj.Feedback,
		SubmittedAt:  sj.SubmittedAt,
		GradedAt:     sj.GradedAt,
	}
	switch {
	case sj.Score != nil:
		resp := QuizResponse{Answers: []string{}, Score: *sj.Score}
		if sj.Answers != nil {
			resp.Answers = *sj.Answers
		}
		if sj.TotalScore != nil {
			resp.TotalScore = *sj.TotalScore
		}
		s.Response = resp
	case sj.TextSubmission != nil:
		s.Response = TextResponse{Text: *sj.TextSubmission}
	}
	return nil
}

// SubmitRequest is the student payload: answers for quizzes, textSubmission otherwise.
type SubmitRequest struct {
	Answers        []string `json:"answers"`
	TextSubmission *string  `json:"textSubmission"`
}

var (
	errAnswersRequired = core.NewValidationError(nil, core.FieldError{Field: "answers", Error: "answers are required for a quiz"})
	errTextRequired    = core.NewValidationError(nil, core.FieldError{Field: "textSubmission", Error: "textSubmission is required for this assignment"})
	errTooManyAnswers  = core.NewValidationError(nil, core.FieldError{Field: "answers", Error: "more answers than questions"})
)

// response builds the Response matching the assignment type, scoring quizzes.
func (sr SubmitRequest) response(a content.Assignment) (Response, error) {
	if a.IsQuiz() {
		if sr.Answers == nil || sr.TextSubmission != nil {
			return nil, errAnswersRequired
		}
		if len(sr.Answers) > len(a.QuizData.Questions) {
			return nil, errTooManyAnswers
		}
		score, total := Score(a.QuizData.Questions, sr.Answers)
		return QuizResponse{Answers: sr.Answers, Score: score, TotalScore: total}, nil
	}
	if sr.TextSubmission == nil || sr.Answers != nil || core.CleanString(*sr.TextSubmission) == "" {
		return nil, errTextRequired
	}
	return TextResponse{Text: *sr.TextSubmission}, nil
}

// GradeRequest is a teacher's grade (0-100) & optional feedback.
type GradeRequest struct {
	Grade    *float64 `json:"grade" validate:"required,min=0,max=100"`
	Feedback *string  `json:"feedback"`
}

func (gr *GradeRequest) Validate(validate *validator.Validate) error {
	if gr.Feedback != nil {
		fb := core.CleanString(*gr.Feedback)
		gr.Feedback = &fb
	}
	return validate.Struct(gr)
}

type Filter struct {
	AssignmentID string
	StudentID    string
}
