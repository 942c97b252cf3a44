package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sarvashiksha/backend/core"
)

// Assignment types
const (
	TypeFile       = "file"
	TypeManualQuiz = "manual-quiz"
	TypeTextToQuiz = "text-to-quiz"
)

var AssignmentTypes = []string{TypeFile, TypeManualQuiz, TypeTextToQuiz}

func IsAssignmentType(typ string) bool {
	for _, t := range AssignmentTypes {
		if t == typ {
			return true
		}
	}
	return false
}

type (
	Question struct {
		Prompt        string   `json:"prompt" validate:"required,notblank"`
		Options       []string `json:"options" validate:"required,min=2,dive,notblank"`
		CorrectAnswer string   `json:"correctAnswer,omitempty" validate:"required"`
	}

	QuizData struct {
		Questions []Question `json:"questions" validate:"dive"`
	}

	Assignment struct {
		ID          string     `json:"id"`
		ClassID     string     `json:"classId"`
		TeacherID   string     `json:"teacherId"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Type        string     `json:"assignmentType"`
		QuizData    QuizData   `json:"quizData"`
		DueDate     *time.Time `json:"dueDate"`
		CreatedAt   time.Time  `json:"createdAt"` // UTC
		UpdatedAt   time.Time  `json:"updatedAt"` // UTC
	}

	Material struct {
		ID          string    `json:"id"`
		ClassID     string    `json:"classId"`
		TeacherID   string    `json:"teacherId"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		CreatedAt   time.Time `json:"createdAt"` // UTC
	}
)

func (a Assignment) IsQuiz() bool {
	return a.Type == TypeManualQuiz || a.Type == TypeTextToQuiz
}

// ForStudent returns a copy of a without the correct answers.
func ForStudent(a Assignment) Assignment {
	questions := make([]Question, len(a.QuizData.Questions))
	for i, q := range a.QuizData.Questions {
		questions[i] = Question{
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
		}
	}
	a.QuizData = QuizData{Questions: questions}
	return a
}

type NewAssignment struct {
	Title       string     `json:"title" validate:"required,notblank"`
	Description string     `json:"description"`
	Type        string     `json:"assignmentType" validate:"required,assignmenttype"`
	QuizData    QuizData   `json:"quizData"`
	SourceText  string     `json:"sourceText"` // text-to-quiz only
	DueDate     *time.Time `json:"dueDate"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Type = core.CleanString(na.Type, true /* lower */)

	if na.Type == TypeTextToQuiz && len(na.QuizData.Questions) == 0 && na.SourceText != "" {
		questions, err := ParseQuizText(na.SourceText)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "sourceText", Error: err.Error()})
		}
		na.QuizData.Questions = questions
	}
	for i := range na.QuizData.Questions {
		q := &na.QuizData.Questions[i]
		q.Prompt = core.CleanString(q.Prompt)
		q.CorrectAnswer = core.CleanString(q.CorrectAnswer)
		for j := range q.Options {
			q.Options[j] = core.CleanString(q.Options[j])
		}
	}
	return validate.Struct(na)
}

type NewMaterial struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"required,url"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	nm.URL = core.CleanString(nm.URL)
	return validate.Struct(nm)
}

type AssignmentFilter struct {
	ClassID   string
	TeacherID string
}
