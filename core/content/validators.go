package content

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/sarvashiksha/backend/core"
)

var (
	assignmentTypeTag  = "assignmenttype"
	assignmentTypeText = "assignment type must be one of: file, manual-quiz, text-to-quiz"

	correctAnswerTag  = "correctanswer"
	correctAnswerText = "correct answer must be one of the options or an option letter"

	noQuestionsTag  = "noquestions"
	noQuestionsText = "file assignments cannot have questions"

	questionsTag  = "questions"
	questionsText = "a quiz needs at least one question"
)

// InitValidators registers the content validation rules & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(assignmentTypeTag, func(fl validator.FieldLevel) bool {
		return IsAssignmentType(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, assignmentTypeTag, assignmentTypeText)

	validate.RegisterStructValidation(questionStructValidation, Question{})
	core.RegisterCustomTranslation(validate, translator, correctAnswerTag, correctAnswerText)

	validate.RegisterStructValidation(assignmentStructValidation, NewAssignment{})
	core.RegisterCustomTranslation(validate, translator, noQuestionsTag, noQuestionsText)
	core.RegisterCustomTranslation(validate, translator, questionsTag, questionsText)
}

// questionStructValidation checks that the correct answer designates one of the options.
func questionStructValidation(sl validator.StructLevel) {
	q := sl.Current().Interface().(Question)
	if q.CorrectAnswer == "" {
		return // reported by `required`
	}
	if OptionIndex(q, q.CorrectAnswer) < 0 {
		sl.ReportError(q.CorrectAnswer, "correctAnswer", "CorrectAnswer", correctAnswerTag, "")
	}
}

// assignmentStructValidation ties the questions to the assignment type.
func assignmentStructValidation(sl validator.StructLevel) {
	na := sl.Current().Interface().(NewAssignment)
	nQuestions := len(na.QuizData.Questions)
	switch na.Type {
	case TypeFile:
		if nQuestions > 0 {
			sl.ReportError(na.QuizData, "quizData", "QuizData", noQuestionsTag, "")
		}
	case TypeManualQuiz, TypeTextToQuiz:
		if nQuestions == 0 {
			sl.ReportError(na.QuizData, "quizData", "QuizData", questionsTag, "")
		}
	}
}

// OptionIndex returns the position of the option designated by answer, either by letter ("A", "B"...)
// or by value, -1 if none.
func OptionIndex(q Question, answer string) int {
	if len(answer) == 1 {
		if idx := int(answer[0]) - 'A'; idx >= 0 && idx < len(q.Options) {
			return idx
		}
	}
	for i, opt := range q.Options {
		if opt == answer {
			return i
		}
	}
	return -1
}
