package core

// GradeLevels are the levels a class (or a student) can be in.
var GradeLevels = []string{
	"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6",
	"Grade 7", "Grade 8", "Grade 9", "Grade 10", "Grade 11", "Grade 12",
	"College",
}

func IsGradeLevel(level string) bool {
	for _, lvl := range GradeLevels {
		if lvl == level {
			return true
		}
	}
	return false
}
