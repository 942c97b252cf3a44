package submission

import (
	"math"

	"github.com/sarvashiksha/backend/core/content"
)

// Score counts the answers equal to the correct answer of the question at the same position.
// Comparison is exact: case-sensitive & untrimmed. Missing answers count as wrong.
func Score(questions []content.Question, answers []string) (score, total int) {
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score, len(questions)
}

// Percentage is round(score / total * 100), nil when there is nothing to score.
func Percentage(score, total int) *float64 {
	if total == 0 {
		return nil
	}
	pct := math.Round(float64(score) / float64(total) * 100)
	return &pct
}
