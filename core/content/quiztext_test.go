package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuizText(t *testing.T) {
	text := `1. What is the capital of India?
A) Mumbai
B) New Delhi
Answer: B

2) Which planet is
known as the red planet?
a. Mars
b. Venus
Ans: Mars
Q3: 2 + 2 = ?
A) 3
B) 4
C) 5
correct = b`

	questions, err := ParseQuizText(text)
	require.NoError(t, err)
	assert.Equal(t, []Question{
		{Prompt: "What is the capital of India?", Options: []string{"Mumbai", "New Delhi"}, CorrectAnswer: "B"},
		{Prompt: "Which planet is known as the red planet?", Options: []string{"Mars", "Venus"}, CorrectAnswer: "A"},
		{Prompt: "2 + 2 = ?", Options: []string{"3", "4", "5"}, CorrectAnswer: "B"},
	}, questions)
}

func TestParseQuizText_errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{name: "empty", text: "  \n\n", wantErr: "no questions found"},
		{name: "one option", text: "1. Q?\nA) x\nAnswer: A", wantErr: "question 1: at least 2 options are required"},
		{name: "no answer", text: "1. Q?\nA) x\nB) y", wantErr: "question 1: missing answer line"},
		{name: "unknown answer", text: "1. Q?\nA) x\nB) y\nAnswer: C", wantErr: `line 4: answer "C" matches no option`},
		{name: "options out of order", text: "1. Q?\nA) x\nC) y", wantErr: "line 3: expected option B"},
		{name: "answer first", text: "Answer: A", wantErr: "line 1: answer without a question"},
		{name: "stray text", text: "1. Q?\nA) x\nB) y\nsomething else", wantErr: `line 4: unexpected text "something else"`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			questions, err := ParseQuizText(tt.text)
			assert.Nil(t, questions)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
