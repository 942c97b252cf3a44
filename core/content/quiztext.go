package content

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
)

var (
	questionLineRegex = regexp.MustCompile(`^(?:[Qq]?\d+[.):]\s*)(.+)$`)
	optionLineRegex   = regexp.MustCompile(`^([A-Za-z])[.)]\s+(.+)$`)
	answerLineRegex   = regexp.MustCompile(`^(?i:answer|ans|correct)\s*[:=-]\s*(.+)$`)
)

// ParseQuizText turns plain text into quiz questions. Each question is a numbered prompt line
// ("1. What is the capital of India?"), lettered option lines ("A) Mumbai", "B) New Delhi")
// and an answer line ("Answer: B").
// Blocks are separated by blank lines or by the next numbered question.
// Correct answers are stored as option letters.
func ParseQuizText(text string) ([]Question, error) {
	var (
		questions []Question
		curr      *Question
		lineNo    int
	)

	flush := func() error {
		if curr == nil {
			return nil
		}
		if len(curr.Options) < 2 {
			return fmt.Errorf("question %d: at least 2 options are required", len(questions)+1)
		}
		if curr.CorrectAnswer == "" {
			return fmt.Errorf("question %d: missing answer line", len(questions)+1)
		}
		questions = append(questions, *curr)
		curr = nil
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			if err := flush(); err != nil {
				return nil, err
			}
		case answerLineRegex.MatchString(line):
			if curr == nil {
				return nil, fmt.Errorf("line %d: answer without a question", lineNo)
			}
			ans := strings.TrimSpace(answerLineRegex.FindStringSubmatch(line)[1])
			idx := OptionIndex(*curr, strings.ToUpper(ans))
			if idx < 0 {
				idx = OptionIndex(*curr, ans)
			}
			if idx < 0 {
				return nil, fmt.Errorf("line %d: answer %q matches no option", lineNo, ans)
			}
			curr.CorrectAnswer = string(rune('A' + idx))
		case curr != nil && len(curr.Options) == 0 && !optionLineRegex.MatchString(line) && !questionLineRegex.MatchString(line):
			// multi-line prompt
			curr.Prompt += " " + line
		case optionLineRegex.MatchString(line) && curr != nil:
			m := optionLineRegex.FindStringSubmatch(line)
			if want := string(rune('A' + len(curr.Options))); strings.ToUpper(m[1]) != want {
				return nil, fmt.Errorf("line %d: expected option %s", lineNo, want)
			}
			curr.Options = append(curr.Options, strings.TrimSpace(m[2]))
		case questionLineRegex.MatchString(line):
			if err := flush(); err != nil {
				return nil, err
			}
			curr = &Question{Prompt: strings.TrimSpace(questionLineRegex.FindStringSubmatch(line)[1])}
		default:
			if curr != nil {
				return nil, fmt.Errorf("line %d: unexpected text %q", lineNo, line)
			}
			curr = &Question{Prompt: line}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions found")
	}
	return questions, nil
}
