package submission

import (
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/user"
)

// Roster statuses
const (
	StatusTurnedIn     = "turned-in"
	StatusNotSubmitted = "not-submitted"
)

type (
	Student struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	RosterEntry struct {
		Student    Student     `json:"student"`
		Status     string      `json:"status"`
		Submission *Submission `json:"submission"`
	}

	Summary struct {
		TotalStudents int `json:"totalStudents"`
		TurnedIn      int `json:"turnedIn"`
		NotSubmitted  int `json:"notSubmitted"`
		Graded        int `json:"graded"`
	}

	Roster struct {
		Assignment content.Assignment `json:"assignment"`
		Entries    []RosterEntry      `json:"submissions"`
		Summary    Summary            `json:"summary"`
	}
)

// BuildRoster left-joins the enrolled students with the assignment submissions.
// Submissions of students no longer enrolled are left out.
// A submission counts as graded once a teacher graded it.
func BuildRoster(students []user.User, subs []Submission) ([]RosterEntry, Summary) {
	byStudent := make(map[string]Submission, len(subs))
	for _, s := range subs {
		byStudent[s.StudentID] = s
	}

	entries := make([]RosterEntry, 0, len(students))
	var sum Summary
	for _, st := range students {
		entry := RosterEntry{
			Student: Student{ID: st.ID, Name: st.Name, Username: st.Username, Email: st.Email},
			Status:  StatusNotSubmitted,
		}
		if s, ok := byStudent[st.ID]; ok {
			s := s
			entry.Status = StatusTurnedIn
			entry.Submission = &s
			sum.TurnedIn++
			if s.IsGraded() {
				sum.Graded++
			}
		} else {
			sum.NotSubmitted++
		}
		entries = append(entries, entry)
	}
	sum.TotalStudents = len(students)
	return entries, sum
}
