package echoapi_test

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/submission"
	"github.com/sarvashiksha/backend/core/user"
)

func submitPath(a content.Assignment) string { return "/api/student/assessment/" + a.ID + "/submit" }

func rosterPath(a content.Assignment) string {
	return "/api/teacher/assignments/" + a.ID + "/submissions"
}

func gradePath(s submission.Submission) string { return "/api/teacher/submission/" + s.ID + "/grade" }

func (env *testEnv) roster(t *testing.T, teacher user.User, a content.Assignment) submission.Roster {
	t.Helper()
	rec := env.request(t, http.MethodGet, rosterPath(a), &teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var roster submission.Roster
	decode(t, rec, &roster)
	assert.Equal(t, roster.Summary.TotalStudents, roster.Summary.TurnedIn+roster.Summary.NotSubmitted)
	assert.LessOrEqual(t, roster.Summary.Graded, roster.Summary.TurnedIn)
	assert.Len(t, roster.Entries, roster.Summary.TotalStudents)
	return roster
}

func TestStudentAPI_classes(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	student := env.createUser(t, "Ravi", "ravi_kumar", user.RoleStudent)
	cls := env.createClass(t, teacher, "Maths")

	rec := env.request(t, http.MethodPost, "/api/student/classes/join", &student, map[string]string{"enrollmentCode": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/student/classes/join", &student, map[string]string{"enrollmentCode": "NOPE1234"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/student/classes/"+cls.ID, &student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/student/classes/join", &student, map[string]string{"enrollmentCode": cls.EnrollmentCode})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var joined class.Class
	decode(t, rec, &joined)
	assert.Equal(t, cls.ID, joined.ID)
	assert.Empty(t, joined.EnrollmentCode)

	rec = env.request(t, http.MethodPost, "/api/student/classes/join", &student, map[string]string{"enrollmentCode": cls.EnrollmentCode})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/student/classes", &student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var classes []class.Class
	decode(t, rec, &classes)
	require.Len(t, classes, 1)
	assert.Equal(t, "Maths", classes[0].Name)

	// the teacher was told
	count, err := env.NotificationSvc.UnreadCount(ctxBg(), teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rec = env.request(t, http.MethodDelete, "/api/student/classes/"+cls.ID, &student, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.request(t, http.MethodGet, "/api/student/classes/"+cls.ID+"/assignments", &student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStudentAPI_assessmentHidesAnswers(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	student := env.createUser(t, "Ravi", "ravi_kumar", user.RoleStudent)
	cls := env.createClass(t, teacher, "Maths")
	env.enroll(t, cls, student)
	quiz := env.createQuiz(t, teacher, cls, "A", "C")

	rec := env.request(t, http.MethodGet, "/api/student/assessment/"+quiz.ID, &student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correctAnswer")
	var a content.Assignment
	decode(t, rec, &a)
	assert.Len(t, a.QuizData.Questions, 2)

	rec = env.request(t, http.MethodGet, "/api/teacher/assignments/"+quiz.ID, &teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "correctAnswer")

	rec = env.request(t, http.MethodGet, "/api/student/assessment/"+quiz.ID+"/submission", &student, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentAPI_submitScoring(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	cls := env.createClass(t, teacher, "Maths")

	quiz3 := env.createQuiz(t, teacher, cls, "A", "B", "C")
	pct := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		answers   []string
		wantScore int
		wantGrade *float64
	}{
		{name: "all correct", answers: []string{"A", "B", "C"}, wantScore: 3, wantGrade: pct(100)},
		{name: "all wrong", answers: []string{"C", "A", "B"}, wantScore: 0, wantGrade: pct(0)},
		{name: "one of three rounds to 33", answers: []string{"A", "C", "A"}, wantScore: 1, wantGrade: pct(33)},
		{name: "two of three rounds to 67", answers: []string{"A", "B", "A"}, wantScore: 2, wantGrade: pct(67)},
		{name: "missing answers are wrong", answers: []string{"A"}, wantScore: 1, wantGrade: pct(33)},
		{name: "exact comparison", answers: []string{"a", " B", "C"}, wantScore: 1, wantGrade: pct(33)},
	}
	for i, tt := range tests {
		tt := tt
		student := env.createUser(t, "Student", "student_"+string(rune('a'+i))+"_x", user.RoleStudent)
		env.enroll(t, cls, student)

		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodPost, submitPath(quiz3), &student, map[string]interface{}{"answers": tt.answers})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			var sub submission.Submission
			decode(t, rec, &sub)

			quiz, ok := sub.Response.(submission.QuizResponse)
			require.True(t, ok)
			assert.Equal(t, tt.wantScore, quiz.Score)
			assert.Equal(t, 3, quiz.TotalScore)
			assert.Equal(t, tt.answers, quiz.Answers)
			require.NotNil(t, sub.Grade)
			assert.Equal(t, *tt.wantGrade, *sub.Grade)
			assert.Nil(t, sub.GradedAt)
			assert.False(t, sub.SubmittedAt.IsZero())

			rec = env.request(t, http.MethodGet, "/api/student/assessment/"+quiz3.ID+"/submission", &student, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var stored submission.Submission
			decode(t, rec, &stored)
			assert.Equal(t, sub.ID, stored.ID)
		})
	}
}

func TestStudentAPI_submitZeroQuestions(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	student := env.createUser(t, "Ravi", "ravi_kumar", user.RoleStudent)
	cls := env.createClass(t, teacher, "Maths")
	env.enroll(t, cls, student)

	// quizzes cannot be created empty through the API; older data may still hold some
	now := time.Now().UTC()
	empty, err := env.ContentRepo.CreateAssignment(ctxBg(), content.Assignment{
		ClassID:   cls.ID,
		TeacherID: teacher.ID,
		Title:     "Empty quiz",
		Type:      content.TypeManualQuiz,
		QuizData:  content.QuizData{Questions: []content.Question{}},
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	rec := env.request(t, http.MethodPost, submitPath(empty), &student, map[string]interface{}{"answers": []string{}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"answers":[]`)
	var sub submission.Submission
	decode(t, rec, &sub)
	quiz, ok := sub.Response.(submission.QuizResponse)
	require.True(t, ok)
	assert.Equal(t, []string{}, quiz.Answers)
	assert.Equal(t, 0, quiz.Score)
	assert.Equal(t, 0, quiz.TotalScore)
	assert.Nil(t, sub.Grade)
}

func TestStudentAPI_submitValidation(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	student := env.createUser(t, "Ravi", "ravi_kumar", user.RoleStudent)
	outsider := env.createUser(t, "Kiran", "kiran_outsider", user.RoleStudent)
	cls := env.createClass(t, teacher, "Maths")
	env.enroll(t, cls, student)
	quiz := env.createQuiz(t, teacher, cls, "A")
	essay := env.createTextAssignment(t, teacher, cls)

	tests := []struct {
		name     string
		usr      user.User
		path     string
		body     map[string]interface{}
		wantCode int
	}{
		{name: "unknown assignment", usr: student, path: "/api/student/assessment/00000000-0000-0000-0000-000000000000/submit", body: map[string]interface{}{"answers": []string{"A"}}, wantCode: http.StatusNotFound},
		{name: "not enrolled", usr: outsider, path: submitPath(quiz), body: map[string]interface{}{"answers": []string{"A"}}, wantCode: http.StatusForbidden},
		{name: "teachers do not submit", usr: teacher, path: submitPath(quiz), body: map[string]interface{}{"answers": []string{"A"}}, wantCode: http.StatusForbidden},
		{name: "quiz without answers", usr: student, path: submitPath(quiz), body: map[string]interface{}{"textSubmission": "A"}, wantCode: http.StatusBadRequest},
		{name: "too many answers", usr: student, path: submitPath(quiz), body: map[string]interface{}{"answers": []string{"A", "B"}}, wantCode: http.StatusBadRequest},
		{name: "text without text", usr: student, path: submitPath(essay), body: map[string]interface{}{"answers": []string{"A"}}, wantCode: http.StatusBadRequest},
		{name: "blank text", usr: student, path: submitPath(essay), body: map[string]interface{}{"textSubmission": "  "}, wantCode: http.StatusBadRequest},
		{name: "text", usr: student, path: submitPath(essay), body: map[string]interface{}{"textSubmission": "Photosynthesis is..."}, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodPost, tt.path, &tt.usr, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	rec := env.request(t, http.MethodGet, "/api/student/assessment/"+essay.ID+"/submission", &student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sub submission.Submission
	decode(t, rec, &sub)
	assert.Equal(t, submission.TextResponse{Text: "Photosynthesis is..."}, sub.Response)
	assert.Nil(t, sub.Grade)
	assert.NotContains(t, rec.Body.String(), "totalScore")
}

func TestStudentAPI_submitOnce(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	student := env.createUser(t, "Ravi", "ravi_kumar", user.RoleStudent)
	cls := env.createClass(t, teacher, "Maths")
	env.enroll(t, cls, student)
	quiz := env.createQuiz(t, teacher, cls, "A", "B")

	t.Run("sequential", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, submitPath(quiz), &student, map[string]interface{}{"answers": []string{"A", "B"}})
		require.Equal(t, http.StatusCreated, rec.Code)
		rec = env.request(t, http.MethodPost, submitPath(quiz), &student, map[string]interface{}{"answers": []string{"B", "A"}})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("concurrent", func(t *testing.T) {
		racer := env.createUser(t, "Racer", "racer_student", user.RoleStudent)
		env.enroll(t, cls, racer)

		const n = 10
		codes := make([]int, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := env.SubmissionSvc.Submit(ctxBg(), racer, quiz.ID, submission.SubmitRequest{Answers: []string{"A", "B"}})
				switch err {
				case nil:
					codes[i] = http.StatusCreated
				case submission.ErrAlreadySubmitted:
					codes[i] = http.StatusConflict
				}
			}(i)
		}
		wg.Wait()

		var created, conflicts int
		for _, code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicts++
			}
		}
		assert.Equal(t, 1, created)
		assert.Equal(t, n-1, conflicts)
	})

	subs, err := env.SubmissionSvc.ListForStudent(ctxBg(), student)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestTeacherAPI_grade(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	other := env.createUser(t, "Sunita", "sunita_teacher", user.RoleTeacher)
	student := env.createUser(t, "Ravi", "ravi_kumar", user.RoleStudent)
	cls := env.createClass(t, teacher, "Science")
	env.enroll(t, cls, student)
	essay := env.createTextAssignment(t, teacher, cls)

	sub, err := env.SubmissionSvc.Submit(ctxBg(), student, essay.ID, submission.SubmitRequest{Answers: nil, TextSubmission: strPtr("Water boils at 100C")})
	require.NoError(t, err)

	t.Run("validation", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, gradePath(sub), &teacher, map[string]interface{}{"feedback": "no grade"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.request(t, http.MethodPut, gradePath(sub), &teacher, map[string]interface{}{"grade": nil})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.request(t, http.MethodPut, gradePath(sub), &teacher, map[string]interface{}{"grade": 101})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.request(t, http.MethodPut, gradePath(sub), &teacher, map[string]interface{}{"grade": -1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown submission", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, "/api/teacher/submission/00000000-0000-0000-0000-000000000000/grade", &teacher, map[string]interface{}{"grade": 50})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("only the assignment author grades", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, gradePath(sub), &other, map[string]interface{}{"grade": 50})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = env.request(t, http.MethodGet, rosterPath(essay), &other, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("regrading overwrites", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, gradePath(sub), &teacher, map[string]interface{}{"grade": 70, "feedback": "Good start"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var first submission.Submission
		decode(t, rec, &first)
		require.NotNil(t, first.GradedAt)
		assert.Equal(t, 70.0, *first.Grade)
		assert.Equal(t, "Good start", first.Feedback)

		rec = env.request(t, http.MethodPut, gradePath(sub), &teacher, map[string]interface{}{"grade": 85})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var second submission.Submission
		decode(t, rec, &second)
		assert.Equal(t, sub.ID, second.ID)
		assert.Equal(t, 85.0, *second.Grade)
		assert.Equal(t, "", second.Feedback)
		require.NotNil(t, second.GradedAt)
		assert.False(t, second.GradedAt.Before(*first.GradedAt))

		subs, err := env.SubmissionSvc.ListForStudent(ctxBg(), student)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, 85.0, *subs[0].Grade)

		// the student was told twice
		notifs, err := env.NotificationSvc.List(ctxBg(), student.ID, true)
		require.NoError(t, err)
		var graded int
		for _, n := range notifs {
			if n.Title == "Submission graded" {
				graded++
			}
		}
		assert.Equal(t, 2, graded)
	})
}

func TestSubmissionEngine_endToEnd(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	s1 := env.createUser(t, "Student One", "student_one", user.RoleStudent)
	s2 := env.createUser(t, "Student Two", "student_two", user.RoleStudent)
	cls := env.createClass(t, teacher, "C")
	env.enroll(t, cls, s1, s2)
	a := env.createQuiz(t, teacher, cls, "A", "B")

	roster := env.roster(t, teacher, a)
	assert.Equal(t, submission.Summary{TotalStudents: 2, TurnedIn: 0, NotSubmitted: 2, Graded: 0}, roster.Summary)

	rec := env.request(t, http.MethodPost, submitPath(a), &s1, map[string]interface{}{"answers": []string{"A", "B"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sub submission.Submission
	decode(t, rec, &sub)
	quiz := sub.Response.(submission.QuizResponse)
	assert.Equal(t, 2, quiz.Score)
	assert.Equal(t, 2, quiz.TotalScore)
	assert.Equal(t, 100.0, *sub.Grade)

	roster = env.roster(t, teacher, a)
	assert.Equal(t, submission.Summary{TotalStudents: 2, TurnedIn: 1, NotSubmitted: 1, Graded: 0}, roster.Summary)
	statuses := map[string]string{}
	for _, e := range roster.Entries {
		statuses[e.Student.ID] = e.Status
	}
	assert.Equal(t, map[string]string{s1.ID: submission.StatusTurnedIn, s2.ID: submission.StatusNotSubmitted}, statuses)

	rec = env.request(t, http.MethodPut, gradePath(sub), &teacher, map[string]interface{}{"grade": 100, "feedback": "Great"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	roster = env.roster(t, teacher, a)
	assert.Equal(t, submission.Summary{TotalStudents: 2, TurnedIn: 1, NotSubmitted: 1, Graded: 1}, roster.Summary)

	rec = env.request(t, http.MethodGet, "/api/student/submissions", &s1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []submission.Submission
	decode(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "Great", history[0].Feedback)
	assert.NotNil(t, history[0].GradedAt)

	// the roster follows enrollment: unenrolled submitters disappear, late joiners show up
	late := env.createUser(t, "Late", "late_student", user.RoleStudent)
	env.enroll(t, cls, late)
	require.NoError(t, env.ClassSvc.RemoveStudent(ctxBg(), teacher, cls.ID, s1.ID))

	roster = env.roster(t, teacher, a)
	assert.Equal(t, submission.Summary{TotalStudents: 2, TurnedIn: 0, NotSubmitted: 2, Graded: 0}, roster.Summary)
}

func TestTeacherAPI_deletesKeepSubmissions(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)
	admin := env.createUser(t, "Admin", "admin_user", user.RoleAdmin)
	student := env.createUser(t, "Ravi", "ravi_kumar", user.RoleStudent)
	cls := env.createClass(t, teacher, "Maths")
	env.enroll(t, cls, student)
	quiz := env.createQuiz(t, teacher, cls, "A", "B")

	rec := env.request(t, http.MethodPost, submitPath(quiz), &student, map[string]interface{}{"answers": []string{"A", "B"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodDelete, "/api/teacher/assignments/"+quiz.ID, &teacher, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.request(t, http.MethodDelete, "/api/teacher/classes/"+cls.ID, &teacher, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.request(t, http.MethodDelete, "/api/users/"+student.ID, &admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.request(t, http.MethodDelete, "/api/users/"+teacher.ID, &admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	subs, err := env.SubmissionSvc.ListForStudent(ctxBg(), student)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	roster := env.roster(t, teacher, quiz)
	assert.Equal(t, submission.Summary{TotalStudents: 1, TurnedIn: 1, NotSubmitted: 0, Graded: 0}, roster.Summary)

	// assignments nobody submitted can still be removed
	essay := env.createTextAssignment(t, teacher, cls)
	rec = env.request(t, http.MethodDelete, "/api/teacher/assignments/"+essay.ID, &teacher, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func strPtr(s string) *string { return &s }
