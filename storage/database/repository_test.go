package database_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarvashiksha/backend/core/authz"
	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/dashboard"
	"github.com/sarvashiksha/backend/core/notification"
	"github.com/sarvashiksha/backend/core/submission"
	"github.com/sarvashiksha/backend/core/user"
	inmemdb "github.com/sarvashiksha/backend/storage/database/inmem"
	boiledrepos "github.com/sarvashiksha/backend/storage/database/sqlboiler"
	sqlxrepos "github.com/sarvashiksha/backend/storage/database/sqlx"
	testutil "github.com/sarvashiksha/backend/tests"
)

type repos struct {
	users         user.Repository
	classes       class.Repository
	content       content.Repository
	submissions   submission.Repository
	notifications notification.Repository
	registry      authz.Registry
	dashboard     dashboard.Repository
}

// forEachEngine runs fn against the in-memory engine, and against postgres when a test database is configured.
func forEachEngine(t *testing.T, fn func(t *testing.T, r repos)) {
	t.Run("memory", func(t *testing.T) {
		db, err := inmemdb.Open()
		require.NoError(t, err)
		fn(t, repos{
			users:         inmemdb.NewUserRepository(db),
			classes:       inmemdb.NewClassRepository(db),
			content:       inmemdb.NewContentRepository(db),
			submissions:   inmemdb.NewSubmissionRepository(db),
			notifications: inmemdb.NewNotificationRepository(db),
			registry:      inmemdb.NewRegistry(db),
			dashboard:     inmemdb.NewDashboardRepository(db),
		})
	})
	t.Run("postgres", func(t *testing.T) {
		db := testutil.PrepareDB(t)
		fn(t, repos{
			users:         sqlxrepos.NewUserRepository(db),
			classes:       sqlxrepos.NewClassRepository(db),
			content:       sqlxrepos.NewContentRepository(db),
			submissions:   sqlxrepos.NewSubmissionRepository(db),
			notifications: sqlxrepos.NewNotificationRepository(db),
			registry:      sqlxrepos.NewRegistry(db),
			dashboard:     boiledrepos.NewDashboardRepository(db),
		})
	})
}

type fixture struct {
	teacher, s1, s2 user.User
	cls             class.Class
	quiz            content.Assignment
}

func newFixture(t *testing.T, r repos) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	var f fixture
	f.teacher = testutil.CreateUser(t, r.users, "Anil", "anil_teacher", "anil@test.in", user.RoleTeacher, "pwd", true)
	f.s1 = testutil.CreateUser(t, r.users, "Ravi", "ravi_kumar", "ravi@test.in", user.RoleStudent, "pwd", true)
	f.s2 = testutil.CreateUser(t, r.users, "Meena", "meena_devi", "meena@test.in", user.RoleStudent, "pwd", true)

	cls, err := r.classes.CreateClass(ctx, class.Class{
		TeacherID: f.teacher.ID, Name: "Maths", GradeLevel: "Grade 5", EnrollmentCode: "CODE0001",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, r.classes.AddStudent(ctx, cls.ID, f.s1.ID))
	require.NoError(t, r.classes.AddStudent(ctx, cls.ID, f.s2.ID))
	f.cls = cls

	f.quiz, err = r.content.CreateAssignment(ctx, content.Assignment{
		ClassID: cls.ID, TeacherID: f.teacher.ID, Title: "Quiz 1", Type: content.TypeManualQuiz,
		QuizData: content.QuizData{Questions: []content.Question{
			{Prompt: "1 + 1?", Options: []string{"2", "3"}, CorrectAnswer: "A"},
			{Prompt: "2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: "B"},
		}},
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return f
}

func quizSubmission(a content.Assignment, student user.User, score int) submission.Submission {
	total := len(a.QuizData.Questions)
	return submission.Submission{
		AssignmentID: a.ID,
		StudentID:    student.ID,
		Response:     submission.QuizResponse{Answers: []string{"A", "B"}, Score: score, TotalScore: total},
		Grade:        submission.Percentage(score, total),
		SubmittedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestSubmissionRepository(t *testing.T) {
	forEachEngine(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		f := newFixture(t, r)

		_, err := r.submissions.GetSubmissionFor(ctx, f.quiz.ID, f.s1.ID)
		assert.Equal(t, submission.ErrNotFound, errors.Cause(err))

		sub, err := r.submissions.CreateSubmission(ctx, quizSubmission(f.quiz, f.s1, 2))
		require.NoError(t, err)
		assert.NotEmpty(t, sub.ID)

		_, err = r.submissions.CreateSubmission(ctx, quizSubmission(f.quiz, f.s1, 0))
		assert.Equal(t, submission.ErrAlreadySubmitted, errors.Cause(err))

		got, err := r.submissions.GetSubmissionFor(ctx, f.quiz.ID, f.s1.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)
		assert.Equal(t, submission.QuizResponse{Answers: []string{"A", "B"}, Score: 2, TotalScore: 2}, got.Response)
		assert.Equal(t, 100.0, *got.Grade)
		assert.Nil(t, got.GradedAt)

		gradedAt := time.Now().UTC().Truncate(time.Microsecond)
		graded, err := r.submissions.UpdateGrade(ctx, sub.ID, 90, "Well done", gradedAt)
		require.NoError(t, err)
		assert.Equal(t, 90.0, *graded.Grade)
		assert.Equal(t, "Well done", graded.Feedback)
		assert.True(t, gradedAt.Equal(*graded.GradedAt))

		graded, err = r.submissions.UpdateGrade(ctx, sub.ID, 95, "", gradedAt.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 95.0, *graded.Grade)
		assert.Empty(t, graded.Feedback)

		_, err = r.submissions.UpdateGrade(ctx, "00000000-0000-0000-0000-000000000000", 50, "", gradedAt)
		assert.Equal(t, submission.ErrNotFound, errors.Cause(err))

		subs, err := r.submissions.QuerySubmissions(ctx, submission.Filter{AssignmentID: f.quiz.ID})
		require.NoError(t, err)
		assert.Len(t, subs, 1)

		text := "An essay"
		_, err = r.submissions.CreateSubmission(ctx, submission.Submission{
			AssignmentID: f.quiz.ID, StudentID: f.s2.ID, Response: submission.TextResponse{Text: text},
			SubmittedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		got, err = r.submissions.GetSubmissionFor(ctx, f.quiz.ID, f.s2.ID)
		require.NoError(t, err)
		assert.Equal(t, submission.TextResponse{Text: text}, got.Response)
		assert.Nil(t, got.Grade)
	})
}

func TestSubmissionRepository_concurrentCreate(t *testing.T) {
	forEachEngine(t, func(t *testing.T, r repos) {
		f := newFixture(t, r)

		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = r.submissions.CreateSubmission(context.Background(), quizSubmission(f.quiz, f.s1, 1))
			}(i)
		}
		wg.Wait()

		var created int
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.Equal(t, submission.ErrAlreadySubmitted, errors.Cause(err))
		}
		assert.Equal(t, 1, created)
	})
}

func TestRegistry(t *testing.T) {
	forEachEngine(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		f := newFixture(t, r)
		sub, err := r.submissions.CreateSubmission(ctx, quizSubmission(f.quiz, f.s1, 1))
		require.NoError(t, err)

		owner, err := r.registry.ClassOwnerID(ctx, f.cls.ID)
		require.NoError(t, err)
		assert.Equal(t, f.teacher.ID, owner)

		_, err = r.registry.ClassOwnerID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.Equal(t, class.ErrNotFound, errors.Cause(err))

		ok, err := r.registry.IsEnrolled(ctx, f.cls.ID, f.s1.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = r.registry.IsEnrolled(ctx, f.cls.ID, f.teacher.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ref, err := r.registry.AssignmentRef(ctx, f.quiz.ID)
		require.NoError(t, err)
		assert.Equal(t, authz.AssignmentRef{ID: f.quiz.ID, ClassID: f.cls.ID, TeacherID: f.teacher.ID}, ref)

		sref, err := r.registry.SubmissionRef(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, authz.SubmissionRef{ID: sub.ID, AssignmentID: f.quiz.ID, StudentID: f.s1.ID}, sref)

		// the assignment author is reported, not the class owner
		coTeacher := testutil.CreateUser(t, r.users, "Sunita", "sunita_teacher", "sunita@test.in", user.RoleTeacher, "pwd", true)
		now := time.Now().UTC().Truncate(time.Microsecond)
		guest, err := r.content.CreateAssignment(ctx, content.Assignment{
			ClassID: f.cls.ID, TeacherID: coTeacher.ID, Title: "Guest task", Type: content.TypeFile,
			QuizData: content.QuizData{Questions: []content.Question{}}, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		ref, err = r.registry.AssignmentRef(ctx, guest.ID)
		require.NoError(t, err)
		assert.Equal(t, authz.AssignmentRef{ID: guest.ID, ClassID: f.cls.ID, TeacherID: coTeacher.ID}, ref)

		_, err = r.registry.SubmissionRef(ctx, "not-an-id")
		assert.Equal(t, submission.ErrNotFound, errors.Cause(err))
	})
}

func TestDeletesKeepSubmissions(t *testing.T) {
	forEachEngine(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		f := newFixture(t, r)
		sub, err := r.submissions.CreateSubmission(ctx, quizSubmission(f.quiz, f.s1, 1))
		require.NoError(t, err)

		err = r.content.DeleteAssignment(ctx, f.quiz.ID)
		assert.Equal(t, content.ErrAssignmentHasSubmissions, errors.Cause(err))
		err = r.classes.DeleteClass(ctx, f.cls.ID)
		assert.Equal(t, class.ErrHasSubmissions, errors.Cause(err))
		err = r.users.DeleteUsersByID(ctx, f.s1.ID)
		assert.Equal(t, user.ErrHasSubmissions, errors.Cause(err))
		err = r.users.DeleteUsersByID(ctx, f.s2.ID, f.teacher.ID)
		assert.Equal(t, user.ErrHasSubmissions, errors.Cause(err))

		got, err := r.submissions.GetSubmission(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, f.s1.ID, got.StudentID)
		_, err = r.content.GetAssignment(ctx, f.quiz.ID)
		require.NoError(t, err)
		_, err = r.users.GetUser(ctx, user.GetFilter{ID: f.s2.ID})
		require.NoError(t, err, "a failed batch delete removes nobody")

		// deleting a student without submissions drops their enrollments
		require.NoError(t, r.users.DeleteUsersByID(ctx, f.s2.ID))
		students, err := r.classes.ListStudents(ctx, f.cls.ID)
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, f.s1.ID, students[0].ID)

		// unsubmitted assignments & their classes go away
		now := time.Now().UTC().Truncate(time.Microsecond)
		other, err := r.classes.CreateClass(ctx, class.Class{
			TeacherID: f.teacher.ID, Name: "Science", GradeLevel: "Grade 5", EnrollmentCode: "CODE0002",
			CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		draft, err := r.content.CreateAssignment(ctx, content.Assignment{
			ClassID: other.ID, TeacherID: f.teacher.ID, Title: "Draft", Type: content.TypeFile,
			QuizData: content.QuizData{Questions: []content.Question{}}, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		require.NoError(t, r.classes.DeleteClass(ctx, other.ID))
		_, err = r.content.GetAssignment(ctx, draft.ID)
		assert.Equal(t, content.ErrAssignmentNotFound, errors.Cause(err))
	})
}

func TestDashboardRepository(t *testing.T) {
	forEachEngine(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		f := newFixture(t, r)

		sub, err := r.submissions.CreateSubmission(ctx, quizSubmission(f.quiz, f.s1, 1))
		require.NoError(t, err)
		_, err = r.submissions.CreateSubmission(ctx, quizSubmission(f.quiz, f.s2, 2))
		require.NoError(t, err)
		_, err = r.submissions.UpdateGrade(ctx, sub.ID, 70, "", time.Now().UTC())
		require.NoError(t, err)

		ts, err := r.dashboard.TeacherStats(ctx, f.teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, dashboard.TeacherStats{Classes: 1, Students: 2, Assignments: 1, PendingGrading: 1}, ts)

		ss, err := r.dashboard.StudentStats(ctx, f.s1.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, ss.Classes)
		assert.Equal(t, 1, ss.Assignments)
		assert.Equal(t, 1, ss.Submitted)
		require.NotNil(t, ss.AverageGrade)
		assert.InDelta(t, 70, *ss.AverageGrade, 0.001)

		ss, err = r.dashboard.StudentStats(ctx, f.teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, dashboard.StudentStats{}, ss)
	})
}

func TestNotificationRepository(t *testing.T) {
	forEachEngine(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		f := newFixture(t, r)

		base := time.Now().UTC().Truncate(time.Microsecond)
		var ids []string
		for i, title := range []string{"one", "two"} {
			n, err := r.notifications.CreateNotification(ctx, notification.Notification{
				UserID: f.s1.ID, Title: title, CreatedAt: base.Add(time.Duration(i) * time.Second),
			})
			require.NoError(t, err)
			ids = append(ids, n.ID)
		}

		notifs, err := r.notifications.QueryNotifications(ctx, notification.Filter{UserID: f.s1.ID})
		require.NoError(t, err)
		require.Len(t, notifs, 2)
		assert.Equal(t, "two", notifs[0].Title)

		assert.Equal(t, notification.ErrNotFound, errors.Cause(r.notifications.MarkRead(ctx, f.s2.ID, ids[0])))
		require.NoError(t, r.notifications.MarkRead(ctx, f.s1.ID, ids[0]))
		count, err := r.notifications.CountNotifications(ctx, notification.Filter{UserID: f.s1.ID, UnreadOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		assert.Equal(t, notification.ErrNotFound, errors.Cause(r.notifications.DeleteNotification(ctx, f.s2.ID, ids[1])))
		require.NoError(t, r.notifications.DeleteNotification(ctx, f.s1.ID, ids[1]))
		count, err = r.notifications.CountNotifications(ctx, notification.Filter{UserID: f.s1.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
