package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarvashiksha/backend/core/user"
)

type fakeRepo struct {
	teacher TeacherStats
	student StudentStats
}

func (r fakeRepo) TeacherStats(context.Context, string) (TeacherStats, error) { return r.teacher, nil }
func (r fakeRepo) StudentStats(context.Context, string) (StudentStats, error) { return r.student, nil }

func TestService(t *testing.T) {
	ctx := context.Background()
	teacher := user.User{ID: "t1", Role: user.RoleTeacher}
	student := user.User{ID: "s1", Role: user.RoleStudent}
	avg := 72.5

	svc := NewService(fakeRepo{
		teacher: TeacherStats{Classes: 2, Students: 5, Assignments: 4, PendingGrading: 1},
		student: StudentStats{Classes: 1, Assignments: 3, Submitted: 1, AverageGrade: &avg},
	})

	ts, err := svc.Teacher(ctx, teacher)
	require.NoError(t, err)
	assert.Equal(t, TeacherStats{Classes: 2, Students: 5, Assignments: 4, PendingGrading: 1}, ts)

	ss, err := svc.Student(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, 2, ss.Pending)
	assert.Equal(t, 72.5, *ss.AverageGrade)

	_, err = svc.Teacher(ctx, student)
	assert.Equal(t, ErrWrongRole, err)
	_, err = svc.Student(ctx, teacher)
	assert.Equal(t, ErrWrongRole, err)
}

func TestService_pendingNeverNegative(t *testing.T) {
	// submissions of assignments from classes the student has since left
	svc := NewService(fakeRepo{student: StudentStats{Assignments: 1, Submitted: 3}})
	ss, err := svc.Student(context.Background(), user.User{Role: user.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, 0, ss.Pending)
}
