package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/sarvashiksha/backend/apps/api/echo"
	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/user"
	testutil "github.com/sarvashiksha/backend/tests"
)

const testPassword = "Sup3r$ecretPwd"

type testEnv struct {
	*testutil.App
	srv *echoapi.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	app := testutil.NewApp(t)
	srv := echoapi.NewServer(app.Conf, app.Logger, app.Validate, app.Translator, &echoapi.Deps{
		UserSvc:         app.UserSvc,
		ClassSvc:        app.ClassSvc,
		ContentSvc:      app.ContentSvc,
		SubmissionSvc:   app.SubmissionSvc,
		NotificationSvc: app.NotificationSvc,
		DashboardSvc:    app.DashboardSvc,
	})
	return &testEnv{App: app, srv: srv}
}

func (env *testEnv) createUser(t *testing.T, name, uname, role string) user.User {
	t.Helper()
	return testutil.CreateUser(t, env.UserRepo, name, uname, uname+"@test.in", role, testPassword, true)
}

func (env *testEnv) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(env.Conf, echoapi.GetUserClaims(env.Conf, usr))
	require.NoError(t, err)
	return token
}

// request serves an API call as usr (anonymous when usr is nil).
func (env *testEnv) request(t *testing.T, method, path string, usr *user.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var token string
	if usr != nil {
		token = env.token(t, *usr)
	}
	return env.requestWithToken(t, method, path, token, body)
}

func (env *testEnv) requestWithToken(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

func ctxBg() context.Context { return context.Background() }

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (env *testEnv) createClass(t *testing.T, teacher user.User, name string) class.Class {
	t.Helper()
	cls, err := env.ClassSvc.Create(context.Background(), teacher, class.NewClass{Name: name, GradeLevel: "Grade 5"})
	require.NoError(t, err)
	return cls
}

func (env *testEnv) enroll(t *testing.T, cls class.Class, students ...user.User) {
	t.Helper()
	for _, s := range students {
		_, err := env.ClassSvc.Enroll(context.Background(), s, cls.EnrollmentCode)
		require.NoError(t, err)
	}
}

// createQuiz posts a manual quiz whose i-th question has answers[i] as correct option letter.
func (env *testEnv) createQuiz(t *testing.T, teacher user.User, cls class.Class, answers ...string) content.Assignment {
	t.Helper()
	questions := make([]content.Question, len(answers))
	for i, ans := range answers {
		questions[i] = content.Question{
			Prompt:        "Question " + string(rune('1'+i)),
			Options:       []string{"first", "second", "third"},
			CorrectAnswer: ans,
		}
	}
	na := content.NewAssignment{Title: "Quiz", Type: content.TypeManualQuiz, QuizData: content.QuizData{Questions: questions}}
	require.NoError(t, na.Validate(env.Validate))
	a, err := env.ContentSvc.CreateAssignment(context.Background(), teacher, cls.ID, na)
	require.NoError(t, err)
	return a
}

func (env *testEnv) createTextAssignment(t *testing.T, teacher user.User, cls class.Class) content.Assignment {
	t.Helper()
	na := content.NewAssignment{Title: "Essay", Type: content.TypeFile}
	require.NoError(t, na.Validate(env.Validate))
	a, err := env.ContentSvc.CreateAssignment(context.Background(), teacher, cls.ID, na)
	require.NoError(t, err)
	return a
}
