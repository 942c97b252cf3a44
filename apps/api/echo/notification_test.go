package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/sarvashiksha/backend/apps/api/echo"
	"github.com/sarvashiksha/backend/core/notification"
	"github.com/sarvashiksha/backend/core/user"
)

func TestNotificationAPI(t *testing.T) {
	env := newTestEnv(t)
	ravi := env.createUser(t, "Ravi", "ravi_kumar", user.RoleStudent)
	anil := env.createUser(t, "Anil", "anil_teacher", user.RoleTeacher)

	for _, title := range []string{"First", "Second", "Third"} {
		require.NoError(t, env.NotificationSvc.Notify(ctxBg(), ravi.ID, title, title+" message", "/student/dashboard"))
	}
	require.NoError(t, env.NotificationSvc.Notify(ctxBg(), anil.ID, "Other", "not for ravi", ""))

	unreadCount := func(t *testing.T, usr user.User) int {
		t.Helper()
		rec := env.request(t, http.MethodGet, "/api/notifications/unread-count", &usr, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.CountResponse
		decode(t, rec, &resp)
		return resp.Count
	}
	list := func(t *testing.T, usr user.User, query string) []notification.Notification {
		t.Helper()
		rec := env.request(t, http.MethodGet, "/api/notifications"+query, &usr, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var notifs []notification.Notification
		decode(t, rec, &notifs)
		return notifs
	}

	t.Run("authentication required", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/notifications", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("list newest first", func(t *testing.T) {
		notifs := list(t, ravi, "")
		require.Len(t, notifs, 3)
		assert.Equal(t, "Third", notifs[0].Title)
		assert.Equal(t, "First", notifs[2].Title)
		for _, n := range notifs {
			assert.Equal(t, ravi.ID, n.UserID)
			assert.False(t, n.IsRead)
		}
		assert.Equal(t, 3, unreadCount(t, ravi))
	})

	t.Run("mark one read", func(t *testing.T) {
		notifs := list(t, ravi, "")
		rec := env.request(t, http.MethodPut, "/api/notifications/"+notifs[0].ID+"/read", &ravi, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 2, unreadCount(t, ravi))
		assert.Len(t, list(t, ravi, "?unread=true"), 2)
	})

	t.Run("others' notifications are not found", func(t *testing.T) {
		other := list(t, anil, "")
		require.Len(t, other, 1)
		rec := env.request(t, http.MethodPut, "/api/notifications/"+other[0].ID+"/read", &ravi, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = env.request(t, http.MethodDelete, "/api/notifications/"+other[0].ID, &ravi, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 1, unreadCount(t, anil))
	})

	t.Run("mark all read", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, "/api/notifications/read-all", &ravi, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 0, unreadCount(t, ravi))
		assert.Len(t, list(t, ravi, "?unread=true"), 0)
		assert.Len(t, list(t, ravi, ""), 3)
	})

	t.Run("delete", func(t *testing.T) {
		notifs := list(t, ravi, "")
		rec := env.request(t, http.MethodDelete, "/api/notifications/"+notifs[1].ID, &ravi, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Len(t, list(t, ravi, ""), 2)

		rec = env.request(t, http.MethodDelete, "/api/notifications/"+notifs[1].ID, &ravi, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
