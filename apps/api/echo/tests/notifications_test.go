package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/pathways/apps/api/echo"
	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/notification"
)

func ids(t *testing.T, body []byte) []string {
	var items []notification.Notification
	require.NoError(t, json.Unmarshal(body, &items))
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.ID)
	}
	return out
}

func Test_notificationApi_list(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, core.RoleParent)

	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "preview", path: "/v1/notifications?preview", want: []string{"1", "2", "3", "4", "5"}},
		{name: "preview with limit", path: "/v1/notifications?preview=2", want: []string{"1", "2"}},
		{name: "invalid limit", path: "/v1/notifications?preview=abc", want: []string{"1", "2", "3", "4", "5"}},
		{name: "full list", path: "/v1/notifications", want: []string{"1", "2", "3", "4", "5", "6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.do(req, rec)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, ids(t, rec.Body.Bytes()))
		})
	}

	req, rec := newRequest(http.MethodGet, "/v1/notifications")
	app.do(req, rec)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
}

func Test_notificationApi_read(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, core.RoleStudent)
	unread := func(n int) []byte { return marchallObj(t, UnreadCountResponse{Unread: n}) }

	tests := []httpTest{
		{name: "initial count", method: http.MethodGet, path: "/v1/notifications/unread-count", token: token, wantCode: http.StatusOK, wantData: unread(5)},
		{name: "mark as read", method: http.MethodPost, path: "/v1/notifications/1/read", token: token, wantCode: http.StatusNoContent},
		{name: "count after read", method: http.MethodGet, path: "/v1/notifications/unread-count", token: token, wantCode: http.StatusOK, wantData: unread(4)},
		{name: "mark as read again", method: http.MethodPost, path: "/v1/notifications/1/read", token: token, wantCode: http.StatusNoContent},
		{name: "already read", method: http.MethodPost, path: "/v1/notifications/2/read", token: token, wantCode: http.StatusNoContent},
		{name: "unknown id", method: http.MethodPost, path: "/v1/notifications/999/read", token: token, wantCode: http.StatusNoContent},
		{name: "count unchanged", method: http.MethodGet, path: "/v1/notifications/unread-count", token: token, wantCode: http.StatusOK, wantData: unread(4)},
		{name: "delete unread", method: http.MethodDelete, path: "/v1/notifications/3", token: token, wantCode: http.StatusNoContent},
		{name: "delete again", method: http.MethodDelete, path: "/v1/notifications/3", token: token, wantCode: http.StatusNoContent},
		{name: "count after delete", method: http.MethodGet, path: "/v1/notifications/unread-count", token: token, wantCode: http.StatusOK, wantData: unread(3)},
		{name: "mark all as read", method: http.MethodPost, path: "/v1/notifications/read-all", token: token, wantCode: http.StatusNoContent},
		{name: "all read", method: http.MethodGet, path: "/v1/notifications/unread-count", token: token, wantCode: http.StatusOK, wantData: unread(0)},
	}
	runHTTPTests(t, app, tests)

	req, rec := newAuthRequest(http.MethodGet, "/v1/notifications", token)
	app.do(req, rec)
	assert.Equal(t, []string{"1", "2", "4", "5", "6"}, ids(t, rec.Body.Bytes()))
}

func Test_notificationApi_publish(t *testing.T) {
	app := setup(t)
	student := roleToken(t, app, core.RoleStudent)
	admin := roleToken(t, app, core.RoleAdmin)

	body := marchallObj(t, notification.NewNotification{Title: " Career fair ", Body: "Friday at noon", Email: true})
	blank := map[string]string{"title": "this field cannot be blank", "body": "this field cannot be blank"}

	tests := []httpTest{
		{name: "forbidden", method: http.MethodPost, path: "/v1/notifications", token: student, body: body, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "invalid", method: http.MethodPost, path: "/v1/notifications", token: admin, body: []byte(`{"title":" "}`), wantCode: http.StatusBadRequest, wantData: marchallObj(t, blank)},
	}
	runHTTPTests(t, app, tests)
	assert.Empty(t, app.mailer.SentMessages())

	req, rec := newAuthRequest(http.MethodPost, "/v1/notifications", admin, body)
	app.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var n notification.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, "Career fair", n.Title)
	assert.False(t, n.Read)
	assert.NotEmpty(t, n.ID)
	assert.Len(t, app.mailer.SentMessages(), 1)

	req, rec = newAuthRequest(http.MethodGet, "/v1/notifications?preview=1", student)
	app.do(req, rec)
	assert.Equal(t, []string{n.ID}, ids(t, rec.Body.Bytes()))
	req, rec = newAuthRequest(http.MethodGet, "/v1/notifications/unread-count", student)
	app.do(req, rec)
	assert.JSONEq(t, `{"unread":6}`, rec.Body.String())
}
