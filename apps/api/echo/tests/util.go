package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/pathways/apps/api/echo"
	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/dashboard"
	"github.com/trezcool/pathways/core/namespace"
	"github.com/trezcool/pathways/core/notification"
	"github.com/trezcool/pathways/core/session"
	emailsvc "github.com/trezcool/pathways/services/email"
	"github.com/trezcool/pathways/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server   *Server
	reg      *namespace.Registry
	boards   *dashboard.Boards
	sessions *session.Manager
	mailer   *emailsvc.ConsoleService
}

// fixtures are small seeds the tests can rely on.
func fixtures(t *testing.T) *namespace.Seeds {
	root := catalog.AdminUser{ID: 1, Name: "Root", Email: "root@test.test", Role: "Super Admin", Status: catalog.StatusActive}
	if err := root.SetPassword("password1"); err != nil {
		t.Fatalf("fixtures() failed: %v", err)
	}
	return &namespace.Seeds{
		Careers: []catalog.Career{
			{ID: 1, Name: "Medicine", Category: "Health"},
			{ID: 2, Name: "Law", Category: "Humanities"},
			{ID: 3, Name: "Nursing", Category: "Health"},
		},
		Mentors:    []catalog.Mentor{{ID: 5, Name: "A", Expertise: "Law"}},
		AdminUsers: []catalog.AdminUser{root},
		AdminRoles: []catalog.AdminRole{{ID: 1, Name: "Super Admin", Permissions: []string{"all"}}},
		Notifications: []notification.Notification{
			{ID: "1", Title: "One", Timestamp: "Just now"},
			{ID: "2", Title: "Two", Timestamp: "Yesterday", Read: true},
			{ID: "3", Title: "Three", Timestamp: "2 days ago"},
			{ID: "4", Title: "Four", Timestamp: "3 days ago"},
			{ID: "5", Title: "Five", Timestamp: "4 days ago"},
			{ID: "6", Title: "Six", Timestamp: "5 days ago"},
		},
	}
}

func setup(t *testing.T, quota ...int) *testApp {
	conf := core.NewTestConfig()
	logger := new(testutil.Logger)
	validate, translator := core.NewValidator()

	reg, _ := testutil.NewRegistry(t, logger, quota...)
	seeds := fixtures(t)
	boards := dashboard.NewBoards(reg, seeds, logger)
	mailer := emailsvc.NewConsoleServiceMock(conf, logger)
	feed := notification.NewFeed(reg.Notifications, seeds.Notifications).
		WithMailer(mailer, conf.DefaultFromEmail())
	sessions := session.NewManager(reg.Adapter, boards.AdminUsers, conf)

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Boards:     boards,
		Feed:       feed,
		Sessions:   sessions,
		Validate:   validate,
		Translator: translator,
	})
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	return &testApp{server: server, reg: reg, boards: boards, sessions: sessions, mailer: mailer}
}

func (app *testApp) do(req *http.Request, rec *httptest.ResponseRecorder) {
	app.server.ServeHTTP(rec, req)
}

func getToken(t *testing.T, app *testApp, creds session.Credentials) string {
	_, token, err := app.sessions.SignIn(context.Background(), creds)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func roleToken(t *testing.T, app *testApp, role string) string {
	creds := session.Credentials{Role: role, Name: "Test " + role, Email: role + "@test.test"}
	if role == core.RoleAdmin {
		creds = session.Credentials{Role: role, Email: "root@test.test", Password: "password1"}
	}
	return getToken(t, app, creds)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	if len(b2) == 0 {
		return len(bytes.TrimSpace(b1)) == 0, nil
	}
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func sessionCreds(role, email, pwd string) session.Credentials {
	return session.Credentials{Role: role, Email: email, Password: pwd}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
