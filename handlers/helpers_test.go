// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/survetic/accounts"
	"github.com/danielhkuo/survetic/mailer"
	"github.com/danielhkuo/survetic/middleware"
	"github.com/danielhkuo/survetic/models"
	"github.com/danielhkuo/survetic/session"
	"github.com/danielhkuo/survetic/templates"
	"github.com/danielhkuo/survetic/testutil"
)

// testEnv wires every handler against one test database
type testEnv struct {
	db        *sql.DB
	accounts  *accounts.Service
	mail      *mailer.Recorder
	auth      *AuthHandler
	surveys   *SurveyHandler
	responses *ResponseHandler
	admin     *AdminHandler
	templates *TemplateHandler
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	rec := &mailer.Recorder{}
	svc := accounts.NewService(db, session.NewSQLStore(db), rec, testutil.GetTestConfig())
	catalog := templates.Default()

	return &testEnv{
		db:        db,
		accounts:  svc,
		mail:      rec,
		auth:      NewAuthHandler(svc),
		surveys:   NewSurveyHandler(db, catalog),
		responses: NewResponseHandler(db),
		admin:     NewAdminHandler(svc),
		templates: NewTemplateHandler(catalog),
	}
}

// asUser attaches a caller to req as RequireAuth would
func asUser(req *http.Request, userID string) *http.Request {
	id := &accounts.Identity{User: &models.User{ID: userID}, SessionID: "test-session"}
	return req.WithContext(middleware.WithIdentity(req.Context(), id))
}

// serve runs h against req and returns the recorder
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// login returns a bearer token for a fixture user
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp, err := e.accounts.Login(t.Context(), models.LoginRequest{Email: email, Password: testutil.TestPassword})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return resp.Token
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Code != code {
		t.Errorf("error code = %q, want %q (message %q)", resp.Code, code, resp.Message)
	}
}
