// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/survetic/auth"
	"github.com/danielhkuo/survetic/cliparse"
	"github.com/danielhkuo/survetic/db"
	"github.com/danielhkuo/survetic/models"
)

// TestSecret is a 32-byte token signing secret for tests
const TestSecret = "test-secret-0123456789abcdefghij"

// TestPassword is the password given to every fixture user
const TestPassword = "password123"

// SetupTestDB creates a fresh SQLite database in a temp dir with the full
// schema migrated. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "survetic-test.db")

	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: cliparse.DatabaseSQLite,
		TokenSecret:  TestSecret,
		TokenTTL:     time.Hour,
		BcryptCost:   bcrypt.MinCost,
		SessionStore: cliparse.SessionStoreSQL,
		BaseURL:      "http://localhost:3318",
		MailFrom:     "Survetic <noreply@survetic.test>",
		LogLevel:     "error",
	}
}

// UserOpts tweaks a fixture user
type UserOpts struct {
	Unverified bool
	Admin      bool
	FirstName  string
}

// CreateTestUser inserts a user with TestPassword and returns its ID.
// Users are verified unless opts says otherwise.
func CreateTestUser(t *testing.T, conn *sql.DB, email string, opts UserOpts) string {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	firstName := opts.FirstName
	if firstName == "" {
		firstName = "Test"
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = conn.Exec(`
		INSERT INTO users (id, email, first_name, last_name, password_hash, is_verified, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, 'User', $4, $5, $6, $7, $8)
	`, id, strings.ToLower(email), firstName, hash, !opts.Unverified, opts.Admin, now, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return id
}

// SampleQuestions returns one question of every type. "color" and "score"
// are required.
func SampleQuestions() []models.Question {
	return []models.Question{
		{ID: "color", Type: models.QuestionMultipleChoice, Title: "Favorite color?", Required: true, Options: []string{"Red", "Green", "Blue"}},
		{ID: "why", Type: models.QuestionTextInput, Title: "Why?"},
		{ID: "score", Type: models.QuestionRating, Title: "How likely are you to recommend us?", Required: true, RatingScale: 5},
		{ID: "size", Type: models.QuestionDropdown, Title: "Shirt size", Options: []string{"S", "M", "L"}},
	}
}

// CreateTestSurvey inserts a survey owned by userID with SampleQuestions
// and returns its ID.
func CreateTestSurvey(t *testing.T, conn *sql.DB, userID string, published bool) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	questions, _ := json.Marshal(SampleQuestions())
	now := time.Now().UTC()

	_, err := conn.Exec(`
		INSERT INTO surveys (id, user_id, title, description, is_published, questions, theme, created_at, updated_at)
		VALUES ($1, $2, 'Test Survey', 'A test survey', $3, $4, '{"primaryColor":"#2563eb"}', $5, $6)
	`, id, userID, published, string(questions), now, now)
	if err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	return id
}

// CreateTestResponse inserts a response with the given answers (question ID
// to raw JSON value) and returns its ID.
func CreateTestResponse(t *testing.T, conn *sql.DB, surveyID string, complete bool, answers map[string]string) string {
	t.Helper()

	list := make([]models.Answer, 0, len(answers))
	for qid, raw := range answers {
		list = append(list, models.Answer{QuestionID: qid, Answer: json.RawMessage(raw)})
	}
	encoded, _ := json.Marshal(list)

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO responses (id, survey_id, answers, is_complete, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, surveyID, string(encoded), complete, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}

	return id
}

// Bearer returns headers carrying token as a bearer credential
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
