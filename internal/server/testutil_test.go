package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/silomba/backend/internal/config"
	"github.com/silomba/backend/internal/database"
	"github.com/silomba/backend/internal/middleware"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/internal/storage"
	"github.com/silomba/backend/pkg/utils"
	"gorm.io/gorm"
)

const testPosterMaxBytes = 64 * 1024

var pngPoster = append(
	[]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'},
	bytes.Repeat([]byte{0}, 64)...,
)

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	uploadDir string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	utils.ConfigureJWT("test-secret", 24)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating: %v", err)
	}

	uploadDir := t.TempDir()
	store, err := storage.NewLocalStore(uploadDir)
	if err != nil {
		t.Fatalf("failed creating poster store: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", CORSOrigins: "http://localhost:3000"},
		Auth: config.AuthConfig{
			CookieSecure:        false,
			AllowedEmailDomains: []string{"unhas.ac.id"},
		},
		Storage: config.StorageConfig{
			Driver:           "local",
			UploadDir:        uploadDir,
			PosterMaxBytes:   testPosterMaxBytes,
			CleanupQueueSize: 10,
		},
	}

	srv := New(cfg, db, store)
	t.Cleanup(func() {
		_ = srv.Shutdown(time.Second)
		_ = sqlDB.Close()
	})

	return &testEnv{app: srv.App, db: db, uploadDir: uploadDir}
}

// createTestUser inserts a user directly and returns a session token for it.
func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}
	user := &models.User{Name: "Test " + string(role), Email: email, PasswordHash: hash, Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}
	return user, token
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed creating test category: %v", err)
	}
	return category
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, token string) *http.Response {
	t.Helper()

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{fiber.HeaderContentType: fiber.MIMEApplicationJSON}
	return performRequest(t, app, method, path, bytes.NewReader(encoded), headers, token)
}

// performMultipartRequest sends fields plus an optional poster file.
func performMultipartRequest(t *testing.T, app *fiber.App, method, path string, fields map[string]string, poster []byte, token string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed writing field %s: %v", key, err)
		}
	}
	if poster != nil {
		part, err := writer.CreateFormFile("poster", "poster.png")
		if err != nil {
			t.Fatalf("failed creating poster part: %v", err)
		}
		if _, err := part.Write(poster); err != nil {
			t.Fatalf("failed writing poster: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	headers := map[string]string{fiber.HeaderContentType: writer.FormDataContentType()}
	return performRequest(t, app, method, path, &body, headers, token)
}

func competitionFields(categoryID string) map[string]string {
	now := time.Now().UTC()
	return map[string]string{
		"title":                 "Gemastik XIX",
		"shortDescription":      "Pagelaran mahasiswa TIK",
		"organizer":             "Puspresnas",
		"registrationStartDate": now.Add(-24 * time.Hour).Format(time.RFC3339),
		"registrationEndDate":   now.Add(14 * 24 * time.Hour).Format(time.RFC3339),
		"registrationFee":       "Rp150.000",
		"categoryId":            categoryID,
	}
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}
	return payload
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %+v", body)
	}
	return data
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data array, got %+v", body)
	}
	return data
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d body=%s", expected, resp.StatusCode, raw)
	}
}

func assertErrorCode(t *testing.T, body map[string]any, code string) {
	t.Helper()
	if body["status"] == "success" {
		t.Fatalf("expected failure envelope, got %+v", body)
	}
	if got, _ := body["code"].(string); got != code {
		t.Fatalf("expected code %q, got %q (%+v)", code, got, body)
	}
}

func posterPath(t *testing.T, env *testEnv, posterURL string) string {
	t.Helper()
	name, ok := storage.NameFromURL(posterURL)
	if !ok {
		t.Fatalf("not a stored poster url: %q", posterURL)
	}
	return filepath.Join(env.uploadDir, name)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// waitFor polls cond until it holds; background cleanup is asynchronous.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func titlesOf(t *testing.T, items []any) []string {
	t.Helper()
	out := make([]string, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			t.Fatalf("expected object in list, got %T", item)
		}
		title, _ := m["title"].(string)
		out = append(out, title)
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
