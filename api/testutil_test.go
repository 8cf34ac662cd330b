package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/higbec/project-portal-backend/auth"
	"github.com/higbec/project-portal-backend/database"
	"github.com/higbec/project-portal-backend/models"
	"github.com/higbec/project-portal-backend/storage"
)

var testJWTSecret = []byte("test-secret")

// stubFileStore records uploads and deletes in memory.
type stubFileStore struct {
	mu         sync.Mutex
	uploads    []string
	deletes    []string
	failUpload bool
	failDelete bool
}

func (s *stubFileStore) Upload(_ context.Context, body io.Reader, _, originalName string) (storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload {
		return storage.UploadResult{}, fmt.Errorf("store unavailable")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return storage.UploadResult{}, err
	}
	key := fmt.Sprintf("payment-screenshots/%d_%s", len(s.uploads), originalName)
	s.uploads = append(s.uploads, key)
	return storage.UploadResult{Key: key, PublicURL: "https://cdn.test/" + key}, nil
}

func (s *stubFileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return fmt.Errorf("store unavailable")
	}
	s.deletes = append(s.deletes, key)
	return nil
}

func (s *stubFileStore) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

func (s *stubFileStore) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

type testServer struct {
	router chi.Router
	db     database.Database
	files  *stubFileStore
}

// newTestServer wires the full route tree over an in-memory database.
func newTestServer(t *testing.T, screenshotRequired bool) testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db := database.New(gormDB)
	require.NoError(t, db.Bootstrap())

	files := &stubFileStore{}
	handlers := initializeHandlers(db, files, HandlerConfig{
		JWTSecret:          testJWTSecret,
		ScreenshotRequired: screenshotRequired,
	})

	router := chi.NewRouter()
	setupRoutes(router, handlers, newSessionMiddleware(testJWTSecret))

	return testServer{router: router, db: db, files: files}
}

func (ts testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// sessionCookieFor signs a token for a synthetic admin identity.
func sessionCookieFor(t *testing.T) *http.Cookie {
	return cookieForRole(t, models.RoleAdmin)
}

func cookieForRole(t *testing.T, role string) *http.Cookie {
	t.Helper()
	token, err := auth.GenerateToken(models.Admin{ID: 1, Email: "admin@x.com", Role: role}, testJWTSecret)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func adminRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = jsonRequest(t, method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.AddCookie(sessionCookieFor(t))
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// intakeForm holds the multipart fields of a registration submission.
type intakeForm struct {
	fields       map[string]string
	fileName     string
	fileType     string
	fileContents []byte
}

func validIntakeForm() intakeForm {
	return intakeForm{
		fields: map[string]string{
			"fullName":         "Jane Doe",
			"phoneNumber":      "9876543210",
			"email":            "jane@x.com",
			"collegeName":      "ABC Institute",
			"branch":           "CSE",
			"semester":         "6",
			"batchType":        "B.Tech",
			"registrationType": models.TypeIndividual,
			"projectTitle":     "Smart Irrigation System",
		},
		fileName:     "proof.png",
		fileType:     "image/png",
		fileContents: []byte("fake image bytes"),
	}
}

// multipartRequest builds a POST /api/register with the given form.
func multipartRequest(t *testing.T, form intakeForm) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range form.fields {
		require.NoError(t, writer.WriteField(name, value))
	}

	if form.fileName != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="paymentScreenshot"; filename=%q`, form.fileName))
		header.Set("Content-Type", form.fileType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(form.fileContents)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/register", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
