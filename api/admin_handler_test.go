package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerAdmin(t *testing.T, ts testServer, username, email, password string) {
	t.Helper()
	rec := ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action":   "register",
		"username": username,
		"email":    email,
		"password": password,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestAdminAuth_RegisterAndLogin(t *testing.T) {
	ts := newTestServer(t, true)
	registerAdmin(t, ts, "alice", "alice@x.com", "s3cret-pass")

	rec := ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action":   "login",
		"email":    "ALICE@X.COM",
		"password": "s3cret-pass",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "Login successful", body["message"])

	admin := body["admin"].(map[string]any)
	assert.Equal(t, "alice", admin["username"])
	assert.Equal(t, "alice@x.com", admin["email"])
	assert.Equal(t, "admin", admin["role"])
	assert.NotContains(t, admin, "passwordHash")

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	// The issued cookie opens the admin surface.
	req := httptest.NewRequest(http.MethodGet, "/api/registrations", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie.Value})
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuth_WrongPassword(t *testing.T) {
	ts := newTestServer(t, true)
	registerAdmin(t, ts, "alice", "alice@x.com", "s3cret-pass")

	rec := ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action":   "login",
		"email":    "alice@x.com",
		"password": "wrong-pass",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
}

func TestAdminAuth_UnknownEmail(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action":   "login",
		"email":    "nobody@x.com",
		"password": "whatever",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
}

func TestAdminAuth_LoginValidation(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action": "login",
		"email":  "alice@x.com",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email and password are required", decodeBody(t, rec)["message"])

	rec = ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action":   "login",
		"email":    "not-an-email",
		"password": "whatever",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email format", decodeBody(t, rec)["message"])
}

func TestAdminAuth_RegisterValidation(t *testing.T) {
	ts := newTestServer(t, true)

	cases := []struct {
		name    string
		payload map[string]any
		message string
	}{
		{
			"missing fields",
			map[string]any{"action": "register", "username": "alice"},
			"Username, email, and password are required",
		},
		{
			"short password",
			map[string]any{"action": "register", "username": "alice", "email": "alice@x.com", "password": "abc"},
			"Password must be at least 6 characters long",
		},
		{
			"short username",
			map[string]any{"action": "register", "username": "al", "email": "alice@x.com", "password": "s3cret-pass"},
			"Username must be at least 3 characters long",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", tc.payload))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, decodeBody(t, rec)["message"])
		})
	}
}

func TestAdminAuth_RegisterDuplicates(t *testing.T) {
	ts := newTestServer(t, true)
	registerAdmin(t, ts, "alice", "alice@x.com", "s3cret-pass")

	rec := ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action":   "register",
		"username": "other",
		"email":    "alice@x.com",
		"password": "s3cret-pass",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Admin with this email already exists", decodeBody(t, rec)["message"])

	rec = ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action":   "register",
		"username": "alice",
		"email":    "other@x.com",
		"password": "s3cret-pass",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Admin with this username already exists", decodeBody(t, rec)["message"])
}

func TestAdminAuth_InvalidAction(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, jsonRequest(t, http.MethodPost, "/api/admin/auth", map[string]any{
		"action": "impersonate",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action", decodeBody(t, rec)["message"])
}

func TestAdminAuth_Logout(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/admin/auth", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeBody(t, rec)["message"])

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}
