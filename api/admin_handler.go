package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/higbec/project-portal-backend/auth"
	"github.com/higbec/project-portal-backend/database"
	"github.com/higbec/project-portal-backend/errs"
	"github.com/higbec/project-portal-backend/models"
)

const bcryptCost = 12

var adminEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type adminHandler struct {
	responder     Responder
	logger        zerolog.Logger
	adminRepo     *database.AdminRepo
	jwtSecret     []byte
	secureCookies bool
}

func newAdminHandler(adminRepo *database.AdminRepo, jwtSecret []byte, secureCookies bool) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		adminRepo:     adminRepo,
		jwtSecret:     jwtSecret,
		secureCookies: secureCookies,
	}
}

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authAction dispatches the login/register actions multiplexed onto one POST.
func (h adminHandler) authAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Malformed request body"))
			return
		}

		switch req.Action {
		case "login":
			h.handleLogin(w, req)
		case "register":
			h.handleRegister(w, req)
		default:
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid action"))
		}
	}
}

func (h adminHandler) handleLogin(w http.ResponseWriter, req authRequest) {
	if req.Email == "" || req.Password == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("Email and password are required"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !adminEmailRegex.MatchString(email) {
		h.responder.WriteError(w, errs.NewInvalidFieldError("email", "Invalid email format"))
		return
	}

	admin, err := h.adminRepo.FindActiveByEmail(email)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find", "admin", err))
		return
	}
	if admin == nil {
		h.responder.WriteError(w, errs.NewUnauthorizedError("Invalid credentials"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		h.responder.WriteError(w, errs.NewUnauthorizedError("Invalid credentials"))
		return
	}

	token, err := auth.GenerateToken(*admin, h.jwtSecret)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign session token")
		h.responder.WriteError(w, errs.NewInternalError("Login failed"))
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(auth.TokenTTL.Seconds())))

	h.logger.Info().Str("email", admin.Email).Msg("admin logged in")

	h.responder.WriteJSON(w, map[string]any{
		"message": "Login successful",
		"admin": map[string]any{
			"id":       admin.ID,
			"username": admin.Username,
			"email":    admin.Email,
			"role":     admin.Role,
		},
	})
}

func (h adminHandler) handleRegister(w http.ResponseWriter, req authRequest) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("Username, email, and password are required"))
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !adminEmailRegex.MatchString(email) {
		h.responder.WriteError(w, errs.NewInvalidFieldError("email", "Invalid email format"))
		return
	}
	if len(req.Password) < 6 {
		h.responder.WriteError(w, errs.NewBadRequestError("Password must be at least 6 characters long"))
		return
	}
	if len(username) < 3 {
		h.responder.WriteError(w, errs.NewBadRequestError("Username must be at least 3 characters long"))
		return
	}

	existing, err := h.adminRepo.FindByUsernameOrEmail(username, email)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find", "admin", err))
		return
	}
	if existing != nil {
		if existing.Email == email {
			h.responder.WriteError(w, errs.NewConflictError("Admin with this email already exists"))
		} else {
			h.responder.WriteError(w, errs.NewConflictError("Admin with this username already exists"))
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to hash password")
		h.responder.WriteError(w, errs.NewInternalError("Registration failed"))
		return
	}

	admin := models.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	if err := h.adminRepo.Add(&admin); err != nil {
		h.responder.WriteError(w, wrapDatabaseError("create", "admin", err))
		return
	}

	h.logger.Info().Str("username", admin.Username).Msg("admin registered")

	h.responder.WriteJSONStatus(w, http.StatusCreated, map[string]any{
		"message": "Admin registered successfully",
		"admin": map[string]any{
			"id":       admin.ID,
			"username": admin.Username,
			"email":    admin.Email,
			"role":     admin.Role,
		},
	})
}

// logout clears the session cookie.
func (h adminHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, h.sessionCookie("", -1))
		h.responder.WriteJSON(w, map[string]any{
			"message": "Logout successful",
		})
	}
}

func (h adminHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}
