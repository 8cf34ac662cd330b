package api

import (
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/higbec/project-portal-backend/auth"
	"github.com/higbec/project-portal-backend/errs"
)

// sessionCookieName is the HTTP-only cookie carrying the admin session token.
const sessionCookieName = "admin-token"

type sessionMiddleware struct {
	responder Responder
	secret    []byte
}

func newSessionMiddleware(secret []byte) sessionMiddleware {
	logger := log.With().Str("handlerName", "sessionMiddleware").Logger()
	return sessionMiddleware{
		responder: NewResponder(logger),
		secret:    secret,
	}
}

// authenticate gates admin-only routes. Missing, invalid and expired tokens
// all get the same generic 401 so the failure mode is not observable from
// outside.
func (m sessionMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			m.responder.WriteError(w, errs.NewUnauthorizedError("Authentication required"))
			return
		}

		claims, err := auth.ValidateToken(cookie.Value, m.secret)
		if err != nil {
			m.responder.WriteError(w, errs.NewUnauthorizedError("Authentication required"))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithAdmin(r.Context(), claims)))
	})
}

// requireRole layers a minimum-role check on top of authenticate. Nothing
// mounts it with more than RoleAdmin today.
func (m sessionMiddleware) requireRole(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := adminFromCtx(r.Context())
			if claims == nil {
				m.responder.WriteError(w, errs.NewUnauthorizedError("Authentication required"))
				return
			}
			if !auth.HasAtLeastRole(claims.Role, required) {
				m.responder.WriteError(w, errs.NewForbiddenError("Insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func RecoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)
	})
}

// RequestLogger logs every request, leveled by status class.
func RequestLogger(next http.Handler) http.Handler {
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		duration := time.Since(start)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = colorLogger.Error()
		case srw.status >= 400:
			logEvent = colorLogger.Warn()
		default:
			logEvent = colorLogger.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}
