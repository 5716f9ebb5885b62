package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"bancoquestoes/internal/models"
	"bancoquestoes/internal/security"
	"bancoquestoes/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// SessionCookieName is the cookie carrying the session ID
const SessionCookieName = "session_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	rateLimiter *security.RateLimiter
	csrf        *security.CSRFGenerator
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, rateLimiter *security.RateLimiter, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{
		authService: authService,
		rateLimiter: rateLimiter,
		csrf:        csrf,
	}
}

func (m *Middleware) userFromRequest(r *http.Request) *models.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	user, err := m.authService.ValidateSession(cookie.Value)
	if err != nil {
		return nil
	}
	return user
}

// RequireAuth is middleware for page routes. Unauthenticated requests are
// redirected to the login page.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := m.userFromRequest(r)
		if user == nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireAuthJSON is middleware for API routes. Unauthenticated requests get
// a 401 JSON error instead of a redirect.
func (m *Middleware) RequireAuthJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := m.userFromRequest(r)
		if user == nil {
			respondJSONError(w, http.StatusUnauthorized, "Não autenticado", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect validates the csrf_token form field on HTML form posts. The
// token is bound to the session cookie the panel pages embed it for.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		if !m.csrf.ValidateToken(cookie.Value, r.FormValue("csrf_token")) {
			http.Error(w, "Invalid or expired form token", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects clients that exceed the per-IP request budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondJSONError(w, http.StatusTooManyRequests, "Muitas tentativas. Tente novamente em instantes.", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
