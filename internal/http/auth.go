package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
)

const sessionCookieName = "fintrack_session"

type contextKey string

const userContextKey contextKey = "user"

// sessionCookie builds the login cookie. maxAge <= 0 clears it.
func (s *Server) sessionCookie(token string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge.Seconds())
	} else {
		c.MaxAge = -1
	}
	return c
}

// currentUser returns the session user, or nil when the request carries no
// valid session. Unexpected storage failures also come back nil; the caller
// then treats the visitor as logged out.
func (s *Server) currentUser(r *http.Request) *core.User {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	user, err := s.auth.UserFromSession(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, core.ErrUnauthenticated) {
			slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
		}
		return nil
	}
	return user
}

// requireAuth resolves the session cookie to a user and puts it in the
// request context. Anything less redirects to the login page with the stale
// cookie cleared.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			http.SetCookie(w, s.sessionCookie("", 0))
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// userFrom returns the authenticated user placed in the context by
// requireAuth. Handlers behind the middleware can rely on it being set.
func userFrom(ctx context.Context) *core.User {
	user, _ := ctx.Value(userContextKey).(*core.User)
	return user
}
