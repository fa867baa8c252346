package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"fintrack/internal/core"
)

const flashCookieName = "flash"

// Flash is a one-shot notice carried across a redirect.
type Flash struct {
	Level   string // "success" or "error"
	Message string
}

// setFlash stores a notice in a cookie; the next rendered page consumes it.
func (s *Server) setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(level + "|" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies,
	})
}

// popFlash reads and clears the pending notice, if any.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies,
	})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(raw, "|")
	if !ok {
		return &Flash{Level: "info", Message: raw}
	}
	return &Flash{Level: level, Message: message}
}

// render executes a page template, failing closed with a 500 on error.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// noticeFor maps an expected domain error to a user-facing message. The
// second return is false for unexpected errors, which become a 500 instead.
func noticeFor(err error) (string, bool) {
	for _, known := range []error{
		core.ErrDuplicateUsername,
		core.ErrDuplicateEmail,
		core.ErrInvalidCredentials,
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrEmptyDescription,
		core.ErrDescriptionTooLong,
		core.ErrEmptyCategory,
		core.ErrCategoryTooLong,
		core.ErrEmptyUsername,
		core.ErrEmptyPassword,
		core.ErrInvalidEmail,
	} {
		if errors.Is(err, known) {
			return capitalize(known.Error()), true
		}
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
