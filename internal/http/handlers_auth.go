package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

// authFormData feeds the login and register templates. User stays nil; the
// shared page header keys the nav off it.
type authFormData struct {
	Flash    *Flash
	User     *core.User
	Username string
	Email    string
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", authFormData{Flash: s.popFlash(w, r)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	username := sanitizeInput(r.PostForm.Get("username"))
	email := sanitizeInput(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	_, err := s.auth.Register(r.Context(), username, email, password)
	if err != nil {
		if msg, expected := noticeFor(err); expected {
			s.render(w, r, "register.html", authFormData{
				Flash:    &Flash{Level: "error", Message: msg},
				Username: username,
				Email:    email,
			})
			return
		}
		slog.ErrorContext(r.Context(), "Registration failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.setFlash(w, "success", "Account created, you can log in now")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", authFormData{Flash: s.popFlash(w, r)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	username := sanitizeInput(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	token, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if msg, expected := noticeFor(err); expected {
			s.render(w, r, "login.html", authFormData{
				Flash:    &Flash{Level: "error", Message: msg},
				Username: username,
			})
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, s.sessionCookie(token, s.auth.TTL()))
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		if err := s.auth.Logout(r.Context(), c.Value); err != nil {
			slog.ErrorContext(r.Context(), "Logout failed", "error", err)
		}
	}
	http.SetCookie(w, s.sessionCookie("", 0))
	s.setFlash(w, "success", "Logged out")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleDeleteAccount removes the account with everything it owns.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.auth.DeleteAccount(r.Context(), user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Account deletion failed", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, s.sessionCookie("", 0))
	s.setFlash(w, "success", "Account deleted")
	http.Redirect(w, r, "/", http.StatusFound)
}
