package http

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Config holds the server's HTTP-level settings.
type Config struct {
	Addr          string
	SecureCookies bool
}

type Server struct {
	http.Server
	templates     *template.Template
	auth          *services.AuthService
	expenses      *services.ExpenseService
	reports       *services.ReportService
	limiter       *ratelimit.Limiter
	secureCookies bool
	shutdownOnce  sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config, auth *services.AuthService, expenses *services.ExpenseService, reports *services.ReportService) (*Server, error) {
	mux := http.NewServeMux()

	s := &Server{
		auth:          auth,
		expenses:      expenses,
		reports:       reports,
		limiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 20}),
		secureCookies: cfg.SecureCookies,
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	// Static assets served from the embedded FS with a small cache.
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static fs: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /{$}", s.handleLanding)

	// The auth endpoints take the brunt of credential stuffing, so the rate
	// limiter guards only their POSTs.
	authLimit := s.limiter.Middleware(extractClientIP, nil)
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.Handle("POST /register", authLimit(http.HandlerFunc(s.handleRegister)))
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.Handle("POST /login", authLimit(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("GET /logout", s.handleLogout)

	mux.HandleFunc("GET /dashboard", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("GET /expenses", s.requireAuth(s.handleExpenses))
	mux.HandleFunc("GET /add_expense", s.requireAuth(s.handleAddExpenseForm))
	mux.HandleFunc("POST /add_expense", s.requireAuth(s.handleAddExpense))
	mux.HandleFunc("GET /edit_expense/{id}", s.requireAuth(s.handleEditExpenseForm))
	mux.HandleFunc("POST /edit_expense/{id}", s.requireAuth(s.handleEditExpense))
	mux.HandleFunc("GET /delete_expense/{id}", s.requireAuth(s.handleDeleteExpense))
	mux.HandleFunc("GET /analytics", s.requireAuth(s.handleAnalytics))
	mux.HandleFunc("GET /export_csv", s.requireAuth(s.handleExportCSV))
	mux.HandleFunc("POST /delete_account", s.requireAuth(s.handleDeleteAccount))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractClientIP)

	s.Server = http.Server{
		Addr:    cfg.Addr,
		Handler: tracer.Middleware(headers.Middleware(s.threatLogging(mux))),
	}

	return s, nil
}

// threatLogging flags scanner and injection probes in the logs. Requests are
// not blocked; the handlers themselves never honor these patterns.
func (s *Server) threatLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if detectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", extractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleLanding shows the public landing page, or goes straight to the
// dashboard for a logged-in visitor.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if s.currentUser(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.render(w, r, "landing.html", authFormData{Flash: s.popFlash(w, r)})
}
