package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
)

type dashboardData struct {
	Flash   *Flash
	User    *core.User
	Summary *core.DashboardSummary
}

type analyticsData struct {
	Flash  *Flash
	User   *core.User
	Report *core.AnalyticsReport
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	summary, err := s.reports.Dashboard(r.Context(), user.ID, time.Now().UTC())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard failed", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "dashboard.html", dashboardData{
		Flash:   s.popFlash(w, r),
		User:    user,
		Summary: summary,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	report, err := s.reports.Analytics(r.Context(), user.ID, time.Now().UTC())
	if err != nil {
		slog.ErrorContext(r.Context(), "Analytics failed", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "analytics.html", analyticsData{
		Flash:  s.popFlash(w, r),
		User:   user,
		Report: report,
	})
}

// handleExportCSV serves the user's full history as a CSV attachment. The
// export is buffered so a mid-query failure can still become a clean 500.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var buf bytes.Buffer
	if err := s.reports.ExportCSV(r.Context(), user.ID, &buf); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	_, _ = w.Write(buf.Bytes())
}
