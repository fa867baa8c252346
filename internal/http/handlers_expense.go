package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// expenseFormData feeds the add/edit expense template. The raw form strings
// are echoed back on validation errors so the user does not lose input.
type expenseFormData struct {
	Flash    *Flash
	User     *core.User
	Title    string
	Action   string
	Amount   string
	Descr    string
	Category string
	Date     string
}

type expenseListData struct {
	Flash *Flash
	User  *core.User
	Page  *services.ExpensePage
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}

	list, err := s.expenses.List(r.Context(), user.ID, page)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list failed", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "expenses.html", expenseListData{
		Flash: s.popFlash(w, r),
		User:  user,
		Page:  list,
	})
}

func (s *Server) handleAddExpenseForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "expense_form.html", expenseFormData{
		Flash:  s.popFlash(w, r),
		User:   userFrom(r.Context()),
		Title:  "Add Expense",
		Action: "/add_expense",
		Date:   core.Today().String(),
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := expenseForm(r)
	_, err := s.expenses.Create(r.Context(), user.ID, form.Amount, form.Descr, form.Category, form.Date)
	if err != nil {
		if msg, expected := noticeFor(err); expected {
			form.Flash = &Flash{Level: "error", Message: msg}
			form.User = user
			form.Title = "Add Expense"
			form.Action = "/add_expense"
			s.render(w, r, "expense_form.html", form)
			return
		}
		slog.ErrorContext(r.Context(), "Expense create failed", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.setFlash(w, "success", "Expense added")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleEditExpenseForm(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	e, err := s.expenses.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.setFlash(w, "error", "Expense not found")
			http.Redirect(w, r, "/expenses", http.StatusFound)
			return
		}
		slog.ErrorContext(r.Context(), "Expense load failed", "user_id", user.ID, "expense_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "expense_form.html", expenseFormData{
		Flash:    s.popFlash(w, r),
		User:     user,
		Title:    "Edit Expense",
		Action:   "/edit_expense/" + strconv.FormatInt(e.ID, 10),
		Amount:   e.Amount.Format(),
		Descr:    e.Description,
		Category: e.Category,
		Date:     e.Date.String(),
	})
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := expenseForm(r)
	err := s.expenses.Update(r.Context(), user.ID, id, form.Amount, form.Descr, form.Category, form.Date)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.setFlash(w, "error", "Expense not found")
			http.Redirect(w, r, "/expenses", http.StatusFound)
			return
		}
		if msg, expected := noticeFor(err); expected {
			form.Flash = &Flash{Level: "error", Message: msg}
			form.User = user
			form.Title = "Edit Expense"
			form.Action = "/edit_expense/" + strconv.FormatInt(id, 10)
			s.render(w, r, "expense_form.html", form)
			return
		}
		slog.ErrorContext(r.Context(), "Expense update failed", "user_id", user.ID, "expense_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.setFlash(w, "success", "Expense updated")
	http.Redirect(w, r, "/expenses", http.StatusFound)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := s.expenses.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.setFlash(w, "error", "Expense not found")
			http.Redirect(w, r, "/expenses", http.StatusFound)
			return
		}
		slog.ErrorContext(r.Context(), "Expense delete failed", "user_id", user.ID, "expense_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.setFlash(w, "success", "Expense deleted")
	http.Redirect(w, r, "/expenses", http.StatusFound)
}

// expenseForm pulls the expense fields out of a parsed form.
func expenseForm(r *http.Request) expenseFormData {
	return expenseFormData{
		Amount:   sanitizeInput(r.PostForm.Get("amount")),
		Descr:    sanitizeInput(r.PostForm.Get("description")),
		Category: sanitizeInput(r.PostForm.Get("category")),
		Date:     sanitizeInput(r.PostForm.Get("date")),
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
