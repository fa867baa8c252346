package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// PageSize is the number of expenses per history page.
const PageSize = 10

// ExpensePage is one page of a user's expense history.
type ExpensePage struct {
	Expenses []core.Expense
	Page     int
	Total    int
	PageSize int
}

// TotalPages returns how many pages the history spans, at least 1.
func (p ExpensePage) TotalPages() int {
	n := (p.Total + p.PageSize - 1) / p.PageSize
	if n < 1 {
		return 1
	}
	return n
}

func (p ExpensePage) HasPrev() bool { return p.Page > 1 }
func (p ExpensePage) HasNext() bool { return p.Page < p.TotalPages() }
func (p ExpensePage) PrevPage() int { return p.Page - 1 }
func (p ExpensePage) NextPage() int { return p.Page + 1 }

// ExpenseService handles expense CRUD with ownership scoping.
type ExpenseService struct {
	storage *storage.SQLiteRepository
}

func NewExpenseService(storage *storage.SQLiteRepository) *ExpenseService {
	return &ExpenseService{storage: storage}
}

// List returns one page of the user's history, newest first. Pages below 1
// clamp to 1; pages past the end come back empty.
func (s *ExpenseService) List(ctx context.Context, userID int64, page int) (*ExpensePage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.storage.CountExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count expenses: %w", err)
	}

	expenses, err := s.storage.ListExpenses(ctx, userID, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}

	return &ExpensePage{
		Expenses: expenses,
		Page:     page,
		Total:    total,
		PageSize: PageSize,
	}, nil
}

// Create validates and stores a new expense. Amount and date arrive as the
// raw form strings; an empty date means today.
func (s *ExpenseService) Create(ctx context.Context, userID int64, amountStr, description, category, dateStr string) (*core.Expense, error) {
	e, err := buildExpense(userID, amountStr, description, category, dateStr)
	if err != nil {
		return nil, err
	}
	return s.storage.CreateExpense(ctx, *e)
}

// Get returns one of the user's expenses, core.ErrNotFound when the id does
// not exist or belongs to someone else.
func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (*core.Expense, error) {
	return s.storage.GetExpense(ctx, userID, id)
}

// Update replaces an expense's fields. Ownership rules match Get.
func (s *ExpenseService) Update(ctx context.Context, userID, id int64, amountStr, description, category, dateStr string) error {
	e, err := buildExpense(userID, amountStr, description, category, dateStr)
	if err != nil {
		return err
	}
	e.ID = id

	if err := s.storage.UpdateExpense(ctx, *e); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", id, "user_id", userID)
	return nil
}

// Delete removes an expense. Ownership rules match Get.
func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "user_id", userID)
	return nil
}

func buildExpense(userID int64, amountStr, description, category, dateStr string) (*core.Expense, error) {
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return nil, err
	}

	var date core.Date
	if dateStr == "" {
		date = core.Today()
	} else {
		date, err = core.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
	}

	e := core.Expense{
		Amount:      amount,
		Description: description,
		Category:    category,
		Date:        date,
		UserID:      userID,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
