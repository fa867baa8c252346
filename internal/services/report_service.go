package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// recentCount is how many expenses the dashboard previews.
const recentCount = 5

// trendMonths is the length of the analytics monthly trend.
const trendMonths = 12

// ReportService builds the dashboard, analytics and CSV export views.
type ReportService struct {
	storage *storage.SQLiteRepository
}

func NewReportService(storage *storage.SQLiteRepository) *ReportService {
	return &ReportService{storage: storage}
}

// Dashboard returns the recent expenses, the running total for the calendar
// month containing now, and that month's per-category sums. now is passed in
// so the month window is deterministic under test.
func (s *ReportService) Dashboard(ctx context.Context, userID int64, now time.Time) (*core.DashboardSummary, error) {
	recent, err := s.storage.ListExpenses(ctx, userID, recentCount, 0)
	if err != nil {
		return nil, err
	}

	monthStart := core.NewDate(now.Year(), int(now.Month()), 1)

	total, err := s.storage.SumAmountSince(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}

	byCategory, err := s.storage.CategorySums(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}

	return &core.DashboardSummary{
		Recent:     recent,
		MonthTotal: total,
		ByCategory: byCategory,
	}, nil
}

// Analytics returns the trailing twelve-month spending trend, oldest month
// first and including the month containing now, plus all-time category sums.
// Months with no expenses report a zero total.
func (s *ReportService) Analytics(ctx context.Context, userID int64, now time.Time) (*core.AnalyticsReport, error) {
	monthly := make([]core.MonthTotal, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		start := monthStartOffset(now, -i)
		end := monthStartOffset(now, -i+1)

		total, err := s.storage.SumAmountBetween(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("sum month %s: %w", start, err)
		}

		monthly = append(monthly, core.MonthTotal{
			Month: start.Month().String(),
			Year:  start.Year(),
			Total: total,
		})
	}

	byCategory, err := s.storage.CategorySums(ctx, userID, core.Date{})
	if err != nil {
		return nil, err
	}

	return &core.AnalyticsReport{
		Monthly:    monthly,
		ByCategory: byCategory,
	}, nil
}

// ExportCSV writes every expense the user owns as CSV, newest date first.
func (s *ReportService) ExportCSV(ctx context.Context, userID int64, w io.Writer) error {
	expenses, err := s.storage.ListAllExpenses(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Description", "Category", "Amount"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		record := []string{e.Date.String(), e.Description, e.Category, e.Amount.Format()}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// monthStartOffset returns the first day of the month `offset` months away
// from the month containing t. Offsets cross year boundaries; AddDate is
// avoided because it normalizes day-of-month overflow in surprising ways.
func monthStartOffset(t time.Time, offset int) core.Date {
	idx := t.Year()*12 + int(t.Month()) - 1 + offset
	return core.NewDate(idx/12, idx%12+1, 1)
}
