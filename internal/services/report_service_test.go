package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	repo := newTestRepo(t)
	expSvc := NewExpenseService(repo)
	svc := NewReportService(repo)
	user := newTestUser(t, repo, "alice")
	ctx := context.Background()

	now := time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)

	// Current month.
	_, err := expSvc.Create(ctx, user.ID, "20.00", "Groceries", "Food", "2024-01-05")
	require.NoError(t, err)
	_, err = expSvc.Create(ctx, user.ID, "15.00", "Dinner", "Food", "2024-01-10")
	require.NoError(t, err)
	_, err = expSvc.Create(ctx, user.ID, "8.00", "Bus", "Transport", "2024-01-12")
	require.NoError(t, err)
	// Previous month, excluded from the totals.
	_, err = expSvc.Create(ctx, user.ID, "99.00", "Old", "Misc", "2023-12-28")
	require.NoError(t, err)

	sum, err := svc.Dashboard(ctx, user.ID, now)
	require.NoError(t, err)

	require.Len(t, sum.Recent, 4)
	assert.Equal(t, "Bus", sum.Recent[0].Description)

	assert.Equal(t, int64(4300), sum.MonthTotal.Cents)

	require.Len(t, sum.ByCategory, 2)
	assert.Equal(t, "Food", sum.ByCategory[0].Name)
	assert.Equal(t, int64(3500), sum.ByCategory[0].Amount.Cents)
	assert.Equal(t, "Transport", sum.ByCategory[1].Name)
}

func TestDashboardRecentCapsAtFive(t *testing.T) {
	repo := newTestRepo(t)
	expSvc := NewExpenseService(repo)
	svc := NewReportService(repo)
	user := newTestUser(t, repo, "alice")
	ctx := context.Background()

	for day := 1; day <= 7; day++ {
		_, err := expSvc.Create(ctx, user.ID, "1.00", "e", "Misc",
			time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
		require.NoError(t, err)
	}

	sum, err := svc.Dashboard(ctx, user.ID, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, sum.Recent, 5)
	assert.Equal(t, "2024-03-07", sum.Recent[0].Date.String())
}

func TestDashboardEmptyMonth(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewReportService(repo)
	user := newTestUser(t, repo, "alice")

	sum, err := svc.Dashboard(context.Background(), user.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, sum.Recent)
	assert.Zero(t, sum.MonthTotal.Cents)
	assert.Empty(t, sum.ByCategory)
}

func TestAnalyticsTrend(t *testing.T) {
	repo := newTestRepo(t)
	expSvc := NewExpenseService(repo)
	svc := NewReportService(repo)
	user := newTestUser(t, repo, "alice")
	ctx := context.Background()

	// now is March 2024; the window runs April 2023..March 2024.
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	_, err := expSvc.Create(ctx, user.ID, "10.00", "In window", "Misc", "2023-04-01")
	require.NoError(t, err)
	_, err = expSvc.Create(ctx, user.ID, "20.00", "December", "Misc", "2023-12-31")
	require.NoError(t, err)
	_, err = expSvc.Create(ctx, user.ID, "30.00", "Current month", "Misc", "2024-03-15")
	require.NoError(t, err)
	_, err = expSvc.Create(ctx, user.ID, "99.00", "Too old", "Misc", "2023-03-31")
	require.NoError(t, err)

	report, err := svc.Analytics(ctx, user.ID, now)
	require.NoError(t, err)
	require.Len(t, report.Monthly, 12)

	first := report.Monthly[0]
	assert.Equal(t, "April", first.Month)
	assert.Equal(t, 2023, first.Year)
	assert.Equal(t, int64(1000), first.Total.Cents)

	// The year rollover keeps December 2023 and January 2024 adjacent.
	assert.Equal(t, "December", report.Monthly[8].Month)
	assert.Equal(t, 2023, report.Monthly[8].Year)
	assert.Equal(t, int64(2000), report.Monthly[8].Total.Cents)
	assert.Equal(t, "January", report.Monthly[9].Month)
	assert.Equal(t, 2024, report.Monthly[9].Year)
	assert.Zero(t, report.Monthly[9].Total.Cents)

	last := report.Monthly[11]
	assert.Equal(t, "March", last.Month)
	assert.Equal(t, 2024, last.Year)
	assert.Equal(t, int64(3000), last.Total.Cents)

	// All-time categories include the row outside the trend window.
	require.Len(t, report.ByCategory, 1)
	assert.Equal(t, int64(15900), report.ByCategory[0].Amount.Cents)
}

func TestExportCSV(t *testing.T) {
	repo := newTestRepo(t)
	expSvc := NewExpenseService(repo)
	svc := NewReportService(repo)
	user := newTestUser(t, repo, "alice")
	other := newTestUser(t, repo, "bob")
	ctx := context.Background()

	_, err := expSvc.Create(ctx, user.ID, "12.34", "Lunch, with drinks", "Food", "2024-01-10")
	require.NoError(t, err)
	_, err = expSvc.Create(ctx, user.ID, "5.00", "Bus", "Transport", "2024-01-15")
	require.NoError(t, err)
	_, err = expSvc.Create(ctx, other.ID, "777.00", "Not exported", "Misc", "2024-01-12")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, user.ID, &buf))

	got := buf.String()
	want := "Date,Description,Category,Amount\n" +
		"2024-01-15,Bus,Transport,5.00\n" +
		"2024-01-10,\"Lunch, with drinks\",Food,12.34\n"
	assert.Equal(t, want, got)
}

func TestExportCSVEmpty(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewReportService(repo)
	user := newTestUser(t, repo, "alice")

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), user.ID, &buf))
	assert.Equal(t, "Date,Description,Category,Amount\n", buf.String())
}
