package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// DashboardSummary is the compact overview shown on the dashboard:
// latest activity plus current-calendar-month totals.
type DashboardSummary struct {
	Recent     []Expense
	MonthTotal Money
	ByCategory []CategoryAmount
}

// MonthTotal is one point of the trailing 12-month trend.
type MonthTotal struct {
	Month string // English month name
	Year  int
	Total Money
}

// AnalyticsReport holds the 12-month trend (oldest to newest) and the
// all-time per-category breakdown.
type AnalyticsReport struct {
	Monthly    []MonthTotal
	ByCategory []CategoryAmount
}
