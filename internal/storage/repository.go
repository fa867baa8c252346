package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is the storage format for timestamps. RFC3339 in UTC keeps
// lexicographic and chronological order identical, so SQL comparisons work.
const timeLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, now.Format(timeLayout),
	)
	if err != nil {
		// Unique constraints are pre-checked by the service; a concurrent
		// registration can still trip them here.
		msg := err.Error()
		if strings.Contains(msg, "users.username") {
			return nil, core.ErrDuplicateUsername
		}
		if strings.Contains(msg, "users.email") {
			return nil, core.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)

	return &core.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		u.CreatedAt = t
	}
	return &u, nil
}

// DeleteUser removes a user account. Owned expenses and sessions are removed
// by the foreign-key cascade inside the same transaction.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}

	slog.InfoContext(ctx, "User deleted", "user_id", id)
	return nil
}

// --- sessions ---

func (r *SQLiteRepository) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token, userID, expiresAt.UTC().Format(timeLayout), time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSessionUser resolves a session token to its user. Missing or expired
// sessions report core.ErrNotFound.
func (r *SQLiteRepository) GetSessionUser(ctx context.Context, token string, now time.Time) (*core.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.created_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > ?
	`, token, now.UTC().Format(timeLayout))
	return r.scanUser(row)
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry and returns how
// many were removed.
func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, now.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions rows: %w", err)
	}
	return n, nil
}

// --- expenses ---
//
// Every expense query is scoped by user_id. That scoping is the only access
// control in the system; no expense statement may omit it.

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (amount_cents, description, category, date, user_id) VALUES (?, ?, ?, ?, ?)`,
		e.Amount.Cents, e.Description, e.Category, e.Date.String(), e.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create expense id: %w", err)
	}

	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"date", e.Date.String())

	return &e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, amount_cents, description, category, date, user_id
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)

	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, description = ?, category = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		e.Amount.Cents, e.Description, e.Category, e.Date.String(), e.ID, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListExpenses returns one page of a user's expenses, newest date first.
// Ties on date break on id so pages never overlap.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, limit, offset int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, description, category, date, user_id
		 FROM expenses WHERE user_id = ?
		 ORDER BY date DESC, id DESC
		 LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// ListAllExpenses returns every expense owned by the user, newest date first.
func (r *SQLiteRepository) ListAllExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, description, category, date, user_id
		 FROM expenses WHERE user_id = ?
		 ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list all expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r *SQLiteRepository) CountExpenses(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// SumAmountSince sums amounts with date >= from. Returns zero when no rows
// match.
func (r *SQLiteRepository) SumAmountSince(ctx context.Context, userID int64, from core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE user_id = ? AND date >= ?`,
		userID, from.String()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum amount since: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// SumAmountBetween sums amounts with from <= date < to. Returns zero when no
// rows match.
func (r *SQLiteRepository) SumAmountBetween(ctx context.Context, userID int64, from, to core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE user_id = ? AND date >= ? AND date < ?`,
		userID, from.String(), to.String()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum amount between: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// CategorySums returns per-category totals, largest first. A zero from date
// means all-time.
func (r *SQLiteRepository) CategorySums(ctx context.Context, userID int64, from core.Date) ([]core.CategoryAmount, error) {
	query := `SELECT category, SUM(amount_cents) FROM expenses WHERE user_id = ?`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.String())
	}
	query += ` GROUP BY category ORDER BY SUM(amount_cents) DESC, category ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	var sums []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, ca)
	}
	return sums, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*core.Expense, error) {
	var e core.Expense
	var date string
	if err := row.Scan(&e.ID, &e.Amount.Cents, &e.Description, &e.Category, &date, &e.UserID); err != nil {
		return nil, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	e.Date = d
	return &e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}
