package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finledger/internal/core"
	"finledger/internal/query"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an update or delete matches no row.
var ErrNotFound = errors.New("record not found")

// SQLiteRepository owns the single shared connection to the ledger file.
type SQLiteRepository struct {
	db   *sql.DB
	path string
	loc  *time.Location
}

// NewSQLiteRepository opens (creating if needed) the ledger at dbPath and
// migrates it. Transaction dates are written and read as wall-clock times
// in loc.
func NewSQLiteRepository(dbPath string, loc *time.Location) (*SQLiteRepository, error) {
	if loc == nil {
		loc = time.UTC
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer, one handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath, loc: loc}, nil
}

// Exists reports whether a ledger file is present at dbPath.
func Exists(dbPath string) (bool, error) {
	_, err := os.Stat(dbPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat database: %w", err)
}

// Destroy removes the ledger file and its journal side files.
func Destroy(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm", dbPath + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path is the file backing the repository.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Query runs a read statement.
func (r *SQLiteRepository) Query(ctx context.Context, stmt string, args ...any) (*sql.Rows, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// Execute runs a write statement and returns the number of affected rows.
func (r *SQLiteRepository) Execute(ctx context.Context, stmt string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ExecuteBatch runs stmts in one transaction; either all apply or none.
func (r *SQLiteRepository) ExecuteBatch(ctx context.Context, stmts []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Seed inserts the default banks and categories into an empty ledger.
// It reports whether anything was written.
func (r *SQLiteRepository) Seed(ctx context.Context) (bool, error) {
	var banks, categories int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM banks").Scan(&banks); err != nil {
		return false, fmt.Errorf("count banks: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&categories); err != nil {
		return false, fmt.Errorf("count categories: %w", err)
	}
	if banks > 0 || categories > 0 {
		return false, nil
	}
	if err := r.ExecuteBatch(ctx, seedStatements); err != nil {
		return false, fmt.Errorf("seed ledger: %w", err)
	}

	slog.InfoContext(ctx, "Ledger seeded with default banks and categories", "path", r.path)
	return true, nil
}

// ListTransactions runs a query built by the query package.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, q query.Query) ([]core.TransactionRow, error) {
	rows, err := r.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.TransactionRow
	for rows.Next() {
		row, err := r.scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// GetTransaction returns the joined row for id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.TransactionRow, error) {
	q := query.TransactionByID(id)
	row, err := r.scanTransactionRow(r.db.QueryRowContext(ctx, q.SQL, q.Args...))
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionRow{}, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.TransactionRow{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return row, nil
}

// CountTransactions returns the number of stored transactions.
func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.NewTransaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (amount, transaction_date, transaction_description, category_id, bank_id, transaction_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		core.FormatAmount(t.Amount),
		t.Date.In(r.loc).Format(core.StoreLayout),
		nullString(t.Description),
		t.CategoryID,
		t.BankID,
		string(t.Type),
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"amount", core.FormatAmount(t.Amount),
		"type", t.Type,
		"bank_id", t.BankID,
		"category_id", t.CategoryID)

	return id, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, u core.TransactionUpdate) error {
	n, err := r.Execute(ctx, `
		UPDATE transactions
		SET amount = ?, transaction_date = ?, transaction_description = ?, category_id = ?, bank_id = ?,
		    transaction_type = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		core.FormatAmount(u.Amount),
		u.Date.In(r.loc).Format(core.StoreLayout),
		nullString(u.Description),
		u.CategoryID,
		u.BankID,
		string(u.Type),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", u.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update transaction %d: %w", u.ID, ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction updated in SQLite", "id", u.ID)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	n, err := r.Execute(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ListBanks(ctx context.Context) ([]core.Bank, error) {
	rows, err := r.Query(ctx, "SELECT id, bank_name, logo_url FROM banks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var out []core.Bank
	for rows.Next() {
		var (
			b    core.Bank
			logo sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &logo); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		b.LogoURL = logo.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banks: %w", err)
	}
	return out, nil
}

// DeleteBank removes a bank. Transactions referencing it keep existing with
// a null bank_id.
func (r *SQLiteRepository) DeleteBank(ctx context.Context, id int64) error {
	n, err := r.Execute(ctx, "DELETE FROM banks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bank %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete bank %d: %w", id, ErrNotFound)
	}

	slog.WarnContext(ctx, "Bank deleted, referencing transactions are now unassigned", "bank_id", id)
	return nil
}

// ListCategories returns all categories, or only those of typ when non-nil.
func (r *SQLiteRepository) ListCategories(ctx context.Context, typ *core.TransactionType) ([]core.Category, error) {
	stmt := "SELECT id, category_name, category_type FROM categories"
	var args []any
	if typ != nil {
		stmt += " WHERE category_type = ?"
		args = append(args, string(*typ))
	}
	stmt += " ORDER BY id"

	rows, err := r.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c    core.Category
			kind string
		)
		if err := rows.Scan(&c.ID, &c.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(kind)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// InsertCategory appends a category. There is deliberately no update or
// delete counterpart.
func (r *SQLiteRepository) InsertCategory(ctx context.Context, name string, typ core.TransactionType) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (category_name, category_type) VALUES (?, ?)", name, string(typ))
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert category id: %w", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite", "id", id, "name", name, "type", typ)
	return id, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanTransactionRow(sc scanner) (core.TransactionRow, error) {
	var (
		row                    core.TransactionRow
		typ                    string
		date, created, updated any
	)
	err := sc.Scan(
		&row.ID,
		&row.Amount,
		&date,
		&row.Description,
		&typ,
		&row.CategoryID,
		&row.CategoryName,
		&row.CategoryType,
		&row.BankID,
		&row.BankName,
		&row.LogoURL,
		&created,
		&updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, err
		}
		return row, fmt.Errorf("scan transaction: %w", err)
	}
	row.Type = core.TransactionType(typ)

	if row.Date, err = parseStoredTime(date, r.loc); err != nil {
		return row, fmt.Errorf("transaction %d date: %w", row.ID, err)
	}
	// CURRENT_TIMESTAMP is UTC.
	if row.CreatedAt, err = parseStoredTime(created, time.UTC); err != nil {
		return row, fmt.Errorf("transaction %d created_at: %w", row.ID, err)
	}
	if row.UpdatedAt, err = parseStoredTime(updated, time.UTC); err != nil {
		return row, fmt.Errorf("transaction %d updated_at: %w", row.ID, err)
	}
	return row, nil
}

// parseStoredTime reads a date column as wall-clock time in loc. The driver
// may hand back either text or an already parsed time.Time.
func parseStoredTime(v any, loc *time.Location) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
	case []byte:
		return parseStoredText(string(t), loc)
	case string:
		return parseStoredText(t, loc)
	}
	return time.Time{}, fmt.Errorf("unsupported date value %T", v)
}

func parseStoredText(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{core.StoreLayout, core.DayLayout, time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			if layout == time.RFC3339Nano {
				return parseStoredTime(t, loc)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
