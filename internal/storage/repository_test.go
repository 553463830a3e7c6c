package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/filter"
	"finledger/internal/query"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(path, time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	seeded, err := repo.Seed(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)
	return repo
}

func newTx(amount string, date time.Time, typ core.TransactionType, bankID, categoryID int64) core.NewTransaction {
	return core.NewTransaction{
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
		CategoryID: categoryID,
		BankID:     bankID,
		Type:       typ,
	}
}

func TestExistsAndDestroy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	repo, err := NewSQLiteRepository(path, time.UTC)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	ok, err = Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, Destroy(path))
	ok, err = Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	// Destroying twice is harmless.
	assert.NoError(t, Destroy(path))
}

func TestSeedRunsOnce(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	seeded, err := repo.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	banks, err := repo.ListBanks(ctx)
	require.NoError(t, err)
	assert.Len(t, banks, 8)
	assert.Equal(t, "Cash", banks[3].Name)

	all, err := repo.ListCategories(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 14)

	income := core.Income
	incomeCats, err := repo.ListCategories(ctx, &income)
	require.NoError(t, err)
	assert.Len(t, incomeCats, 4)
	for _, c := range incomeCats {
		assert.Equal(t, core.Income, c.Type)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	version, dirty, err := MigrationVersion(path)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	repo, err := NewSQLiteRepository(path, time.UTC)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	version, err = RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	repo, err = NewSQLiteRepository(path, time.UTC)
	require.NoError(t, err)
	assert.NoError(t, repo.Close())

	version, dirty, err = MigrationVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestDirtySchemaIsRefused(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(path, time.UTC)
	require.NoError(t, err)
	_, err = repo.Execute(ctx, "UPDATE schema_migrations SET dirty = 1")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, dirty, err := MigrationVersion(path)
	require.NoError(t, err)
	assert.True(t, dirty)

	_, err = NewSQLiteRepository(path, time.UTC)
	assert.ErrorIs(t, err, ErrDirtySchema)
}

func TestLargestAmountRoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	id, err := repo.InsertTransaction(ctx, newTx("99999999.99", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), core.Income, 4, 11))
	require.NoError(t, err)

	row, err := repo.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "99999999.99", core.FormatAmount(row.Amount))
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	in := newTx("50.00", date, core.Expense, 4, 1)
	in.Description = "market"
	id, err := repo.InsertTransaction(ctx, in)
	require.NoError(t, err)

	row, err := repo.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, row.ID)
	assert.Equal(t, "50.00", core.FormatAmount(row.Amount))
	assert.True(t, row.Date.Equal(date), "date %s", row.Date)
	assert.Equal(t, "market", row.Description.String)
	assert.Equal(t, core.Expense, row.Type)
	assert.Equal(t, "Food", row.CategoryName.String)
	assert.Equal(t, "Expense", row.CategoryType.String)
	assert.Equal(t, "Cash", row.BankName.String)
	assert.False(t, row.CreatedAt.IsZero())

	update := core.TransactionUpdate{ID: id, NewTransaction: newTx("12.34", date.AddDate(0, 0, 1), core.Income, 7, 11)}
	require.NoError(t, repo.UpdateTransaction(ctx, update))

	row, err = repo.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "12.34", core.FormatAmount(row.Amount))
	assert.Equal(t, "Nequi", row.BankName.String)
	assert.Equal(t, "Salary", row.CategoryName.String)
	assert.False(t, row.Description.Valid)

	require.NoError(t, repo.DeleteTransaction(ctx, id))
	_, err = repo.GetTransaction(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingRowsReportNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	err := repo.UpdateTransaction(ctx, core.TransactionUpdate{ID: 99, NewTransaction: newTx("1", time.Now(), core.Expense, 1, 1)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, 99), ErrNotFound)
	assert.ErrorIs(t, repo.DeleteBank(ctx, 99), ErrNotFound)
}

func TestListTransactionsWithFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, tx := range []core.NewTransaction{
		newTx("10", jan2, core.Expense, 4, 1),
		newTx("20", jan1, core.Expense, 4, 1),
		newTx("30", jan1, core.Income, 7, 11),
	} {
		_, err := repo.InsertTransaction(ctx, tx)
		require.NoError(t, err)
	}

	rows, err := repo.ListTransactions(ctx, query.Transactions(filter.Filter{
		DateRange: filter.DateRange{Start: "2024-01-01 00:00:00", End: "2024-01-01 23:59:59"},
		Order:     filter.Ascending,
	}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "20.00", core.FormatAmount(rows[0].Amount))
	assert.Equal(t, "30.00", core.FormatAmount(rows[1].Amount))

	bank := int64(7)
	rows, err = repo.ListTransactions(ctx, query.Transactions(filter.Filter{BankID: &bank, Order: filter.Descending}))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Nequi", rows[0].BankName.String)

	rows, err = repo.ListTransactions(ctx, query.Transactions(filter.Filter{Order: filter.Descending}))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Date.Equal(jan2))
	// Same date: newer id first when descending.
	assert.Greater(t, rows[1].ID, rows[2].ID)
}

func TestListTransactionsEmpty(t *testing.T) {
	repo := newTestRepository(t)
	rows, err := repo.ListTransactions(context.Background(), query.Transactions(filter.Filter{}))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteBankSetsNull(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	id, err := repo.InsertTransaction(ctx, newTx("5", time.Now(), core.Expense, 2, 1))
	require.NoError(t, err)
	require.NoError(t, repo.DeleteBank(ctx, 2))

	row, err := repo.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.False(t, row.BankID.Valid)
	assert.False(t, row.BankName.Valid)
	assert.True(t, row.CategoryID.Valid)
}

func TestInsertCategory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	id, err := repo.InsertCategory(ctx, "Pets", core.Expense)
	require.NoError(t, err)
	assert.Equal(t, int64(15), id)

	_, err = repo.InsertCategory(ctx, "Broken", core.TransactionType("Transfer"))
	assert.Error(t, err, "check constraint must reject unknown types")
}

func TestExecuteBatchRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	err := repo.ExecuteBatch(ctx, []string{
		"INSERT INTO banks (bank_name) VALUES ('Temp')",
		"INSERT INTO nowhere VALUES (1)",
	})
	require.Error(t, err)

	banks, err := repo.ListBanks(ctx)
	require.NoError(t, err)
	assert.Len(t, banks, 8)
}

func TestExecuteReturnsAffectedRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	n, err := repo.Execute(ctx, "UPDATE banks SET logo_url = ? WHERE id <= ?", "", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestParseStoredTime(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, loc)

	for _, v := range []any{"2024-01-01 10:00:00", []byte("2024-01-01 10:00:00"), time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)} {
		got, err := parseStoredTime(v, loc)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%v -> %v", v, got)
	}

	got, err := parseStoredTime(nil, loc)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseStoredTime("yesterday", loc)
	assert.Error(t, err)
}
