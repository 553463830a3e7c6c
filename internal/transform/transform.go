// Package transform reshapes joined store rows into the nested transaction
// view model and computes income/expense summaries over them.
package transform

import (
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// Normalize nests the joined bank and category columns of row. A null
// foreign key yields a nil Bank or Category.
func Normalize(row core.TransactionRow) core.TransformedTransaction {
	tx := core.TransformedTransaction{
		ID:          row.ID,
		Amount:      row.Amount,
		Date:        row.Date,
		Description: row.Description.String,
		Type:        row.Type,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.CategoryID.Valid {
		tx.Category = &core.Category{
			ID:   row.CategoryID.Int64,
			Name: row.CategoryName.String,
			Type: core.TransactionType(row.CategoryType.String),
		}
	}
	if row.BankID.Valid {
		tx.Bank = &core.Bank{
			ID:      row.BankID.Int64,
			Name:    row.BankName.String,
			LogoURL: row.LogoURL.String,
		}
	}
	return tx
}

// NormalizeAll keeps the order of rows.
func NormalizeAll(rows []core.TransactionRow) []core.TransformedTransaction {
	out := make([]core.TransformedTransaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, Normalize(r))
	}
	return out
}

// Summarize totals Income and Expense amounts separately. Sums are exact;
// the result is rounded to two fractional digits only at the end.
func Summarize(txs []core.TransformedTransaction) core.Summary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return core.Summary{
		TotalIncome:   income.Round(core.AmountPlaces),
		TotalExpenses: expenses.Round(core.AmountPlaces),
	}
}
