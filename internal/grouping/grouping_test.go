package grouping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/transform"
)

var (
	cash   = &core.Bank{ID: 4, Name: "Cash"}
	nequi  = &core.Bank{ID: 7, Name: "Nequi"}
	food   = &core.Category{ID: 1, Name: "Food", Type: core.Expense}
	salary = &core.Category{ID: 11, Name: "Salary", Type: core.Income}
	zero   = decimal.Zero
)

func tx(id int64, amt string, typ core.TransactionType, bank *core.Bank, cat *core.Category) core.TransformedTransaction {
	return core.TransformedTransaction{
		ID:       id,
		Amount:   decimal.RequireFromString(amt),
		Type:     typ,
		Bank:     bank,
		Category: cat,
	}
}

func sample() []core.TransformedTransaction {
	return []core.TransformedTransaction{
		tx(6, "10.00", core.Expense, nequi, food),
		tx(5, "2000.00", core.Income, cash, salary),
		tx(4, "25.50", core.Expense, cash, food),
		tx(3, "8.25", core.Expense, nil, food),
		tx(2, "100.00", core.Income, nequi, nil),
		tx(1, "3.10", core.Expense, nil, nil),
	}
}

func ids(txs []core.TransformedTransaction) []int64 {
	out := make([]int64, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func TestByBank(t *testing.T) {
	groups := ByBank(sample())
	require.Len(t, groups, 3)

	assert.Equal(t, "Nequi", groups[0].Bank.Name)
	assert.Equal(t, []int64{6, 2}, ids(groups[0].Transactions))
	assert.Equal(t, "100.00", core.FormatAmount(groups[0].IncomeAmount))
	assert.Equal(t, "10.00", core.FormatAmount(groups[0].ExpenseAmount))

	assert.Equal(t, "Cash", groups[1].Bank.Name)
	assert.Equal(t, []int64{5, 4}, ids(groups[1].Transactions))
	assert.Equal(t, "2000.00", core.FormatAmount(groups[1].IncomeAmount))
	assert.Equal(t, "25.50", core.FormatAmount(groups[1].ExpenseAmount))

	assert.True(t, groups[2].Unassigned())
	assert.Equal(t, UnassignedName, groups[2].Bank.Name)
	assert.Equal(t, []int64{3, 1}, ids(groups[2].Transactions))
	assert.Equal(t, "11.35", core.FormatAmount(groups[2].ExpenseAmount))
}

func TestByCategory(t *testing.T) {
	groups := ByCategory(sample())
	require.Len(t, groups, 3)

	assert.Equal(t, "Food", groups[0].Category.Name)
	assert.Equal(t, []int64{6, 4, 3}, ids(groups[0].Transactions))
	assert.Equal(t, "43.75", core.FormatAmount(groups[0].ExpenseAmount))
	assert.True(t, groups[0].IncomeAmount.IsZero())

	assert.Equal(t, "Salary", groups[1].Category.Name)
	assert.Equal(t, "2000.00", core.FormatAmount(groups[1].IncomeAmount))
	assert.True(t, groups[1].ExpenseAmount.IsZero())

	assert.True(t, groups[2].Unassigned())
	assert.Equal(t, "100.00", core.FormatAmount(groups[2].IncomeAmount))
	assert.Equal(t, "3.10", core.FormatAmount(groups[2].ExpenseAmount))
}

func TestByCategory_AmountFollowsCategoryType(t *testing.T) {
	// A mismatched transaction type is still reported under the category's type.
	groups := ByCategory([]core.TransformedTransaction{
		tx(1, "5.00", core.Income, cash, food),
		tx(2, "7.00", core.Expense, cash, food),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "12.00", core.FormatAmount(groups[0].ExpenseAmount))
	assert.True(t, groups[0].IncomeAmount.IsZero())
}

func TestGroupingPreservesTotals(t *testing.T) {
	inputs := [][]core.TransformedTransaction{nil, sample(), sample()[:1], sample()[3:]}
	for _, in := range inputs {
		s := transform.Summarize(in)
		want := s.TotalIncome.Add(s.TotalExpenses)

		bankTotal := zero
		for _, g := range ByBank(in) {
			bankTotal = bankTotal.Add(g.Total())
		}
		assert.True(t, want.Equal(bankTotal), "bank groups: want %s got %s", want, bankTotal)

		catTotal := zero
		for _, g := range ByCategory(in) {
			catTotal = catTotal.Add(g.Total())
		}
		assert.True(t, want.Equal(catTotal), "category groups: want %s got %s", want, catTotal)
	}
}

func TestGroupingIsIdempotent(t *testing.T) {
	in := sample()
	before := append([]core.TransformedTransaction(nil), in...)

	assert.Equal(t, ByBank(in), ByBank(in))
	assert.Equal(t, ByCategory(in), ByCategory(in))
	assert.Equal(t, before, in)
}

func TestGroupingEmpty(t *testing.T) {
	assert.Empty(t, ByBank(nil))
	assert.Empty(t, ByCategory(nil))
}
