// Package grouping partitions an ordered transaction list by bank or by
// category. Groups appear in the order their key is first seen, and each
// group keeps its transactions in the incoming order.
//
// Transactions whose bank or category no longer resolves are collected in a
// single Unassigned group, so the amounts across all groups always add up to
// the totals of the input list.
package grouping

import (
	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/transform"
)

const (
	// UnassignedID keys the group of transactions without a bank or category.
	// Store ids start at 1, so it never collides.
	UnassignedID int64 = 0

	UnassignedName = "Unassigned"
)

type (
	BankGroup struct {
		Bank          core.Bank
		IncomeAmount  decimal.Decimal
		ExpenseAmount decimal.Decimal
		Transactions  []core.TransformedTransaction
	}

	// CategoryGroup reports only the amount matching the category's own
	// type; the other one stays zero. The Unassigned group has no type and
	// reports both.
	CategoryGroup struct {
		Category      core.Category
		IncomeAmount  decimal.Decimal
		ExpenseAmount decimal.Decimal
		Transactions  []core.TransformedTransaction
	}
)

func (g BankGroup) Unassigned() bool {
	return g.Bank.ID == UnassignedID
}

func (g CategoryGroup) Unassigned() bool {
	return g.Category.ID == UnassignedID
}

// Total is the sum of both amounts of the group.
func (g BankGroup) Total() decimal.Decimal {
	return g.IncomeAmount.Add(g.ExpenseAmount)
}

func (g CategoryGroup) Total() decimal.Decimal {
	return g.IncomeAmount.Add(g.ExpenseAmount)
}

// ByBank groups txs by bank.
func ByBank(txs []core.TransformedTransaction) []BankGroup {
	var (
		groups []BankGroup
		index  = map[int64]int{}
	)
	for _, tx := range txs {
		key := core.Bank{ID: UnassignedID, Name: UnassignedName}
		if tx.Bank != nil {
			key = *tx.Bank
		}
		i, ok := index[key.ID]
		if !ok {
			i = len(groups)
			index[key.ID] = i
			groups = append(groups, BankGroup{Bank: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}

	for i := range groups {
		s := transform.Summarize(groups[i].Transactions)
		groups[i].IncomeAmount = s.TotalIncome
		groups[i].ExpenseAmount = s.TotalExpenses
	}
	return groups
}

// ByCategory groups txs by category.
func ByCategory(txs []core.TransformedTransaction) []CategoryGroup {
	var (
		groups []CategoryGroup
		index  = map[int64]int{}
	)
	for _, tx := range txs {
		key := core.Category{ID: UnassignedID, Name: UnassignedName}
		if tx.Category != nil {
			key = *tx.Category
		}
		i, ok := index[key.ID]
		if !ok {
			i = len(groups)
			index[key.ID] = i
			groups = append(groups, CategoryGroup{Category: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}

	for i := range groups {
		g := &groups[i]
		g.IncomeAmount, g.ExpenseAmount = decimal.Zero, decimal.Zero
		switch g.Category.Type {
		case core.Income:
			g.IncomeAmount = sum(g.Transactions)
		case core.Expense:
			g.ExpenseAmount = sum(g.Transactions)
		default:
			s := transform.Summarize(g.Transactions)
			g.IncomeAmount, g.ExpenseAmount = s.TotalIncome, s.TotalExpenses
		}
	}
	return groups
}

func sum(txs []core.TransformedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total.Round(core.AmountPlaces)
}
