// Package query translates a filter.Filter into a parameterized SQL query
// over the transactions, categories and banks join.
package query

import (
	"strings"

	"finledger/internal/filter"
)

// Query is a SQL statement with its positional arguments.
type Query struct {
	SQL  string
	Args []any
}

// TransactionColumns is the column order every transaction query selects.
// Scanners in the store rely on it.
var TransactionColumns = []string{
	"t.id",
	"t.amount",
	"t.transaction_date",
	"t.transaction_description",
	"t.transaction_type",
	"t.category_id",
	"c.category_name",
	"c.category_type",
	"t.bank_id",
	"b.bank_name",
	"b.logo_url",
	"t.created_at",
	"t.updated_at",
}

const fromJoin = `FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
LEFT JOIN banks b ON b.id = t.bank_id`

// Transactions builds the listing query for f. Date ordering of the bounds
// is not checked here; filter.New has already rejected reversed ranges.
// Rows sharing a date are ordered by id in the same direction.
func Transactions(f filter.Filter) Query {
	var (
		where []string
		args  []any
	)
	if f.DateRange.Start != "" {
		where = append(where, "t.transaction_date >= ?")
		args = append(args, f.DateRange.Start)
	}
	if f.DateRange.End != "" {
		where = append(where, "t.transaction_date <= ?")
		args = append(args, f.DateRange.End)
	}
	if f.BankID != nil {
		where = append(where, "t.bank_id = ?")
		args = append(args, *f.BankID)
	}
	if f.CategoryID != nil {
		where = append(where, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Type != nil {
		where = append(where, "t.transaction_type = ?")
		args = append(args, string(*f.Type))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(TransactionColumns, ", "))
	sb.WriteString("\n")
	sb.WriteString(fromJoin)
	if len(where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	dir := "DESC"
	if f.Ascending() {
		dir = "ASC"
	}
	sb.WriteString("\nORDER BY t.transaction_date " + dir + ", t.id " + dir)

	return Query{SQL: sb.String(), Args: args}
}

// TransactionByID selects a single joined row.
func TransactionByID(id int64) Query {
	return Query{
		SQL:  "SELECT " + strings.Join(TransactionColumns, ", ") + "\n" + fromJoin + "\nWHERE t.id = ?",
		Args: []any{id},
	}
}
