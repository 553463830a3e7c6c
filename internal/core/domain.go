package core

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Expense TransactionType = "Expense"
	Income  TransactionType = "Income"
)

// MaxCategoryNameLength is the longest category name accepted, in characters.
const MaxCategoryNameLength = 25

// MaxDescriptionLength bounds the free-text transaction description.
const MaxDescriptionLength = 200

type (
	TransactionType string

	Bank struct {
		ID      int64
		Name    string
		LogoURL string
	}

	// Category is append-only: once stored it is never edited or removed.
	Category struct {
		ID   int64
		Name string
		Type TransactionType
	}

	Transaction struct {
		ID          int64
		Amount      decimal.Decimal
		Date        time.Time
		Description string
		CategoryID  *int64 // nil once the category has been deleted
		BankID      *int64 // nil once the bank has been deleted
		Type        TransactionType
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	NewTransaction struct {
		Amount      decimal.Decimal
		Date        time.Time
		Description string
		CategoryID  int64
		BankID      int64
		Type        TransactionType
	}

	// TransactionUpdate replaces every editable field of an existing transaction.
	TransactionUpdate struct {
		ID int64
		NewTransaction
	}

	// TransactionRow is one row of the transactions/categories/banks join as
	// returned by the store. Every joined column is nullable.
	TransactionRow struct {
		ID           int64
		Amount       decimal.Decimal
		Date         time.Time
		Description  sql.NullString
		Type         TransactionType
		CategoryID   sql.NullInt64
		CategoryName sql.NullString
		CategoryType sql.NullString
		BankID       sql.NullInt64
		BankName     sql.NullString
		LogoURL      sql.NullString
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// TransformedTransaction is the display shape of a transaction with its
	// bank and category nested. Bank or Category is nil when the reference
	// no longer resolves.
	TransformedTransaction struct {
		ID          int64
		Amount      decimal.Decimal
		Date        time.Time
		Description string
		Type        TransactionType
		Category    *Category
		Bank        *Bank
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Summary struct {
		TotalIncome   decimal.Decimal
		TotalExpenses decimal.Decimal
	}
)

var (
	ErrInvalidAmount          = errors.New("amount must be a positive number")
	ErrAmountTooLarge         = fmt.Errorf("%w below 100000000", ErrInvalidAmount)
	ErrInvalidDate            = errors.New("date cannot be zero")
	ErrInvalidType            = errors.New("transaction type must be Expense or Income")
	ErrMissingCategory        = errors.New("category is required")
	ErrMissingBank            = errors.New("bank is required")
	ErrMissingID              = errors.New("transaction id is required")
	ErrDescriptionTooLong     = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrEmptyCategoryName      = errors.New("category name cannot be empty")
	ErrCategoryNameTooLong    = fmt.Errorf("category name must not exceed %d characters", MaxCategoryNameLength)
	ErrCategoryNameCharacters = errors.New("category name can only contain letters and spaces")
)

var categoryNamePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// ValidationError marks a rejected user input. Store and I/O failures are
// never wrapped in it.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was caused by rejected user input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType accepts "expense" or "income" in any letter case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense":
		return Expense, nil
	case "income":
		return Income, nil
	}
	return "", invalid("type", ErrInvalidType)
}

func (t NewTransaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return invalid("date", ErrInvalidDate)
	}
	if !t.Type.Valid() {
		return invalid("type", ErrInvalidType)
	}
	if t.CategoryID <= 0 {
		return invalid("category", ErrMissingCategory)
	}
	if t.BankID <= 0 {
		return invalid("bank", ErrMissingBank)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return invalid("description", ErrDescriptionTooLong)
	}
	return nil
}

func (u TransactionUpdate) Validate() error {
	if u.ID <= 0 {
		return invalid("id", ErrMissingID)
	}
	return u.NewTransaction.Validate()
}

// ValidateCategoryName enforces the 25 character, letters-and-spaces rule.
func ValidateCategoryName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("category_name", ErrEmptyCategoryName)
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return invalid("category_name", ErrCategoryNameTooLong)
	}
	if !categoryNamePattern.MatchString(name) {
		return invalid("category_name", ErrCategoryNameCharacters)
	}
	return nil
}

// Net returns income minus expenses.
func (s Summary) Net() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpenses)
}

// Clone returns a copy of t that does not share its Bank or Category.
func (t TransformedTransaction) Clone() TransformedTransaction {
	if t.Bank != nil {
		b := *t.Bank
		t.Bank = &b
	}
	if t.Category != nil {
		c := *t.Category
		t.Category = &c
	}
	return t
}

// CloneTransactions deep-copies txs. A nil slice stays nil.
func CloneTransactions(txs []TransformedTransaction) []TransformedTransaction {
	if txs == nil {
		return nil
	}
	out := make([]TransformedTransaction, len(txs))
	for i, t := range txs {
		out[i] = t.Clone()
	}
	return out
}
