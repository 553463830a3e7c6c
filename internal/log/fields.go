package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldDuration      = "duration_ms"
	FieldTransactionID = "transaction_id"
	FieldBankID        = "bank_id"
	FieldCategoryID    = "category_id"
	FieldAmount        = "amount"
	FieldType          = "type"
	FieldRows          = "rows"
	FieldViewMode      = "view_mode"
	FieldFilterTitle   = "filter_title"
	FieldDBPath        = "db_path"
	FieldRunID         = "run_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpRefresh  = "refresh"
	OpFilter   = "filter"
	OpSetup    = "setup"
	OpTeardown = "teardown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeDatabase = "database_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id int64, amount string, txType string, bankID, categoryID int64) LogFields {
	if id > 0 {
		f[FieldTransactionID] = id
	}
	f[FieldAmount] = amount
	f[FieldType] = txType
	f[FieldBankID] = bankID
	f[FieldCategoryID] = categoryID
	return f
}

// WithRefresh adds the outcome of a view refresh
func (f LogFields) WithRefresh(rows int, viewMode, filterTitle string, durationMs int64) LogFields {
	f[FieldRows] = rows
	f[FieldViewMode] = viewMode
	f[FieldFilterTitle] = filterTitle
	f[FieldDuration] = durationMs
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
