package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryDetection      ErrorCategory = "detection"
	CategoryParse          ErrorCategory = "parse"
	CategoryNormalization  ErrorCategory = "normalization"
	CategoryCategorization ErrorCategory = "categorization"
	CategoryAccounting     ErrorCategory = "accounting"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileEmpty      ErrorCode = "file_empty"

	// Detection errors
	CodeUnknownProfile ErrorCode = "unknown_profile"

	// Parse errors
	CodeNoTransactions ErrorCode = "no_transactions"
	CodeLineUnmatched  ErrorCode = "line_unmatched"
	CodeInvalidPattern ErrorCode = "invalid_pattern"

	// Normalization errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"

	// Categorization errors
	CodeUnknownCategory ErrorCode = "unknown_category"
	CodeIndexStale      ErrorCode = "index_stale"

	// Accounting errors
	CodeUnbalancedEntry ErrorCode = "unbalanced_entry"
	CodeUnknownAccount  ErrorCode = "unknown_account"
	CodeTrialImbalance  ErrorCode = "trial_imbalance"
	CodeMissingField    ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// LedgerError is the base error type for all application errors
type LedgerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *LedgerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *LedgerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryDetection, CategoryParse, CategoryNormalization:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryCategorization, CategoryAccounting, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *LedgerError) WithContext(key string, value interface{}) *LedgerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *LedgerError) WithSuggestion(suggestion string) *LedgerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new LedgerError
func New(category ErrorCategory, code ErrorCode, message string) *LedgerError {
	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with LedgerError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err == nil {
		return nil
	}

	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileEmpty:
		message = fmt.Sprintf("file contains no statement text: %s", path)
		suggestion = "verify the extraction step produced text for this document"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, line int, value string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeNoTransactions:
		message = "no transactions found in statement text"
		suggestion = "verify the document is a bank statement and the bank hint is correct"
	case CodeLineUnmatched:
		message = fmt.Sprintf("line %d matched no transaction pattern: '%s'", line, value)
		suggestion = "add a custom pattern for this bank layout if the line is a transaction"
	case CodeInvalidPattern:
		message = fmt.Sprintf("invalid transaction pattern: '%s'", value)
		suggestion = "check the regular expression syntax in the pattern configuration"
	default:
		message = fmt.Sprintf("parse error at line %d", line)
		suggestion = "check the statement text around this line"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("line", line).
		WithContext("value", value)
}

// NormalizationError creates a field-normalization error
func NormalizationError(code ErrorCode, field string, value string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("cannot normalize amount in field '%s': '%s'", field, value)
		suggestion = "amounts must contain digits, optionally with commas and two decimals"
	case CodeInvalidDate:
		message = fmt.Sprintf("cannot normalize date in field '%s': '%s'", field, value)
		suggestion = "supported date layouts include DD/MM/YYYY, DD-MM-YYYY and YYYY-MM-DD"
	default:
		message = fmt.Sprintf("normalization error in field '%s': '%s'", field, value)
		suggestion = "check the field value and format"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryNormalization, code, message)
	} else {
		result = New(CategoryNormalization, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// CategorizationError creates a categorization-related error
func CategorizationError(code ErrorCode, category string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeUnknownCategory:
		message = fmt.Sprintf("unknown category: %s", category)
		suggestion = "check the category configuration or add it with AddCategory"
	case CodeIndexStale:
		message = fmt.Sprintf("keyword index is stale for category '%s'", category)
		suggestion = "rebuild the keyword index after changing categories"
	default:
		message = fmt.Sprintf("categorization error for category '%s'", category)
		suggestion = "review the category rule configuration"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryCategorization, code, message)
	} else {
		result = New(CategoryCategorization, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("category", category)
}

// AccountingError creates an accounting-related error
func AccountingError(code ErrorCode, account string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeUnbalancedEntry:
		message = fmt.Sprintf("journal entry for account '%s' is not balanced", account)
		suggestion = "debit and credit amounts must be equal within 0.01"
	case CodeUnknownAccount:
		message = fmt.Sprintf("no account mapping for '%s'", account)
		suggestion = "add the account to the account-mapping configuration"
	case CodeTrialImbalance:
		message = "trial balance debits and credits do not agree"
		suggestion = "inspect the journal entries feeding the imbalanced accounts"
	case CodeMissingField:
		message = fmt.Sprintf("transaction is missing a required field for account '%s'", account)
		suggestion = "date, description, amount and type are required"
	default:
		message = fmt.Sprintf("accounting error for account '%s'", account)
		suggestion = "review the generated journal entries"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryAccounting, code, message)
	} else {
		result = New(CategoryAccounting, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("account", account)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *LedgerError {
	message := fmt.Sprintf("internal error during %s", operation)
	suggestion := "this is likely a bug - please report it with the error details"

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*LedgerError        `json:"errors"`
	SampleErrors []*LedgerError        `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*LedgerError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if len(errs) == 0 {
		summary.Errors = []*LedgerError{}
		return summary
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	// Include sample errors (max 5)
	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	count, exists := es.ByCategory[category]
	return exists && count > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsLedgerError checks if an error is a LedgerError
func IsLedgerError(err error) bool {
	_, ok := err.(*LedgerError)
	return ok
}

// AsLedgerError extracts a LedgerError from an error chain
func AsLedgerError(err error) (*LedgerError, bool) {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a LedgerError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err == nil {
		return nil
	}

	if ledgerErr, ok := AsLedgerError(err); ok {
		return ledgerErr
	}

	return Wrap(err, category, code, message)
}
