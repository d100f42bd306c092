package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryFile, 2},
		{CategoryDetection, 3},
		{CategoryParse, 3},
		{CategoryNormalization, 3},
		{CategoryConfiguration, 4},
		{CategoryCategorization, 5},
		{CategoryAccounting, 5},
		{CategoryInternal, 5},
		{ErrorCategory("unknown"), 1},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpectedError, "test")
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("GetExitCode for %s = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(CategoryParse, CodeNoTransactions, "no transactions found")
	if err.Error() != "no transactions found" {
		t.Errorf("Error() = %q", err.Error())
	}

	err.WithSuggestion("check the bank hint")
	if !strings.Contains(err.Error(), "suggestion: check the bank hint") {
		t.Errorf("Error() = %q, suggestion missing", err.Error())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, CategoryFile, CodeFileNotFound, "wrapped")

	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the cause")
	}
	if Wrap(nil, CategoryFile, CodeFileNotFound, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestFileError(t *testing.T) {
	err := FileError(CodeFileNotFound, "/tmp/statement.txt", nil)
	if err.Category != CategoryFile || err.Code != CodeFileNotFound {
		t.Errorf("got %s/%s", err.Category, err.Code)
	}
	if !strings.Contains(err.Message, "/tmp/statement.txt") {
		t.Errorf("Message = %q, path missing", err.Message)
	}
	if err.Suggestion == "" {
		t.Error("no suggestion set")
	}
	if err.Context["file_path"] != "/tmp/statement.txt" {
		t.Error("file_path context missing")
	}
}

func TestAccountingError(t *testing.T) {
	err := AccountingError(CodeUnbalancedEntry, "Bank Account", nil)
	if !strings.Contains(err.Message, "not balanced") {
		t.Errorf("Message = %q", err.Message)
	}
	if err.GetExitCode() != 5 {
		t.Errorf("GetExitCode = %d, want 5", err.GetExitCode())
	}
}

func TestAsLedgerError(t *testing.T) {
	inner := ParseError(CodeNoTransactions, 0, "", nil)
	wrapped := fmt.Errorf("pipeline failed: %w", inner)

	got, ok := AsLedgerError(wrapped)
	if !ok {
		t.Fatal("AsLedgerError did not find the LedgerError in the chain")
	}
	if got.Code != CodeNoTransactions {
		t.Errorf("Code = %s, want %s", got.Code, CodeNoTransactions)
	}

	if _, ok := AsLedgerError(fmt.Errorf("plain")); ok {
		t.Error("AsLedgerError matched a plain error")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	original := FileError(CodeFileEmpty, "x", nil)
	if got := WrapIfNeeded(original, CategoryInternal, CodeUnexpectedError, "y"); got != original {
		t.Error("WrapIfNeeded re-wrapped an existing LedgerError")
	}

	plain := fmt.Errorf("plain")
	got := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "wrapped")
	if got.Category != CategoryInternal || got.Cause != plain {
		t.Error("WrapIfNeeded did not wrap the plain error")
	}
}

func TestErrorSummary(t *testing.T) {
	var errs []*LedgerError
	for i := 0; i < 7; i++ {
		errs = append(errs, ParseError(CodeLineUnmatched, i, "line", nil))
	}
	errs = append(errs, FileError(CodeFileNotFound, "a.txt", nil))

	summary := NewErrorSummary(errs)
	if summary.Total != 8 {
		t.Errorf("Total = %d, want 8", summary.Total)
	}
	if summary.ByCategory[CategoryParse] != 7 {
		t.Errorf("ByCategory[parse] = %d, want 7", summary.ByCategory[CategoryParse])
	}
	if len(summary.SampleErrors) != 5 {
		t.Errorf("SampleErrors has %d entries, want capped at 5", len(summary.SampleErrors))
	}
	if !summary.HasCategory(CategoryFile) {
		t.Error("HasCategory(file) = false, want true")
	}
	if summary.HasCategory(CategoryAccounting) {
		t.Error("HasCategory(accounting) = true, want false")
	}
	// Parse maps to 3, file to 2; the summary reports the highest.
	if summary.GetExitCode() != 3 {
		t.Errorf("GetExitCode = %d, want 3", summary.GetExitCode())
	}
	if !strings.Contains(summary.Error(), "8 errors occurred") {
		t.Errorf("Error() = %q", summary.Error())
	}
}

func TestErrorSummary_Empty(t *testing.T) {
	summary := NewErrorSummary(nil)
	if summary.GetExitCode() != 0 {
		t.Errorf("GetExitCode = %d, want 0 for empty summary", summary.GetExitCode())
	}
	if summary.Error() != "no errors" {
		t.Errorf("Error() = %q", summary.Error())
	}
}
