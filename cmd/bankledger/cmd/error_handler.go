package cmd

import (
	"fmt"
	"os"
	"strings"

	"bank-statement-ledger/pkg/errors"
	"bank-statement-ledger/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-friendly message and returns the exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if ledgerErr, ok := errors.AsLedgerError(err); ok {
		return h.handleLedgerError(ledgerErr)
	}

	return h.handleGenericError(err)
}

// handleLedgerError handles LedgerError with detailed context
func (h *CLIErrorHandler) handleLedgerError(err *errors.LedgerError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-LedgerError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, check the logs or run with --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure the file contains the extracted statement text`

	case errors.CategoryDetection, errors.CategoryParse:
		return `Parse error help:
• Verify the file contains bank statement text, not a binary export
• Pass the bank explicitly with --bank if detection picks wrongly
• Ensure transaction lines contain a date, amount and CR/DR marker
• Use 'bankledger process --help' for supported bank profiles`

	case errors.CategoryNormalization:
		return `Normalization error help:
• Check date formats: DD/MM/YYYY, DD-MM-YYYY and YYYY-MM-DD are supported
• Amounts may use commas and parentheses but no currency symbols
• Remove stray characters from the affected lines`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'bankledger process --help' to see all available options
• Try running with default settings first`

	case errors.CategoryCategorization, errors.CategoryAccounting:
		return `Accounting error help:
• Review the category configuration and account mappings
• Check that custom categories name an account and accounting type
• Inspect the journal entries feeding the imbalanced accounts`

	default:
		return `For more help:
• Use 'bankledger --help' for general help
• Use 'bankledger process --help' for command-specific help
• Run with --verbose for detailed error information`
	}
}
