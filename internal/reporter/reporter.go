// Package reporter renders processing results for human and machine
// consumption.
//
// Supported output formats:
//   - Console: readable sections for terminal display
//   - JSON: the full result as structured data
//   - CSV: one row per journal entry for spreadsheet import
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"bank-statement-ledger/internal/pipeline"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeTransactions bool `json:"include_transactions"`
	IncludeEntries      bool `json:"include_entries"`
	IncludeLedger       bool `json:"include_ledger"`
	IncludeStats        bool `json:"include_stats"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:              FormatConsole,
		IncludeTransactions: true,
		IncludeEntries:      true,
		IncludeLedger:       true,
		IncludeStats:        true,
		CSVDelimiter:        ',',
		CSVHeaders:          true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders pipeline results in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator. A nil config uses the
// defaults.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the result to the writer in the configured
// format.
func (rg *ReportGenerator) GenerateReport(result *pipeline.Result, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("processing result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *pipeline.Result, writer io.Writer) error {
	fmt.Fprintf(writer, "BANK STATEMENT PROCESSING REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", result.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Bank Profile: %s\n", result.Bank)
	fmt.Fprintf(writer, "Processing Duration: %v\n\n", result.Elapsed)

	if rg.config.IncludeTransactions {
		fmt.Fprintf(writer, "=== TRANSACTIONS ===\n")
		rg.printTransactions(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeEntries {
		fmt.Fprintf(writer, "=== JOURNAL ENTRIES ===\n")
		rg.printEntries(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeLedger {
		fmt.Fprintf(writer, "=== LEDGER ACCOUNTS ===\n")
		rg.printLedger(result, writer)
		fmt.Fprintf(writer, "\n")

		fmt.Fprintf(writer, "=== TRIAL BALANCE ===\n")
		rg.printTrialBalance(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	fmt.Fprintf(writer, "=== FINANCIAL SUMMARY ===\n")
	rg.printFinancialSummary(result, writer)

	if rg.config.IncludeStats {
		fmt.Fprintf(writer, "\n=== PROCESSING STATISTICS ===\n")
		rg.printStats(result, writer)
	}

	return nil
}

func (rg *ReportGenerator) generateJSONReport(result *pipeline.Result, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func (rg *ReportGenerator) generateCSVReport(result *pipeline.Result, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Voucher_ID",
			"Date",
			"Debit_Account",
			"Credit_Account",
			"Debit_Amount",
			"Credit_Amount",
			"Category",
			"Transaction_Type",
			"Narration",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, entry := range result.Entries {
		record := []string{
			entry.VoucherID,
			entry.Date,
			entry.DebitAccount,
			entry.CreditAccount,
			entry.DebitAmount.StringFixed(2),
			entry.CreditAmount.StringFixed(2),
			entry.Category,
			string(entry.Type),
			entry.Narration,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write journal entry record: %w", err)
		}
	}

	return nil
}

// Helper methods for console output formatting

func (rg *ReportGenerator) printTransactions(result *pipeline.Result, writer io.Writer) {
	fmt.Fprintf(writer, "Total Transactions: %d\n\n", len(result.Transactions))
	fmt.Fprintf(writer, "%-12s %-40s %12s %-7s %-20s %5s\n",
		"Date", "Description", "Amount", "Type", "Category", "Conf")
	for _, tx := range result.Transactions {
		description := tx.Description
		if len(description) > 40 {
			description = description[:37] + "..."
		}
		fmt.Fprintf(writer, "%-12s %-40s %12s %-7s %-20s %5.2f\n",
			tx.DateString(), description, tx.Amount.StringFixed(2),
			shortType(string(tx.Type)), tx.Category, tx.Confidence)
	}
}

func (rg *ReportGenerator) printEntries(result *pipeline.Result, writer io.Writer) {
	for _, entry := range result.Entries {
		fmt.Fprintf(writer, "%s  %s\n", entry.Date, entry.Narration)
		fmt.Fprintf(writer, "  %-40s Dr %12s\n", entry.DebitAccount, entry.DebitAmount.StringFixed(2))
		fmt.Fprintf(writer, "  To %-37s    %12s\n\n", entry.CreditAccount, entry.CreditAmount.StringFixed(2))
	}
}

func (rg *ReportGenerator) printLedger(result *pipeline.Result, writer io.Writer) {
	for _, account := range result.Accounts {
		fmt.Fprintf(writer, "%s\n", account.Name)
		if !account.OpeningBalance.IsZero() {
			fmt.Fprintf(writer, "  %-12s %-30s %12s %12s %12s\n",
				"", "Opening Balance", "", "", account.OpeningBalance.StringFixed(2))
		}
		for _, posting := range account.Postings {
			fmt.Fprintf(writer, "  %-12s %-30s %12s %12s %12s\n",
				posting.Date, posting.Particulars,
				posting.Debit.StringFixed(2), posting.Credit.StringFixed(2),
				posting.Balance.StringFixed(2))
		}
		fmt.Fprintf(writer, "  Closing Balance: %s (%s)\n\n",
			account.Balance.Abs().StringFixed(2), account.Side())
	}
}

func (rg *ReportGenerator) printTrialBalance(result *pipeline.Result, writer io.Writer) {
	tb := result.TrialBalance
	fmt.Fprintf(writer, "%-30s %15s %15s\n", "Account", "Debit", "Credit")
	for _, row := range tb.Rows {
		debit, credit := "", ""
		if row.Side == "Debit" {
			debit = row.ClosingBalance.StringFixed(2)
		} else {
			credit = row.ClosingBalance.StringFixed(2)
		}
		fmt.Fprintf(writer, "%-30s %15s %15s\n", row.Account, debit, credit)
	}
	fmt.Fprintf(writer, "%-30s %15s %15s\n", "TOTAL",
		tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
	if tb.Balanced {
		fmt.Fprintf(writer, "Trial balance is BALANCED\n")
	} else {
		fmt.Fprintf(writer, "Trial balance is NOT BALANCED\n")
	}
}

func (rg *ReportGenerator) printFinancialSummary(result *pipeline.Result, writer io.Writer) {
	summary := result.Summary
	fmt.Fprintf(writer, "Total Income:  %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(writer, "Total Expense: %s\n", summary.TotalExpense.StringFixed(2))
	fmt.Fprintf(writer, "Net Position:  %s\n", summary.NetPosition.StringFixed(2))
}

func (rg *ReportGenerator) printStats(result *pipeline.Result, writer io.Writer) {
	fmt.Fprintf(writer, "Lines Scanned:      %d\n", result.ParseStats.LinesScanned)
	fmt.Fprintf(writer, "Transactions Found: %d\n", result.ParseStats.TransactionsFound)
	fmt.Fprintf(writer, "Parse Errors:       %d\n", result.ParseStats.ParseErrors)
	fmt.Fprintf(writer, "Average Confidence: %.2f\n", result.CategoryStats.AverageConfidence)
	fmt.Fprintf(writer, "Low Confidence:     %d\n", result.CategoryStats.LowConfidenceCount)
	fmt.Fprintf(writer, "\nCategory Distribution:\n")
	categories := make([]string, 0, len(result.CategoryStats.Distribution))
	for category := range result.CategoryStats.Distribution {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(writer, "  %-25s %d\n", category, result.CategoryStats.Distribution[category])
	}
}

func shortType(t string) string {
	switch t {
	case "CREDIT":
		return "CR"
	case "DEBIT":
		return "DR"
	}
	return t
}
