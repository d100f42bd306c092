package config

import (
	"testing"

	"bank-statement-ledger/internal/journal"
	"bank-statement-ledger/internal/reporter"

	"github.com/shopspring/decimal"
)

func TestCreatePipelineConfig(t *testing.T) {
	flags := PipelineFlags{
		EnableSimilarity:    true,
		SimilarityThreshold: 0.4,
		NarrationStyle:      "detailed",
		BankAccount:         "HDFC Savings",
		Workers:             8,
		MergeWrappedLines:   true,
	}

	config, err := CreatePipelineConfig(flags)
	if err != nil {
		t.Fatalf("CreatePipelineConfig returned error: %v", err)
	}

	if !config.Categorizer.EnableSimilarity {
		t.Error("EnableSimilarity not applied")
	}
	if config.Categorizer.SimilarityThreshold != 0.4 {
		t.Errorf("SimilarityThreshold = %v, want 0.4", config.Categorizer.SimilarityThreshold)
	}
	if config.Journal.NarrationStyle != journal.NarrationDetailed {
		t.Errorf("NarrationStyle = %q, want detailed", config.Journal.NarrationStyle)
	}
	if config.Journal.BankAccount != "HDFC Savings" {
		t.Errorf("BankAccount = %q, want HDFC Savings", config.Journal.BankAccount)
	}
	if config.Workers != 8 {
		t.Errorf("Workers = %d, want 8", config.Workers)
	}
	if !config.Parser.MergeWrappedLines {
		t.Error("MergeWrappedLines not applied")
	}
}

func TestCreatePipelineConfig_Defaults(t *testing.T) {
	config, err := CreatePipelineConfig(PipelineFlags{Workers: 4, MergeWrappedLines: true})
	if err != nil {
		t.Fatalf("CreatePipelineConfig returned error: %v", err)
	}
	if config.Journal.NarrationStyle != journal.NarrationBrief {
		t.Errorf("NarrationStyle = %q, want the brief default", config.Journal.NarrationStyle)
	}
	if config.Journal.BankAccount != "Bank Account" {
		t.Errorf("BankAccount = %q, want the default", config.Journal.BankAccount)
	}
}

func TestCreatePipelineConfig_InvalidNarrationStyle(t *testing.T) {
	_, err := CreatePipelineConfig(PipelineFlags{NarrationStyle: "verbose", Workers: 4})
	if err == nil {
		t.Error("CreatePipelineConfig accepted an unknown narration style")
	}
}

func TestCreatePipelineConfig_InvalidThreshold(t *testing.T) {
	_, err := CreatePipelineConfig(PipelineFlags{SimilarityThreshold: 1.5, Workers: 4})
	if err == nil {
		t.Error("CreatePipelineConfig accepted an out-of-range similarity threshold")
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format string
		want   reporter.OutputFormat
	}{
		{"console", reporter.FormatConsole},
		{"json", reporter.FormatJSON},
		{"csv", reporter.FormatCSV},
	}

	for _, tt := range tests {
		config := CreateReportConfig(tt.format)
		if config.Format != tt.want {
			t.Errorf("CreateReportConfig(%q).Format = %q, want %q", tt.format, config.Format, tt.want)
		}
	}

	csvConfig := CreateReportConfig("csv")
	if csvConfig.IncludeStats {
		t.Error("CSV reports should not include stats sections")
	}
}

func TestParseOpeningBalances(t *testing.T) {
	balances, err := ParseOpeningBalances([]string{
		"Bank Account=10000.00",
		"Cash Account = 500.50",
	})
	if err != nil {
		t.Fatalf("ParseOpeningBalances returned error: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("parsed %d balances, want 2", len(balances))
	}
	if !balances["Bank Account"].Equal(decimal.RequireFromString("10000.00")) {
		t.Errorf("Bank Account = %s, want 10000.00", balances["Bank Account"])
	}
	if !balances["Cash Account"].Equal(decimal.RequireFromString("500.50")) {
		t.Errorf("Cash Account = %s, want 500.50 with whitespace trimmed", balances["Cash Account"])
	}
}

func TestParseOpeningBalances_Empty(t *testing.T) {
	balances, err := ParseOpeningBalances(nil)
	if err != nil {
		t.Fatalf("ParseOpeningBalances returned error: %v", err)
	}
	if balances != nil {
		t.Errorf("ParseOpeningBalances(nil) = %v, want nil", balances)
	}
}

func TestParseOpeningBalances_Invalid(t *testing.T) {
	tests := []string{
		"no-equals-sign",
		"=100.00",
		"Bank Account=not-a-number",
	}
	for _, input := range tests {
		if _, err := ParseOpeningBalances([]string{input}); err == nil {
			t.Errorf("ParseOpeningBalances accepted %q", input)
		}
	}
}
