// Package config builds component configurations from CLI flags and
// viper settings.
package config

import (
	"fmt"
	"strings"

	"bank-statement-ledger/internal/categorizer"
	"bank-statement-ledger/internal/journal"
	"bank-statement-ledger/internal/parser"
	"bank-statement-ledger/internal/pipeline"
	"bank-statement-ledger/internal/reporter"

	"github.com/shopspring/decimal"
)

// PipelineFlags carries the CLI flag values that shape a processing
// run.
type PipelineFlags struct {
	EnableSimilarity    bool
	SimilarityThreshold float64
	NarrationStyle      string
	BankAccount         string
	Workers             int
	MergeWrappedLines   bool
}

// CreatePipelineConfig assembles the pipeline configuration from CLI
// flags.
func CreatePipelineConfig(flags PipelineFlags) (*pipeline.Config, error) {
	parserConfig := parser.DefaultConfig()
	parserConfig.MergeWrappedLines = flags.MergeWrappedLines

	categorizerConfig := categorizer.DefaultConfig()
	categorizerConfig.EnableSimilarity = flags.EnableSimilarity
	if flags.SimilarityThreshold > 0 {
		categorizerConfig.SimilarityThreshold = flags.SimilarityThreshold
	}

	journalConfig := journal.DefaultConfig()
	if flags.NarrationStyle != "" {
		journalConfig.NarrationStyle = journal.NarrationStyle(flags.NarrationStyle)
	}
	if flags.BankAccount != "" {
		journalConfig.BankAccount = flags.BankAccount
	}

	config := &pipeline.Config{
		Parser:      parserConfig,
		Categorizer: categorizerConfig,
		Journal:     journalConfig,
		Workers:     flags.Workers,
	}

	if err := parserConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser config: %w", err)
	}
	if err := categorizerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid categorizer config: %w", err)
	}
	if err := journalConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal config: %w", err)
	}

	return config, nil
}

// CreateReportConfig creates a report configuration for the specified
// output format.
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeStats = false
	}

	return config
}

// ParseOpeningBalances converts "Account=Amount" flag values into the
// opening balance map.
func ParseOpeningBalances(values []string) (map[string]decimal.Decimal, error) {
	if len(values) == 0 {
		return nil, nil
	}

	balances := make(map[string]decimal.Decimal, len(values))
	for _, value := range values {
		parts := strings.SplitN(value, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid opening balance '%s': expected Account=Amount", value)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid opening balance amount '%s': %w", parts[1], err)
		}
		balances[strings.TrimSpace(parts[0])] = amount
	}
	return balances, nil
}
