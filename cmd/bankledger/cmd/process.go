package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"bank-statement-ledger/cmd/bankledger/config"
	"bank-statement-ledger/internal/parser"
	"bank-statement-ledger/internal/pipeline"
	"bank-statement-ledger/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the process command
var (
	inputFile           string
	bankProfile         string
	outputFormat        string
	outputFile          string
	narrationStyle      string
	bankAccount         string
	enableSimilarity    bool
	similarityThreshold float64
	mergeWrappedLines   bool
	workers             int
	showProgress        bool
	openingBalances     []string
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a bank statement into journal entries and a ledger",
	Long: `Process parses bank statement text, categorizes each transaction,
generates balanced double-entry journal entries and posts them to
ledger accounts with running balances and a trial balance.

The bank profile is detected automatically from the statement text
unless --bank names one explicitly.

Examples:
  # Process with automatic bank detection
  bankledger process --input statement.txt

  # Explicit bank profile and JSON output
  bankledger process --input statement.txt --bank sbi --output-format json

  # CSV journal export with detailed narrations
  bankledger process --input statement.txt --output-format csv \
    --output-file journal.csv --narration-style detailed

  # Seed the bank account's opening balance
  bankledger process --input statement.txt \
    --opening-balance "Bank Account=25000.00"`,

	PreRunE: validateProcessFlags,
	RunE:    runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	// Required flags
	processCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to statement text file (required)")

	// Parsing flags
	processCmd.Flags().StringVarP(&bankProfile, "bank", "b", parser.BankAuto, "bank profile: auto, hdfc, sbi, icici, axis, pnb, generic")
	processCmd.Flags().BoolVar(&mergeWrappedLines, "merge-wrapped-lines", true, "rejoin transactions wrapped across two lines")

	// Categorization flags
	processCmd.Flags().BoolVar(&enableSimilarity, "enable-similarity", false, "enable TF-IDF similarity matching")
	processCmd.Flags().Float64Var(&similarityThreshold, "similarity-threshold", 0, "minimum similarity score (0.0-1.0)")
	processCmd.Flags().IntVarP(&workers, "workers", "w", 4, "categorization worker count")

	// Journal flags
	processCmd.Flags().StringVar(&narrationStyle, "narration-style", "brief", "narration style: minimal, brief, detailed")
	processCmd.Flags().StringVar(&bankAccount, "bank-account", "", "ledger name of the bank account")
	processCmd.Flags().StringSliceVar(&openingBalances, "opening-balance", nil, "opening balances as Account=Amount (repeatable)")

	// Output flags
	processCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	processCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	processCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	processCmd.MarkFlagRequired("input")

	// Bind flags to viper
	viper.BindPFlag("input", processCmd.Flags().Lookup("input"))
	viper.BindPFlag("bank", processCmd.Flags().Lookup("bank"))
	viper.BindPFlag("merge-wrapped-lines", processCmd.Flags().Lookup("merge-wrapped-lines"))
	viper.BindPFlag("enable-similarity", processCmd.Flags().Lookup("enable-similarity"))
	viper.BindPFlag("similarity-threshold", processCmd.Flags().Lookup("similarity-threshold"))
	viper.BindPFlag("workers", processCmd.Flags().Lookup("workers"))
	viper.BindPFlag("narration-style", processCmd.Flags().Lookup("narration-style"))
	viper.BindPFlag("bank-account", processCmd.Flags().Lookup("bank-account"))
	viper.BindPFlag("output-format", processCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", processCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("progress", processCmd.Flags().Lookup("progress"))
}

func validateProcessFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputFile = viper.GetString("input")
	bankProfile = viper.GetString("bank")
	mergeWrappedLines = viper.GetBool("merge-wrapped-lines")
	enableSimilarity = viper.GetBool("enable-similarity")
	similarityThreshold = viper.GetFloat64("similarity-threshold")
	workers = viper.GetInt("workers")
	narrationStyle = viper.GetString("narration-style")
	bankAccount = viper.GetString("bank-account")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	showProgress = viper.GetBool("progress")

	if inputFile == "" {
		return fmt.Errorf("input is required")
	}
	if err := validateFileExists(inputFile, "statement file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	validStyles := map[string]bool{"minimal": true, "brief": true, "detailed": true}
	if !validStyles[narrationStyle] {
		return fmt.Errorf("invalid narration style '%s'. Valid styles: minimal, brief, detailed", narrationStyle)
	}

	if similarityThreshold < 0 || similarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be between 0.0 and 1.0")
	}
	if workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	handler := NewCLIErrorHandler()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Processing statement...\n")
		fmt.Fprintf(os.Stderr, "Input file: %s\n", inputFile)
		fmt.Fprintf(os.Stderr, "Bank profile: %s\n", bankProfile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
	}

	pipelineConfig, err := config.CreatePipelineConfig(config.PipelineFlags{
		EnableSimilarity:    enableSimilarity,
		SimilarityThreshold: similarityThreshold,
		NarrationStyle:      narrationStyle,
		BankAccount:         bankAccount,
		Workers:             workers,
		MergeWrappedLines:   mergeWrappedLines,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline config: %w", err)
	}

	balances, err := config.ParseOpeningBalances(openingBalances)
	if err != nil {
		return err
	}

	service, err := pipeline.New(pipelineConfig)
	if err != nil {
		return fmt.Errorf("failed to create pipeline service: %w", err)
	}

	if showProgress {
		service.AddProgressCallback(func(progress *pipeline.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s (%.1f%% complete)",
				progress.CompletedSteps, progress.TotalSteps,
				progress.CurrentStep, progress.PercentComplete)
		})
	}

	text, err := pipeline.LoadStatement(inputFile)
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	result, err := service.Process(ctx, &pipeline.Request{
		Text:            text,
		Bank:            bankProfile,
		OpeningBalances: balances,
	})
	if err != nil {
		if showProgress {
			fmt.Fprintf(os.Stderr, "\n")
		}
		os.Exit(handler.HandleError(err))
	}
	if showProgress {
		fmt.Fprintf(os.Stderr, "\n")
	}

	reportConfig := config.CreateReportConfig(outputFormat)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	// Determine output destination
	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nProcessing completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Bank profile: %s\n", result.Bank)
		fmt.Fprintf(os.Stderr, "Parsed %d transactions (%d parse errors).\n",
			result.ParseStats.TransactionsFound, result.ParseStats.ParseErrors)
		fmt.Fprintf(os.Stderr, "Generated %d journal entries across %d accounts.\n",
			len(result.Entries), len(result.Accounts))
		if result.TrialBalance.Balanced {
			fmt.Fprintf(os.Stderr, "Trial balance is balanced.\n")
		} else {
			fmt.Fprintf(os.Stderr, "WARNING: trial balance is not balanced.\n")
		}
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.Elapsed)
	}

	return nil
}
