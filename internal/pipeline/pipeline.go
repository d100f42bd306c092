// Package pipeline coordinates the full statement processing workflow:
// bank detection and parsing, categorization, journal entry generation
// and ledger posting. It is the single entry point the CLI and the HTTP
// API share.
//
// Example usage:
//
//	service, err := pipeline.New(pipeline.DefaultConfig())
//	service.AddProgressCallback(func(p *pipeline.Progress) {
//		fmt.Printf("%.0f%% %s\n", p.PercentComplete, p.CurrentStep)
//	})
//	result, err := service.Process(ctx, &pipeline.Request{Text: text, Bank: parser.BankAuto})
package pipeline

import (
	"context"
	"os"
	"sync"
	"time"

	"bank-statement-ledger/internal/categorizer"
	"bank-statement-ledger/internal/journal"
	"bank-statement-ledger/internal/ledger"
	"bank-statement-ledger/internal/models"
	"bank-statement-ledger/internal/parser"
	apperrors "bank-statement-ledger/pkg/errors"
	"bank-statement-ledger/pkg/logger"

	"github.com/shopspring/decimal"
)

// Config assembles the component configurations.
type Config struct {
	Parser      *parser.Config
	Categorizer *categorizer.Config
	Journal     *journal.Config
	// Workers bounds categorization parallelism.
	Workers int
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() *Config {
	return &Config{
		Parser:      parser.DefaultConfig(),
		Categorizer: categorizer.DefaultConfig(),
		Journal:     journal.DefaultConfig(),
		Workers:     4,
	}
}

// Request describes one processing run.
type Request struct {
	// Text is the raw statement text.
	Text string
	// Bank names a profile, or parser.BankAuto to detect one.
	Bank string
	// OpeningBalances seeds ledger accounts before posting.
	OpeningBalances map[string]decimal.Decimal
}

// Result is the complete output of one processing run.
type Result struct {
	Bank          string                   `json:"bank"`
	Transactions  []*models.Transaction    `json:"transactions"`
	Entries       []*models.JournalEntry   `json:"entries"`
	Accounts      []*ledger.Account        `json:"accounts"`
	TrialBalance  *models.TrialBalance     `json:"trial_balance"`
	Summary       *ledger.FinancialSummary `json:"summary"`
	ParseStats    *parser.Stats            `json:"parse_stats"`
	CategoryStats *categorizer.Stats       `json:"category_stats"`
	ProcessedAt   time.Time                `json:"processed_at"`
	Elapsed       time.Duration            `json:"elapsed"`
}

// Progress tracks a processing run through its steps.
type Progress struct {
	TotalSteps      int           `json:"total_steps"`
	CompletedSteps  int           `json:"completed_steps"`
	CurrentStep     string        `json:"current_step"`
	PercentComplete float64       `json:"percent_complete"`
	StartTime       time.Time     `json:"start_time"`
	ElapsedTime     time.Duration `json:"elapsed_time"`
}

// ProgressCallback is called after every step transition.
type ProgressCallback func(*Progress)

const totalSteps = 6

// Service runs the statement processing pipeline.
type Service struct {
	config    *Config
	parser    *parser.Parser
	engine    *categorizer.Engine
	generator *journal.Generator
	logger    logger.Logger

	progressCallbacks []ProgressCallback
	currentProgress   *Progress
	progressMu        sync.Mutex
}

// New creates a pipeline service. A nil config uses defaults.
func New(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	p, err := parser.New(config.Parser, nil)
	if err != nil {
		return nil, err
	}

	engine, err := categorizer.NewEngine(config.Categorizer)
	if err != nil {
		return nil, err
	}

	generator, err := journal.New(config.Journal, engine)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:    config,
		parser:    p,
		engine:    engine,
		generator: generator,
		logger:    logger.GetGlobalLogger().WithComponent("pipeline"),
	}, nil
}

// Engine exposes the categorization engine for category management.
func (s *Service) Engine() *categorizer.Engine {
	return s.engine
}

// Parser exposes the parser for custom pattern registration.
func (s *Service) Parser() *parser.Parser {
	return s.parser
}

// AddProgressCallback registers a progress callback. Safe to call
// while a Process run is in flight; the callback sees steps from the
// next update on.
func (s *Service) AddProgressCallback(callback ProgressCallback) {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.progressCallbacks = append(s.progressCallbacks, callback)
}

// LoadStatement reads a statement file, rejecting empty files early.
func LoadStatement(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return "", apperrors.FileError(apperrors.CodeFilePermission, path, err)
		}
		return "", apperrors.FileError(apperrors.CodeFileNotFound, path, err)
	}
	if len(data) == 0 {
		return "", apperrors.FileError(apperrors.CodeFileEmpty, path, nil).
			WithSuggestion("check that the statement export completed")
	}
	return string(data), nil
}

// Process runs the full pipeline for one statement.
func (s *Service) Process(ctx context.Context, request *Request) (*Result, error) {
	startTime := time.Now()
	s.initializeProgress(startTime)

	s.logger.WithFields(logger.Fields{
		"bank":  request.Bank,
		"bytes": len(request.Text),
	}).Info("Starting statement processing")

	// Step 1: parse
	s.updateProgress("Parsing statement", 0, startTime)
	if err := ctx.Err(); err != nil {
		return nil, apperrors.InternalError(apperrors.CodeUnexpectedError, "process", err)
	}

	transactions, parseStats, err := s.parser.Parse(request.Text, request.Bank)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, apperrors.ParseError(apperrors.CodeNoTransactions, 0, "", nil).
			WithContext("bank", parseStats.DetectedBank).
			WithSuggestion("check the statement format or pass an explicit bank profile")
	}

	// Step 2: categorize
	s.updateProgress("Categorizing transactions", 1, startTime)
	if err := ctx.Err(); err != nil {
		return nil, apperrors.InternalError(apperrors.CodeUnexpectedError, "process", err)
	}
	s.engine.ApplyAll(transactions, s.config.Workers)

	// Step 3: generate journal entries
	s.updateProgress("Generating journal entries", 2, startTime)
	entries, err := s.generator.GenerateAll(transactions)
	if err != nil {
		return nil, err
	}
	if err := journal.ValidateEquation(entries); err != nil {
		return nil, err
	}

	// Step 4: post to ledger
	s.updateProgress("Posting to ledger", 3, startTime)
	led := ledger.New()
	for account, balance := range request.OpeningBalances {
		if err := led.SetOpeningBalance(account, balance); err != nil {
			return nil, err
		}
	}
	if err := led.PostAll(entries); err != nil {
		return nil, err
	}

	// Step 5: trial balance
	s.updateProgress("Computing trial balance", 4, startTime)
	trialBalance := led.TrialBalance()

	// Step 6: summarize
	s.updateProgress("Summarizing", 5, startTime)
	result := &Result{
		Bank:          parseStats.DetectedBank,
		Transactions:  transactions,
		Entries:       entries,
		Accounts:      led.Accounts(),
		TrialBalance:  trialBalance,
		Summary:       ledger.Summarize(entries, s.engine),
		ParseStats:    parseStats,
		CategoryStats: categorizer.ComputeStats(transactions),
		ProcessedAt:   time.Now(),
		Elapsed:       time.Since(startTime),
	}
	s.updateProgress("Completed", totalSteps, startTime)

	s.logger.WithFields(logger.Fields{
		"bank":         result.Bank,
		"transactions": len(result.Transactions),
		"entries":      len(result.Entries),
		"balanced":     trialBalance.Balanced,
		"elapsed":      result.Elapsed,
	}).Info("Statement processing completed")

	return result, nil
}

func (s *Service) initializeProgress(startTime time.Time) {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.currentProgress = &Progress{
		TotalSteps: totalSteps,
		StartTime:  startTime,
	}
}

func (s *Service) updateProgress(step string, completed int, startTime time.Time) {
	s.progressMu.Lock()
	s.currentProgress.CurrentStep = step
	s.currentProgress.CompletedSteps = completed
	s.currentProgress.ElapsedTime = time.Since(startTime)
	s.currentProgress.PercentComplete = float64(completed) / float64(totalSteps) * 100
	snapshot := *s.currentProgress
	callbacks := append([]ProgressCallback{}, s.progressCallbacks...)
	s.progressMu.Unlock()

	for _, callback := range callbacks {
		callback(&snapshot)
	}
}
