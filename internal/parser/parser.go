// Package parser converts raw bank-statement text into structured
// transactions. Each bank profile owns an ordered family of line
// patterns; the generic family is the fallback for every bank, and the
// first pattern that matches a line wins.
//
// Line-level failures never abort a parse: lines matching no pattern
// are skipped, and matched lines that fail field normalization are
// counted in the parse statistics and dropped.
package parser

import (
	"regexp"
	"sort"
	"strings"

	"bank-statement-ledger/internal/detector"
	"bank-statement-ledger/internal/models"
	"bank-statement-ledger/internal/normalize"
	apperrors "bank-statement-ledger/pkg/errors"
	"bank-statement-ledger/pkg/logger"
)

// BankAuto asks the parser to run bank detection itself.
const BankAuto = "auto"

// minLineLength filters page furniture; no real transaction line is
// this short.
const minLineLength = 10

// Config holds the parser configuration.
type Config struct {
	// Patterns maps bank profile names to their pattern families. Nil
	// uses DefaultPatternSpecs.
	Patterns map[string][]PatternSpec
	// MergeWrappedLines enables reconstruction of transactions wrapped
	// across a date-only line and a detail line.
	MergeWrappedLines bool
}

// DefaultConfig returns a parser configuration with the built-in
// pattern families.
func DefaultConfig() *Config {
	return &Config{
		Patterns:          DefaultPatternSpecs(),
		MergeWrappedLines: true,
	}
}

// Validate checks that every configured pattern compiles.
func (c *Config) Validate() error {
	_, err := compilePatternSpecs(c.Patterns)
	return err
}

// Stats records what happened during one parse run.
type Stats struct {
	LinesScanned      int    `json:"lines_scanned"`
	TransactionsFound int    `json:"transactions_found"`
	DetectedBank      string `json:"detected_bank"`
	ParseErrors       int    `json:"parse_errors"`
}

// Parser turns statement text into transactions.
type Parser struct {
	config   *Config
	patterns map[string][]*Pattern
	detector *detector.Detector
	logger   logger.Logger
}

// New creates a Parser. A nil config uses defaults; a nil detector gets
// the default profile registry.
func New(config *Config, det *detector.Detector) (*Parser, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Patterns == nil {
		config.Patterns = DefaultPatternSpecs()
	}

	compiled, err := compilePatternSpecs(config.Patterns)
	if err != nil {
		return nil, err
	}

	if det == nil {
		det, err = detector.New(nil)
		if err != nil {
			return nil, err
		}
	}

	return &Parser{
		config:   config,
		patterns: compiled,
		detector: det,
		logger:   logger.GetGlobalLogger().WithComponent("parser"),
	}, nil
}

// AddPattern registers a custom pattern for a bank, tried after the
// bank's existing patterns but before the generic fallback.
func (p *Parser) AddPattern(bank string, spec PatternSpec) error {
	compiled, err := spec.Compile()
	if err != nil {
		return err
	}
	p.patterns[bank] = append(p.patterns[bank], compiled)
	return nil
}

// Parse converts statement text into a date-ordered transaction
// collection. bankHint names a profile, or BankAuto to detect one.
func (p *Parser) Parse(text string, bankHint string) ([]*models.Transaction, *Stats, error) {
	stats := &Stats{}

	lines := strings.Split(text, "\n")
	stats.LinesScanned = len(lines)

	bank := bankHint
	if bank == "" || bank == BankAuto {
		bank = p.detector.Detect(text)
	}
	stats.DetectedBank = bank

	p.logger.WithFields(logger.Fields{
		"bank":  bank,
		"lines": len(lines),
	}).Info("Parsing statement text")

	if p.config.MergeWrappedLines {
		lines = mergeWrappedLines(lines)
	}

	tracker := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "parse_lines",
		Total:     int64(len(lines)),
		Logger:    p.logger,
	})

	var transactions []*models.Transaction
	for _, line := range lines {
		tracker.Increment()

		match := p.matchLine(line, bank)
		if match == nil {
			continue
		}

		tx, err := p.buildTransaction(match, bank)
		if err != nil {
			stats.ParseErrors++
			p.logger.WithError(err).WithField("line", strings.TrimSpace(line)).
				Debug("Discarding unconvertible transaction line")
			continue
		}
		transactions = append(transactions, tx)
	}
	tracker.Complete()

	stats.TransactionsFound = len(transactions)
	sortTransactions(transactions)

	p.logger.WithFields(logger.Fields{
		"transactions": stats.TransactionsFound,
		"parse_errors": stats.ParseErrors,
	}).Info("Parse completed")

	return transactions, stats, nil
}

// lineMatch carries the extracted raw fields of one matched line.
type lineMatch struct {
	date        string
	code        string
	description string
	amount      string
	txType      string
	narration   string
}

// matchLine tries the bank's pattern family, then the generic fallback.
func (p *Parser) matchLine(line string, bank string) *lineMatch {
	line = strings.TrimSpace(line)
	if len(line) < minLineLength {
		return nil
	}

	patterns := append([]*Pattern{}, p.patterns[bank]...)
	if bank != detector.GenericBank {
		patterns = append(patterns, p.patterns[detector.GenericBank]...)
	}

	for _, pattern := range patterns {
		groups := pattern.re.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		match := &lineMatch{}
		for i, field := range pattern.fields {
			value := groups[i+1]
			switch field {
			case FieldDate:
				match.date = value
			case FieldCode:
				match.code = value
			case FieldDescription:
				match.description = value
			case FieldAmount:
				match.amount = value
			case FieldType:
				match.txType = value
			case FieldNarration:
				match.narration = value
			}
		}
		return match
	}

	return nil
}

// buildTransaction normalizes a line match into a validated Transaction.
// An unparsable amount discards the transaction; an unparsable date
// keeps the raw string and degrades sort ordering.
func (p *Parser) buildTransaction(match *lineMatch, bank string) (*models.Transaction, error) {
	amount, err := normalize.ParseAmount(match.amount)
	if err != nil {
		return nil, apperrors.NormalizationError(apperrors.CodeInvalidAmount, "amount", match.amount, err)
	}
	if !amount.IsPositive() {
		return nil, apperrors.NormalizationError(apperrors.CodeInvalidAmount, "amount", match.amount, nil)
	}

	txType, err := models.ParseTransactionType(match.txType)
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeLineUnmatched, 0, match.txType, err)
	}

	tx := &models.Transaction{
		DateRaw:     strings.TrimSpace(match.date),
		Description: cleanDescription(match.description, match.code),
		Code:        strings.TrimSpace(match.code),
		Narration:   strings.TrimSpace(match.narration),
		Amount:      amount,
		AmountRaw:   match.amount,
		Type:        txType,
		BankType:    bank,
	}

	if date, err := normalize.ParseDate(match.date); err == nil {
		tx.Date = date
		tx.DateParsed = true
	}

	if err := tx.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryParse, apperrors.CodeLineUnmatched, "invalid transaction")
	}

	return tx, nil
}

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	edgeMarkerRe   = regexp.MustCompile(`^\s*[-*]\s*|\s*[-*]\s*$`)
	dateOnlyLineRe = regexp.MustCompile(`^\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*$`)
	dateLeadRe     = regexp.MustCompile(`^\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s`)
)

func cleanDescription(description, code string) string {
	description = whitespaceRe.ReplaceAllString(strings.TrimSpace(description), " ")
	if code != "" {
		description = strings.TrimSpace(strings.ReplaceAll(description, code, ""))
	}
	description = edgeMarkerRe.ReplaceAllString(description, "")
	return description
}

// mergeWrappedLines joins a date-only line with the following detail
// line. Some statements wrap a transaction across two physical lines;
// this pass is inherently sequential since line N depends on line N-1.
func mergeWrappedLines(lines []string) []string {
	merged := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if dateOnlyLineRe.MatchString(line) && i+1 < len(lines) {
			next := lines[i+1]
			if strings.TrimSpace(next) != "" && !dateLeadRe.MatchString(next) {
				merged = append(merged, strings.TrimSpace(line)+" "+strings.TrimSpace(next))
				i++
				continue
			}
		}
		merged = append(merged, line)
	}
	return merged
}

// sortTransactions orders by parsed date ascending. Transactions whose
// date failed to parse sort by raw string, which can interleave them
// with date-sorted entries; the sort is stable so equal keys keep
// statement order.
func sortTransactions(transactions []*models.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].SortKey() < transactions[j].SortKey()
	})
}
