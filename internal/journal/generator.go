// Package journal turns categorized transactions into balanced
// double-entry journal entries. Every entry debits one account and
// credits another with the same amount, so a generated batch is
// balanced by construction; ValidateEquation exists as a safety net,
// not a repair mechanism.
package journal

import (
	"fmt"
	"strings"

	"bank-statement-ledger/internal/models"
	"bank-statement-ledger/internal/normalize"
	apperrors "bank-statement-ledger/pkg/errors"
	"bank-statement-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryResolver looks up category rules by name. The categorization
// engine satisfies this.
type CategoryResolver interface {
	Category(name string) (*models.Category, bool)
}

// Generator creates journal entries from categorized transactions.
type Generator struct {
	config     *Config
	categories CategoryResolver
	logger     logger.Logger
}

// New creates a Generator. A nil config uses the default account
// mapping.
func New(config *Config, categories CategoryResolver) (*Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if categories == nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeMissingConfig, "categories", nil, nil)
	}

	return &Generator{
		config:     config,
		categories: categories,
		logger:     logger.GetGlobalLogger().WithComponent("journal"),
	}, nil
}

// Generate creates one balanced journal entry for a categorized
// transaction. Credits debit the bank account and credit the category
// account; debits run the other way.
func (g *Generator) Generate(tx *models.Transaction) (*models.JournalEntry, error) {
	if tx.Category == "" {
		return nil, apperrors.AccountingError(apperrors.CodeMissingField, "category", nil).
			WithContext("description", tx.Description).
			WithSuggestion("categorize transactions before generating journal entries")
	}

	account, err := g.resolveAccount(tx.Category)
	if err != nil {
		return nil, err
	}

	entry := &models.JournalEntry{
		VoucherID:    uuid.New().String(),
		Date:         tx.DateString(),
		DebitAmount:  tx.Amount,
		CreditAmount: tx.Amount,
		Narration:    g.narration(tx),
		Category:     tx.Category,
		Type:         tx.Type,
	}

	if tx.IsCredit() {
		entry.DebitAccount = g.config.BankAccount
		entry.CreditAccount = account
	} else {
		entry.DebitAccount = account
		entry.CreditAccount = g.config.BankAccount
	}

	return entry, nil
}

// GenerateAll creates entries for a batch, preserving transaction
// order. Any failure aborts the batch; partial journals are worse than
// none.
func (g *Generator) GenerateAll(transactions []*models.Transaction) ([]*models.JournalEntry, error) {
	entries := make([]*models.JournalEntry, 0, len(transactions))
	for _, tx := range transactions {
		entry, err := g.Generate(tx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	g.logger.WithField("entries", len(entries)).Info("Generated journal entries")
	return entries, nil
}

// resolveAccount maps a category name to its ledger account: the
// specific override table first, then the accounting type template.
func (g *Generator) resolveAccount(categoryName string) (string, error) {
	if account, ok := g.config.SpecificAccounts[categoryName]; ok {
		return account, nil
	}

	category, ok := g.categories.Category(categoryName)
	if !ok {
		return "", apperrors.AccountingError(apperrors.CodeUnknownAccount, categoryName, nil).
			WithSuggestion("add the category to the configuration or a specific account mapping")
	}

	template, ok := g.config.TypeTemplates[category.Type]
	if !ok {
		return "", apperrors.AccountingError(apperrors.CodeUnknownAccount, categoryName, nil).
			WithContext("accounting_type", string(category.Type))
	}

	return strings.ReplaceAll(template, "{account_name}", category.AccountName), nil
}

// narration renders the entry narration per the configured style.
func (g *Generator) narration(tx *models.Transaction) string {
	verb := "Paid"
	if tx.IsCredit() {
		verb = "Received"
	}

	switch g.config.NarrationStyle {
	case NarrationMinimal:
		return verb
	case NarrationDetailed:
		s := fmt.Sprintf("%s for %s - Amount: %s", verb, tx.Description, normalize.FormatAmount(tx.Amount))
		if tx.Narration != "" {
			s += " (" + tx.Narration + ")"
		}
		return s
	default:
		return fmt.Sprintf("%s for %s", verb, tx.Description)
	}
}

// ValidateEquation checks that every entry balances and that batch
// debit and credit totals agree within the balance epsilon.
func ValidateEquation(entries []*models.JournalEntry) error {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for _, entry := range entries {
		if !entry.IsBalanced() {
			return apperrors.AccountingError(apperrors.CodeUnbalancedEntry, entry.DebitAccount, nil).
				WithContext("voucher_id", entry.VoucherID).
				WithContext("debit", entry.DebitAmount.StringFixed(2)).
				WithContext("credit", entry.CreditAmount.StringFixed(2))
		}
		totalDebit = totalDebit.Add(entry.DebitAmount)
		totalCredit = totalCredit.Add(entry.CreditAmount)
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(models.BalanceEpsilon) {
		return apperrors.AccountingError(apperrors.CodeTrialImbalance, "journal", nil).
			WithContext("total_debit", totalDebit.StringFixed(2)).
			WithContext("total_credit", totalCredit.StringFixed(2))
	}

	return nil
}
