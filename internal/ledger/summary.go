package ledger

import (
	"bank-statement-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// CategoryResolver looks up category rules by name. The categorization
// engine satisfies this.
type CategoryResolver interface {
	Category(name string) (*models.Category, bool)
}

// FinancialSummary aggregates journal entries into income and expense
// totals. Transfers move money between own accounts and count as
// neither.
type FinancialSummary struct {
	TotalIncome  decimal.Decimal            `json:"total_income"`
	TotalExpense decimal.Decimal            `json:"total_expense"`
	NetPosition  decimal.Decimal            `json:"net_position"`
	ByCategory   map[string]decimal.Decimal `json:"by_category"`
}

// Summarize computes the financial summary for a batch of entries,
// classifying each by its category's accounting type. Entries whose
// category cannot be resolved are skipped.
func Summarize(entries []*models.JournalEntry, categories CategoryResolver) *FinancialSummary {
	summary := &FinancialSummary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		ByCategory:   make(map[string]decimal.Decimal),
	}

	for _, entry := range entries {
		category, ok := categories.Category(entry.Category)
		if !ok {
			continue
		}

		amount := entry.DebitAmount
		summary.ByCategory[entry.Category] = summary.ByCategory[entry.Category].Add(amount)

		switch category.Type {
		case models.AccountingTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(amount)
		case models.AccountingTypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(amount)
		}
	}

	summary.NetPosition = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary
}
