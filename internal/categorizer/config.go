package categorizer

import (
	"bank-statement-ledger/internal/models"
	apperrors "bank-statement-ledger/pkg/errors"
)

// Config holds the categorization engine configuration.
type Config struct {
	// Categories in declaration order. Order is part of the contract:
	// it breaks priority ties and fixes pattern precedence.
	Categories []*models.Category `json:"categories" mapstructure:"categories"`

	// EnableSimilarity turns on the TF-IDF similarity stage.
	EnableSimilarity bool `json:"enable_similarity" mapstructure:"enable_similarity"`
	// SimilarityThreshold is the minimum cosine similarity the
	// similarity stage accepts.
	SimilarityThreshold float64 `json:"similarity_threshold" mapstructure:"similarity_threshold"`

	// EnableClassifier turns on the statistical override.
	EnableClassifier bool `json:"enable_classifier" mapstructure:"enable_classifier"`
	// OverrideThreshold is the minimum classifier confidence required
	// to override the rule-based result.
	OverrideThreshold float64 `json:"override_threshold" mapstructure:"override_threshold"`

	// CreditDefault and DebitDefault name the fallback categories.
	CreditDefault string `json:"credit_default" mapstructure:"credit_default"`
	DebitDefault  string `json:"debit_default" mapstructure:"debit_default"`
}

// DefaultConfig returns the engine configuration with the built-in
// category table.
func DefaultConfig() *Config {
	return &Config{
		Categories:          DefaultCategories(),
		EnableSimilarity:    false,
		SimilarityThreshold: 0.3,
		EnableClassifier:    false,
		OverrideThreshold:   0.7,
		CreditDefault:       "donation_income",
		DebitDefault:        "miscellaneous",
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return apperrors.ConfigurationError(apperrors.CodeMissingConfig, "categories", nil, nil)
	}

	names := make(map[string]bool, len(c.Categories))
	for _, category := range c.Categories {
		if err := category.Validate(); err != nil {
			return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "categories", category.Name, err)
		}
		if names[category.Name] {
			return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "categories", category.Name, nil).
				WithSuggestion("category names must be unique")
		}
		names[category.Name] = true
	}

	if !names[c.CreditDefault] {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "credit_default", c.CreditDefault, nil)
	}
	if !names[c.DebitDefault] {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "debit_default", c.DebitDefault, nil)
	}

	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "similarity_threshold", c.SimilarityThreshold, nil)
	}
	if c.OverrideThreshold < 0 || c.OverrideThreshold > 1 {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "override_threshold", c.OverrideThreshold, nil)
	}

	return nil
}

// DefaultCategories returns the built-in category table in declaration
// order. Priority ties resolve to the earlier entry.
func DefaultCategories() []*models.Category {
	return []*models.Category{
		{
			Name:        "donation_income",
			Keywords:    []string{"donation", "donated", "contribution", "charity", "grant", "gift"},
			Patterns:    []string{`donation`, `contribution`, `charity`},
			AccountName: "Donation Income",
			Type:        models.AccountingTypeIncome,
			Priority:    1,
		},
		{
			Name:        "salary_income",
			Keywords:    []string{"salary", "payroll", "wages", "stipend", "compensation"},
			AccountName: "Salary Income",
			Type:        models.AccountingTypeIncome,
			Priority:    1,
		},
		{
			Name:        "cash_withdrawal",
			Keywords:    []string{"atm", "cash", "withdrawal", "wdl", "cash withdraw"},
			AccountName: "Cash Account",
			Type:        models.AccountingTypeTransfer,
			Priority:    1,
		},
		{
			Name:        "bank_transfer",
			Keywords:    []string{"neft", "imps", "rtgs", "upi", "transfer"},
			AccountName: "Bank Transfer",
			Type:        models.AccountingTypeTransfer,
			Priority:    1,
		},
		{
			Name:        "food_expense",
			Keywords:    []string{"restaurant", "cafe", "food", "snacks", "samosa", "meal", "lunch", "dinner"},
			AccountName: "Food Expense",
			Type:        models.AccountingTypeExpense,
			Priority:    2,
		},
		{
			Name:        "transport_expense",
			Keywords:    []string{"fuel", "petrol", "diesel", "bus", "train", "metro", "taxi", "uber", "ola"},
			AccountName: "Transport Expense",
			Type:        models.AccountingTypeExpense,
			Priority:    2,
		},
		{
			Name:        "shopping_expense",
			Keywords:    []string{"market", "store", "shop", "purchase", "buy"},
			AccountName: "Shopping Expense",
			Type:        models.AccountingTypeExpense,
			Priority:    2,
		},
		{
			Name:        "utility_expense",
			Keywords:    []string{"electricity", "water", "internet", "mobile", "bill"},
			AccountName: "Utility Expense",
			Type:        models.AccountingTypeExpense,
			Priority:    2,
		},
		{
			Name:        "miscellaneous",
			Keywords:    []string{},
			AccountName: "Miscellaneous",
			Type:        models.AccountingTypeExpense,
			Priority:    99,
		},
	}
}
