package journal

import (
	"bank-statement-ledger/internal/models"
	apperrors "bank-statement-ledger/pkg/errors"
)

// NarrationStyle selects how much detail generated narrations carry.
type NarrationStyle string

const (
	// NarrationMinimal is just the direction word.
	NarrationMinimal NarrationStyle = "minimal"
	// NarrationBrief adds the transaction description.
	NarrationBrief NarrationStyle = "brief"
	// NarrationDetailed adds the formatted amount and any statement
	// narration.
	NarrationDetailed NarrationStyle = "detailed"
)

// IsValid checks if the narration style is one of the known styles
func (s NarrationStyle) IsValid() bool {
	switch s {
	case NarrationMinimal, NarrationBrief, NarrationDetailed:
		return true
	}
	return false
}

// Config holds the journal generator configuration.
type Config struct {
	// BankAccount is the ledger name of the tracked bank account. Every
	// entry posts one side here.
	BankAccount string `json:"bank_account" mapstructure:"bank_account"`

	// NarrationStyle controls generated narrations.
	NarrationStyle NarrationStyle `json:"narration_style" mapstructure:"narration_style"`

	// SpecificAccounts maps category names directly to ledger account
	// names, overriding the type templates.
	SpecificAccounts map[string]string `json:"specific_accounts" mapstructure:"specific_accounts"`

	// TypeTemplates maps accounting types to account name templates.
	// "{account_name}" expands to the category's account name.
	TypeTemplates map[models.AccountingType]string `json:"type_templates" mapstructure:"type_templates"`
}

// DefaultConfig returns the journal generator configuration with the
// built-in account mapping.
func DefaultConfig() *Config {
	return &Config{
		BankAccount:    "Bank Account",
		NarrationStyle: NarrationBrief,
		SpecificAccounts: map[string]string{
			"cash_withdrawal":   "Cash Account",
			"bank_transfer":     "Bank Transfer",
			"donation_income":   "Donation Income",
			"salary_income":     "Salary Income",
			"food_expense":      "Food Expense",
			"transport_expense": "Transport Expense",
		},
		TypeTemplates: map[models.AccountingType]string{
			models.AccountingTypeIncome:    "{account_name}",
			models.AccountingTypeExpense:   "{account_name}",
			models.AccountingTypeTransfer:  "{account_name}",
			models.AccountingTypeAsset:     "{account_name}",
			models.AccountingTypeLiability: "{account_name}",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.BankAccount == "" {
		return apperrors.ConfigurationError(apperrors.CodeMissingConfig, "bank_account", nil, nil)
	}
	if !c.NarrationStyle.IsValid() {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "narration_style", string(c.NarrationStyle), nil).
			WithSuggestion("use minimal, brief or detailed")
	}
	for accountingType, template := range c.TypeTemplates {
		if !accountingType.IsValid() {
			return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "type_templates", string(accountingType), nil)
		}
		if template == "" {
			return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "type_templates", string(accountingType), nil).
				WithSuggestion("template cannot be empty")
		}
	}
	return nil
}
