// Package models defines the core data types flowing through the
// statement processing pipeline: parsed transactions, category rules,
// journal entries and the supporting enumerations.
//
// Amounts are decimal.Decimal throughout; float64 never touches money.
// A Transaction is created by the parser, amended exactly once by the
// categorization engine and read-only afterwards.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceEpsilon is the tolerance used for all debit/credit equality
// checks (per-entry balance and the trial balance).
var BalanceEpsilon = decimal.NewFromFloat(0.01)

// TransactionType represents the direction of a transaction relative to
// the tracked bank account.
type TransactionType string

const (
	// TransactionTypeCredit represents money entering the account (CR)
	TransactionTypeCredit TransactionType = "CREDIT"
	// TransactionTypeDebit represents money leaving the account (DR)
	TransactionTypeDebit TransactionType = "DEBIT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// ParseTransactionType parses a transaction type from statement text.
// Banks print the direction as CR/DR, Cr/Dr or the full words.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CREDIT", "C", "CR":
		return TransactionTypeCredit, nil
	case "DEBIT", "D", "DR":
		return TransactionTypeDebit, nil
	default:
		return "", fmt.Errorf("invalid transaction type '%s': must be CR or DR", s)
	}
}

// AccountingType classifies a category for journal entry generation.
type AccountingType string

const (
	AccountingTypeIncome    AccountingType = "income"
	AccountingTypeExpense   AccountingType = "expense"
	AccountingTypeTransfer  AccountingType = "transfer"
	AccountingTypeAsset     AccountingType = "asset"
	AccountingTypeLiability AccountingType = "liability"
)

// IsValid checks if the accounting type is one of the known classes
func (a AccountingType) IsValid() bool {
	switch a {
	case AccountingTypeIncome, AccountingTypeExpense, AccountingTypeTransfer,
		AccountingTypeAsset, AccountingTypeLiability:
		return true
	}
	return false
}

// Transaction represents one statement line (or reconstructed multi-line
// block) parsed into structured form.
type Transaction struct {
	// Date is the parsed calendar date. Valid only when DateParsed is true.
	Date time.Time `json:"-"`
	// DateRaw is the date string exactly as it appeared in the statement.
	// It is the sort key when parsing failed.
	DateRaw    string `json:"date_raw"`
	DateParsed bool   `json:"date_parsed"`

	Description string          `json:"description"`
	Code        string          `json:"code,omitempty"`
	Narration   string          `json:"narration,omitempty"`
	Amount      decimal.Decimal `json:"-"`
	AmountRaw   string          `json:"amount_raw"`
	Type        TransactionType `json:"type"`
	BankType    string          `json:"bank_type"`

	// Set once by the categorization engine.
	Category   string  `json:"category,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Method     string  `json:"method,omitempty"`
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction description cannot be empty")
	}

	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", t.Amount.String())
	}

	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}

	if t.DateRaw == "" && !t.DateParsed {
		return fmt.Errorf("transaction date cannot be empty")
	}

	return nil
}

// IsCredit returns true if the transaction is a credit
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionTypeCredit
}

// IsDebit returns true if the transaction is a debit
func (t *Transaction) IsDebit() bool {
	return t.Type == TransactionTypeDebit
}

// SortKey returns the value transactions order by: the parsed date in
// RFC3339 form when available, otherwise the raw date string. Unparsed
// dates can therefore interleave with parsed ones; that ordering quirk
// is pinned by tests.
func (t *Transaction) SortKey() string {
	if t.DateParsed {
		return t.Date.Format("2006-01-02T15:04:05")
	}
	return t.DateRaw
}

// DateString returns the display form of the transaction date.
func (t *Transaction) DateString() string {
	if t.DateParsed {
		return t.Date.Format("02/01/2006")
	}
	return t.DateRaw
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Desc: %q, Amount: %s, Type: %s, Category: %s}",
		t.DateString(), t.Description, t.Amount.String(), t.Type, t.Category)
}

// MarshalJSON implements custom JSON marshaling for Transaction
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		*Alias
	}{
		Date:   t.DateString(),
		Amount: t.Amount.StringFixed(2),
		Alias:  (*Alias)(t),
	})
}

// Category is a named categorization rule set. Categories are
// configuration data: loaded once per run and treated as immutable by
// the engine except through explicit AddCategory calls.
type Category struct {
	Name        string         `json:"name" mapstructure:"name"`
	Keywords    []string       `json:"keywords" mapstructure:"keywords"`
	Patterns    []string       `json:"patterns,omitempty" mapstructure:"patterns"`
	AccountName string         `json:"account_name" mapstructure:"account_name"`
	Type        AccountingType `json:"type" mapstructure:"type"`
	// Priority orders simultaneous keyword matches; lower wins.
	Priority int `json:"priority" mapstructure:"priority"`
}

// Validate performs basic validation on the Category
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if strings.TrimSpace(c.AccountName) == "" {
		return fmt.Errorf("category '%s' has no account name", c.Name)
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("category '%s' has invalid accounting type '%s'", c.Name, c.Type)
	}
	if c.Priority < 0 {
		return fmt.Errorf("category '%s' has negative priority %d", c.Name, c.Priority)
	}
	return nil
}

// JournalEntry is one balanced double-entry record derived from a
// categorized transaction. DebitAmount always equals CreditAmount; the
// generator sets both from the same source amount.
type JournalEntry struct {
	VoucherID     string          `json:"voucher_id"`
	Date          string          `json:"date"`
	DebitAccount  string          `json:"debit_account"`
	CreditAccount string          `json:"credit_account"`
	DebitAmount   decimal.Decimal `json:"-"`
	CreditAmount  decimal.Decimal `json:"-"`
	Narration     string          `json:"narration"`
	Category      string          `json:"category"`
	Type          TransactionType `json:"transaction_type"`
}

// IsBalanced reports whether debit and credit agree within BalanceEpsilon.
func (e *JournalEntry) IsBalanced() bool {
	return e.DebitAmount.Sub(e.CreditAmount).Abs().LessThanOrEqual(BalanceEpsilon)
}

// String returns the traditional two-line journal form.
func (e *JournalEntry) String() string {
	return fmt.Sprintf("%s Dr %s\nTo %s %s",
		e.DebitAccount, e.DebitAmount.StringFixed(2),
		e.CreditAccount, e.CreditAmount.StringFixed(2))
}

// MarshalJSON implements custom JSON marshaling for JournalEntry
func (e *JournalEntry) MarshalJSON() ([]byte, error) {
	type Alias JournalEntry
	return json.Marshal(&struct {
		DebitAmount  string `json:"debit_amount"`
		CreditAmount string `json:"credit_amount"`
		*Alias
	}{
		DebitAmount:  e.DebitAmount.StringFixed(2),
		CreditAmount: e.CreditAmount.StringFixed(2),
		Alias:        (*Alias)(e),
	})
}

// Posting is one line in a ledger account: the movement plus the running
// balance after it.
type Posting struct {
	Date        string          `json:"date"`
	Particulars string          `json:"particulars"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	Narration   string          `json:"narration,omitempty"`
}

// BalanceSide indicates which side a closing balance falls on.
type BalanceSide string

const (
	BalanceSideDebit  BalanceSide = "Debit"
	BalanceSideCredit BalanceSide = "Credit"
)

// TrialBalanceRow is one account's totals in the trial balance.
type TrialBalanceRow struct {
	Account        string          `json:"account"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Side           BalanceSide     `json:"side"`
}

// TrialBalance is a snapshot over all ledger accounts.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}
