package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input   string
		want    TransactionType
		wantErr bool
	}{
		{"CR", TransactionTypeCredit, false},
		{"cr", TransactionTypeCredit, false},
		{"Credit", TransactionTypeCredit, false},
		{"C", TransactionTypeCredit, false},
		{"DR", TransactionTypeDebit, false},
		{"Dr", TransactionTypeDebit, false},
		{"DEBIT", TransactionTypeDebit, false},
		{" dr ", TransactionTypeDebit, false},
		{"XX", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTransactionType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTransactionType(%q) accepted invalid input", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTransactionType(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTransactionType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestAccountingTypeIsValid(t *testing.T) {
	for _, valid := range []AccountingType{
		AccountingTypeIncome, AccountingTypeExpense, AccountingTypeTransfer,
		AccountingTypeAsset, AccountingTypeLiability,
	} {
		if !valid.IsValid() {
			t.Errorf("%s should be valid", valid)
		}
	}
	if AccountingType("equity").IsValid() {
		t.Error("unknown accounting type should be invalid")
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := &Transaction{
		DateRaw:     "15/03/2024",
		Description: "NEFT from donor",
		Amount:      decimal.NewFromInt(100),
		Type:        TransactionTypeCredit,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate rejected a valid transaction: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"empty description", func(tx *Transaction) { tx.Description = "  " }},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }},
		{"invalid type", func(tx *Transaction) { tx.Type = "SIDEWAYS" }},
		{"no date", func(tx *Transaction) { tx.DateRaw = ""; tx.DateParsed = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := *valid
			tt.mutate(&tx)
			if err := tx.Validate(); err == nil {
				t.Error("Validate accepted an invalid transaction")
			}
		})
	}
}

func TestTransactionSortKey(t *testing.T) {
	parsed := &Transaction{
		Date:       time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		DateParsed: true,
		DateRaw:    "15/03/2024",
	}
	if got := parsed.SortKey(); got != "2024-03-15T00:00:00" {
		t.Errorf("SortKey = %q, want RFC3339-style parsed form", got)
	}

	raw := &Transaction{DateRaw: "99/99/2024"}
	if got := raw.SortKey(); got != "99/99/2024" {
		t.Errorf("SortKey = %q, want the raw string when unparsed", got)
	}
}

func TestTransactionDateString(t *testing.T) {
	parsed := &Transaction{
		Date:       time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		DateParsed: true,
	}
	if got := parsed.DateString(); got != "05/03/2024" {
		t.Errorf("DateString = %q, want 05/03/2024", got)
	}
}

func TestTransactionMarshalJSON(t *testing.T) {
	tx := &Transaction{
		Date:        time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		DateParsed:  true,
		DateRaw:     "15/03/2024",
		Description: "NEFT from donor",
		Amount:      decimal.RequireFromString("5000.5"),
		Type:        TransactionTypeCredit,
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded["date"] != "15/03/2024" {
		t.Errorf("date = %v, want 15/03/2024", decoded["date"])
	}
	if decoded["amount"] != "5000.50" {
		t.Errorf("amount = %v, want the fixed two-decimal string", decoded["amount"])
	}
}

func TestCategoryValidate(t *testing.T) {
	valid := &Category{
		Name:        "rent_expense",
		Keywords:    []string{"rent"},
		AccountName: "Rent Expense",
		Type:        AccountingTypeExpense,
		Priority:    2,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate rejected a valid category: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Category)
	}{
		{"empty name", func(c *Category) { c.Name = "" }},
		{"no account name", func(c *Category) { c.AccountName = "" }},
		{"bad type", func(c *Category) { c.Type = "equity" }},
		{"negative priority", func(c *Category) { c.Priority = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate accepted an invalid category")
			}
		})
	}
}

func TestJournalEntryIsBalanced(t *testing.T) {
	entry := &JournalEntry{
		DebitAmount:  decimal.RequireFromString("100.00"),
		CreditAmount: decimal.RequireFromString("100.00"),
	}
	if !entry.IsBalanced() {
		t.Error("equal amounts should balance")
	}

	// Within epsilon still balances.
	entry.CreditAmount = decimal.RequireFromString("100.01")
	if !entry.IsBalanced() {
		t.Error("difference of 0.01 should balance")
	}

	entry.CreditAmount = decimal.RequireFromString("100.02")
	if entry.IsBalanced() {
		t.Error("difference of 0.02 should not balance")
	}
}

func TestJournalEntryString(t *testing.T) {
	entry := &JournalEntry{
		DebitAccount:  "Cash Account",
		CreditAccount: "Bank Account",
		DebitAmount:   decimal.RequireFromString("2000"),
		CreditAmount:  decimal.RequireFromString("2000"),
	}

	s := entry.String()
	if !strings.Contains(s, "Cash Account Dr 2000.00") {
		t.Errorf("String() = %q, missing debit line", s)
	}
	if !strings.Contains(s, "To Bank Account 2000.00") {
		t.Errorf("String() = %q, missing credit line", s)
	}
}

func TestJournalEntryMarshalJSON(t *testing.T) {
	entry := &JournalEntry{
		VoucherID:     "v1",
		DebitAccount:  "Bank Account",
		CreditAccount: "Donation Income",
		DebitAmount:   decimal.RequireFromString("5000"),
		CreditAmount:  decimal.RequireFromString("5000"),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded["debit_amount"] != "5000.00" {
		t.Errorf("debit_amount = %v, want 5000.00", decoded["debit_amount"])
	}
	if decoded["credit_amount"] != "5000.00" {
		t.Errorf("credit_amount = %v, want 5000.00", decoded["credit_amount"])
	}
}
